package tokens

import "meridian-hq/janus/pkg/providers"

// Estimator estimates token counts for canonical requests. Implementations
// may use different algorithms (character heuristics, BPE vocabularies); the
// gateway ships the character-based SimpleEstimator.
type Estimator interface {
	// EstimateText estimates tokens for a single text string.
	EstimateText(text string) int

	// EstimatePrompt estimates prompt tokens for a completion request,
	// including per-message formatting overhead.
	EstimatePrompt(req *providers.CompletionRequest) int

	// EstimateCompletion estimates the completion token allowance for a
	// request: its max_tokens cap, or a default when the cap is absent.
	EstimateCompletion(req *providers.CompletionRequest) int
}

// Estimate is a prompt/completion token estimate for one request.
type Estimate struct {
	// PromptTokens is the estimated prompt size.
	PromptTokens int

	// CompletionTokens is the estimated completion allowance.
	CompletionTokens int
}

// Total returns the combined estimate.
func (e Estimate) Total() int {
	return e.PromptTokens + e.CompletionTokens
}

// ForRequest runs both estimates through an Estimator.
func ForRequest(e Estimator, req *providers.CompletionRequest) Estimate {
	return Estimate{
		PromptTokens:     e.EstimatePrompt(req),
		CompletionTokens: e.EstimateCompletion(req),
	}
}
