package tokens

import "meridian-hq/janus/pkg/providers"

// Heuristic constants for the character-based estimator. Four characters per
// token is the usual English-text approximation; the per-message overhead
// accounts for role markers and chat formatting.
const (
	charsPerToken       = 4
	perMessageOverhead  = 10
	defaultMaxTokens    = 1000
	minNonEmptyEstimate = 1
)

// SimpleEstimator is a character-based token estimator (chars/4). It is fast
// and provider-agnostic, at the price of accuracy; callers that need exact
// accounting post-correct from the usage totals providers report.
type SimpleEstimator struct{}

// NewSimpleEstimator creates the character-based estimator.
func NewSimpleEstimator() *SimpleEstimator {
	return &SimpleEstimator{}
}

// EstimateText estimates tokens for a single text string.
func (e *SimpleEstimator) EstimateText(text string) int {
	if text == "" {
		return 0
	}
	tokens := len(text) / charsPerToken
	if tokens < minNonEmptyEstimate {
		tokens = minNonEmptyEstimate
	}
	return tokens
}

// EstimatePrompt estimates prompt tokens for a completion request as
// total_chars/4 plus a fixed overhead per message.
func (e *SimpleEstimator) EstimatePrompt(req *providers.CompletionRequest) int {
	if req == nil {
		return 0
	}

	var chars int
	for _, msg := range req.Messages {
		chars += len(msg.Content)
	}
	return chars/charsPerToken + perMessageOverhead*len(req.Messages)
}

// EstimateCompletion returns the request's max_tokens cap, or 1000 when the
// request does not set one.
func (e *SimpleEstimator) EstimateCompletion(req *providers.CompletionRequest) int {
	if req == nil || req.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return req.MaxTokens
}
