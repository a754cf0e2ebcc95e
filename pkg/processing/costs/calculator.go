package costs

import (
	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/registry"
)

// Default USD prices per 1000 tokens applied when a model has no cost row.
// They are deliberately mid-range: records and budgets still get a usable
// figure, while the cost router (which requires a real cost row) is
// unaffected.
const (
	DefaultInputCostPer1K  = 0.001
	DefaultOutputCostPer1K = 0.002
)

// Calculator computes USD costs from token counts and registry pricing. It
// is stateless and safe for concurrent use.
type Calculator struct{}

// NewCalculator creates a cost calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// EstimateCost computes the estimated cost for a request before it is sent:
// (input_cost x prompt_tokens + output_cost x completion_tokens) / 1000.
func (c *Calculator) EstimateCost(model registry.ModelInfo, promptTokens, completionTokens int) *CostEstimate {
	in, out := c.pricing(model)

	est := &CostEstimate{
		Model:          model.ID,
		Provider:       model.Provider,
		PromptCost:     in * float64(promptTokens) / 1000,
		CompletionCost: out * float64(completionTokens) / 1000,
		Estimated:      true,
	}
	est.TotalCost = est.PromptCost + est.CompletionCost
	return est
}

// ActualCost computes the cost of a completed request from the usage totals
// the provider reported.
func (c *Calculator) ActualCost(model registry.ModelInfo, usage providers.TokenUsage) *CostEstimate {
	in, out := c.pricing(model)

	actual := &CostEstimate{
		Model:          model.ID,
		Provider:       model.Provider,
		PromptCost:     in * float64(usage.PromptTokens) / 1000,
		CompletionCost: out * float64(usage.CompletionTokens) / 1000,
	}
	actual.TotalCost = actual.PromptCost + actual.CompletionCost
	return actual
}

// pricing returns the model's cost row, or the defaults when none is known.
func (c *Calculator) pricing(model registry.ModelInfo) (in, out float64) {
	if model.HasCost {
		return model.InputCostPer1K, model.OutputCostPer1K
	}
	return DefaultInputCostPer1K, DefaultOutputCostPer1K
}
