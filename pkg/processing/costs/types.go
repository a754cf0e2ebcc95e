package costs

// CostEstimate is the USD cost breakdown for one request.
type CostEstimate struct {
	// Model is the canonical model id the estimate was computed for.
	Model string

	// Provider is the provider name.
	Provider string

	// PromptCost is the cost of the prompt tokens.
	PromptCost float64

	// CompletionCost is the cost of the completion tokens.
	CompletionCost float64

	// TotalCost is PromptCost + CompletionCost.
	TotalCost float64

	// Estimated is true for pre-request estimates and false for costs
	// derived from the usage totals a provider reported.
	Estimated bool
}
