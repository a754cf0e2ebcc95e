package strategies

import (
	"context"

	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/routing"
)

// flagshipModels is the fixed quality preference order. The first id present
// in the registry wins.
var flagshipModels = []string{
	"openai.gpt-4",
	"anthropic.claude-3-opus",
	"openai.gpt-4-turbo",
	"anthropic.claude-3-sonnet",
	"cohere.command-r-plus",
}

// QualityOptimized selects the first registered flagship model.
type QualityOptimized struct{}

// NewQualityOptimized creates the quality-optimized strategy.
func NewQualityOptimized() *QualityOptimized {
	return &QualityOptimized{}
}

// Name returns the strategy name.
func (s *QualityOptimized) Name() string {
	return routing.StrategyQualityOptimized
}

// Route walks the flagship list and returns the first registered
// completion-capable model, or failure when none is registered.
func (s *QualityOptimized) Route(_ context.Context, _ *providers.CompletionRequest, env *routing.Env) routing.Result {
	if !env.Options.EnableQualityOptimized {
		return routing.Result{Strategy: s.Name()}
	}

	for _, id := range flagshipModels {
		info, err := env.Models.GetModel(id)
		if err != nil || !info.Capabilities.Completions {
			continue
		}
		return routing.Result{
			Model:    info,
			Strategy: s.Name(),
			Reason:   "flagship model preference",
			Success:  true,
		}
	}
	return routing.Result{Strategy: s.Name()}
}
