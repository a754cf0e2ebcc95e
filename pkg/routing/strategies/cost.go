package strategies

import (
	"context"
	"fmt"

	"meridian-hq/janus/pkg/processing/tokens"
	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/registry"
	"meridian-hq/janus/pkg/routing"
)

// CostOptimized selects the cheapest completion-capable model with a known
// cost row, scored by estimated request cost.
type CostOptimized struct {
	estimator tokens.Estimator
}

// NewCostOptimized creates the cost-optimized strategy.
func NewCostOptimized() *CostOptimized {
	return &CostOptimized{estimator: tokens.NewSimpleEstimator()}
}

// Name returns the strategy name.
func (s *CostOptimized) Name() string {
	return routing.StrategyCostOptimized
}

// Route scores every priced completion model by
// (input_cost*est_in + output_cost*est_out)/1000 and picks the minimum.
// ListModels is sorted by id and the comparison is strict, so cost ties
// resolve to the lexicographically smallest id.
func (s *CostOptimized) Route(_ context.Context, req *providers.CompletionRequest, env *routing.Env) routing.Result {
	if !env.Options.EnableCostOptimized {
		return routing.Result{Strategy: s.Name()}
	}

	estIn := float64(s.estimator.EstimatePrompt(req))
	estOut := float64(s.estimator.EstimateCompletion(req))

	var best registry.ModelInfo
	var bestCost float64
	found := false

	for _, m := range env.Models.ListModels() {
		if !m.Capabilities.Completions || !m.HasCost {
			continue
		}
		cost := (m.InputCostPer1K*estIn + m.OutputCostPer1K*estOut) / 1000
		if !found || cost < bestCost {
			best = m
			bestCost = cost
			found = true
		}
	}

	if !found {
		return routing.Result{Strategy: s.Name()}
	}
	return routing.Result{
		Model:    best,
		Strategy: s.Name(),
		Reason:   fmt.Sprintf("estimated cost $%.6f", bestCost),
		Success:  true,
	}
}
