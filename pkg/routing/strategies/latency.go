package strategies

import (
	"context"
	"fmt"

	"meridian-hq/janus/pkg/processing/tokens"
	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/registry"
	"meridian-hq/janus/pkg/routing"
)

const (
	// minObservations is how many reported attempts a model needs before
	// its live average replaces the configured default latency.
	minObservations = 10

	// latencySentinelMS scores models with no live metrics and no
	// configured default, keeping them selectable but last.
	latencySentinelMS = 5000
)

// LatencyOptimized selects the completion-capable model with the lowest
// expected latency, preferring live monitor averages over configured
// defaults.
type LatencyOptimized struct {
	estimator tokens.Estimator
}

// NewLatencyOptimized creates the latency-optimized strategy.
func NewLatencyOptimized() *LatencyOptimized {
	return &LatencyOptimized{estimator: tokens.NewSimpleEstimator()}
}

// Name returns the strategy name.
func (s *LatencyOptimized) Name() string {
	return routing.StrategyLatencyOptimized
}

// Route scores each model by its expected latency scaled by
// max(1, est_in_tokens/1000), so heavy prompts discount slow models harder,
// and picks the minimum. Ties resolve to the lexicographically smallest id.
func (s *LatencyOptimized) Route(_ context.Context, req *providers.CompletionRequest, env *routing.Env) routing.Result {
	if !env.Options.EnableLatencyOptimized {
		return routing.Result{Strategy: s.Name()}
	}

	factor := float64(s.estimator.EstimatePrompt(req)) / 1000
	if factor < 1 {
		factor = 1
	}

	var best registry.ModelInfo
	var bestLatency float64
	found := false

	for _, m := range env.Models.ListModels() {
		if !m.Capabilities.Completions {
			continue
		}
		adjusted := s.expectedLatency(env, m) * factor
		if !found || adjusted < bestLatency {
			best = m
			bestLatency = adjusted
			found = true
		}
	}

	if !found {
		return routing.Result{Strategy: s.Name()}
	}
	return routing.Result{
		Model:    best,
		Strategy: s.Name(),
		Reason:   fmt.Sprintf("expected latency %.0fms", bestLatency),
		Success:  true,
	}
}

// expectedLatency returns the live average once enough observations exist,
// then the registry default, then the sentinel.
func (s *LatencyOptimized) expectedLatency(env *routing.Env, m registry.ModelInfo) float64 {
	if env.Performance != nil {
		if p, ok := env.Performance.GetMetrics(m.ID); ok && p.RequestCount >= minObservations {
			return p.AverageLatencyMS()
		}
	}
	if m.DefaultLatencyMS > 0 {
		return float64(m.DefaultLatencyMS)
	}
	return latencySentinelMS
}
