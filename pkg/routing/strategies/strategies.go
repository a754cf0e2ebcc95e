// Package strategies implements the model selection strategies dispatched by
// the router: direct mapping, content-based, cost-optimized,
// latency-optimized, quality-optimized and load-balanced selection.
//
// Every strategy is gated by its configuration toggle and reports
// Result{Success: false} when disabled or when it has no candidate, letting
// the router move to the next resolution step.
package strategies

import "meridian-hq/janus/pkg/routing"

// All returns one shared instance of every strategy, keyed by name, ready to
// hand to routing.NewRouter.
func All() map[string]routing.Strategy {
	return map[string]routing.Strategy{
		routing.StrategyDirectMapping:    NewDirectMapping(),
		routing.StrategyContentBased:     NewContentBased(),
		routing.StrategyCostOptimized:    NewCostOptimized(),
		routing.StrategyLatencyOptimized: NewLatencyOptimized(),
		routing.StrategyQualityOptimized: NewQualityOptimized(),
		routing.StrategyLoadBalanced:     NewLoadBalanced(nil),
	}
}
