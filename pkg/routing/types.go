package routing

import (
	"context"

	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/monitor"
	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/registry"
)

// Strategy names. These appear in routing results, statistics and records, so
// they are part of the external vocabulary and must stay stable.
const (
	StrategyDirectMapping    = "DirectMapping"
	StrategyContentBased     = "ContentBased"
	StrategyCostOptimized    = "CostOptimized"
	StrategyLatencyOptimized = "LatencyOptimized"
	StrategyQualityOptimized = "QualityOptimized"
	StrategyLoadBalanced     = "LoadBalanced"

	// StrategyRegistry marks a direct registry resolution, the router's last
	// resort when no mapping or sub-router produced a selection.
	StrategyRegistry = "Registry"
)

// ModelSource is the registry surface the router reads. Implemented by
// *registry.Registry.
type ModelSource interface {
	ListModels() []registry.ModelInfo
	GetModel(id string) (registry.ModelInfo, error)
}

// PerformanceSource supplies live per-model metrics to latency-aware
// strategies. Implemented by *monitor.PerformanceMonitor.
type PerformanceSource interface {
	GetMetrics(model string) (monitor.ModelPerformance, bool)
}

// Env is the read-only environment a strategy evaluates against. It is built
// per routing call from the current configuration epoch, so a reload between
// two requests never splits one decision across epochs.
type Env struct {
	// Models is the model registry view.
	Models ModelSource

	// Performance supplies live metrics. May be nil when no monitor is wired.
	Performance PerformanceSource

	// Options is the routing configuration for this epoch.
	Options config.RoutingConfig
}

// Result is the outcome of one routing decision.
type Result struct {
	// Model is the selected model. Only meaningful when Success is true.
	Model registry.ModelInfo

	// Strategy names the strategy that produced the selection.
	Strategy string

	// Reason is a human-readable explanation of the decision.
	Reason string

	// Success reports whether a model was selected.
	Success bool

	// Err describes the failure when Success is false. A nil Err with
	// Success false means the strategy simply had nothing to offer and the
	// orchestrator should move on.
	Err error
}

// Strategy selects a model for a request. Implementations must be safe for
// concurrent use; the router dispatches to a shared instance.
type Strategy interface {
	// Name returns the strategy name.
	Name() string

	// Route evaluates the request against the environment. A disabled or
	// non-matching strategy returns Result{Success: false}.
	Route(ctx context.Context, req *providers.CompletionRequest, env *Env) Result
}
