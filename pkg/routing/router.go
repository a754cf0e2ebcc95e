// Package routing selects the (provider, model) pair that serves each
// request and drives fallback across substitutes when attempts fail.
//
// The router orchestrates a fixed resolution order: alias substitution,
// per-user model overrides, the static direct-mapping table, the configured
// smart-routing strategies, and finally a direct registry lookup. Strategy
// implementations live in the strategies subpackage and are handed to the
// router as a map keyed by strategy name.
package routing

import (
	"context"
	"log/slog"

	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/providers"
)

// Router resolves requests to models. It is safe for concurrent use.
type Router struct {
	models     ModelSource
	perf       PerformanceSource
	options    func() config.RoutingConfig
	strategies map[string]Strategy
	stats      *Stats
	log        *slog.Logger
}

// NewRouter creates a router. options is read once per decision so hot
// reloads take effect between requests; perf may be nil.
func NewRouter(models ModelSource, perf PerformanceSource, options func() config.RoutingConfig, strategies map[string]Strategy) *Router {
	if strategies == nil {
		strategies = make(map[string]Strategy)
	}
	return &Router{
		models:     models,
		perf:       perf,
		options:    options,
		strategies: strategies,
		stats:      NewStats(),
		log:        slog.Default().With("component", "router"),
	}
}

// Route selects a model for a completion request.
//
// Resolution order:
//  1. alias table
//  2. per-user model override
//  3. direct mapping
//  4. smart-routing strategy (user preference, model pin, then heuristics)
//  5. direct registry resolution
func (r *Router) Route(ctx context.Context, req *providers.CompletionRequest) Result {
	r.stats.incTotal()

	opts := r.options()
	env := &Env{Models: r.models, Performance: r.perf, Options: opts}

	resolved := r.resolveOverrides(req.Model, req.User, opts)

	scoped := *req
	scoped.Model = resolved

	if res := r.dispatch(ctx, StrategyDirectMapping, &scoped, env); res.Success {
		return r.accept(req.Model, res)
	}

	if opts.EnableSmartRouting {
		name := r.pickStrategy(&scoped, opts)
		if res := r.dispatch(ctx, name, &scoped, env); res.Success {
			return r.accept(req.Model, res)
		}
	}

	if info, err := r.models.GetModel(resolved); err == nil {
		return r.accept(req.Model, Result{
			Model:    info,
			Strategy: StrategyRegistry,
			Reason:   "registry resolution",
			Success:  true,
		})
	}

	r.stats.incErrors()
	return Result{
		Strategy: StrategyRegistry,
		Err:      &Error{Model: resolved, Reason: "no provider for model"},
	}
}

// RouteEmbedding selects a model for an embedding request. Embeddings skip
// the content, cost and latency strategies: resolution is aliases, overrides,
// direct mapping, then the registry, followed by a capability check.
func (r *Router) RouteEmbedding(ctx context.Context, req *providers.EmbeddingRequest) Result {
	r.stats.incTotal()

	opts := r.options()
	res := r.resolveRestricted(ctx, r.resolveOverrides(req.Model, req.User, opts), opts)
	if !res.Success {
		r.stats.incErrors()
		return res
	}

	// The selected model must actually embed. Mapping entries outside the
	// registry are trusted as configured.
	if info, err := r.models.GetModel(res.Model.ID); err == nil && !info.Capabilities.Embeddings {
		r.stats.incErrors()
		return Result{
			Strategy: res.Strategy,
			Err: &providers.CapabilityError{
				Provider:   res.Model.Provider,
				Model:      res.Model.ID,
				Capability: "embeddings",
			},
		}
	}

	return r.accept(req.Model, res)
}

// ResolveModel resolves a bare model id through the restricted path (aliases,
// direct mapping, registry). The fallback executor uses it to re-resolve
// substitute models between attempts.
func (r *Router) ResolveModel(ctx context.Context, model string) Result {
	opts := r.options()
	resolved := model
	if target, ok := opts.ModelAliases[resolved]; ok && target != "" {
		resolved = target
	}
	return r.resolveRestricted(ctx, resolved, opts)
}

// Stats returns a snapshot of the routing counters.
func (r *Router) Stats() StatsSnapshot {
	return r.stats.Snapshot()
}

// ResetStats zeroes the routing counters.
func (r *Router) ResetStats() {
	r.stats.Reset()
}

// resolveOverrides applies the alias table and the per-user model override.
func (r *Router) resolveOverrides(model, user string, opts config.RoutingConfig) string {
	resolved := model
	if target, ok := opts.ModelAliases[resolved]; ok && target != "" {
		resolved = target
	}
	if user != "" {
		if override, ok := opts.UserModelPreferences[user]; ok && override != "" {
			r.stats.incUserOverride()
			resolved = override
		}
	}
	return resolved
}

// resolveRestricted runs direct mapping then registry lookup for a model id.
func (r *Router) resolveRestricted(ctx context.Context, model string, opts config.RoutingConfig) Result {
	env := &Env{Models: r.models, Performance: r.perf, Options: opts}
	scoped := &providers.CompletionRequest{Model: model}

	if res := r.dispatch(ctx, StrategyDirectMapping, scoped, env); res.Success {
		return res
	}

	if info, err := r.models.GetModel(model); err == nil {
		return Result{
			Model:    info,
			Strategy: StrategyRegistry,
			Reason:   "registry resolution",
			Success:  true,
		}
	}

	return Result{
		Strategy: StrategyRegistry,
		Err:      &Error{Model: model, Reason: "no provider for model"},
	}
}

// pickStrategy determines the smart-routing strategy for a request: user
// preference, then per-model pin, then the heuristic defaults.
func (r *Router) pickStrategy(req *providers.CompletionRequest, opts config.RoutingConfig) string {
	if req.User != "" {
		if name := opts.UserRoutingPreferences[req.User]; name != "" {
			return name
		}
	}
	if name := opts.ModelRoutingStrategies[req.Model]; name != "" {
		return name
	}

	// Heuristic defaults. Low explicit temperature suggests the caller
	// wants precision; a large completion budget dominates cost.
	if req.Temperature != nil && *req.Temperature < 0.3 {
		return StrategyQualityOptimized
	}
	if req.MaxTokens > 1000 {
		return StrategyCostOptimized
	}
	return StrategyLoadBalanced
}

// dispatch routes through one named strategy. Unknown names report failure
// so a misconfigured preference degrades to the next resolution step.
func (r *Router) dispatch(ctx context.Context, name string, req *providers.CompletionRequest, env *Env) Result {
	strategy, ok := r.strategies[name]
	if !ok {
		r.log.Warn("unknown routing strategy", "strategy", name)
		return Result{Strategy: name}
	}
	return strategy.Route(ctx, req, env)
}

// accept records a successful decision and returns it.
func (r *Router) accept(requested string, res Result) Result {
	r.stats.incStrategy(res.Strategy)
	r.stats.incProvider(res.Model.Provider)

	r.log.Debug("routing decision",
		"requested_model", requested,
		"model", res.Model.ID,
		"provider", res.Model.Provider,
		"strategy", res.Strategy,
		"reason", res.Reason,
	)
	return res
}
