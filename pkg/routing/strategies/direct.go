package strategies

import (
	"context"

	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/registry"
	"meridian-hq/janus/pkg/routing"
)

// DirectMapping resolves the request model through the static ModelMappings
// table. The router tries it before any smart strategy, so a configured
// mapping always wins.
type DirectMapping struct{}

// NewDirectMapping creates the direct-mapping strategy.
func NewDirectMapping() *DirectMapping {
	return &DirectMapping{}
}

// Name returns the strategy name.
func (s *DirectMapping) Name() string {
	return routing.StrategyDirectMapping
}

// Route looks the request model up in the mapping table.
func (s *DirectMapping) Route(_ context.Context, req *providers.CompletionRequest, env *routing.Env) routing.Result {
	mapping, ok := env.Options.ModelMappings[req.Model]
	if !ok {
		return routing.Result{Strategy: s.Name()}
	}
	return routing.Result{
		Model:    resolveMapping(env, req.Model, mapping),
		Strategy: s.Name(),
		Reason:   "static model mapping",
		Success:  true,
	}
}

// resolveMapping enriches a mapping entry from the registry when the target
// model is registered; otherwise the entry is used as configured. Mappings
// may legitimately point at models the catalogue does not know (private
// Azure deployments, new releases).
func resolveMapping(env *routing.Env, requested string, m config.ModelMapping) registry.ModelInfo {
	if info, err := env.Models.GetModel(m.Model); err == nil && info.Provider == m.Provider {
		return info
	}
	if info, err := env.Models.GetModel(m.Provider + "." + m.Model); err == nil {
		return info
	}
	return registry.ModelInfo{
		ID:              requested,
		Provider:        m.Provider,
		ProviderModelID: m.Model,
	}
}
