package strategies

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"

	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/registry"
	"meridian-hq/janus/pkg/routing"
)

// LoadBalanced picks uniformly at random across the ModelMappings entries
// whose resolved model meets the minimum context window.
type LoadBalanced struct {
	intn func(n int) int
}

// NewLoadBalanced creates the load-balancing strategy. intn overrides the
// random source; nil uses the process-local generator.
func NewLoadBalanced(intn func(n int) int) *LoadBalanced {
	if intn == nil {
		intn = rand.IntN
	}
	return &LoadBalanced{intn: intn}
}

// Name returns the strategy name.
func (s *LoadBalanced) Name() string {
	return routing.StrategyLoadBalanced
}

// Route collects the mapping candidates in sorted key order, filters them by
// MinContextWindow and picks one uniformly at random.
func (s *LoadBalanced) Route(_ context.Context, _ *providers.CompletionRequest, env *routing.Env) routing.Result {
	if !env.Options.EnableLoadBalancing {
		return routing.Result{Strategy: s.Name()}
	}

	keys := make([]string, 0, len(env.Options.ModelMappings))
	for key := range env.Options.ModelMappings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var candidates []registry.ModelInfo
	for _, key := range keys {
		info := resolveMapping(env, key, env.Options.ModelMappings[key])
		if info.ContextWindow < env.Options.MinContextWindow {
			continue
		}
		candidates = append(candidates, info)
	}

	if len(candidates) == 0 {
		return routing.Result{Strategy: s.Name()}
	}

	pick := candidates[s.intn(len(candidates))]
	return routing.Result{
		Model:    pick,
		Strategy: s.Name(),
		Reason:   fmt.Sprintf("balanced across %d candidates", len(candidates)),
		Success:  true,
	}
}
