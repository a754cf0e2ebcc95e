package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/providers"
)

// Lister is the slice of the adapter contract the registry needs for dynamic
// listings. providers.Adapter satisfies it.
type Lister interface {
	Name() string
	ListModels(ctx context.Context) ([]string, error)
}

// Registry resolves model ids to ModelInfo descriptors. It merges three
// layers: the built-in catalogue, dynamic provider listings, and
// administrator overrides. Overrides win over dynamic entries, which win
// over the catalogue; the overlay is per-field so a listing that only names
// ids does not erase catalogue pricing.
//
// The merged snapshot is immutable; Rebuild and Refresh publish a new one
// under the write lock. Reads take the read lock and copy nothing but the
// slice header, so lookups stay cheap on the request path.
type Registry struct {
	mu sync.RWMutex

	byID     map[string]ModelInfo
	byNative map[string]string // provider-native id -> canonical id
	snapshot Snapshot

	overrides []config.ModelOverride
	listings  *listingCache
	logger    *slog.Logger
}

// New builds a registry from the built-in catalogue and the configured
// overrides. Dynamic listings are merged in later by Refresh.
func New(cfg config.RegistryConfig) *Registry {
	r := &Registry{
		listings: newListingCache(time.Duration(cfg.RefreshIntervalMinutes) * time.Minute),
		logger:   slog.Default().With("component", "registry"),
	}
	r.Rebuild(cfg)
	return r
}

// Rebuild re-runs the merge with a new configuration epoch. Cached dynamic
// listings are kept.
func (r *Registry) Rebuild(cfg config.RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.overrides = cfg.Overrides
	r.listings.setTTL(time.Duration(cfg.RefreshIntervalMinutes) * time.Minute)
	r.rebuildLocked()
}

// UpsertOverride installs or replaces one administrator override at runtime
// and republishes the merged snapshot. The change lasts until the next
// Rebuild from configuration.
func (r *Registry) UpsertOverride(o config.ModelOverride) {
	r.mu.Lock()
	defer r.mu.Unlock()

	replaced := false
	for i := range r.overrides {
		if r.overrides[i].ID == o.ID {
			r.overrides[i] = o
			replaced = true
			break
		}
	}
	if !replaced {
		r.overrides = append(r.overrides, o)
	}
	r.rebuildLocked()
}

// rebuildLocked assembles the merged snapshot. Callers hold the write lock.
func (r *Registry) rebuildLocked() {
	merged := make(map[string]ModelInfo)

	for _, m := range catalogueModels() {
		merged[m.ID] = m
	}

	// Dynamic listings: confirm catalogue entries and add bare entries for
	// ids the catalogue does not know. A bare entry gets conservative
	// completion capabilities and no cost row.
	for provider, native := range r.listings.all() {
		for _, id := range native {
			canonical := provider + "." + id
			if _, ok := merged[canonical]; ok {
				continue
			}
			if existing := findByNative(merged, provider, id); existing != "" {
				continue
			}
			merged[canonical] = ModelInfo{
				ID:              canonical,
				Provider:        provider,
				ProviderModelID: id,
				DisplayName:     id,
				Capabilities:    Capabilities{Completions: true, Streaming: true},
			}
		}
	}

	for _, o := range r.overrides {
		applyOverride(merged, o)
	}

	byNative := make(map[string]string)
	models := make([]ModelInfo, 0, len(merged))
	for _, m := range merged {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })

	// Native-id resolution is deterministic: iterating in canonical order,
	// the lexicographically smallest canonical id claims an ambiguous
	// native id first.
	for _, m := range models {
		if _, taken := byNative[m.ProviderModelID]; !taken {
			byNative[m.ProviderModelID] = m.ID
		}
	}

	byID := make(map[string]ModelInfo, len(models))
	for _, m := range models {
		byID[m.ID] = m
	}

	r.byID = byID
	r.byNative = byNative
	r.snapshot = Snapshot{Models: models, BuiltAt: time.Now()}

	r.logger.Debug("registry rebuilt", "models", len(models), "overrides", len(r.overrides))
}

// findByNative reports the canonical id already claiming a provider-native
// id, or "".
func findByNative(merged map[string]ModelInfo, provider, native string) string {
	for id, m := range merged {
		if m.Provider == provider && m.ProviderModelID == native {
			return id
		}
	}
	return ""
}

// applyOverride overlays one configured override. Zero fields leave the
// underlying value untouched; a non-empty capability list replaces the flags.
func applyOverride(merged map[string]ModelInfo, o config.ModelOverride) {
	if o.ID == "" {
		return
	}

	m, ok := merged[o.ID]
	if !ok {
		m = ModelInfo{ID: o.ID}
	}
	if o.Provider != "" {
		m.Provider = o.Provider
	}
	if m.Provider == "" {
		// An override for an unknown id must name its provider; derive it
		// from the canonical id as a last resort.
		if dot := strings.IndexByte(o.ID, '.'); dot > 0 {
			m.Provider = o.ID[:dot]
		}
	}
	if o.ProviderModelID != "" {
		m.ProviderModelID = o.ProviderModelID
	}
	if m.ProviderModelID == "" {
		if dot := strings.IndexByte(o.ID, '.'); dot > 0 {
			m.ProviderModelID = o.ID[dot+1:]
		}
	}
	if o.DisplayName != "" {
		m.DisplayName = o.DisplayName
	}
	if o.ContextWindow > 0 {
		m.ContextWindow = o.ContextWindow
	}
	if o.InputCostPer1K > 0 || o.OutputCostPer1K > 0 {
		m.InputCostPer1K = o.InputCostPer1K
		m.OutputCostPer1K = o.OutputCostPer1K
		m.HasCost = true
	}
	if o.DefaultLatencyMS > 0 {
		m.DefaultLatencyMS = o.DefaultLatencyMS
	}
	if len(o.Capabilities) > 0 {
		var caps Capabilities
		for _, c := range o.Capabilities {
			switch c {
			case "completions":
				caps.Completions = true
			case "embeddings":
				caps.Embeddings = true
			case "streaming":
				caps.Streaming = true
			case "function_calling":
				caps.FunctionCalling = true
			case "vision":
				caps.Vision = true
			}
		}
		m.Capabilities = caps
	}

	merged[o.ID] = m
}

// ListModels returns every known model sorted by canonical id. The returned
// slice is shared and must not be mutated.
func (r *Registry) ListModels() []ModelInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot.Models
}

// GetModel resolves a model id to its descriptor. It accepts canonical ids
// ("openai.gpt-4") and provider-native ids ("gpt-4"); an ambiguous native id
// resolves to the lexicographically smallest canonical id.
func (r *Registry) GetModel(id string) (ModelInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if m, ok := r.byID[id]; ok {
		return m, nil
	}
	if canonical, ok := r.byNative[id]; ok {
		return r.byID[canonical], nil
	}
	return ModelInfo{}, &providers.ModelNotFoundError{Model: id}
}

// FilterByCapability returns the models whose capabilities include every
// flag set in want, sorted by canonical id.
func (r *Registry) FilterByCapability(want Capabilities) []ModelInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []ModelInfo
	for _, m := range r.snapshot.Models {
		if m.Capabilities.Includes(want) {
			out = append(out, m)
		}
	}
	return out
}

// Snapshot returns the current merged snapshot.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Refresh pulls dynamic listings from every adapter and re-runs the merge.
// Listings are cached per provider; a provider whose cache entry is still
// fresh is not contacted again. A failed listing keeps the previous cache
// entry and never fails the refresh as a whole.
func (r *Registry) Refresh(ctx context.Context, listers []Lister) error {
	var refreshed int
	for _, l := range listers {
		if !r.listings.stale(l.Name()) {
			continue
		}

		ids, err := l.ListModels(ctx)
		if err != nil {
			r.logger.Warn("dynamic model listing failed",
				"provider", l.Name(),
				"error", err,
			)
			continue
		}
		r.listings.put(l.Name(), ids)
		refreshed++
	}

	if refreshed == 0 {
		return ctx.Err()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rebuildLocked()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("registry refresh interrupted: %w", err)
	}
	return nil
}
