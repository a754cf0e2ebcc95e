package registry

import (
	"context"
	"errors"
	"testing"

	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/providers"
)

func newTestRegistry(t *testing.T, overrides ...config.ModelOverride) *Registry {
	t.Helper()
	return New(config.RegistryConfig{
		RefreshIntervalMinutes: 60,
		Overrides:              overrides,
	})
}

func TestGetModelCanonical(t *testing.T) {
	r := newTestRegistry(t)

	m, err := r.GetModel("anthropic.claude-3-haiku")
	if err != nil {
		t.Fatalf("GetModel failed: %v", err)
	}
	if m.Provider != "anthropic" {
		t.Errorf("provider = %q, want anthropic", m.Provider)
	}
	if m.ProviderModelID != "claude-3-haiku-20240307" {
		t.Errorf("provider model id = %q", m.ProviderModelID)
	}
	if !m.HasCost || m.InputCostPer1K != 0.00025 {
		t.Errorf("cost row = %v/%v has=%v", m.InputCostPer1K, m.OutputCostPer1K, m.HasCost)
	}
}

func TestGetModelNativeID(t *testing.T) {
	r := newTestRegistry(t)

	m, err := r.GetModel("gpt-4")
	if err != nil {
		t.Fatalf("GetModel by native id failed: %v", err)
	}
	// "gpt-4" is both azure's and openai's native id; azure.gpt-4 sorts
	// first, so the ambiguous native id resolves there deterministically.
	if m.ID != "azure.gpt-4" {
		t.Errorf("ambiguous native id resolved to %q, want azure.gpt-4", m.ID)
	}
}

func TestGetModelNotFound(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.GetModel("no-such-model")
	if err == nil {
		t.Fatal("expected error for unknown model")
	}
	var nf *providers.ModelNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error type = %T, want *ModelNotFoundError", err)
	}
	if providers.CodeOf(err) != providers.CodeModelNotFound {
		t.Errorf("code = %q", providers.CodeOf(err))
	}
}

func TestListModelsSorted(t *testing.T) {
	r := newTestRegistry(t)

	models := r.ListModels()
	if len(models) == 0 {
		t.Fatal("empty registry")
	}
	for i := 1; i < len(models); i++ {
		if models[i-1].ID >= models[i].ID {
			t.Fatalf("models not sorted: %q before %q", models[i-1].ID, models[i].ID)
		}
	}
}

func TestFilterByCapability(t *testing.T) {
	r := newTestRegistry(t)

	embedders := r.FilterByCapability(Capabilities{Embeddings: true})
	if len(embedders) == 0 {
		t.Fatal("no embedding models")
	}
	for _, m := range embedders {
		if !m.Capabilities.Embeddings {
			t.Errorf("model %q has no embeddings capability", m.ID)
		}
	}

	// No Anthropic model serves embeddings.
	for _, m := range embedders {
		if m.Provider == "anthropic" {
			t.Errorf("anthropic model %q listed as embedder", m.ID)
		}
	}
}

func TestOverrideWinsOverCatalogue(t *testing.T) {
	r := newTestRegistry(t, config.ModelOverride{
		ID:              "openai.gpt-4",
		InputCostPer1K:  0.02,
		OutputCostPer1K: 0.04,
		ContextWindow:   32768,
	})

	m, err := r.GetModel("openai.gpt-4")
	if err != nil {
		t.Fatalf("GetModel failed: %v", err)
	}
	if m.InputCostPer1K != 0.02 || m.OutputCostPer1K != 0.04 {
		t.Errorf("override cost not applied: %v/%v", m.InputCostPer1K, m.OutputCostPer1K)
	}
	if m.ContextWindow != 32768 {
		t.Errorf("override context window not applied: %d", m.ContextWindow)
	}
	// Untouched fields keep catalogue values.
	if m.ProviderModelID != "gpt-4" {
		t.Errorf("provider model id clobbered: %q", m.ProviderModelID)
	}
}

func TestOverrideAddsNewModel(t *testing.T) {
	r := newTestRegistry(t, config.ModelOverride{
		ID:              "openai.gpt-4-custom",
		ProviderModelID: "ft:gpt-4:acme",
		ContextWindow:   8192,
		InputCostPer1K:  0.05,
		OutputCostPer1K: 0.1,
		Capabilities:    []string{"completions", "streaming"},
	})

	m, err := r.GetModel("openai.gpt-4-custom")
	if err != nil {
		t.Fatalf("GetModel failed: %v", err)
	}
	if m.Provider != "openai" {
		t.Errorf("provider derived = %q", m.Provider)
	}
	if m.ProviderModelID != "ft:gpt-4:acme" {
		t.Errorf("provider model id = %q", m.ProviderModelID)
	}
	if !m.Capabilities.Completions || m.Capabilities.Embeddings {
		t.Errorf("capabilities = %+v", m.Capabilities)
	}
}

type fakeLister struct {
	name string
	ids  []string
	err  error

	calls int
}

func (f *fakeLister) Name() string { return f.name }

func (f *fakeLister) ListModels(ctx context.Context) ([]string, error) {
	f.calls++
	return f.ids, f.err
}

func TestRefreshMergesDynamicListing(t *testing.T) {
	r := newTestRegistry(t)
	lister := &fakeLister{name: "openai", ids: []string{"gpt-4", "gpt-4.5-preview"}}

	if err := r.Refresh(context.Background(), []Lister{lister}); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	// Known native id confirms the catalogue entry; pricing survives.
	m, err := r.GetModel("openai.gpt-4")
	if err != nil {
		t.Fatalf("GetModel failed: %v", err)
	}
	if !m.HasCost {
		t.Error("dynamic listing erased catalogue cost row")
	}

	// Unknown native id appears as a bare entry.
	m, err = r.GetModel("openai.gpt-4.5-preview")
	if err != nil {
		t.Fatalf("dynamic model not merged: %v", err)
	}
	if m.HasCost {
		t.Error("bare dynamic entry should have no cost row")
	}
	if !m.Capabilities.Completions {
		t.Error("bare dynamic entry should default to completions")
	}
}

func TestRefreshUsesCacheWithinTTL(t *testing.T) {
	r := newTestRegistry(t)
	lister := &fakeLister{name: "openai", ids: []string{"gpt-4"}}

	if err := r.Refresh(context.Background(), []Lister{lister}); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if err := r.Refresh(context.Background(), []Lister{lister}); err != nil {
		t.Fatalf("second Refresh failed: %v", err)
	}
	if lister.calls != 1 {
		t.Errorf("lister called %d times, want 1 (TTL cache)", lister.calls)
	}
}

func TestRefreshToleratesListingFailure(t *testing.T) {
	r := newTestRegistry(t)
	before := len(r.ListModels())

	failing := &fakeLister{name: "openai", err: errors.New("boom")}
	if err := r.Refresh(context.Background(), []Lister{failing}); err != nil {
		t.Fatalf("Refresh should tolerate listing failure, got %v", err)
	}
	if got := len(r.ListModels()); got != before {
		t.Errorf("model count changed on failed listing: %d -> %d", before, got)
	}
}
