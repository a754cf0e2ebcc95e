package filter

import (
	"errors"
	"testing"

	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/providers"
)

func testConfig() config.FilterConfig {
	return config.FilterConfig{
		Enabled: true,
		Rules: []config.FilterRule{
			{Name: "no-secrets", Pattern: `(?i)api[_-]?key\s*[:=]`, Categories: []string{"credentials"}},
			{Name: "no-ssn", Pattern: `\d{3}-\d{2}-\d{4}`, Categories: []string{"pii"}},
		},
	}
}

func TestNewRejectsInvalidPattern(t *testing.T) {
	_, err := New(config.FilterConfig{
		Enabled: true,
		Rules:   []config.FilterRule{{Name: "broken", Pattern: `([`}},
	})
	if err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestCheckCompletionDenies(t *testing.T) {
	f, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := &providers.CompletionRequest{
		Model: "gpt-4",
		Messages: []providers.Message{
			{Role: providers.RoleUser, Content: "my api_key = sk-12345"},
		},
	}

	err = f.CheckCompletion(req)
	if err == nil {
		t.Fatal("expected denial")
	}

	var filtered *providers.ContentFilteredError
	if !errors.As(err, &filtered) {
		t.Fatalf("expected ContentFilteredError, got %T", err)
	}
	if filtered.Rule != "no-secrets" {
		t.Errorf("rule = %q, want no-secrets", filtered.Rule)
	}
	if providers.CodeOf(err) != providers.CodeContentFiltered {
		t.Errorf("code = %q, want %q", providers.CodeOf(err), providers.CodeContentFiltered)
	}
}

func TestCheckCompletionAllowsCleanRequest(t *testing.T) {
	f, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := &providers.CompletionRequest{
		Model: "gpt-4",
		Messages: []providers.Message{
			{Role: providers.RoleUser, Content: "summarize this article"},
		},
	}
	if err := f.CheckCompletion(req); err != nil {
		t.Fatalf("unexpected denial: %v", err)
	}
}

func TestCheckEmbeddingDenies(t *testing.T) {
	f, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := &providers.EmbeddingRequest{
		Model: "openai.text-embedding-3-small",
		Input: []string{"harmless", "ssn 123-45-6789"},
	}

	var filtered *providers.ContentFilteredError
	if err := f.CheckEmbedding(req); !errors.As(err, &filtered) {
		t.Fatalf("expected ContentFilteredError, got %v", err)
	}
	if filtered.Rule != "no-ssn" {
		t.Errorf("rule = %q, want no-ssn", filtered.Rule)
	}
}

func TestDisabledFilterAllowsEverything(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	f, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if f.Enabled() {
		t.Fatal("filter should be disabled")
	}

	req := &providers.CompletionRequest{
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "api_key = leaked"}},
	}
	if err := f.CheckCompletion(req); err != nil {
		t.Fatalf("disabled filter denied a request: %v", err)
	}
}

func TestFirstMatchingRuleWins(t *testing.T) {
	f, err := New(config.FilterConfig{
		Enabled: true,
		Rules: []config.FilterRule{
			{Name: "first", Pattern: `target`},
			{Name: "second", Pattern: `target`},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var filtered *providers.ContentFilteredError
	err = f.CheckCompletion(&providers.CompletionRequest{
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "hit the target"}},
	})
	if !errors.As(err, &filtered) {
		t.Fatalf("expected ContentFilteredError, got %v", err)
	}
	if filtered.Rule != "first" {
		t.Errorf("rule = %q, want first", filtered.Rule)
	}
}
