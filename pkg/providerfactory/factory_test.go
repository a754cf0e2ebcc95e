package providerfactory

import (
	"errors"
	"testing"
	"time"

	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/providers"
)

func testProviderConfig() config.ProviderConfig {
	return config.ProviderConfig{
		Enabled: true,
		APIKey:  "test-key",
		APIURL:  "http://localhost:1",
		Timeout: time.Second,
	}
}

func TestNewAllKinds(t *testing.T) {
	for _, name := range config.KnownProviders {
		t.Run(name, func(t *testing.T) {
			adapter, err := New(name, testProviderConfig())
			if err != nil {
				t.Fatalf("New(%q): %v", name, err)
			}
			defer adapter.Close()

			if adapter.Name() != name {
				t.Errorf("Name() = %q", adapter.Name())
			}
		})
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("replicate", testProviderConfig())
	var cfgErr *providers.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want ConfigError", err)
	}
}

func TestNewMissingAPIKey(t *testing.T) {
	cfg := testProviderConfig()
	cfg.APIKey = ""
	if _, err := New("openai", cfg); err == nil {
		t.Fatal("New accepted a provider without credentials")
	}
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()
	defer m.Close()

	if err := m.Add("openai", testProviderConfig()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := m.Add("anthropic", testProviderConfig()); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if m.Count() != 2 {
		t.Errorf("Count = %d", m.Count())
	}
	names := m.Names()
	if len(names) != 2 || names[0] != "anthropic" || names[1] != "openai" {
		t.Errorf("Names = %v, want sorted", names)
	}

	if _, err := m.Get("openai"); err != nil {
		t.Errorf("Get(openai): %v", err)
	}
	_, err := m.Get("cohere")
	var notFound *providers.ProviderNotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Get(cohere) error = %v, want ProviderNotFoundError", err)
	}

	if err := m.Remove("openai"); err != nil {
		t.Errorf("Remove: %v", err)
	}
	if m.Count() != 1 {
		t.Errorf("Count after remove = %d", m.Count())
	}
	if err := m.Remove("openai"); err == nil {
		t.Error("Remove of absent provider succeeded")
	}
}

func TestLoadFromConfigSkipsDisabled(t *testing.T) {
	m := NewManager()
	defer m.Close()

	disabled := testProviderConfig()
	disabled.Enabled = false

	err := m.LoadFromConfig(map[string]config.ProviderConfig{
		"openai":    testProviderConfig(),
		"anthropic": disabled,
	})
	if err != nil {
		t.Fatalf("LoadFromConfig: %v", err)
	}
	if m.Count() != 1 {
		t.Errorf("Count = %d, disabled provider was constructed", m.Count())
	}
}

func TestLoadFromConfigCollectsFailures(t *testing.T) {
	m := NewManager()
	defer m.Close()

	broken := testProviderConfig()
	broken.APIKey = ""

	err := m.LoadFromConfig(map[string]config.ProviderConfig{
		"openai": testProviderConfig(),
		"cohere": broken,
	})
	if err == nil {
		t.Fatal("LoadFromConfig ignored a construction failure")
	}
	// The working provider still registered.
	if m.Count() != 1 {
		t.Errorf("Count = %d", m.Count())
	}
}
