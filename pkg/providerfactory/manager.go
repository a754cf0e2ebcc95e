package providerfactory

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/providers"
)

// Manager holds the live adapter set. It is safe for concurrent use; the
// router and health monitor read it while the admin surface may add or
// remove providers.
type Manager struct {
	mu       sync.RWMutex
	adapters map[string]providers.Adapter
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		adapters: make(map[string]providers.Adapter),
	}
}

// LoadFromConfig builds adapters for every enabled provider. Construction
// failures are collected; providers that do construct stay registered.
func (m *Manager) LoadFromConfig(cfgs map[string]config.ProviderConfig) error {
	var failed []string

	for name, cfg := range cfgs {
		if !cfg.Enabled {
			slog.Debug("provider disabled, skipping", "provider", name)
			continue
		}
		if err := m.Add(name, cfg); err != nil {
			failed = append(failed, name)
			slog.Error("failed to create provider",
				"provider", name,
				"error", err,
			)
		}
	}

	if len(failed) > 0 {
		sort.Strings(failed)
		return fmt.Errorf("failed to create %d provider(s): %v", len(failed), failed)
	}
	return nil
}

// Add creates and registers one adapter. An existing adapter with the same
// name is closed and replaced.
func (m *Manager) Add(name string, cfg config.ProviderConfig) error {
	adapter, err := New(name, cfg)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if existing, ok := m.adapters[name]; ok {
		slog.Warn("replacing existing provider", "provider", name)
		existing.Close()
	}
	m.adapters[name] = adapter
	total := len(m.adapters)
	m.mu.Unlock()

	slog.Info("provider registered", "provider", name, "total_providers", total)
	return nil
}

// Remove unregisters and closes one adapter.
func (m *Manager) Remove(name string) error {
	m.mu.Lock()
	adapter, ok := m.adapters[name]
	if ok {
		delete(m.adapters, name)
	}
	m.mu.Unlock()

	if !ok {
		return &providers.ProviderNotFoundError{Provider: name}
	}
	if err := adapter.Close(); err != nil {
		slog.Error("error closing provider", "provider", name, "error", err)
	}
	return nil
}

// Get returns the adapter for a provider name.
func (m *Manager) Get(name string) (providers.Adapter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	adapter, ok := m.adapters[name]
	if !ok {
		return nil, &providers.ProviderNotFoundError{Provider: name}
	}
	return adapter, nil
}

// All returns a copy of the adapter set.
func (m *Manager) All() map[string]providers.Adapter {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]providers.Adapter, len(m.adapters))
	for name, adapter := range m.adapters {
		out[name] = adapter
	}
	return out
}

// Names returns the registered provider names in sorted order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.adapters))
	for name := range m.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered adapters.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.adapters)
}

// Close closes every adapter and empties the manager.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, adapter := range m.adapters {
		if err := adapter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing provider %q: %w", name, err))
		}
	}
	m.adapters = make(map[string]providers.Adapter)

	if len(errs) > 0 {
		return fmt.Errorf("errors closing providers: %v", errs)
	}
	slog.Info("provider manager closed")
	return nil
}
