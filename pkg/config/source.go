package config

import (
	"sync"
	"sync/atomic"
)

// Source publishes configuration epochs. Readers call Current to obtain an
// immutable snapshot; in-flight requests keep whatever snapshot they loaded
// even when a newer epoch is published underneath them.
type Source struct {
	current atomic.Pointer[Config]

	mu        sync.Mutex
	epoch     uint64
	listeners []func(*Config)
}

// NewSource creates a Source seeded with the given configuration.
func NewSource(cfg *Config) *Source {
	s := &Source{}
	s.current.Store(cfg)
	s.epoch = 1
	return s
}

// Current returns the latest published configuration snapshot. The returned
// value must be treated as read-only.
func (s *Source) Current() *Config {
	return s.current.Load()
}

// Epoch returns the number of configurations published so far.
func (s *Source) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Publish installs cfg as the current snapshot and notifies listeners.
// Listeners run synchronously on the publishing goroutine.
func (s *Source) Publish(cfg *Config) {
	s.mu.Lock()
	s.current.Store(cfg)
	s.epoch++
	listeners := make([]func(*Config), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
}

// OnChange registers fn to run each time a new configuration is published.
func (s *Source) OnChange(fn func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
