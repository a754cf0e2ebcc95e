package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"meridian-hq/janus/pkg/alerts"
	"meridian-hq/janus/pkg/config"
)

// fakeProber scripts probe outcomes.
type fakeProber struct {
	name string

	mu       sync.Mutex
	failures int // fail the first N probes
	calls    int
}

func (p *fakeProber) Name() string { return p.name }

func (p *fakeProber) IsAvailable(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls <= p.failures {
		return errors.New("probe failed")
	}
	return nil
}

func healthConfig(threshold int) config.HealthConfig {
	return config.HealthConfig{
		CheckIntervalMinutes:           1,
		ProbeTimeout:                   time.Second,
		ConsecutiveFailuresBeforeAlert: threshold,
	}
}

func TestProbeUpdatesHealth(t *testing.T) {
	prober := &fakeProber{name: "openai"}
	m := NewHealthMonitor(healthConfig(3), []Prober{prober}, nil, nil)

	m.probeAll(make(chan struct{}))

	health, ok := m.Health("openai")
	if !ok {
		t.Fatal("no health state after probe")
	}
	if !health.Available {
		t.Error("provider should be available")
	}
	if health.ConsecutiveFailures != 0 {
		t.Errorf("consecutive failures = %d", health.ConsecutiveFailures)
	}
}

func TestAlertExactlyOncePerCrossing(t *testing.T) {
	prober := &fakeProber{name: "openai", failures: 5}
	sink := &captureSink{}
	m := NewHealthMonitor(healthConfig(3), []Prober{prober}, sink, nil)

	stop := make(chan struct{})

	// Five failing probes: the threshold (3) is crossed once.
	for i := 0; i < 5; i++ {
		m.probeAll(stop)
	}
	if got := sink.count(alerts.KindProviderUnavailable); got != 1 {
		t.Fatalf("alerts = %d, want exactly 1", got)
	}

	// A success resets the counter and re-arms the alert.
	m.probeAll(stop)
	health, _ := m.Health("openai")
	if !health.Available || health.ConsecutiveFailures != 0 {
		t.Fatalf("health after recovery = %+v", health)
	}

	// A fresh failure run crosses the threshold again: second alert.
	prober.mu.Lock()
	prober.calls = 0
	prober.mu.Unlock()
	for i := 0; i < 4; i++ {
		m.probeAll(stop)
	}
	if got := sink.count(alerts.KindProviderUnavailable); got != 2 {
		t.Errorf("alerts after second run = %d, want 2", got)
	}
}

func TestNoAlertBelowThreshold(t *testing.T) {
	prober := &fakeProber{name: "openai", failures: 2}
	sink := &captureSink{}
	m := NewHealthMonitor(healthConfig(3), []Prober{prober}, sink, nil)

	stop := make(chan struct{})
	m.probeAll(stop)
	m.probeAll(stop)
	m.probeAll(stop) // success

	if got := sink.count(alerts.KindProviderUnavailable); got != 0 {
		t.Errorf("alerts = %d, want 0 (run shorter than threshold)", got)
	}
}

type captureHealthSink struct {
	mu      sync.Mutex
	records []ProviderHealth
}

func (s *captureHealthSink) RecordHealth(ctx context.Context, health ProviderHealth) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, health)
}

func TestProbeResultsPersisted(t *testing.T) {
	prober := &fakeProber{name: "anthropic", failures: 1}
	records := &captureHealthSink{}
	m := NewHealthMonitor(healthConfig(3), []Prober{prober}, nil, records)

	stop := make(chan struct{})
	m.probeAll(stop)
	m.probeAll(stop)

	records.mu.Lock()
	defer records.mu.Unlock()
	if len(records.records) != 2 {
		t.Fatalf("persisted %d records, want 2", len(records.records))
	}
	if records.records[0].Available || !records.records[1].Available {
		t.Errorf("persisted sequence = %+v", records.records)
	}
}

func TestStartStopIdempotent(t *testing.T) {
	prober := &fakeProber{name: "openai"}
	m := NewHealthMonitor(healthConfig(3), []Prober{prober}, nil, nil)

	m.Start()
	m.Start() // no-op
	m.Stop()
	m.Stop() // no-op

	// Restart works after a full stop.
	m.Start()
	m.Stop()
}

func TestAvailableDefaultsOptimistic(t *testing.T) {
	m := NewHealthMonitor(healthConfig(3), nil, nil, nil)

	if !m.Available("never-probed") {
		t.Error("unprobed provider should count as available")
	}
}
