package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"meridian-hq/janus/pkg/alerts"
	"meridian-hq/janus/pkg/config"
)

// ProviderHealth is a copy-on-read snapshot of one provider's probe state.
type ProviderHealth struct {
	// Provider is the provider name.
	Provider string `json:"provider"`

	// Available reports whether the last probe succeeded.
	Available bool `json:"available"`

	// LastCheck is when the provider was last probed.
	LastCheck time.Time `json:"last_check"`

	// ConsecutiveFailures counts probe failures since the last success.
	ConsecutiveFailures int `json:"consecutive_failures"`

	// LastError is the most recent probe failure, empty when available.
	LastError string `json:"last_error,omitempty"`

	// ProbeLatency is the duration of the most recent probe.
	ProbeLatency time.Duration `json:"probe_latency"`
}

// Prober is the slice of the adapter contract the health monitor needs.
// providers.Adapter satisfies it.
type Prober interface {
	Name() string
	IsAvailable(ctx context.Context) error
}

// HealthSink receives probe results for best-effort persistence. A failed
// write never aborts the probe loop.
type HealthSink interface {
	RecordHealth(ctx context.Context, health ProviderHealth)
}

// providerState is the live probe state for one provider.
type providerState struct {
	health  ProviderHealth
	alerted bool
}

// HealthMonitor probes every registered provider on a fixed cadence and
// raises one provider_unavailable alert per contiguous failure run that
// reaches the configured threshold. Start and Stop are idempotent; the loop
// stops within one probe interval of Stop.
type HealthMonitor struct {
	interval     time.Duration
	probeTimeout time.Duration
	threshold    int

	probers []Prober
	sink    alerts.Sink
	records HealthSink
	logger  *slog.Logger

	mu      sync.RWMutex
	state   map[string]*providerState
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewHealthMonitor creates a health monitor over the given probers. sink and
// records may be nil.
func NewHealthMonitor(cfg config.HealthConfig, probers []Prober, sink alerts.Sink, records HealthSink) *HealthMonitor {
	if sink == nil {
		sink = alerts.NopSink{}
	}
	return &HealthMonitor{
		interval:     cfg.CheckInterval(),
		probeTimeout: cfg.ProbeTimeout,
		threshold:    cfg.ConsecutiveFailuresBeforeAlert,
		probers:      probers,
		sink:         sink,
		records:      records,
		logger:       slog.Default().With("component", "health_monitor"),
		state:        make(map[string]*providerState),
	}
}

// Start launches the probe loop. Calling Start on a running monitor is a
// no-op. The first probe round runs immediately.
func (m *HealthMonitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	stop, done := m.stop, m.done
	m.mu.Unlock()

	m.logger.Info("health monitor started",
		"interval", m.interval,
		"probe_timeout", m.probeTimeout,
		"providers", len(m.probers),
	)

	go m.loop(stop, done)
}

// Stop terminates the probe loop and waits for it to exit. Calling Stop on
// a stopped monitor is a no-op.
func (m *HealthMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stop)
	done := m.done
	m.mu.Unlock()

	<-done
	m.logger.Info("health monitor stopped")
}

func (m *HealthMonitor) loop(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probeAll(stop)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.probeAll(stop)
		}
	}
}

// probeAll probes every provider once. Each probe has its own timeout, and
// the whole round aborts promptly when the monitor stops.
func (m *HealthMonitor) probeAll(stop chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	for _, p := range m.probers {
		select {
		case <-stop:
			return
		default:
		}
		m.probe(ctx, p)
	}
}

func (m *HealthMonitor) probe(ctx context.Context, p Prober) {
	probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	started := time.Now()
	err := p.IsAvailable(probeCtx)
	latency := time.Since(started)

	health := m.update(p.Name(), err, latency)

	if m.records != nil {
		m.records.RecordHealth(ctx, health)
	}

	if err != nil {
		m.logger.Warn("provider probe failed",
			"provider", p.Name(),
			"consecutive_failures", health.ConsecutiveFailures,
			"error", err,
		)
	} else {
		m.logger.Debug("provider probe succeeded",
			"provider", p.Name(),
			"latency", latency,
		)
	}
}

// update applies one probe result and fires the provider_unavailable alert
// exactly once per threshold crossing.
func (m *HealthMonitor) update(provider string, probeErr error, latency time.Duration) ProviderHealth {
	m.mu.Lock()

	st, ok := m.state[provider]
	if !ok {
		st = &providerState{health: ProviderHealth{Provider: provider}}
		m.state[provider] = st
	}

	st.health.LastCheck = time.Now()
	st.health.ProbeLatency = latency

	var alert *alerts.Alert
	if probeErr == nil {
		st.health.Available = true
		st.health.ConsecutiveFailures = 0
		st.health.LastError = ""
		st.alerted = false
	} else {
		st.health.Available = false
		st.health.ConsecutiveFailures++
		st.health.LastError = probeErr.Error()

		if st.health.ConsecutiveFailures >= m.threshold && !st.alerted {
			st.alerted = true
			alert = &alerts.Alert{
				Kind:     alerts.KindProviderUnavailable,
				Provider: provider,
				Message: fmt.Sprintf("provider %s unavailable after %d consecutive probe failures",
					provider, st.health.ConsecutiveFailures),
				Details: map[string]any{
					"consecutive_failures": st.health.ConsecutiveFailures,
					"threshold":            m.threshold,
					"last_error":           st.health.LastError,
				},
				Time: time.Now(),
			}
		}
	}

	health := st.health
	m.mu.Unlock()

	if alert != nil {
		m.sink.Send(context.Background(), *alert)
	}
	return health
}

// Health returns the probe state for one provider. The second return value
// is false when the provider has never been probed.
func (m *HealthMonitor) Health(provider string) (ProviderHealth, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.state[provider]
	if !ok {
		return ProviderHealth{Provider: provider}, false
	}
	return st.health, true
}

// AllHealth returns the probe state for every provider seen so far.
func (m *HealthMonitor) AllHealth() map[string]ProviderHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]ProviderHealth, len(m.state))
	for name, st := range m.state {
		out[name] = st.health
	}
	return out
}

// Available reports whether a provider's last probe succeeded. Providers
// never probed count as available so the first request is not refused.
func (m *HealthMonitor) Available(provider string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.state[provider]
	if !ok {
		return true
	}
	return st.health.Available
}
