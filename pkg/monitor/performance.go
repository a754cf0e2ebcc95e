package monitor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"meridian-hq/janus/pkg/alerts"
	"meridian-hq/janus/pkg/config"
)

// ModelPerformance is a copy-on-read snapshot of one model's counters.
type ModelPerformance struct {
	// Model is the canonical model id.
	Model string `json:"model"`

	// RequestCount is the total number of attempts reported.
	RequestCount int64 `json:"request_count"`

	// SuccessCount and FailureCount partition completed attempts.
	// success + failure <= requests: an attempt is counted before its
	// outcome is known.
	SuccessCount int64 `json:"success_count"`
	FailureCount int64 `json:"failure_count"`

	// TotalLatencyMS is the latency sum across completed attempts.
	TotalLatencyMS int64 `json:"total_latency_ms"`

	// TotalTokens is the token sum across successful attempts.
	TotalTokens int64 `json:"total_tokens"`

	// LastSeen is when the model last served an attempt.
	LastSeen time.Time `json:"last_seen"`
}

// SuccessRate returns successes over completed attempts, or 1 when nothing
// has completed yet.
func (p ModelPerformance) SuccessRate() float64 {
	completed := p.SuccessCount + p.FailureCount
	if completed == 0 {
		return 1
	}
	return float64(p.SuccessCount) / float64(completed)
}

// AverageLatencyMS returns the arithmetic mean latency, or 0 without data.
func (p ModelPerformance) AverageLatencyMS() float64 {
	completed := p.SuccessCount + p.FailureCount
	if completed == 0 {
		return 0
	}
	return float64(p.TotalLatencyMS) / float64(completed)
}

// modelCounters are the live atomic counters behind one model's metrics.
// Updates are commutative increments, so reporting is lock-free and
// snapshots are eventually consistent.
type modelCounters struct {
	requests  atomic.Int64
	successes atomic.Int64
	failures  atomic.Int64
	latencyMS atomic.Int64
	tokens    atomic.Int64
	lastSeen  atomic.Int64 // unix nanos

	// degraded arms the model_performance alert: the alert fires once per
	// crossing and re-arms when the metrics recover.
	degraded atomic.Bool
}

func (c *modelCounters) snapshot(model string) ModelPerformance {
	return ModelPerformance{
		Model:          model,
		RequestCount:   c.requests.Load(),
		SuccessCount:   c.successes.Load(),
		FailureCount:   c.failures.Load(),
		TotalLatencyMS: c.latencyMS.Load(),
		TotalTokens:    c.tokens.Load(),
		LastSeen:       time.Unix(0, c.lastSeen.Load()),
	}
}

// PerformanceMonitor keeps per-model success and latency counters that the
// latency router consumes and the alert thresholds watch. Counters never
// shrink on their own; operators reset them explicitly.
type PerformanceMonitor struct {
	models sync.Map // map[string]*modelCounters

	mu   sync.RWMutex
	opts config.AlertConfig
	sink alerts.Sink
}

// NewPerformanceMonitor creates a performance monitor emitting threshold
// alerts to sink. A nil sink disables alerting.
func NewPerformanceMonitor(opts config.AlertConfig, sink alerts.Sink) *PerformanceMonitor {
	if sink == nil {
		sink = alerts.NopSink{}
	}
	return &PerformanceMonitor{opts: opts, sink: sink}
}

// SetOptions swaps the alert thresholds on a configuration reload.
func (m *PerformanceMonitor) SetOptions(opts config.AlertConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts = opts
}

func (m *PerformanceMonitor) options() config.AlertConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.opts
}

func (m *PerformanceMonitor) counters(model string) *modelCounters {
	if val, ok := m.models.Load(model); ok {
		return val.(*modelCounters)
	}
	val, _ := m.models.LoadOrStore(model, &modelCounters{})
	return val.(*modelCounters)
}

// Report records the outcome of one completion attempt. tokens may be zero
// when the provider reported no usage.
func (m *PerformanceMonitor) Report(model string, success bool, latency time.Duration, tokens int) {
	c := m.counters(model)

	c.requests.Add(1)
	if success {
		c.successes.Add(1)
		if tokens > 0 {
			c.tokens.Add(int64(tokens))
		}
	} else {
		c.failures.Add(1)
	}
	c.latencyMS.Add(latency.Milliseconds())
	c.lastSeen.Store(time.Now().UnixNano())

	m.checkThresholds(model, c)
}

// checkThresholds emits one model_performance alert per degradation
// crossing and re-arms once the metrics recover.
func (m *PerformanceMonitor) checkThresholds(model string, c *modelCounters) {
	opts := m.options()
	if !opts.Enabled {
		return
	}

	snap := c.snapshot(model)
	if snap.RequestCount < opts.MinObservations {
		return
	}

	lowSuccess := snap.SuccessRate() < opts.MinSuccessRate
	slowAverage := snap.AverageLatencyMS() > float64(opts.MaxAvgLatencyMS)

	if !lowSuccess && !slowAverage {
		c.degraded.Store(false)
		return
	}

	if !c.degraded.CompareAndSwap(false, true) {
		return
	}

	m.sink.Send(context.Background(), alerts.Alert{
		Kind:  alerts.KindModelPerformance,
		Model: model,
		Message: fmt.Sprintf("model %s degraded: success rate %.2f, avg latency %.0fms",
			model, snap.SuccessRate(), snap.AverageLatencyMS()),
		Details: map[string]any{
			"success_rate":       snap.SuccessRate(),
			"avg_latency_ms":     snap.AverageLatencyMS(),
			"request_count":      snap.RequestCount,
			"min_success_rate":   opts.MinSuccessRate,
			"max_avg_latency_ms": opts.MaxAvgLatencyMS,
		},
		Time: time.Now(),
	})
}

// GetMetrics returns a snapshot for one model. The second return value is
// false when the model has never reported.
func (m *PerformanceMonitor) GetMetrics(model string) (ModelPerformance, bool) {
	val, ok := m.models.Load(model)
	if !ok {
		return ModelPerformance{Model: model}, false
	}
	return val.(*modelCounters).snapshot(model), true
}

// GetAllMetrics returns snapshots for every model that has reported.
func (m *PerformanceMonitor) GetAllMetrics() map[string]ModelPerformance {
	out := make(map[string]ModelPerformance)
	m.models.Range(func(key, value any) bool {
		model := key.(string)
		out[model] = value.(*modelCounters).snapshot(model)
		return true
	})
	return out
}

// Reset clears all counters. Operator-triggered; counters never shrink
// automatically.
func (m *PerformanceMonitor) Reset() {
	m.models.Range(func(key, value any) bool {
		m.models.Delete(key)
		return true
	})
}
