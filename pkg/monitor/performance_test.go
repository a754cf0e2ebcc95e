package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"meridian-hq/janus/pkg/alerts"
	"meridian-hq/janus/pkg/config"
)

// captureSink collects alerts for assertions.
type captureSink struct {
	mu     sync.Mutex
	alerts []alerts.Alert
}

func (s *captureSink) Send(ctx context.Context, alert alerts.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alert)
}

func (s *captureSink) count(kind alerts.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.alerts {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

func TestReportAndSnapshot(t *testing.T) {
	m := NewPerformanceMonitor(config.AlertConfig{}, nil)

	m.Report("openai.gpt-4", true, 200*time.Millisecond, 50)
	m.Report("openai.gpt-4", true, 400*time.Millisecond, 70)
	m.Report("openai.gpt-4", false, 600*time.Millisecond, 0)

	snap, ok := m.GetMetrics("openai.gpt-4")
	if !ok {
		t.Fatal("no metrics for reported model")
	}
	if snap.RequestCount != 3 || snap.SuccessCount != 2 || snap.FailureCount != 1 {
		t.Errorf("counters = %d/%d/%d", snap.RequestCount, snap.SuccessCount, snap.FailureCount)
	}
	if snap.SuccessCount+snap.FailureCount > snap.RequestCount {
		t.Error("invariant success+failure <= requests violated")
	}
	if got := snap.AverageLatencyMS(); got != 400 {
		t.Errorf("AverageLatencyMS = %v, want 400", got)
	}
	if snap.TotalTokens != 120 {
		t.Errorf("TotalTokens = %d, want 120", snap.TotalTokens)
	}
}

func TestGetMetricsUnknownModel(t *testing.T) {
	m := NewPerformanceMonitor(config.AlertConfig{}, nil)

	if _, ok := m.GetMetrics("never-seen"); ok {
		t.Error("unknown model reported metrics")
	}
}

func TestConcurrentReports(t *testing.T) {
	m := NewPerformanceMonitor(config.AlertConfig{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Report("m", j%2 == 0, time.Millisecond, 1)
			}
		}()
	}
	wg.Wait()

	snap, _ := m.GetMetrics("m")
	if snap.RequestCount != 1000 {
		t.Errorf("RequestCount = %d, want 1000", snap.RequestCount)
	}
	if snap.SuccessCount != 500 || snap.FailureCount != 500 {
		t.Errorf("success/failure = %d/%d", snap.SuccessCount, snap.FailureCount)
	}
}

func TestPerformanceAlertOncePerCrossing(t *testing.T) {
	sink := &captureSink{}
	m := NewPerformanceMonitor(config.AlertConfig{
		Enabled:         true,
		MinSuccessRate:  0.9,
		MaxAvgLatencyMS: 60_000,
		MinObservations: 5,
	}, sink)

	// Five failures: below the floor, one alert.
	for i := 0; i < 5; i++ {
		m.Report("m", false, time.Millisecond, 0)
	}
	if got := sink.count(alerts.KindModelPerformance); got != 1 {
		t.Fatalf("alerts after degradation = %d, want 1", got)
	}

	// Still degraded: no further alert.
	m.Report("m", false, time.Millisecond, 0)
	if got := sink.count(alerts.KindModelPerformance); got != 1 {
		t.Fatalf("repeat alert while degraded: %d", got)
	}

	// Recover the success rate above the floor, then degrade again: the
	// alert re-arms and fires a second time.
	for i := 0; i < 60; i++ {
		m.Report("m", true, time.Millisecond, 0)
	}
	for i := 0; i < 20; i++ {
		m.Report("m", false, time.Millisecond, 0)
	}
	if got := sink.count(alerts.KindModelPerformance); got != 2 {
		t.Errorf("alerts after recovery and re-degradation = %d, want 2", got)
	}
}

func TestReset(t *testing.T) {
	m := NewPerformanceMonitor(config.AlertConfig{}, nil)
	m.Report("m", true, time.Millisecond, 0)

	m.Reset()

	if _, ok := m.GetMetrics("m"); ok {
		t.Error("metrics survived reset")
	}
	if len(m.GetAllMetrics()) != 0 {
		t.Error("GetAllMetrics not empty after reset")
	}
}
