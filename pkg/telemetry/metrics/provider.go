package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// providerMetrics covers upstream availability and failures.
type providerMetrics struct {
	available *prometheus.GaugeVec
	probes    *prometheus.HistogramVec
	errors    *prometheus.CounterVec
}

func newProviderMetrics(ns string, registry *prometheus.Registry) *providerMetrics {
	m := &providerMetrics{
		available: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: ns,
				Name:      "provider_available",
				Help:      "Provider availability from the health probe (1 available, 0 not).",
			},
			[]string{"provider"},
		),
		probes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "provider_probe_duration_seconds",
				Help:      "Health probe round-trip time in seconds.",
				Buckets:   durationBuckets,
			},
			[]string{"provider"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "provider_errors_total",
				Help:      "Provider failures by error code.",
			},
			[]string{"provider", "code"},
		),
	}

	registry.MustRegister(m.available, m.probes, m.errors)
	return m
}

func (m *providerMetrics) setAvailable(provider string, available bool) {
	v := 0.0
	if available {
		v = 1.0
	}
	m.available.WithLabelValues(provider).Set(v)
}

func (m *providerMetrics) recordProbe(provider string, duration time.Duration) {
	m.probes.WithLabelValues(provider).Observe(duration.Seconds())
}

func (m *providerMetrics) recordError(provider, code string) {
	m.errors.WithLabelValues(provider, code).Inc()
}
