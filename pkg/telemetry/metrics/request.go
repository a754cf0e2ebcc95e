package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// requestMetrics covers the gateway-facing request surface.
type requestMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	tokens   *prometheus.CounterVec
}

func newRequestMetrics(ns string, registry *prometheus.Registry) *requestMetrics {
	m := &requestMetrics{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "requests_total",
				Help:      "Completed gateway requests by provider, model and status.",
			},
			[]string{"provider", "model", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "request_duration_seconds",
				Help:      "Gateway request duration in seconds.",
				Buckets:   durationBuckets,
			},
			[]string{"provider", "model"},
		),
		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "request_tokens_total",
				Help:      "Tokens processed, prompt and completion combined.",
			},
			[]string{"provider", "model"},
		),
	}

	registry.MustRegister(m.total, m.duration, m.tokens)
	return m
}

func (m *requestMetrics) record(provider, model, status string, duration time.Duration, tokens int) {
	m.total.WithLabelValues(provider, model, status).Inc()
	m.duration.WithLabelValues(provider, model).Observe(duration.Seconds())
	if tokens > 0 {
		m.tokens.WithLabelValues(provider, model).Add(float64(tokens))
	}
}
