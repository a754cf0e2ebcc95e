package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// costMetrics covers USD spend derived from provider usage totals.
type costMetrics struct {
	total      *prometheus.CounterVec
	perRequest *prometheus.HistogramVec
}

func newCostMetrics(ns string, registry *prometheus.Registry) *costMetrics {
	m := &costMetrics{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "cost_usd_total",
				Help:      "Accumulated cost in USD by provider and model.",
			},
			[]string{"provider", "model"},
		),
		perRequest: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "cost_per_request_usd",
				Help:      "Per-request cost distribution in USD.",
				Buckets:   costBuckets,
			},
			[]string{"provider", "model"},
		),
	}

	registry.MustRegister(m.total, m.perRequest)
	return m
}

func (m *costMetrics) record(provider, model string, cost float64) {
	m.total.WithLabelValues(provider, model).Add(cost)
	m.perRequest.WithLabelValues(provider, model).Observe(cost)
}
