package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// routingMetrics covers routing decisions and fallback attempts.
type routingMetrics struct {
	decisions *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
}

func newRoutingMetrics(ns string, registry *prometheus.Registry) *routingMetrics {
	m := &routingMetrics{
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "routing_decisions_total",
				Help:      "Routing decisions by strategy and outcome.",
			},
			[]string{"strategy", "outcome"},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "fallback_attempts_total",
				Help:      "Fallback attempts by the substitute model tried.",
			},
			[]string{"model"},
		),
	}

	registry.MustRegister(m.decisions, m.fallbacks)
	return m
}

func (m *routingMetrics) recordDecision(strategy string, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.decisions.WithLabelValues(strategy, outcome).Inc()
}

func (m *routingMetrics) recordFallback(model string) {
	m.fallbacks.WithLabelValues(model).Inc()
}
