package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"meridian-hq/janus/pkg/alerts"
)

// AlertSink wraps another sink and counts alerts by kind.
type AlertSink struct {
	next  alerts.Sink
	total *prometheus.CounterVec
}

// NewAlertSink creates the counting wrapper. next may be nil.
func (c *Collector) NewAlertSink(next alerts.Sink) *AlertSink {
	if next == nil {
		next = alerts.NopSink{}
	}
	total := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: c.ns,
			Name:      "alerts_total",
			Help:      "Alerts raised by kind.",
		},
		[]string{"kind"},
	)
	c.registry.MustRegister(total)
	return &AlertSink{next: next, total: total}
}

// Send implements alerts.Sink.
func (s *AlertSink) Send(ctx context.Context, alert alerts.Alert) {
	s.total.WithLabelValues(string(alert.Kind)).Inc()
	s.next.Send(ctx, alert)
}
