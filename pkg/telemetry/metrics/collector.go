package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"meridian-hq/janus/pkg/config"
)

// Collector owns the gateway's Prometheus registry and the metric families
// for requests, routing, providers and cost. All record methods are cheap
// and safe for concurrent use; when metrics are disabled they are no-ops.
type Collector struct {
	cfg      config.MetricsConfig
	ns       string
	registry *prometheus.Registry

	request  *requestMetrics
	routing  *routingMetrics
	provider *providerMetrics
	cost     *costMetrics
}

// Histogram buckets sized for LLM traffic: request latencies run 100ms-30s,
// costs run fractions of a cent to dollars.
var (
	durationBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30}
	costBuckets     = []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}
)

// NewCollector creates a collector. A nil registry gets a fresh one, so test
// collectors never collide.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = "janus"
	}

	return &Collector{
		cfg:      cfg,
		ns:       ns,
		registry: registry,
		request:  newRequestMetrics(ns, registry),
		routing:  newRoutingMetrics(ns, registry),
		provider: newProviderMetrics(ns, registry),
		cost:     newCostMetrics(ns, registry),
	}
}

// Enabled reports whether metrics are switched on.
func (c *Collector) Enabled() bool { return c.cfg.Enabled }

// Registry exposes the underlying registry for additional collectors.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// RecordRequest records one completed gateway request.
func (c *Collector) RecordRequest(provider, model, status string, duration time.Duration, tokens int, cost float64) {
	if !c.cfg.Enabled {
		return
	}
	c.request.record(provider, model, status, duration, tokens)
	if cost > 0 {
		c.cost.record(provider, model, cost)
	}
}

// RecordRouting records one routing decision by strategy.
func (c *Collector) RecordRouting(strategy string, success bool) {
	if !c.cfg.Enabled {
		return
	}
	c.routing.recordDecision(strategy, success)
}

// RecordFallback records one fallback attempt onto a substitute model.
func (c *Collector) RecordFallback(model string) {
	if !c.cfg.Enabled {
		return
	}
	c.routing.recordFallback(model)
}

// SetProviderAvailable records a provider's probed availability.
func (c *Collector) SetProviderAvailable(provider string, available bool) {
	if !c.cfg.Enabled {
		return
	}
	c.provider.setAvailable(provider, available)
}

// RecordProbe records one health probe round trip.
func (c *Collector) RecordProbe(provider string, duration time.Duration) {
	if !c.cfg.Enabled {
		return
	}
	c.provider.recordProbe(provider, duration)
}

// RecordProviderError counts one provider failure by error code.
func (c *Collector) RecordProviderError(provider, code string) {
	if !c.cfg.Enabled {
		return
	}
	c.provider.recordError(provider, code)
}
