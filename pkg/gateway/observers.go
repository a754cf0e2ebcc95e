package gateway

import (
	"context"

	"meridian-hq/janus/pkg/monitor"
	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/records/recorder"
	"meridian-hq/janus/pkg/routing"
	"meridian-hq/janus/pkg/telemetry/metrics"
)

// attemptFanout multiplexes provider attempts to several observers.
type attemptFanout []routing.AttemptObserver

func (f attemptFanout) ObserveAttempt(ctx context.Context, att routing.Attempt) {
	for _, obs := range f {
		obs.ObserveAttempt(ctx, att)
	}
}

// metricsObserver translates provider attempts into collector updates.
type metricsObserver struct {
	collector *metrics.Collector
}

func (o *metricsObserver) ObserveAttempt(ctx context.Context, att routing.Attempt) {
	o.collector.RecordRouting(att.Strategy, att.Err == nil)
	if att.Index > 1 {
		o.collector.RecordFallback(att.Model.ID)
	}
	if att.Err != nil {
		o.collector.RecordProviderError(att.Model.Provider, providers.CodeOf(att.Err))
	}
}

// healthFanout delivers probe results to the record store and the gauges.
type healthFanout struct {
	recorder  *recorder.Recorder
	collector *metrics.Collector
}

func (h *healthFanout) RecordHealth(ctx context.Context, health monitor.ProviderHealth) {
	if h.recorder != nil {
		h.recorder.RecordHealth(ctx, health)
	}
	h.collector.SetProviderAvailable(health.Provider, health.Available)
	h.collector.RecordProbe(health.Provider, health.ProbeLatency)
}
