package handlers

import (
	"net/http"
	"time"

	"meridian-hq/janus/pkg/monitor"
)

// Health serves the liveness, readiness and provider-health endpoints.
type Health struct {
	source HealthSource
	ready  func() bool
	start  time.Time
}

// NewHealth creates the health handlers. ready reports whether the gateway
// can serve traffic at all; typically "at least one provider adapter is
// registered".
func NewHealth(source HealthSource, ready func() bool) *Health {
	return &Health{source: source, ready: ready, start: time.Now()}
}

// Live serves GET /health: the process is up.
func (h *Health) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.start).Seconds()),
	})
}

// Ready serves GET /ready: 200 when the gateway can route requests, 503
// otherwise, so load balancers keep traffic away from an empty gateway.
func (h *Health) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Providers serves GET /health/providers: the latest probe state per
// provider. Degraded providers do not fail the endpoint; clients read the
// per-provider fields.
func (h *Health) Providers(w http.ResponseWriter, r *http.Request) {
	health := h.source.Health()

	type providerHealth struct {
		Available           bool   `json:"available"`
		LastCheck           string `json:"last_check,omitempty"`
		ConsecutiveFailures int    `json:"consecutive_failures,omitempty"`
		LastError           string `json:"last_error,omitempty"`
		ProbeLatencyMS      int64  `json:"probe_latency_ms,omitempty"`
	}

	out := make(map[string]providerHealth, len(health))
	for name, ph := range health {
		out[name] = providerHealth{
			Available:           ph.Available,
			LastCheck:           formatCheck(ph),
			ConsecutiveFailures: ph.ConsecutiveFailures,
			LastError:           ph.LastError,
			ProbeLatencyMS:      ph.ProbeLatency.Milliseconds(),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"providers": out})
}

func formatCheck(ph monitor.ProviderHealth) string {
	if ph.LastCheck.IsZero() {
		return ""
	}
	return ph.LastCheck.UTC().Format(time.RFC3339)
}
