package alerts

import (
	"context"
	"log/slog"
	"time"
)

// Kind classifies an alert.
type Kind string

const (
	// KindProviderUnavailable fires when a provider's consecutive probe
	// failures reach the configured threshold.
	KindProviderUnavailable Kind = "provider_unavailable"

	// KindModelPerformance fires when a model's success rate drops below
	// the floor or its average latency exceeds the ceiling.
	KindModelPerformance Kind = "model_performance"

	// KindTokenUsage fires when a user crosses a token budget.
	KindTokenUsage Kind = "token_usage"
)

// Alert is one alert event.
type Alert struct {
	// Kind classifies the alert.
	Kind Kind `json:"kind"`

	// Provider is the provider concerned, when applicable.
	Provider string `json:"provider,omitempty"`

	// Model is the model concerned, when applicable.
	Model string `json:"model,omitempty"`

	// User is the user concerned, for token_usage alerts.
	User string `json:"user,omitempty"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Details carries kind-specific values (thresholds, observed figures).
	Details map[string]any `json:"details,omitempty"`

	// Time is when the alert was raised.
	Time time.Time `json:"time"`
}

// Sink receives alerts. Implementations must not block request handling;
// slow delivery belongs behind a buffer.
type Sink interface {
	Send(ctx context.Context, alert Alert)
}

// LogSink writes alerts to the structured log. It is the default sink.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink that logs alerts at warn level.
func NewLogSink() *LogSink {
	return &LogSink{logger: slog.Default().With("component", "alerts")}
}

// Send implements Sink.
func (s *LogSink) Send(ctx context.Context, alert Alert) {
	s.logger.Warn("alert",
		"kind", string(alert.Kind),
		"provider", alert.Provider,
		"model", alert.Model,
		"user", alert.User,
		"message", alert.Message,
	)
}

// MultiSink fans an alert out to several sinks.
type MultiSink []Sink

// Send implements Sink.
func (s MultiSink) Send(ctx context.Context, alert Alert) {
	for _, sink := range s {
		sink.Send(ctx, alert)
	}
}

// NopSink drops every alert. Used when alerting is disabled.
type NopSink struct{}

// Send implements Sink.
func (NopSink) Send(ctx context.Context, alert Alert) {}

// FuncSink adapts a function to the Sink interface.
type FuncSink func(ctx context.Context, alert Alert)

// Send implements Sink.
func (f FuncSink) Send(ctx context.Context, alert Alert) { f(ctx, alert) }
