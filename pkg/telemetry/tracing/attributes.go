package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Gateway span attribute keys. HTTP attributes keep their OpenTelemetry
// semantic names; gateway-specific ones live under janus.*.
const (
	AttrProvider      = "janus.provider"
	AttrModel         = "janus.model"
	AttrStrategy      = "janus.strategy"
	AttrCorrelationID = "janus.correlation_id"
	AttrUser          = "janus.user"
	AttrAttempt       = "janus.attempt"
	AttrStream        = "janus.stream"

	AttrTokensPrompt     = "janus.tokens.prompt"
	AttrTokensCompletion = "janus.tokens.completion"
	AttrTokensTotal      = "janus.tokens.total"

	AttrCostUSD   = "janus.cost.usd"
	AttrErrorCode = "janus.error_code"
)

// WithRouting annotates a span with a routing decision.
func WithRouting(span trace.Span, provider, model, strategy string) {
	span.SetAttributes(
		attribute.String(AttrProvider, provider),
		attribute.String(AttrModel, model),
		attribute.String(AttrStrategy, strategy),
	)
}

// WithTokens annotates a span with usage totals.
func WithTokens(span trace.Span, prompt, completion, total int) {
	span.SetAttributes(
		attribute.Int(AttrTokensPrompt, prompt),
		attribute.Int(AttrTokensCompletion, completion),
		attribute.Int(AttrTokensTotal, total),
	)
}

// RecordError marks the span failed and attaches the gateway error code.
func RecordError(span trace.Span, err error, code string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if code != "" {
		span.SetAttributes(attribute.String(AttrErrorCode, code))
	}
}
