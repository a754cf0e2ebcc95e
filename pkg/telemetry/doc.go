// Package telemetry groups the gateway's observability subpackages.
//
// Each concern lives in its own subpackage and is wired independently:
//
//   - logging: structured slog logging with secret redaction
//   - metrics: Prometheus collectors and the /metrics handler
//   - tracing: OpenTelemetry tracer setup and span helpers
//
// Provider availability and per-model performance live in pkg/monitor; the
// subpackages here only report what the monitors and the request path feed
// them.
package telemetry
