// Package tracing wires OpenTelemetry spans through the gateway: one span
// per client request, child spans for routing and each provider attempt,
// exported over OTLP gRPC with W3C context propagation. Disabled tracing
// costs a no-op span.
package tracing
