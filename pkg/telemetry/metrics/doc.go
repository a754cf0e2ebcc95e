// Package metrics exposes the gateway's Prometheus instrumentation:
// request totals and durations, routing decisions, fallback attempts,
// provider availability and error counts, and USD cost accounting, served
// through a promhttp scrape handler.
package metrics
