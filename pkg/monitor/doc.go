// Package monitor tracks provider availability and per-model performance.
//
// The PerformanceMonitor keeps lock-free per-model counters (requests,
// successes, failures, latency sums) updated after every completion attempt
// and exposes copy-on-read snapshots that the latency-optimized router
// consumes. The HealthMonitor probes each provider on a fixed cadence and
// raises a provider_unavailable alert once per contiguous failure run that
// reaches the configured threshold.
package monitor
