// Package gateway assembles the full request pipeline behind a single
// facade: registry, provider adapters, router, fallback executor, monitors,
// content filter, usage budgets, the record store and telemetry. The HTTP
// layer and the CLI both drive the same Gateway, so routing and fallback
// behave identically no matter how a request arrives.
//
// A Gateway is built from a config.Source and follows configuration
// reloads: routing, fallback, filter, budget and threshold changes take
// effect on the next request. Changes to the provider set itself require a
// restart, because the health monitor holds the probe set it was built
// with.
package gateway
