// Package server manages the HTTP listener lifecycle for the gateway.
//
// The server is deliberately thin: pkg/proxy builds the handler (routes plus
// middleware), pkg/gateway owns the domain wiring, and this package binds the
// listener, terminates TLS, and coordinates graceful shutdown.
//
// Start blocks until shutdown, which is triggered by context cancellation,
// SIGINT/SIGTERM, or an explicit Shutdown call. During shutdown new
// connections are refused and in-flight requests get up to the configured
// shutdown timeout to finish.
//
// TLS enforces a 1.3 minimum with a fixed modern cipher-suite list.
package server
