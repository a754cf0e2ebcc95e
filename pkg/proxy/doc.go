// Package proxy assembles the HTTP surface of the gateway: the client API
// (/v1/completions, /v1/embeddings, /v1/models), the health endpoints, the
// key-guarded admin endpoints, and the Prometheus metrics handler, all
// behind the shared middleware chain.
//
// The package is transport only. Routing, fallback, budgets and recording
// live behind the gateway core; the proxy decodes wire shapes, delegates,
// and serializes results or RFC 7807 problem documents.
package proxy
