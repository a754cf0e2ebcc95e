// Package middleware holds the HTTP middleware chain: panic recovery,
// request logging, correlation ids, CORS and per-request timeouts. The
// server applies them outermost-first as
//
//	recovery → logging → correlation → cors → timeout → handler
//
// so a panic anywhere below still produces a problem document, and every
// log line carries the correlation id.
package middleware
