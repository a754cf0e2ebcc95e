// Package recorder is the asynchronous write path into the record store.
//
// The recorder sits behind three narrow interfaces: it observes provider
// attempts from the fallback executor, health probes from the health monitor
// and alerts from the alert sink, and turns each into a stored record. Writes
// go through a buffered channel drained by one worker goroutine; when the
// buffer is full the record is dropped and counted, never blocking a request.
//
// Request-side context (correlation id, user, prompt excerpt) travels to the
// recorder through WithRequestInfo on the request context.
package recorder
