// Package types defines the HTTP wire shapes of the client API: request
// envelopes, the choice-based response form, and the RFC 7807 problem
// document used for every error response.
//
// The wire layer is a thin projection of the canonical providers types. The
// one deliberate difference is the response shape: clients receive an
// ordered choices list (message for full responses, delta for stream
// chunks) rather than the flattened internal form.
package types
