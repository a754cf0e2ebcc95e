// Package handlers implements the HTTP endpoints: completions, embeddings,
// model listing and administration, and the health surface. Handlers decode
// the wire shapes, drive the gateway core and serialize canonical results
// back out; every failure becomes an RFC 7807 problem document.
package handlers
