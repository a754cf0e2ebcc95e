// Package providers defines the canonical request/response model, the
// Adapter contract backend integrations implement, and the shared HTTP
// transport they build on.
//
// # Overview
//
// The gateway speaks one canonical dialect internally. Adapters (openai,
// anthropic, cohere, huggingface, azure) translate it to each backend's wire
// format and normalize the responses back. This package holds everything the
// adapters share:
//
//  1. Canonical types - CompletionRequest/Response, chunks, embeddings
//  2. Adapter interface - the five-operation contract per backend
//  3. HTTPBase - pooled client, retries, upstream error mapping
//  4. SSEReader - Server-Sent Events framing for streaming responses
//  5. Error taxonomy - typed errors with stable codes and HTTP statuses
//
// # Errors
//
// Every failure surfaced by an adapter is a typed error implementing Coder.
// CodeOf extracts the stable code, HTTPStatus maps it to the client-visible
// status:
//
//	resp, err := adapter.CreateCompletion(ctx, req)
//	if err != nil {
//		code := providers.CodeOf(err)       // "rate_limit_exceeded"
//		status := providers.HTTPStatus(code) // 429
//	}
//
// Fallback rules filter on the same codes, so an error's code decides both
// what the client sees and whether a substitute model is tried.
//
// # Streaming
//
// CreateCompletionStream returns a channel of chunks. The channel closes when
// the stream finishes; a mid-stream failure arrives as a final chunk with Err
// set. Cancelling the context tears down the upstream connection.
package providers
