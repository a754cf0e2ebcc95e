// Package cohere implements the Cohere provider adapter for the v2 chat and
// embed APIs.
//
// The v2 chat API is message-based like the canonical schema; the
// translation mostly renames fields (p for top_p, stop_sequences for stop)
// and flattens the response's content block list into a single string.
// Finish reasons arrive upper-cased (COMPLETE, MAX_TOKENS, TOOL_CALL) and
// normalize onto the canonical set. Streaming is event-framed with
// message-start / content-delta / message-end events; billed token units
// arrive on message-end.
package cohere
