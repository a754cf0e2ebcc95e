// Package anthropic implements the Anthropic provider adapter for the
// Messages API.
//
// The Messages API differs from the OpenAI baseline in several ways the
// translation layer absorbs:
//
//   - The system prompt is a dedicated request field. A single system
//     message is extracted from the conversation; more than one is a
//     validation error.
//   - max_tokens is mandatory. Unset values default to 4096.
//   - Conversation turns must start with the user and alternate between
//     user and assistant.
//   - Streaming is event-framed (message_start, content_block_delta,
//     message_delta, message_stop) rather than delta-chunked, and there is
//     no [DONE] sentinel.
//   - Authentication uses the x-api-key header plus an anthropic-version
//     header.
//
// There is no embedding endpoint; CreateEmbedding fails with a capability
// error so the router can substitute an embedding-capable provider. There is
// no model listing endpoint either; ListModels returns a static catalogue.
package anthropic
