// Package openai implements the OpenAI provider adapter.
//
// The adapter speaks the chat completions, embeddings and models endpoints
// of the OpenAI v1 API. Because the canonical gateway types were modeled on
// this API, the translation layer is thin: pointer-typed sampling parameters
// pass through, tools map field-for-field, and finish reasons normalize onto
// the canonical set.
//
// The package doubles as the engine for OpenAI-compatible backends. Azure
// OpenAI and the HuggingFace inference router reuse the full request cycle
// through NewCompatible, supplying their own endpoint resolution and auth
// headers:
//
//	base := providers.NewHTTPBase(cfg)
//	adapter := openai.NewCompatible(base, endpoints, headers)
//
// Streaming uses Server-Sent Events with stream_options.include_usage set,
// so the final chunk carries real token totals instead of estimates.
package openai
