package providers

import "time"

// Message is a single turn in a conversation. It is provider-agnostic and is
// translated to each backend's wire shape by the adapters.
type Message struct {
	// Role identifies the sender (system, user, assistant, tool).
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`

	// Name optionally names the sender.
	Name string `json:"name,omitempty"`

	// ToolCalls contains tool invocations made by the assistant.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID references the tool call a tool-role message answers.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names a function and carries its arguments as a JSON string.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool declares a callable tool the model may invoke.
type Tool struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes a callable function.
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// TokenUsage tracks token consumption for one request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionRequest is the canonical completion request. Temperature and TopP
// are pointers so that "absent" can be told apart from zero: absent sampling
// parameters are omitted from the provider payload, and routing heuristics
// only inspect values the caller actually set.
type CompletionRequest struct {
	// Model is the requested model id, canonical or aliased.
	Model string `json:"model"`

	// Messages is the conversation history.
	Messages []Message `json:"messages"`

	// Temperature controls randomness. Nil means provider default.
	Temperature *float64 `json:"temperature,omitempty"`

	// TopP controls nucleus sampling. Nil means provider default.
	TopP *float64 `json:"top_p,omitempty"`

	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Stream requests an incremental response.
	Stream bool `json:"stream,omitempty"`

	// Stop sequences halt generation.
	Stop []string `json:"stop,omitempty"`

	// Tools lists the tools the model may call.
	Tools []Tool `json:"tools,omitempty"`

	// ToolChoice controls tool selection: "none", "auto", or a
	// {"type":"function","function":{"name":...}} object.
	ToolChoice any `json:"tool_choice,omitempty"`

	// User identifies the end user for routing preferences and budgets.
	User string `json:"user,omitempty"`

	// Metadata carries internal request context. Never sent upstream.
	Metadata map[string]string `json:"-"`
}

// CompletionResponse is the canonical completion response, normalized from
// the provider wire shapes.
type CompletionResponse struct {
	// ID is the upstream response id, preserved verbatim.
	ID string `json:"id"`

	// Model is the model that produced the response.
	Model string `json:"model"`

	// Provider names the backend that served the request.
	Provider string `json:"provider,omitempty"`

	// Content is the generated text.
	Content string `json:"content"`

	// FinishReason is why generation stopped (stop, length, tool_calls,
	// content_filter).
	FinishReason string `json:"finish_reason"`

	// Usage is the token consumption reported or estimated for the request.
	Usage TokenUsage `json:"usage"`

	// ToolCalls contains tool invocations requested by the model.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// Created is the Unix timestamp of the response.
	Created int64 `json:"created"`
}

// CompletionChunk is one increment of a streaming response. The channel
// carrying chunks is closed after the final chunk; a mid-stream failure is
// delivered as a chunk whose Err field is set.
type CompletionChunk struct {
	// ID is the upstream response id, identical across chunks.
	ID string `json:"id"`

	// Model is the model generating the response.
	Model string `json:"model"`

	// Provider names the backend serving the stream.
	Provider string `json:"provider,omitempty"`

	// Delta is the incremental content.
	Delta string `json:"delta"`

	// FinishReason is set on the final chunk.
	FinishReason string `json:"finish_reason,omitempty"`

	// ToolCalls contains incremental tool-call fragments.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// Usage is set on the final chunk when the backend reports totals.
	Usage *TokenUsage `json:"usage,omitempty"`

	// Created is the Unix timestamp of the chunk.
	Created int64 `json:"created,omitempty"`

	// Err is set when the stream fails mid-flight. Never serialized.
	Err error `json:"-"`
}

// EmbeddingRequest is the canonical embedding request.
type EmbeddingRequest struct {
	// Model is the requested embedding model id.
	Model string `json:"model"`

	// Input is the list of texts to embed.
	Input []string `json:"input"`

	// User identifies the end user.
	User string `json:"user,omitempty"`

	// Metadata carries internal request context. Never sent upstream.
	Metadata map[string]string `json:"-"`
}

// EmbeddingResponse is the canonical embedding response.
type EmbeddingResponse struct {
	// Model is the model that produced the embeddings.
	Model string `json:"model"`

	// Provider names the backend that served the request.
	Provider string `json:"provider,omitempty"`

	// Embeddings holds one vector per input, in input order.
	Embeddings [][]float64 `json:"embeddings"`

	// Usage is the token consumption reported by the backend.
	Usage TokenUsage `json:"usage"`
}

// Health is a point-in-time view of a provider's availability, maintained by
// the base transport and the health monitor.
type Health struct {
	// Available reports whether the last probes succeeded.
	Available bool

	// LastCheck is when availability was last probed or updated.
	LastCheck time.Time

	// LastError is the most recent failure, nil when available.
	LastError error

	// ConsecutiveFailures counts probe failures since the last success.
	ConsecutiveFailures int

	// LastProbeLatency is the duration of the most recent probe.
	LastProbeLatency time.Duration

	// TotalRequests and FailedRequests count requests through the adapter.
	TotalRequests  int64
	FailedRequests int64
}

// Config is the subset of gateway configuration an adapter needs. The
// factory builds it from the config package so adapters stay decoupled from
// the full configuration tree.
type Config struct {
	// Name is the provider identifier (openai, anthropic, cohere,
	// huggingface, azure).
	Name string

	// BaseURL is the API base URL.
	BaseURL string

	// APIKey is the credential sent to the backend.
	APIKey string

	// APIVersion is the version header or query value, for backends that
	// require one (Anthropic, Azure OpenAI).
	APIVersion string

	// CompletionsPath, EmbeddingsPath and ModelsPath override the endpoint
	// paths. Empty means the adapter default.
	CompletionsPath string
	EmbeddingsPath  string
	ModelsPath      string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// MaxRetries is the number of transport-level retries for transient
	// failures.
	MaxRetries int

	// Connection pool sizing.
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}

// Message role constants.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Finish reason constants.
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonToolCalls     = "tool_calls"
	FinishReasonContentFilter = "content_filter"
)

// ToolTypeFunction is the only tool type currently defined.
const ToolTypeFunction = "function"
