package openai

import (
	"fmt"
	"sort"

	"meridian-hq/janus/pkg/providers"
)

// Request is the chat completions wire request. The OpenAI shape is the
// baseline the canonical types were modeled on, so the translation is mostly
// field-for-field.
type Request struct {
	Model         string         `json:"model"`
	Messages      []Message      `json:"messages"`
	Temperature   *float64       `json:"temperature,omitempty"`
	TopP          *float64       `json:"top_p,omitempty"`
	MaxTokens     int            `json:"max_tokens,omitempty"`
	Stream        bool           `json:"stream,omitempty"`
	StreamOptions *StreamOptions `json:"stream_options,omitempty"`
	Stop          []string       `json:"stop,omitempty"`
	Tools         []Tool         `json:"tools,omitempty"`
	ToolChoice    any            `json:"tool_choice,omitempty"`
	User          string         `json:"user,omitempty"`
	N             int            `json:"n,omitempty"`
}

// StreamOptions controls streaming extras. IncludeUsage makes the backend
// append a final usage-only chunk.
type StreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// Message is a chat message on the wire.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	Name       string     `json:"name,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a tool invocation on the wire.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries a function name and JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool is a tool declaration on the wire.
type Tool struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes a callable function on the wire.
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Response is the chat completions wire response.
type Response struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is one completion choice.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage is token usage on the wire.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// StreamResponse is one SSE chunk of a streamed completion. A usage-only
// final chunk (stream_options.include_usage) has no choices.
type StreamResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []StreamChoice `json:"choices"`
	Usage   *Usage         `json:"usage,omitempty"`
}

// StreamChoice is one choice inside a stream chunk.
type StreamChoice struct {
	Index        int         `json:"index"`
	Delta        StreamDelta `json:"delta"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// StreamDelta is the incremental content of a stream chunk.
type StreamDelta struct {
	Role      string     `json:"role,omitempty"`
	Content   string     `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// EmbeddingRequest is the embeddings wire request.
type EmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
	User  string   `json:"user,omitempty"`
}

// EmbeddingResponse is the embeddings wire response.
type EmbeddingResponse struct {
	Object string          `json:"object"`
	Model  string          `json:"model"`
	Data   []EmbeddingData `json:"data"`
	Usage  Usage           `json:"usage"`
}

// EmbeddingData is one embedding vector with its input index.
type EmbeddingData struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

// modelList is the models listing wire response.
type modelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// encodeRequest translates the canonical request to the wire shape. Nil
// sampling parameters stay absent from the payload.
func encodeRequest(req *providers.CompletionRequest) *Request {
	wire := &Request{
		Model:       req.Model,
		Messages:    make([]Message, len(req.Messages)),
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
		Stream:      req.Stream,
		Stop:        req.Stop,
		ToolChoice:  req.ToolChoice,
		User:        req.User,
		N:           1,
	}

	for i, msg := range req.Messages {
		wire.Messages[i] = Message{
			Role:       msg.Role,
			Content:    msg.Content,
			Name:       msg.Name,
			ToolCallID: msg.ToolCallID,
			ToolCalls:  encodeToolCalls(msg.ToolCalls),
		}
	}

	if len(req.Tools) > 0 {
		wire.Tools = make([]Tool, len(req.Tools))
		for i, tool := range req.Tools {
			wire.Tools[i] = Tool{
				Type: tool.Type,
				Function: FunctionDefinition{
					Name:        tool.Function.Name,
					Description: tool.Function.Description,
					Parameters:  tool.Function.Parameters,
				},
			}
		}
	}

	return wire
}

func encodeToolCalls(calls []providers.ToolCall) []ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]ToolCall, len(calls))
	for i, tc := range calls {
		out[i] = ToolCall{
			ID:   tc.ID,
			Type: tc.Type,
			Function: FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		}
	}
	return out
}

func decodeToolCalls(calls []ToolCall) []providers.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]providers.ToolCall, len(calls))
	for i, tc := range calls {
		out[i] = providers.ToolCall{
			ID:   tc.ID,
			Type: tc.Type,
			Function: providers.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		}
	}
	return out
}

// decodeResponse normalizes a wire response. N is always 1, so only the
// first choice matters.
func decodeResponse(provider string, resp *Response) (*providers.CompletionResponse, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("response has no choices")
	}

	choice := resp.Choices[0]
	return &providers.CompletionResponse{
		ID:           resp.ID,
		Model:        resp.Model,
		Provider:     provider,
		Content:      choice.Message.Content,
		FinishReason: normalizeFinishReason(choice.FinishReason),
		Usage: providers.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		ToolCalls: decodeToolCalls(choice.Message.ToolCalls),
		Created:   resp.Created,
	}, nil
}

// decodeStreamChunk normalizes one stream chunk. A usage-only chunk (no
// choices) yields a chunk carrying only Usage; a chunk with neither choices
// nor usage yields nil and should be skipped.
func decodeStreamChunk(provider string, chunk *StreamResponse) *providers.CompletionChunk {
	out := &providers.CompletionChunk{
		ID:       chunk.ID,
		Model:    chunk.Model,
		Provider: provider,
		Created:  chunk.Created,
	}

	if chunk.Usage != nil {
		out.Usage = &providers.TokenUsage{
			PromptTokens:     chunk.Usage.PromptTokens,
			CompletionTokens: chunk.Usage.CompletionTokens,
			TotalTokens:      chunk.Usage.TotalTokens,
		}
	}

	if len(chunk.Choices) == 0 {
		if chunk.Usage == nil {
			return nil
		}
		return out
	}

	choice := chunk.Choices[0]
	out.Delta = choice.Delta.Content
	out.FinishReason = normalizeFinishReason(choice.FinishReason)
	out.ToolCalls = decodeToolCalls(choice.Delta.ToolCalls)
	return out
}

// decodeEmbeddings normalizes a wire embedding response, restoring input
// order from the per-vector index.
func decodeEmbeddings(provider string, resp *EmbeddingResponse) *providers.EmbeddingResponse {
	data := make([]EmbeddingData, len(resp.Data))
	copy(data, resp.Data)
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	vectors := make([][]float64, len(data))
	for i, d := range data {
		vectors[i] = d.Embedding
	}

	return &providers.EmbeddingResponse{
		Model:    resp.Model,
		Provider: provider,
		Embeddings: vectors,
		Usage: providers.TokenUsage{
			PromptTokens: resp.Usage.PromptTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}
}

// normalizeFinishReason maps wire finish reasons onto the canonical set.
// Unknown values pass through verbatim.
func normalizeFinishReason(reason string) string {
	switch reason {
	case "stop":
		return providers.FinishReasonStop
	case "length":
		return providers.FinishReasonLength
	case "tool_calls", "function_call":
		return providers.FinishReasonToolCalls
	case "content_filter":
		return providers.FinishReasonContentFilter
	default:
		return reason
	}
}
