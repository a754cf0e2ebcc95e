package types

import "meridian-hq/janus/pkg/providers"

// CompletionResponse is the wire form of a completion: ordered choices plus
// usage. Non-streaming responses carry exactly one choice with a message;
// stream chunks carry one choice with a delta.
type CompletionResponse struct {
	ID       string   `json:"id"`
	Object   string   `json:"object"`
	Created  int64    `json:"created"`
	Model    string   `json:"model"`
	Provider string   `json:"provider,omitempty"`
	Choices  []Choice `json:"choices"`
	Usage    *Usage   `json:"usage,omitempty"`
}

// Choice is one response alternative.
type Choice struct {
	Index        int      `json:"index"`
	Message      *Message `json:"message,omitempty"`
	Delta        *Message `json:"delta,omitempty"`
	FinishReason string   `json:"finish_reason,omitempty"`
}

// Message is the wire message shape.
type Message struct {
	Role      string               `json:"role,omitempty"`
	Content   string               `json:"content"`
	ToolCalls []providers.ToolCall `json:"tool_calls,omitempty"`
}

// Usage is the wire token-usage shape.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// FromCompletion projects a canonical response onto the wire form.
func FromCompletion(resp *providers.CompletionResponse) *CompletionResponse {
	return &CompletionResponse{
		ID:       resp.ID,
		Object:   "completion",
		Created:  resp.Created,
		Model:    resp.Model,
		Provider: resp.Provider,
		Choices: []Choice{{
			Message: &Message{
				Role:      providers.RoleAssistant,
				Content:   resp.Content,
				ToolCalls: resp.ToolCalls,
			},
			FinishReason: resp.FinishReason,
		}},
		Usage: &Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
}

// FromChunk projects a canonical stream chunk onto the wire form. Usage is
// present only on the final chunk when the backend reported totals.
func FromChunk(chunk *providers.CompletionChunk) *CompletionResponse {
	wire := &CompletionResponse{
		ID:       chunk.ID,
		Object:   "completion.chunk",
		Created:  chunk.Created,
		Model:    chunk.Model,
		Provider: chunk.Provider,
		Choices: []Choice{{
			Delta: &Message{
				Content:   chunk.Delta,
				ToolCalls: chunk.ToolCalls,
			},
			FinishReason: chunk.FinishReason,
		}},
	}
	if chunk.Usage != nil {
		wire.Usage = &Usage{
			PromptTokens:     chunk.Usage.PromptTokens,
			CompletionTokens: chunk.Usage.CompletionTokens,
			TotalTokens:      chunk.Usage.TotalTokens,
		}
	}
	return wire
}

// EmbeddingResponse is the wire form of an embedding response.
type EmbeddingResponse struct {
	Object   string          `json:"object"`
	Model    string          `json:"model"`
	Provider string          `json:"provider,omitempty"`
	Data     []EmbeddingData `json:"data"`
	Usage    *Usage          `json:"usage,omitempty"`
}

// EmbeddingData is one embedding vector, in input order.
type EmbeddingData struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

// FromEmbedding projects a canonical embedding response onto the wire form.
func FromEmbedding(resp *providers.EmbeddingResponse) *EmbeddingResponse {
	data := make([]EmbeddingData, len(resp.Embeddings))
	for i, vec := range resp.Embeddings {
		data[i] = EmbeddingData{Object: "embedding", Index: i, Embedding: vec}
	}
	return &EmbeddingResponse{
		Object:   "list",
		Model:    resp.Model,
		Provider: resp.Provider,
		Data:     data,
		Usage: &Usage{
			PromptTokens: resp.Usage.PromptTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}
}

// Model is the wire form of one registry entry.
type Model struct {
	ID              string   `json:"id"`
	Object          string   `json:"object"`
	Provider        string   `json:"provider"`
	DisplayName     string   `json:"display_name,omitempty"`
	ContextWindow   int      `json:"context_window,omitempty"`
	Capabilities    []string `json:"capabilities,omitempty"`
	InputCostPer1K  float64  `json:"input_cost_per_1k,omitempty"`
	OutputCostPer1K float64  `json:"output_cost_per_1k,omitempty"`
}

// ModelList is the wire form of GET /v1/models.
type ModelList struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}
