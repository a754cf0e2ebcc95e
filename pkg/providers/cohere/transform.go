package cohere

import (
	"encoding/json"
	"fmt"

	"meridian-hq/janus/pkg/providers"
)

// Request is the v2 chat wire request. The shape is close to the canonical
// one; notable differences are "p" for nucleus sampling and "stop_sequences"
// for stop strings.
type Request struct {
	Model         string    `json:"model"`
	Messages      []Message `json:"messages"`
	MaxTokens     int       `json:"max_tokens,omitempty"`
	Temperature   *float64  `json:"temperature,omitempty"`
	P             *float64  `json:"p,omitempty"`
	StopSequences []string  `json:"stop_sequences,omitempty"`
	Stream        bool      `json:"stream,omitempty"`
	Tools         []Tool    `json:"tools,omitempty"`
}

// Message is one conversation turn on the wire. Content is a plain string on
// requests; responses carry a block list.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// Tool is a tool declaration in Cohere's function shape.
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

// Response is the v2 chat wire response.
type Response struct {
	ID           string          `json:"id"`
	Message      ResponseMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
	Usage        Usage           `json:"usage"`
}

// ResponseMessage is the assistant message of a response.
type ResponseMessage struct {
	Role      string         `json:"role"`
	Content   []ContentBlock `json:"content"`
	ToolCalls []ToolCall     `json:"tool_calls,omitempty"`
}

// ContentBlock is one typed block of response content.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ToolCall is a tool invocation on the wire.
type ToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// Usage reports billed token units.
type Usage struct {
	BilledUnits struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"billed_units"`
}

// streamEvent is one v2 chat stream event. The delta payload varies by type
// and stays raw until the type is known.
type streamEvent struct {
	Type  string          `json:"type"`
	ID    string          `json:"id,omitempty"`
	Delta json.RawMessage `json:"delta,omitempty"`
}

// contentDeltaPayload is the delta of a content-delta event.
type contentDeltaPayload struct {
	Message struct {
		Content struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`
}

// messageEndPayload is the delta of a message-end event.
type messageEndPayload struct {
	FinishReason string `json:"finish_reason"`
	Usage        Usage  `json:"usage"`
}

// EmbedRequest is the v2 embed wire request.
type EmbedRequest struct {
	Model          string   `json:"model"`
	Texts          []string `json:"texts"`
	InputType      string   `json:"input_type"`
	EmbeddingTypes []string `json:"embedding_types"`
}

// EmbedResponse is the v2 embed wire response.
type EmbedResponse struct {
	ID         string `json:"id"`
	Embeddings struct {
		Float [][]float64 `json:"float"`
	} `json:"embeddings"`
	Meta struct {
		BilledUnits struct {
			InputTokens int `json:"input_tokens"`
		} `json:"billed_units"`
	} `json:"meta"`
}

// modelList is the models listing wire response.
type modelList struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// encodeRequest translates the canonical request to the v2 chat shape.
func encodeRequest(req *providers.CompletionRequest) *Request {
	wire := &Request{
		Model:         req.Model,
		Messages:      make([]Message, len(req.Messages)),
		MaxTokens:     req.MaxTokens,
		Temperature:   req.Temperature,
		P:             req.TopP,
		StopSequences: req.Stop,
		Stream:        req.Stream,
	}

	for i, msg := range req.Messages {
		wire.Messages[i] = Message{Role: msg.Role, Content: msg.Content}
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

// decodeResponse normalizes a wire response, concatenating text blocks.
func decodeResponse(provider string, resp *Response) (*providers.CompletionResponse, error) {
	var content string
	for _, block := range resp.Message.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	var toolCalls []providers.ToolCall
	for _, tc := range resp.Message.ToolCalls {
		toolCalls = append(toolCalls, providers.ToolCall{
			ID:   tc.ID,
			Type: providers.ToolTypeFunction,
			Function: providers.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}

	input := resp.Usage.BilledUnits.InputTokens
	output := resp.Usage.BilledUnits.OutputTokens
	return &providers.CompletionResponse{
		ID:           resp.ID,
		Provider:     provider,
		Content:      content,
		FinishReason: normalizeFinishReason(resp.FinishReason),
		Usage: providers.TokenUsage{
			PromptTokens:     input,
			CompletionTokens: output,
			TotalTokens:      input + output,
		},
		ToolCalls: toolCalls,
	}, nil
}

// decodeStreamEvent normalizes one stream event. A nil chunk with nil error
// means the event carries nothing to forward.
func decodeStreamEvent(provider string, event *streamEvent, state *streamState) (*providers.CompletionChunk, error) {
	switch event.Type {
	case "message-start":
		state.id = event.ID
		return nil, nil

	case "content-delta":
		var delta contentDeltaPayload
		if err := json.Unmarshal(event.Delta, &delta); err != nil {
			return nil, fmt.Errorf("decoding content delta: %w", err)
		}
		if delta.Message.Content.Text == "" {
			return nil, nil
		}
		return &providers.CompletionChunk{
			ID:       state.id,
			Model:    state.model,
			Provider: provider,
			Delta:    delta.Message.Content.Text,
		}, nil

	case "message-end":
		var end messageEndPayload
		if len(event.Delta) > 0 {
			if err := json.Unmarshal(event.Delta, &end); err != nil {
				return nil, fmt.Errorf("decoding message end: %w", err)
			}
		}
		input := end.Usage.BilledUnits.InputTokens
		output := end.Usage.BilledUnits.OutputTokens
		return &providers.CompletionChunk{
			ID:           state.id,
			Model:        state.model,
			Provider:     provider,
			FinishReason: normalizeFinishReason(end.FinishReason),
			Usage: &providers.TokenUsage{
				PromptTokens:     input,
				CompletionTokens: output,
				TotalTokens:      input + output,
			},
		}, nil

	default:
		// content-start, content-end, tool-plan deltas and future event
		// types are skipped.
		return nil, nil
	}
}

// streamState tracks identity across a stream's events.
type streamState struct {
	id    string
	model string
}

// normalizeFinishReason maps Cohere finish reasons onto the canonical set.
func normalizeFinishReason(reason string) string {
	switch reason {
	case "COMPLETE", "STOP_SEQUENCE":
		return providers.FinishReasonStop
	case "MAX_TOKENS":
		return providers.FinishReasonLength
	case "TOOL_CALL":
		return providers.FinishReasonToolCalls
	case "":
		return ""
	default:
		return reason
	}
}
