package anthropic

import (
	"encoding/json"
	"fmt"

	"meridian-hq/janus/pkg/providers"
)

// Request is the Messages API wire request. Unlike OpenAI, the system prompt
// is a dedicated field, max_tokens is mandatory, and conversation turns must
// alternate between user and assistant.
type Request struct {
	Model         string    `json:"model"`
	Messages      []Message `json:"messages"`
	System        string    `json:"system,omitempty"`
	MaxTokens     int       `json:"max_tokens"`
	Temperature   *float64  `json:"temperature,omitempty"`
	TopP          *float64  `json:"top_p,omitempty"`
	Stream        bool      `json:"stream,omitempty"`
	Tools         []Tool    `json:"tools,omitempty"`
	StopSequences []string  `json:"stop_sequences,omitempty"`
	Metadata      *Metadata `json:"metadata,omitempty"`
}

// Metadata carries the end-user id upstream.
type Metadata struct {
	UserID string `json:"user_id,omitempty"`
}

// Message is one conversation turn on the wire.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string or []ContentBlock
}

// ContentBlock is one typed block of message content.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`

	// tool_use blocks
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`

	// tool_result blocks
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

// Tool is a tool declaration on the wire.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

// Response is the Messages API wire response.
type Response struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Role         string         `json:"role"`
	Content      []ContentBlock `json:"content"`
	Model        string         `json:"model"`
	StopReason   string         `json:"stop_reason"`
	StopSequence string         `json:"stop_sequence,omitempty"`
	Usage        Usage          `json:"usage"`
}

// Usage is token usage on the wire.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// streamEvent is one typed SSE event. The delta payload's shape depends on
// the event type, so it stays raw until the type is known.
type streamEvent struct {
	Type         string          `json:"type"`
	Message      *Response       `json:"message,omitempty"`
	Index        int             `json:"index,omitempty"`
	ContentBlock *ContentBlock   `json:"content_block,omitempty"`
	Delta        json.RawMessage `json:"delta,omitempty"`
	Usage        *Usage          `json:"usage,omitempty"`
	Error        *streamError    `json:"error,omitempty"`
}

// streamError is the payload of an error event.
type streamError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// contentDelta is the delta payload of a content_block_delta event.
type contentDelta struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// messageDelta is the delta payload of a message_delta event.
type messageDelta struct {
	StopReason   string `json:"stop_reason,omitempty"`
	StopSequence string `json:"stop_sequence,omitempty"`
}

// encodeRequest translates the canonical request, extracting the system
// prompt into its slot and enforcing the Messages API turn rules.
func encodeRequest(req *providers.CompletionRequest) (*Request, error) {
	wire := &Request{
		Model:         req.Model,
		Messages:      make([]Message, 0, len(req.Messages)),
		MaxTokens:     req.MaxTokens,
		Temperature:   req.Temperature,
		TopP:          req.TopP,
		Stream:        req.Stream,
		StopSequences: req.Stop,
	}

	// max_tokens is mandatory on this API.
	if wire.MaxTokens == 0 {
		wire.MaxTokens = DefaultMaxTokens
	}

	if req.User != "" {
		wire.Metadata = &Metadata{UserID: req.User}
	}

	systemSeen := false
	for _, msg := range req.Messages {
		if msg.Role == providers.RoleSystem {
			if systemSeen {
				return nil, &providers.ValidationError{
					Field:   "messages",
					Message: "at most one system message is supported",
				}
			}
			systemSeen = true
			wire.System = msg.Content
			continue
		}
		wire.Messages = append(wire.Messages, Message{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	if len(req.Tools) > 0 {
		wire.Tools = make([]Tool, len(req.Tools))
		for i, tool := range req.Tools {
			wire.Tools[i] = Tool{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				InputSchema: tool.Function.Parameters,
			}
		}
	}

	if err := validateTurns(wire.Messages); err != nil {
		return nil, err
	}
	return wire, nil
}

// validateTurns enforces the Messages API conversation shape: the first turn
// is from the user and roles alternate afterwards.
func validateTurns(messages []Message) error {
	if len(messages) == 0 {
		return &providers.ValidationError{
			Field:   "messages",
			Message: "at least one non-system message is required",
		}
	}

	if messages[0].Role != providers.RoleUser {
		return &providers.ValidationError{
			Field:   "messages",
			Message: "first message must be from the user",
		}
	}

	for i := 1; i < len(messages); i++ {
		if messages[i].Role == messages[i-1].Role {
			return &providers.ValidationError{
				Field: "messages",
				Message: fmt.Sprintf("messages must alternate between user and assistant, found consecutive %s messages at index %d",
					messages[i].Role, i),
			}
		}
	}
	return nil
}

// decodeResponse normalizes a wire response, concatenating text blocks and
// converting tool_use blocks to tool calls.
func decodeResponse(provider string, resp *Response) (*providers.CompletionResponse, error) {
	var content string
	var toolCalls []providers.ToolCall

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			content += block.Text

		case "tool_use":
			args, err := json.Marshal(block.Input)
			if err != nil {
				return nil, fmt.Errorf("marshaling tool input: %w", err)
			}
			toolCalls = append(toolCalls, providers.ToolCall{
				ID:   block.ID,
				Type: providers.ToolTypeFunction,
				Function: providers.FunctionCall{
					Name:      block.Name,
					Arguments: string(args),
				},
			})
		}
	}

	return &providers.CompletionResponse{
		ID:           resp.ID,
		Model:        resp.Model,
		Provider:     provider,
		Content:      content,
		FinishReason: normalizeStopReason(resp.StopReason),
		Usage: providers.TokenUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
		ToolCalls: toolCalls,
	}, nil
}

// streamState accumulates identity and usage across a stream's events: the
// response id and input token count arrive in message_start, the output
// token count in message_delta.
type streamState struct {
	id          string
	model       string
	inputTokens int
}

// decodeStreamEvent normalizes one stream event. A nil chunk with a nil
// error means the event carries nothing to forward.
func decodeStreamEvent(provider string, event *streamEvent, state *streamState) (*providers.CompletionChunk, error) {
	switch event.Type {
	case "message_start":
		if event.Message != nil {
			state.id = event.Message.ID
			state.model = event.Message.Model
			state.inputTokens = event.Message.Usage.InputTokens
		}
		return nil, nil

	case "content_block_delta":
		var delta contentDelta
		if err := json.Unmarshal(event.Delta, &delta); err != nil {
			return nil, fmt.Errorf("decoding content delta: %w", err)
		}
		if delta.Text == "" {
			return nil, nil
		}
		return &providers.CompletionChunk{
			ID:       state.id,
			Model:    state.model,
			Provider: provider,
			Delta:    delta.Text,
		}, nil

	case "message_delta":
		var delta messageDelta
		if len(event.Delta) > 0 {
			if err := json.Unmarshal(event.Delta, &delta); err != nil {
				return nil, fmt.Errorf("decoding message delta: %w", err)
			}
		}
		chunk := &providers.CompletionChunk{
			ID:           state.id,
			Model:        state.model,
			Provider:     provider,
			FinishReason: normalizeStopReason(delta.StopReason),
		}
		if event.Usage != nil {
			chunk.Usage = &providers.TokenUsage{
				PromptTokens:     state.inputTokens,
				CompletionTokens: event.Usage.OutputTokens,
				TotalTokens:      state.inputTokens + event.Usage.OutputTokens,
			}
		}
		return chunk, nil

	case "content_block_start", "content_block_stop", "message_stop", "ping":
		return nil, nil

	case "error":
		if event.Error != nil {
			return nil, fmt.Errorf("upstream stream error (%s): %s", event.Error.Type, event.Error.Message)
		}
		return nil, fmt.Errorf("upstream stream error")

	default:
		// Forward-compatible: unknown event types are skipped.
		return nil, nil
	}
}

// normalizeStopReason maps wire stop reasons onto the canonical set.
func normalizeStopReason(reason string) string {
	switch reason {
	case "end_turn", "stop_sequence":
		return providers.FinishReasonStop
	case "max_tokens":
		return providers.FinishReasonLength
	case "tool_use":
		return providers.FinishReasonToolCalls
	default:
		return reason
	}
}
