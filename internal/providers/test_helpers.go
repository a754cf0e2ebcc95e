package providers

import (
	"fmt"
	"time"

	"meridian-hq/janus/pkg/providers"
)

// TestConfig builds an adapter config pointed at a mock server.
func TestConfig(name, baseURL string) providers.Config {
	return providers.Config{
		Name:       name,
		BaseURL:    baseURL,
		APIKey:     "test-key",
		Timeout:    5 * time.Second,
		MaxRetries: 0,
	}
}

// TestCompletionRequest builds a minimal completion request.
func TestCompletionRequest(model string) *providers.CompletionRequest {
	return &providers.CompletionRequest{
		Model: model,
		Messages: []providers.Message{
			{Role: providers.RoleUser, Content: "Hello"},
		},
	}
}

// Float64 returns a pointer to v, for optional sampling parameters.
func Float64(v float64) *float64 {
	return &v
}

// MockOpenAIResponse is an OpenAI-format completion response body.
func MockOpenAIResponse(model, content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test123",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   model,
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     10,
			"completion_tokens": 20,
			"total_tokens":      30,
		},
	}
}

// MockOpenAIStreamChunk is one OpenAI-format SSE data payload.
func MockOpenAIStreamChunk(model, delta string, last bool) string {
	finish := "null"
	if last {
		finish = `"stop"`
	}
	return fmt.Sprintf(`{"id":"chatcmpl-test123","object":"chat.completion.chunk","created":1700000000,"model":%q,"choices":[{"index":0,"delta":{"content":%q},"finish_reason":%s}]}`,
		model, delta, finish)
}

// MockOpenAIEmbeddingResponse is an OpenAI-format embedding response body.
func MockOpenAIEmbeddingResponse(model string, vectors [][]float64) map[string]any {
	data := make([]map[string]any, len(vectors))
	for i, v := range vectors {
		data[i] = map[string]any{
			"object":    "embedding",
			"index":     i,
			"embedding": v,
		}
	}
	return map[string]any{
		"object": "list",
		"model":  model,
		"data":   data,
		"usage": map[string]any{
			"prompt_tokens": 8,
			"total_tokens":  8,
		},
	}
}

// MockAnthropicResponse is an Anthropic-format messages response body.
func MockAnthropicResponse(model, content string) map[string]any {
	return map[string]any{
		"id":    "msg_test123",
		"type":  "message",
		"role":  "assistant",
		"model": model,
		"content": []map[string]any{
			{"type": "text", "text": content},
		},
		"stop_reason": "end_turn",
		"usage": map[string]any{
			"input_tokens":  10,
			"output_tokens": 20,
		},
	}
}

// MockAnthropicStream is the typed event sequence for a streamed Anthropic
// response producing the given deltas.
func MockAnthropicStream(model string, deltas ...string) []MockStreamEvent {
	events := []MockStreamEvent{
		{
			Type: "message_start",
			Data: fmt.Sprintf(`{"type":"message_start","message":{"id":"msg_test123","type":"message","role":"assistant","model":%q,"usage":{"input_tokens":10,"output_tokens":0}}}`, model),
		},
		{
			Type: "content_block_start",
			Data: `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
		},
	}
	for _, delta := range deltas {
		events = append(events, MockStreamEvent{
			Type: "content_block_delta",
			Data: fmt.Sprintf(`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":%q}}`, delta),
		})
	}
	events = append(events,
		MockStreamEvent{
			Type: "content_block_stop",
			Data: `{"type":"content_block_stop","index":0}`,
		},
		MockStreamEvent{
			Type: "message_delta",
			Data: `{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":20}}`,
		},
		MockStreamEvent{
			Type: "message_stop",
			Data: `{"type":"message_stop"}`,
		},
	)
	return events
}

// MockCohereResponse is a Cohere v2 chat response body.
func MockCohereResponse(content string) map[string]any {
	return map[string]any{
		"id": "cohere-test123",
		"message": map[string]any{
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": content},
			},
		},
		"finish_reason": "COMPLETE",
		"usage": map[string]any{
			"billed_units": map[string]any{
				"input_tokens":  10,
				"output_tokens": 20,
			},
		},
	}
}

// MockErrorBody is an OpenAI-style error envelope.
func MockErrorBody(code, message string) map[string]any {
	return map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    "invalid_request_error",
			"code":    code,
		},
	}
}
