package gateway

import (
	"strconv"

	"meridian-hq/janus/pkg/providers"
)

// validateCompletion checks the canonical completion schema before any
// routing happens. The first violation is returned.
func validateCompletion(req *providers.CompletionRequest) error {
	if req.Model == "" {
		return &providers.ValidationError{Field: "model", Message: "model is required"}
	}
	if len(req.Messages) == 0 {
		return &providers.ValidationError{Field: "messages", Message: "at least one message is required"}
	}
	for i, msg := range req.Messages {
		switch msg.Role {
		case providers.RoleSystem:
			if i != 0 {
				return &providers.ValidationError{Field: "messages", Message: "a system message must be first and appear at most once"}
			}
		case providers.RoleUser, providers.RoleAssistant, providers.RoleTool:
		default:
			return &providers.ValidationError{Field: "messages", Message: "unknown role " + msg.Role}
		}
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		return &providers.ValidationError{Field: "temperature", Message: "temperature must be between 0 and 2"}
	}
	if req.TopP != nil && (*req.TopP <= 0 || *req.TopP > 1) {
		return &providers.ValidationError{Field: "top_p", Message: "top_p must be in (0, 1]"}
	}
	if req.MaxTokens < 0 {
		return &providers.ValidationError{Field: "max_tokens", Message: "max_tokens must not be negative"}
	}
	return nil
}

// validateEmbedding checks the canonical embedding schema.
func validateEmbedding(req *providers.EmbeddingRequest) error {
	if req.Model == "" {
		return &providers.ValidationError{Field: "model", Message: "model is required"}
	}
	if len(req.Input) == 0 {
		return &providers.ValidationError{Field: "input", Message: "at least one input is required"}
	}
	for i, input := range req.Input {
		if input == "" {
			return &providers.ValidationError{Field: "input", Message: "input " + strconv.Itoa(i) + " is empty"}
		}
	}
	return nil
}
