package types

import (
	"encoding/json"
	"fmt"

	"meridian-hq/janus/pkg/providers"
)

// EmbeddingRequest is the wire form of an embedding request. Input accepts
// either a single string or a list of strings, the way the OpenAI API does.
type EmbeddingRequest struct {
	Model string        `json:"model"`
	Input FlexibleInput `json:"input"`
	User  string        `json:"user,omitempty"`
}

// Canonical converts the wire request to the internal form.
func (r *EmbeddingRequest) Canonical() *providers.EmbeddingRequest {
	return &providers.EmbeddingRequest{
		Model: r.Model,
		Input: r.Input,
		User:  r.User,
	}
}

// FlexibleInput decodes a JSON string or array of strings.
type FlexibleInput []string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexibleInput) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*f = FlexibleInput{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("input must be a string or an array of strings: %w", err)
	}
	*f = FlexibleInput(many)
	return nil
}
