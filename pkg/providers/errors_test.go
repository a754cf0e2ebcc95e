package providers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", &ValidationError{Field: "model"}, CodeValidation},
		{"model not found", &ModelNotFoundError{Model: "gpt-9"}, CodeModelNotFound},
		{"provider not found", &ProviderNotFoundError{Provider: "replicate"}, CodeProviderNotFound},
		{"not found", &NotFoundError{Provider: "openai"}, CodeNotFound},
		{"auth", &AuthError{Provider: "openai"}, CodeProviderAuthentication},
		{"rate limit", &RateLimitError{Provider: "openai"}, CodeRateLimitExceeded},
		{"unavailable", &UnavailableError{Provider: "openai"}, CodeProviderUnavailable},
		{"timeout", &TimeoutError{Provider: "openai", Timeout: time.Second}, CodeProviderUnavailable},
		{"provider error", &ProviderError{Provider: "openai", StatusCode: 422}, CodeProviderError},
		{"parse", &ParseError{Provider: "openai"}, CodeProviderError},
		{"capability", &CapabilityError{Provider: "anthropic", Capability: "embeddings"}, CodeCapabilityNotSupported},
		{"content filtered", &ContentFilteredError{Rule: "pii"}, CodeContentFiltered},
		{"config", &ConfigError{Provider: "azure", Field: "api_url"}, CodeInternal},
		{"plain error", errors.New("boom"), CodeInternal},
		{"wrapped typed error", fmt.Errorf("attempt 1: %w", &RateLimitError{Provider: "openai"}), CodeRateLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStreamError_CodePassesThrough(t *testing.T) {
	inner := &RateLimitError{Provider: "openai"}
	err := &StreamError{Provider: "openai", Message: "mid-stream failure", Cause: inner}

	if got := CodeOf(err); got != CodeRateLimitExceeded {
		t.Errorf("expected stream error to carry the cause's code, got %q", got)
	}

	// A stream error with an untyped cause reports unavailability.
	plain := &StreamError{Provider: "openai", Message: "connection reset", Cause: errors.New("reset")}
	if got := CodeOf(plain); got != CodeProviderUnavailable {
		t.Errorf("expected provider_unavailable for untyped cause, got %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeModelNotFound, http.StatusNotFound},
		{CodeProviderNotFound, http.StatusNotFound},
		{CodeNotFound, http.StatusNotFound},
		{CodeProviderAuthentication, http.StatusUnauthorized},
		{CodeRateLimitExceeded, http.StatusTooManyRequests},
		{CodeProviderUnavailable, http.StatusServiceUnavailable},
		{CodeProviderError, http.StatusBadGateway},
		{CodeRouting, http.StatusBadRequest},
		{CodeFallbackExhausted, http.StatusServiceUnavailable},
		{CodeCapabilityNotSupported, http.StatusBadRequest},
		{CodeContentFiltered, http.StatusForbidden},
		{CodeInternal, http.StatusInternalServerError},
		{"unknown_code", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.code); got != tt.want {
			t.Errorf("HTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestScopeToModel(t *testing.T) {
	nf := &NotFoundError{Provider: "openai", Resource: "unknown"}

	err := ScopeToModel(nf, "openai", "gpt-9")
	var mnf *ModelNotFoundError
	if !errors.As(err, &mnf) {
		t.Fatalf("expected ModelNotFoundError, got %T: %v", err, err)
	}
	if mnf.Model != "gpt-9" || mnf.Provider != "openai" {
		t.Errorf("unexpected fields: %+v", mnf)
	}

	// Without a model scope the original error passes through.
	if got := ScopeToModel(nf, "openai", ""); got != error(nf) {
		t.Errorf("expected original error, got %v", got)
	}

	// Non-404 errors pass through.
	rl := &RateLimitError{Provider: "openai"}
	if got := ScopeToModel(rl, "openai", "gpt-4"); got != error(rl) {
		t.Errorf("expected rate limit error to pass through, got %v", got)
	}

	if got := ScopeToModel(nil, "openai", "gpt-4"); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{
			&ProviderError{Provider: "openai", StatusCode: 422, Message: "bad input"},
			`provider "openai" error (status 422): bad input`,
		},
		{
			&RateLimitError{Provider: "openai", RetryAfter: 30 * time.Second, Message: "slow down"},
			`provider "openai" rate limit exceeded (retry after 30s): slow down`,
		},
		{
			&ModelNotFoundError{Model: "gpt-9"},
			`model "gpt-9" not found`,
		},
		{
			&ModelNotFoundError{Provider: "openai", Model: "gpt-9"},
			`provider "openai" does not support model "gpt-9"`,
		},
		{
			&CapabilityError{Provider: "anthropic", Model: "claude-3-opus", Capability: "embeddings"},
			`model "claude-3-opus" on provider "anthropic" does not support embeddings`,
		},
		{
			&ValidationError{Field: "messages", Message: "at least one message is required"},
			`validation error for field "messages": at least one message is required`,
		},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestUnwrapChains(t *testing.T) {
	cause := errors.New("connection refused")
	err := &UnavailableError{Provider: "openai", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause through UnavailableError")
	}

	wrapped := fmt.Errorf("request failed: %w", err)
	var ue *UnavailableError
	if !errors.As(wrapped, &ue) {
		t.Error("expected errors.As to find UnavailableError through wrapping")
	}
}
