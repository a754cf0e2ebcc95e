package providers

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error codes carried by every gateway error. Codes are stable strings used
// in problem responses, fallback rule filters and logs.
const (
	CodeValidation             = "validation"
	CodeModelNotFound          = "model_not_found"
	CodeProviderNotFound       = "provider_not_found"
	CodeNotFound               = "not_found"
	CodeProviderAuthentication = "provider_authentication"
	CodeRateLimitExceeded      = "rate_limit_exceeded"
	CodeProviderUnavailable    = "provider_unavailable"
	CodeProviderError          = "provider_error"
	CodeRouting                = "routing"
	CodeFallbackExhausted      = "fallback_exhausted"
	CodeCapabilityNotSupported = "capability_not_supported"
	CodeContentFiltered        = "content_filtered"
	CodeInternal               = "internal"
)

// Coder is implemented by every typed gateway error. Packages outside
// providers (routing, usage, filtering) attach their own codes through it.
type Coder interface {
	ErrorCode() string
}

// CodeOf extracts the error code from an error chain. Unknown errors map to
// CodeInternal.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var coder Coder
	if errors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return CodeInternal
}

// statusByCode maps error codes to the client-visible HTTP status.
var statusByCode = map[string]int{
	CodeValidation:             http.StatusBadRequest,
	CodeModelNotFound:          http.StatusNotFound,
	CodeProviderNotFound:       http.StatusNotFound,
	CodeNotFound:               http.StatusNotFound,
	CodeProviderAuthentication: http.StatusUnauthorized,
	CodeRateLimitExceeded:      http.StatusTooManyRequests,
	CodeProviderUnavailable:    http.StatusServiceUnavailable,
	CodeProviderError:          http.StatusBadGateway,
	CodeRouting:                http.StatusBadRequest,
	CodeFallbackExhausted:      http.StatusServiceUnavailable,
	CodeCapabilityNotSupported: http.StatusBadRequest,
	CodeContentFiltered:        http.StatusForbidden,
	CodeInternal:               http.StatusInternalServerError,
}

// HTTPStatus returns the client-visible status for an error code.
func HTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ProviderError is an upstream 4xx not covered by a more specific kind. The
// backend's own error code is preserved when the response body carries one.
type ProviderError struct {
	// Provider is the backend that returned the error.
	Provider string

	// StatusCode is the upstream HTTP status.
	StatusCode int

	// ProviderCode is the backend's error code, when present.
	ProviderCode string

	// Message is the error message.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %q error: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// ErrorCode implements Coder.
func (e *ProviderError) ErrorCode() string { return CodeProviderError }

// AuthError means the backend rejected the gateway's credentials (401/403).
type AuthError struct {
	Provider string
	Message  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("provider %q authentication failed: %s", e.Provider, e.Message)
}

// ErrorCode implements Coder.
func (e *AuthError) ErrorCode() string { return CodeProviderAuthentication }

// RateLimitError means the backend returned 429. RetryAfter carries the
// parsed Retry-After header when the backend sent one.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %q rate limit exceeded (retry after %s): %s",
			e.Provider, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("provider %q rate limit exceeded: %s", e.Provider, e.Message)
}

// ErrorCode implements Coder.
func (e *RateLimitError) ErrorCode() string { return CodeRateLimitExceeded }

// UnavailableError means the backend could not be reached or kept failing
// with server errors after retries.
type UnavailableError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *UnavailableError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("provider %q unavailable: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("provider %q unavailable: %v", e.Provider, e.Cause)
}

func (e *UnavailableError) Unwrap() error { return e.Cause }

// ErrorCode implements Coder.
func (e *UnavailableError) ErrorCode() string { return CodeProviderUnavailable }

// TimeoutError means a request exceeded its configured deadline. Timeouts
// count as unavailability for fallback and alerting purposes.
type TimeoutError struct {
	Provider string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %q request timeout after %s", e.Provider, e.Timeout)
}

// ErrorCode implements Coder.
func (e *TimeoutError) ErrorCode() string { return CodeProviderUnavailable }

// ParseError means the backend returned a response the adapter could not
// decode.
type ParseError struct {
	Provider    string
	RawResponse string
	Cause       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q response parse error: %v", e.Provider, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// ErrorCode implements Coder.
func (e *ParseError) ErrorCode() string { return CodeProviderError }

// ModelNotFoundError means the requested model is unknown to the registry or
// to the backend.
type ModelNotFoundError struct {
	Provider string
	Model    string
}

func (e *ModelNotFoundError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("model %q not found", e.Model)
	}
	return fmt.Sprintf("provider %q does not support model %q", e.Provider, e.Model)
}

// ErrorCode implements Coder.
func (e *ModelNotFoundError) ErrorCode() string { return CodeModelNotFound }

// ProviderNotFoundError means a request named a provider the gateway has not
// configured.
type ProviderNotFoundError struct {
	Provider string
}

func (e *ProviderNotFoundError) Error() string {
	return fmt.Sprintf("provider %q is not configured", e.Provider)
}

// ErrorCode implements Coder.
func (e *ProviderNotFoundError) ErrorCode() string { return CodeProviderNotFound }

// NotFoundError means an upstream resource other than a model was missing.
type NotFoundError struct {
	Provider string
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("provider %q resource not found: %s", e.Provider, e.Resource)
}

// ErrorCode implements Coder.
func (e *NotFoundError) ErrorCode() string { return CodeNotFound }

// ValidationError means the request violates the canonical schema before any
// backend is contacted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %q: %s", e.Field, e.Message)
}

// ErrorCode implements Coder.
func (e *ValidationError) ErrorCode() string { return CodeValidation }

// CapabilityError means the resolved model or provider cannot serve the
// requested operation, such as embeddings on an Anthropic model.
type CapabilityError struct {
	Provider   string
	Model      string
	Capability string
}

func (e *CapabilityError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("model %q on provider %q does not support %s",
			e.Model, e.Provider, e.Capability)
	}
	return fmt.Sprintf("provider %q does not support %s", e.Provider, e.Capability)
}

// ErrorCode implements Coder.
func (e *CapabilityError) ErrorCode() string { return CodeCapabilityNotSupported }

// ContentFilteredError means a content policy denied the request.
type ContentFilteredError struct {
	Rule       string
	Categories []string
}

func (e *ContentFilteredError) Error() string {
	return fmt.Sprintf("content filtered by rule %q", e.Rule)
}

// ErrorCode implements Coder.
func (e *ContentFilteredError) ErrorCode() string { return CodeContentFiltered }

// StreamError wraps a failure that happened mid-stream, after headers were
// already sent. Its code is the wrapped failure's code so fallback filters
// and problem responses see through it.
type StreamError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %q stream error: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider %q stream error: %s", e.Provider, e.Message)
}

func (e *StreamError) Unwrap() error { return e.Cause }

// ErrorCode implements Coder.
func (e *StreamError) ErrorCode() string {
	if e.Cause != nil {
		if code := CodeOf(e.Cause); code != CodeInternal {
			return code
		}
	}
	return CodeProviderUnavailable
}

// ConfigError means an adapter could not be constructed from its
// configuration.
type ConfigError struct {
	Provider string
	Field    string
	Message  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q configuration error for field %q: %s",
		e.Provider, e.Field, e.Message)
}

// ErrorCode implements Coder.
func (e *ConfigError) ErrorCode() string { return CodeInternal }

// ScopeToModel narrows a generic 404 to ModelNotFound for calls that were
// scoped to a specific model. Other errors pass through unchanged.
func ScopeToModel(err error, provider, model string) error {
	if err == nil {
		return nil
	}
	if model == "" {
		return err
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return &ModelNotFoundError{Provider: provider, Model: model}
	}
	return err
}
