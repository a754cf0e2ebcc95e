package types

import (
	"encoding/json"
	"errors"
	"net/http"

	"meridian-hq/janus/pkg/providers"
)

// Problem is the RFC 7807 error document every failed request returns,
// extended with the gateway's stable error code and request correlation id.
// Provider and ProviderErrorCode are present when an upstream backend caused
// the failure; Errors lists field-level validation problems.
type Problem struct {
	Type              string       `json:"type"`
	Title             string       `json:"title"`
	Status            int          `json:"status"`
	Detail            string       `json:"detail,omitempty"`
	Code              string       `json:"code"`
	CorrelationID     string       `json:"correlationId,omitempty"`
	Provider          string       `json:"provider,omitempty"`
	ProviderErrorCode string       `json:"providerErrorCode,omitempty"`
	Errors            []FieldError `json:"errors,omitempty"`
}

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ProblemFromError classifies an error into a problem document. The status
// follows the error-code table; unknown errors become a 500 internal
// problem without leaking the message.
func ProblemFromError(err error, correlationID string) *Problem {
	code := providers.CodeOf(err)
	status := providers.HTTPStatus(code)

	p := &Problem{
		Type:          "about:blank",
		Title:         http.StatusText(status),
		Status:        status,
		Code:          code,
		CorrelationID: correlationID,
	}

	if code == providers.CodeInternal {
		p.Detail = "an internal error occurred"
		return p
	}
	p.Detail = err.Error()

	var validation *providers.ValidationError
	if errors.As(err, &validation) {
		p.Errors = []FieldError{{Field: validation.Field, Message: validation.Message}}
	}

	p.Provider, p.ProviderErrorCode = upstreamOrigin(err)
	return p
}

// upstreamOrigin digs the provider name and the backend's own error code out
// of the error chain, when the failure came from upstream.
func upstreamOrigin(err error) (provider, providerCode string) {
	var pe *providers.ProviderError
	if errors.As(err, &pe) {
		return pe.Provider, pe.ProviderCode
	}
	var rl *providers.RateLimitError
	if errors.As(err, &rl) {
		return rl.Provider, ""
	}
	var auth *providers.AuthError
	if errors.As(err, &auth) {
		return auth.Provider, ""
	}
	var se *providers.StreamError
	if errors.As(err, &se) {
		return se.Provider, ""
	}
	var unavailable *providers.UnavailableError
	if errors.As(err, &unavailable) {
		return unavailable.Provider, ""
	}
	return "", ""
}

// WriteProblem serializes a problem document with its status and the
// application/problem+json content type.
func WriteProblem(w http.ResponseWriter, p *Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
