package routing

import (
	"fmt"
	"strings"

	"meridian-hq/janus/pkg/providers"
)

// Error is returned when no provider can be determined for a request.
type Error struct {
	// Model is the model id that failed to resolve, after alias and
	// override substitution.
	Model string

	// Reason explains the failure.
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %q", e.Reason, e.Model)
}

// ErrorCode implements providers.Coder.
func (e *Error) ErrorCode() string {
	return providers.CodeRouting
}

// FallbackExhaustedError is returned when the primary attempt and every
// eligible substitute have failed. It wraps the last attempt's error.
type FallbackExhaustedError struct {
	// Model is the requested model id.
	Model string

	// Attempts is the number of attempts made, primary included.
	Attempts int

	// Tried lists the model ids attempted, in order.
	Tried []string

	// LastErr is the error from the final attempt.
	LastErr error
}

func (e *FallbackExhaustedError) Error() string {
	return fmt.Sprintf("fallback exhausted for model %q after %d attempt(s) (tried: %s): %v",
		e.Model, e.Attempts, strings.Join(e.Tried, ", "), e.LastErr)
}

// Unwrap returns the last attempt's error.
func (e *FallbackExhaustedError) Unwrap() error {
	return e.LastErr
}

// ErrorCode implements providers.Coder.
func (e *FallbackExhaustedError) ErrorCode() string {
	return providers.CodeFallbackExhausted
}
