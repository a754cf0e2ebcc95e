// Package auth guards the administrative endpoints with an API key.
//
// Client-facing authentication (JWT, per-user keys) is handled upstream of
// the gateway; this package only protects the /admin surface.
package auth

import (
	"crypto/subtle"
	"errors"
	"sync"
)

// Errors returned by Validate.
var (
	ErrMissingKey = errors.New("missing API key")
	ErrInvalidKey = errors.New("invalid API key")
	ErrDisabled   = errors.New("admin endpoints disabled")
)

// Validator checks presented keys against the configured admin key using a
// constant-time comparison. An empty configured key disables the admin
// surface entirely.
type Validator struct {
	mu  sync.RWMutex
	key []byte
}

// NewValidator creates a validator for the configured admin key.
func NewValidator(key string) *Validator {
	return &Validator{key: []byte(key)}
}

// SetKey installs a new key on configuration reload.
func (v *Validator) SetKey(key string) {
	v.mu.Lock()
	v.key = []byte(key)
	v.mu.Unlock()
}

// Enabled reports whether an admin key is configured.
func (v *Validator) Enabled() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.key) > 0
}

// Validate checks a presented key.
func (v *Validator) Validate(presented string) error {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if len(v.key) == 0 {
		return ErrDisabled
	}
	if presented == "" {
		return ErrMissingKey
	}
	if subtle.ConstantTimeCompare(v.key, []byte(presented)) != 1 {
		return ErrInvalidKey
	}
	return nil
}
