package usage

import (
	"fmt"
	"time"

	"meridian-hq/janus/pkg/providers"
)

// UserUsage is a snapshot of one user's token consumption over the
// accounting window.
type UserUsage struct {
	// User is the user identifier.
	User string `json:"user"`

	// TotalTokens is the token total consumed within the window.
	TotalTokens int64 `json:"total_tokens"`

	// Window is the accounting window the total covers.
	Window time.Duration `json:"window"`

	// BudgetTokens is the user's allowance, zero when no budget applies.
	BudgetTokens int64 `json:"budget_tokens,omitempty"`
}

// Remaining returns the unspent allowance, zero when exhausted or unbudgeted.
func (u UserUsage) Remaining() int64 {
	if u.BudgetTokens <= 0 {
		return 0
	}
	if r := u.BudgetTokens - u.TotalTokens; r > 0 {
		return r
	}
	return 0
}

// BudgetExceededError rejects a request whose user has exhausted an
// enforced token budget.
type BudgetExceededError struct {
	User   string
	Used   int64
	Budget int64
	Window time.Duration
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("user %q exceeded token budget: %d of %d tokens used in %s",
		e.User, e.Used, e.Budget, e.Window)
}

// ErrorCode implements providers.Coder. Budget rejections surface to
// clients as rate limiting.
func (e *BudgetExceededError) ErrorCode() string { return providers.CodeRateLimitExceeded }

// StoreError is a failure in a usage store backend.
type StoreError struct {
	Backend   string
	Operation string
	Cause     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("usage store error [backend=%s, operation=%s]: %v",
		e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error { return e.Cause }
