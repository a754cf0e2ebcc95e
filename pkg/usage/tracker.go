package usage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"meridian-hq/janus/pkg/alerts"
	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/providers"
)

// Tracker accounts token consumption per user over a sliding window and
// applies the configured budgets. Crossing a budget raises one token_usage
// alert per crossing; budgets marked Enforce additionally reject requests
// until the window slides back under the allowance.
type Tracker struct {
	store Store
	sink  alerts.Sink
	log   *slog.Logger

	mu      sync.Mutex
	cfg     config.UsageConfig
	alerted map[string]bool
}

// NewTracker creates a tracker over a store. sink may be nil.
func NewTracker(store Store, cfg config.UsageConfig, sink alerts.Sink) *Tracker {
	if sink == nil {
		sink = alerts.NopSink{}
	}
	return &Tracker{
		store:   store,
		sink:    sink,
		cfg:     cfg,
		alerted: make(map[string]bool),
		log:     slog.Default().With("component", "usage"),
	}
}

// SetOptions installs a new configuration epoch.
func (t *Tracker) SetOptions(cfg config.UsageConfig) {
	t.mu.Lock()
	t.cfg = cfg
	t.mu.Unlock()
}

func (t *Tracker) options() config.UsageConfig {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg
}

// Check rejects the request when the user's enforced budget is exhausted.
// Called before routing; users without an enforced budget always pass.
func (t *Tracker) Check(ctx context.Context, user string) error {
	cfg := t.options()
	if !cfg.Enabled || user == "" {
		return nil
	}
	budget := cfg.BudgetFor(user)
	if budget == nil || !budget.Enforce || budget.MaxTokens <= 0 {
		return nil
	}

	total, err := t.store.Sum(ctx, user, time.Now().Add(-cfg.Window))
	if err != nil {
		// Accounting must not take the gateway down with it.
		t.log.Error("usage lookup failed, admitting request", "user", user, "error", err)
		return nil
	}
	if total >= budget.MaxTokens {
		return &BudgetExceededError{
			User:   user,
			Used:   total,
			Budget: budget.MaxTokens,
			Window: cfg.Window,
		}
	}
	return nil
}

// Record accounts one request's token usage and evaluates the user's budget.
func (t *Tracker) Record(ctx context.Context, user, model string, usage providers.TokenUsage) {
	cfg := t.options()
	if !cfg.Enabled || user == "" || usage.TotalTokens == 0 {
		return
	}

	if err := t.store.Add(ctx, user, int64(usage.TotalTokens), time.Now()); err != nil {
		t.log.Error("failed to record usage", "user", user, "error", err)
		return
	}

	budget := cfg.BudgetFor(user)
	if budget == nil || budget.MaxTokens <= 0 {
		return
	}

	total, err := t.store.Sum(ctx, user, time.Now().Add(-cfg.Window))
	if err != nil {
		t.log.Error("usage lookup failed", "user", user, "error", err)
		return
	}
	t.evaluate(ctx, user, model, total, budget, cfg.Window)
}

// Usage returns the user's current window snapshot.
func (t *Tracker) Usage(ctx context.Context, user string) (UserUsage, error) {
	cfg := t.options()
	total, err := t.store.Sum(ctx, user, time.Now().Add(-cfg.Window))
	if err != nil {
		return UserUsage{}, err
	}
	u := UserUsage{User: user, TotalTokens: total, Window: cfg.Window}
	if budget := cfg.BudgetFor(user); budget != nil {
		u.BudgetTokens = budget.MaxTokens
	}
	return u, nil
}

// AllUsage returns a snapshot for every user seen within the window.
func (t *Tracker) AllUsage(ctx context.Context) ([]UserUsage, error) {
	cfg := t.options()
	users, err := t.store.Users(ctx, time.Now().Add(-cfg.Window))
	if err != nil {
		return nil, err
	}

	out := make([]UserUsage, 0, len(users))
	for _, user := range users {
		u, err := t.Usage(ctx, user)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// Prune drops events that have slid out of the window. Safe to call from a
// maintenance schedule.
func (t *Tracker) Prune(ctx context.Context) error {
	return t.store.Prune(ctx, time.Now().Add(-t.options().Window))
}

// evaluate fires the token_usage alert once per budget crossing and re-arms
// once the window slides back under the allowance.
func (t *Tracker) evaluate(ctx context.Context, user, model string, total int64, budget *config.Budget, window time.Duration) {
	t.mu.Lock()
	over := total >= budget.MaxTokens
	fire := over && !t.alerted[user]
	t.alerted[user] = over
	t.mu.Unlock()

	if !fire {
		return
	}

	t.log.Warn("user crossed token budget",
		"user", user,
		"used", total,
		"budget", budget.MaxTokens,
		"window", window,
	)
	t.sink.Send(ctx, alerts.Alert{
		Kind:    alerts.KindTokenUsage,
		User:    user,
		Model:   model,
		Message: fmt.Sprintf("user %q used %d of %d tokens in %s", user, total, budget.MaxTokens, window),
		Details: map[string]any{
			"used":    total,
			"budget":  budget.MaxTokens,
			"window":  window.String(),
			"enforce": budget.Enforce,
		},
		Time: time.Now(),
	})
}

// OpenStore builds the configured store backend.
func OpenStore(cfg config.UsageConfig) (Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "memory", "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown usage backend %q", cfg.Backend)
	}
}
