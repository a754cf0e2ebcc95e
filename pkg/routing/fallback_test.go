package routing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	mock "meridian-hq/janus/internal/routing"
	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/routing"
	"meridian-hq/janus/pkg/routing/strategies"
)

// attemptLog is an AttemptObserver recording every attempt.
type attemptLog struct {
	mu       sync.Mutex
	attempts []routing.Attempt
}

func (l *attemptLog) ObserveAttempt(_ context.Context, att routing.Attempt) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts = append(l.attempts, att)
}

func (l *attemptLog) all() []routing.Attempt {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]routing.Attempt(nil), l.attempts...)
}

type execFixture struct {
	openai    *mock.MockAdapter
	anthropic *mock.MockAdapter
	observer  *attemptLog
	exec      *routing.Executor
}

func newExecFixture(fallbacks config.FallbackConfig) *execFixture {
	f := &execFixture{
		openai:    mock.NewMockAdapter("openai"),
		anthropic: mock.NewMockAdapter("anthropic"),
		observer:  &attemptLog{},
	}

	router := routing.NewRouter(testModels(), nil,
		func() config.RoutingConfig { return config.RoutingConfig{} }, strategies.All())
	adapters := mock.NewAdapterSource(f.openai, f.anthropic)

	f.exec = routing.NewExecutor(router, adapters, nil, f.observer,
		func() config.FallbackConfig { return fallbacks })
	return f
}

func chainTo(substitutes ...string) config.FallbackConfig {
	return config.FallbackConfig{
		Enabled: true,
		Rules: []config.FallbackRule{
			{Model: "openai.gpt-4", Fallbacks: substitutes},
		},
	}
}

func completionRequest() *providers.CompletionRequest {
	return &providers.CompletionRequest{
		Model:    "openai.gpt-4",
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "hi"}},
	}
}

func TestExecutorPrimarySuccess(t *testing.T) {
	f := newExecFixture(chainTo("anthropic.claude-3-haiku"))

	resp, err := f.exec.Do(context.Background(), completionRequest())
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if resp.Provider != "openai" {
		t.Errorf("provider = %q", resp.Provider)
	}
	// The adapter sees the provider-native model id, not the canonical one.
	if got := f.openai.LastRequest().Model; got != "gpt-4" {
		t.Errorf("wire model = %q", got)
	}
	if f.anthropic.Calls() != 0 {
		t.Errorf("substitute called %d times on primary success", f.anthropic.Calls())
	}

	attempts := f.observer.all()
	if len(attempts) != 1 || attempts[0].Index != 1 || attempts[0].Err != nil {
		t.Errorf("attempts = %+v", attempts)
	}
}

func TestExecutorFallsBack(t *testing.T) {
	f := newExecFixture(chainTo("anthropic.claude-3-haiku"))
	f.openai.ScriptCompletionErrors(&providers.RateLimitError{Provider: "openai", Message: "slow down"})

	resp, err := f.exec.Do(context.Background(), completionRequest())
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if resp.Provider != "anthropic" {
		t.Errorf("provider = %q, want the substitute", resp.Provider)
	}
	if f.openai.Calls() != 1 || f.anthropic.Calls() != 1 {
		t.Errorf("calls = %d/%d", f.openai.Calls(), f.anthropic.Calls())
	}

	attempts := f.observer.all()
	if len(attempts) != 2 {
		t.Fatalf("attempts = %d", len(attempts))
	}
	if attempts[0].Err == nil || attempts[0].Model.ID != "openai.gpt-4" {
		t.Errorf("first attempt = %+v", attempts[0])
	}
	if attempts[1].Err != nil || attempts[1].Index != 2 || attempts[1].Model.ID != "anthropic.claude-3-haiku" {
		t.Errorf("second attempt = %+v", attempts[1])
	}
}

func TestExecutorChainExhausted(t *testing.T) {
	f := newExecFixture(chainTo("anthropic.claude-3-haiku"))
	f.openai.ScriptCompletionErrors(&providers.RateLimitError{Provider: "openai"})
	f.anthropic.ScriptCompletionErrors(&providers.UnavailableError{Provider: "anthropic"})

	_, err := f.exec.Do(context.Background(), completionRequest())
	var exhausted *routing.FallbackExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("err = %v, want FallbackExhaustedError", err)
	}
	if exhausted.Attempts != 2 {
		t.Errorf("Attempts = %d", exhausted.Attempts)
	}
	if len(exhausted.Tried) != 2 || exhausted.Tried[1] != "anthropic.claude-3-haiku" {
		t.Errorf("Tried = %v", exhausted.Tried)
	}
	if providers.CodeOf(err) != providers.CodeFallbackExhausted {
		t.Errorf("code = %q", providers.CodeOf(err))
	}
}

func TestExecutorErrorCodeFilter(t *testing.T) {
	cfg := chainTo("anthropic.claude-3-haiku")
	cfg.Rules[0].OnlyErrorCodes = []string{providers.CodeRateLimitExceeded}

	f := newExecFixture(cfg)
	f.openai.ScriptCompletionErrors(&providers.AuthError{Provider: "openai", Message: "bad key"})

	_, err := f.exec.Do(context.Background(), completionRequest())
	var authErr *providers.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want the primary failure untouched", err)
	}
	if f.anthropic.Calls() != 0 {
		t.Errorf("substitute called despite the code filter")
	}
}

func TestExecutorDisabled(t *testing.T) {
	cfg := chainTo("anthropic.claude-3-haiku")
	cfg.Enabled = false

	f := newExecFixture(cfg)
	f.openai.ScriptCompletionErrors(&providers.RateLimitError{Provider: "openai"})

	_, err := f.exec.Do(context.Background(), completionRequest())
	var rateLimited *providers.RateLimitError
	if !errors.As(err, &rateLimited) {
		t.Fatalf("err = %v, want the primary failure", err)
	}
	if f.anthropic.Calls() != 0 {
		t.Error("fallback ran while disabled")
	}
}

func TestExecutorMaxAttempts(t *testing.T) {
	cfg := chainTo("anthropic.claude-3-haiku")
	cfg.MaxAttempts = 1

	f := newExecFixture(cfg)
	f.openai.ScriptCompletionErrors(&providers.RateLimitError{Provider: "openai"})

	if _, err := f.exec.Do(context.Background(), completionRequest()); err == nil {
		t.Fatal("Do() succeeded past the attempt cap")
	}
	if f.anthropic.Calls() != 0 {
		t.Error("attempt cap did not stop the chain")
	}
}

func TestExecutorSkipsUnresolvableSubstitute(t *testing.T) {
	f := newExecFixture(chainTo("no-such-model", "anthropic.claude-3-haiku"))
	f.openai.ScriptCompletionErrors(&providers.RateLimitError{Provider: "openai"})

	resp, err := f.exec.Do(context.Background(), completionRequest())
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if resp.Provider != "anthropic" {
		t.Errorf("provider = %q, want the resolvable substitute", resp.Provider)
	}
}

func TestExecutorStreamFallback(t *testing.T) {
	f := newExecFixture(chainTo("anthropic.claude-3-haiku"))
	f.openai.ScriptStreamErrors(&providers.RateLimitError{Provider: "openai"})

	req := completionRequest()
	req.Stream = true
	chunks, err := f.exec.DoStream(context.Background(), req)
	if err != nil {
		t.Fatalf("DoStream() error = %v", err)
	}

	var assembled string
	for chunk := range chunks {
		if chunk.Err != nil {
			t.Fatalf("chunk error = %v", chunk.Err)
		}
		assembled += chunk.Delta
	}
	if assembled != "mock stream" {
		t.Errorf("assembled = %q", assembled)
	}
	if f.anthropic.StreamCalls() != 1 {
		t.Errorf("substitute stream calls = %d", f.anthropic.StreamCalls())
	}
}

// hangingStreamAdapter opens streams that never yield a chunk; it records
// when the stream's context is canceled.
type hangingStreamAdapter struct {
	*mock.MockAdapter
	canceled chan struct{}
}

func (h *hangingStreamAdapter) CreateCompletionStream(ctx context.Context, _ *providers.CompletionRequest) (<-chan *providers.CompletionChunk, error) {
	out := make(chan *providers.CompletionChunk)
	go func() {
		<-ctx.Done()
		close(out)
		close(h.canceled)
	}()
	return out, nil
}

func TestExecutorStreamAttemptCanceledOnFallback(t *testing.T) {
	cfg := chainTo("anthropic.claude-3-haiku")
	cfg.AttemptTimeout = 50 * time.Millisecond

	hanging := &hangingStreamAdapter{
		MockAdapter: mock.NewMockAdapter("openai"),
		canceled:    make(chan struct{}),
	}
	anthropic := mock.NewMockAdapter("anthropic")

	router := routing.NewRouter(testModels(), nil,
		func() config.RoutingConfig { return config.RoutingConfig{} }, strategies.All())
	exec := routing.NewExecutor(router, mock.NewAdapterSource(hanging, anthropic), nil, nil,
		func() config.FallbackConfig { return cfg })

	req := completionRequest()
	req.Stream = true
	chunks, err := exec.DoStream(context.Background(), req)
	if err != nil {
		t.Fatalf("DoStream() error = %v", err)
	}
	for range chunks {
	}

	// The abandoned attempt must release its upstream promptly, not hold
	// it until the request context ends.
	select {
	case <-hanging.canceled:
	case <-time.After(2 * time.Second):
		t.Error("abandoned stream attempt still holds its upstream")
	}
	if anthropic.StreamCalls() != 1 {
		t.Errorf("substitute stream calls = %d", anthropic.StreamCalls())
	}
}

func TestExecutorEmbeddingFallback(t *testing.T) {
	f := newExecFixture(config.FallbackConfig{
		Enabled: true,
		Rules: []config.FallbackRule{
			{Model: "openai.text-embedding-3-small", Fallbacks: []string{"anthropic.claude-3-haiku"}},
		},
	})

	resp, err := f.exec.DoEmbedding(context.Background(), &providers.EmbeddingRequest{
		Model: "openai.text-embedding-3-small",
		Input: []string{"hello"},
	})
	if err != nil {
		t.Fatalf("DoEmbedding() error = %v", err)
	}
	if resp.Provider != "openai" || len(resp.Embeddings) != 1 {
		t.Errorf("resp = %+v", resp)
	}
}
