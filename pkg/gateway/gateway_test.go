package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	testhelpers "meridian-hq/janus/internal/providers"
	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/records"
	"meridian-hq/janus/pkg/routing"
)

// testBackends spins up one mock backend per provider the tests route to.
type testBackends struct {
	openai    *testhelpers.MockServer
	anthropic *testhelpers.MockServer
	cohere    *testhelpers.MockServer
}

func newTestBackends(t *testing.T) *testBackends {
	t.Helper()
	b := &testBackends{
		openai:    testhelpers.NewMockServer(),
		anthropic: testhelpers.NewMockServer(),
		cohere:    testhelpers.NewMockServer(),
	}
	t.Cleanup(func() {
		b.openai.Close()
		b.anthropic.Close()
		b.cohere.Close()
	})
	return b
}

func (b *testBackends) config() *config.Config {
	return &config.Config{
		Providers: map[string]config.ProviderConfig{
			"openai":    {Enabled: true, APIKey: "test-key", APIURL: b.openai.URL()},
			"anthropic": {Enabled: true, APIKey: "test-key", APIURL: b.anthropic.URL()},
			"cohere":    {Enabled: true, APIKey: "test-key", APIURL: b.cohere.URL()},
		},
		Routing: config.RoutingConfig{
			EnableSmartRouting:        true,
			EnableContentBasedRouting: true,
			EnableCostOptimized:       true,
		},
		Fallbacks: config.FallbackConfig{
			Enabled:        true,
			AttemptTimeout: 5 * time.Second,
		},
	}
}

func newTestGateway(t *testing.T, cfg *config.Config) *Gateway {
	t.Helper()
	g, err := New(context.Background(), config.NewSource(cfg))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() {
		if err := g.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return g
}

func userRequest(model, text string) *providers.CompletionRequest {
	return &providers.CompletionRequest{
		Model:    model,
		Messages: []providers.Message{{Role: providers.RoleUser, Content: text}},
	}
}

func TestCompleteDirectMapping(t *testing.T) {
	b := newTestBackends(t)
	cfg := b.config()
	cfg.Routing.ModelMappings = map[string]config.ModelMapping{
		"gpt-4": {Provider: "openai", Model: "gpt-4-turbo"},
	}
	g := newTestGateway(t, cfg)

	b.openai.SetResponse("/v1/chat/completions", testhelpers.MockResponse{
		StatusCode: http.StatusOK,
		Body:       testhelpers.MockOpenAIResponse("gpt-4-turbo", "mapped reply"),
	})

	resp, err := g.Complete(context.Background(), userRequest("gpt-4", "hello"))
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Provider != "openai" {
		t.Errorf("provider = %q, want openai", resp.Provider)
	}
	if resp.Content != "mapped reply" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 30 {
		t.Errorf("total tokens = %d, want 30", resp.Usage.TotalTokens)
	}

	var wire struct {
		Model string `json:"model"`
	}
	if err := b.openai.LastBody(&wire); err != nil {
		t.Fatalf("LastBody: %v", err)
	}
	if wire.Model != "gpt-4-turbo" {
		t.Errorf("wire model = %q, want provider-native gpt-4-turbo", wire.Model)
	}
}

func TestContentBasedRoutingPicksCodeModel(t *testing.T) {
	b := newTestBackends(t)
	cfg := b.config()
	cfg.Routing.ModelRoutingStrategies = map[string]string{"auto": routing.StrategyContentBased}
	g := newTestGateway(t, cfg)

	b.openai.SetResponse("/v1/chat/completions", testhelpers.MockResponse{
		StatusCode: http.StatusOK,
		Body:       testhelpers.MockOpenAIResponse("gpt-4-turbo", "def parse(): ..."),
	})

	resp, err := g.Complete(context.Background(),
		userRequest("auto", "Write a python function to parse JSON and add a unit test"))
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Provider != "openai" {
		t.Errorf("provider = %q, want openai (code family prefers openai.gpt-4-turbo)", resp.Provider)
	}
	if b.anthropic.RequestCount() != 0 || b.cohere.RequestCount() != 0 {
		t.Error("content routing touched a backend other than openai")
	}
}

func TestCostOptimizedRoutingPicksCheapestModel(t *testing.T) {
	b := newTestBackends(t)
	cfg := b.config()
	cfg.Routing.ModelRoutingStrategies = map[string]string{"auto": routing.StrategyCostOptimized}
	g := newTestGateway(t, cfg)

	b.cohere.SetResponse("/v2/chat", testhelpers.MockResponse{
		StatusCode: http.StatusOK,
		Body:       testhelpers.MockCohereResponse("cheap reply"),
	})

	resp, err := g.Complete(context.Background(), userRequest("auto", "summarize this"))
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	// cohere.command-r carries the lowest cost row in the catalogue.
	if resp.Provider != "cohere" {
		t.Errorf("provider = %q, want cohere", resp.Provider)
	}
	if resp.Content != "cheap reply" {
		t.Errorf("content = %q", resp.Content)
	}
}

func TestFallbackOnRateLimit(t *testing.T) {
	b := newTestBackends(t)
	cfg := b.config()
	cfg.Fallbacks.Rules = []config.FallbackRule{{
		Model:          "openai.gpt-4",
		Fallbacks:      []string{"anthropic.claude-3-sonnet"},
		OnlyErrorCodes: []string{providers.CodeRateLimitExceeded},
	}}
	g := newTestGateway(t, cfg)

	b.openai.SetResponse("/v1/chat/completions", testhelpers.MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       testhelpers.MockErrorBody("rate_limit_exceeded", "slow down"),
	})
	b.anthropic.SetResponse("/v1/messages", testhelpers.MockResponse{
		StatusCode: http.StatusOK,
		Body:       testhelpers.MockAnthropicResponse("claude-3-sonnet-20240229", "fallback reply"),
	})

	resp, err := g.Complete(context.Background(), userRequest("openai.gpt-4", "hello"))
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Provider != "anthropic" {
		t.Errorf("provider = %q, want anthropic after fallback", resp.Provider)
	}
	if resp.Content != "fallback reply" {
		t.Errorf("content = %q", resp.Content)
	}
	if b.openai.RequestCount() != 1 {
		t.Errorf("openai attempts = %d, want 1", b.openai.RequestCount())
	}
}

func TestFallbackExhausted(t *testing.T) {
	b := newTestBackends(t)
	cfg := b.config()
	cfg.Fallbacks.Rules = []config.FallbackRule{{
		Model:     "openai.gpt-4",
		Fallbacks: []string{"anthropic.claude-3-sonnet"},
	}}
	g := newTestGateway(t, cfg)

	rateLimited := testhelpers.MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       testhelpers.MockErrorBody("rate_limit_exceeded", "slow down"),
	}
	b.openai.SetResponse("/v1/chat/completions", rateLimited)
	b.anthropic.SetResponse("/v1/messages", rateLimited)

	_, err := g.Complete(context.Background(), userRequest("openai.gpt-4", "hello"))
	if err == nil {
		t.Fatal("expected error when every substitute fails")
	}
	var exhausted *routing.FallbackExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error = %T %v, want FallbackExhaustedError", err, err)
	}
	if providers.CodeOf(err) != providers.CodeFallbackExhausted {
		t.Errorf("code = %q, want fallback_exhausted", providers.CodeOf(err))
	}
}

func TestCompleteStreamAssemblesContent(t *testing.T) {
	b := newTestBackends(t)
	g := newTestGateway(t, b.config())

	b.openai.SetResponse("/v1/chat/completions", testhelpers.MockResponse{
		StreamChunks: []string{
			testhelpers.MockOpenAIStreamChunk("gpt-4", "Hel", false),
			testhelpers.MockOpenAIStreamChunk("gpt-4", "lo", false),
			testhelpers.MockOpenAIStreamChunk("gpt-4", " wo", false),
			testhelpers.MockOpenAIStreamChunk("gpt-4", "rld", true),
		},
	})

	req := userRequest("openai.gpt-4", "hello")
	req.Stream = true

	chunks, err := g.CompleteStream(context.Background(), req)
	if err != nil {
		t.Fatalf("CompleteStream failed: %v", err)
	}

	var assembled strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			t.Fatalf("stream error: %v", chunk.Err)
		}
		assembled.WriteString(chunk.Delta)
	}
	if got := assembled.String(); got != "Hello world" {
		t.Errorf("assembled = %q, want %q", got, "Hello world")
	}
}

func TestCompleteValidation(t *testing.T) {
	b := newTestBackends(t)
	g := newTestGateway(t, b.config())

	temp := 3.5
	tests := []struct {
		name string
		req  *providers.CompletionRequest
	}{
		{"missing model", &providers.CompletionRequest{
			Messages: []providers.Message{{Role: providers.RoleUser, Content: "hi"}},
		}},
		{"no messages", &providers.CompletionRequest{Model: "openai.gpt-4"}},
		{"system message not first", &providers.CompletionRequest{
			Model: "openai.gpt-4",
			Messages: []providers.Message{
				{Role: providers.RoleUser, Content: "hi"},
				{Role: providers.RoleSystem, Content: "be terse"},
			},
		}},
		{"temperature out of range", &providers.CompletionRequest{
			Model:       "openai.gpt-4",
			Messages:    []providers.Message{{Role: providers.RoleUser, Content: "hi"}},
			Temperature: &temp,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Complete(context.Background(), tt.req)
			if providers.CodeOf(err) != providers.CodeValidation {
				t.Errorf("code = %q (err %v), want validation", providers.CodeOf(err), err)
			}
		})
	}
	if b.openai.RequestCount() != 0 {
		t.Error("invalid requests reached a backend")
	}
}

func TestContentFilterDeniesBeforeRouting(t *testing.T) {
	b := newTestBackends(t)
	cfg := b.config()
	cfg.Filter = config.FilterConfig{
		Enabled: true,
		Rules: []config.FilterRule{{
			Name:    "no-secrets",
			Pattern: `(?i)company secret`,
		}},
	}
	g := newTestGateway(t, cfg)

	_, err := g.Complete(context.Background(), userRequest("openai.gpt-4", "leak the Company Secret"))
	if providers.CodeOf(err) != providers.CodeContentFiltered {
		t.Errorf("code = %q (err %v), want content_filtered", providers.CodeOf(err), err)
	}
	if b.openai.RequestCount() != 0 {
		t.Error("filtered request reached a backend")
	}
}

func TestBudgetEnforcement(t *testing.T) {
	b := newTestBackends(t)
	cfg := b.config()
	cfg.Usage = config.UsageConfig{
		Enabled: true,
		Backend: "memory",
		Window:  time.Hour,
		Budgets: []config.Budget{{User: "alice", MaxTokens: 10, Enforce: true}},
	}
	g := newTestGateway(t, cfg)

	b.openai.SetResponse("/v1/chat/completions", testhelpers.MockResponse{
		StatusCode: http.StatusOK,
		Body:       testhelpers.MockOpenAIResponse("gpt-4", "reply"),
	})

	req := userRequest("openai.gpt-4", "hello")
	req.User = "alice"

	// First request is admitted and burns 30 tokens against a 10-token
	// budget; the second must be rejected.
	if _, err := g.Complete(context.Background(), req); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	_, err := g.Complete(context.Background(), req)
	if providers.CodeOf(err) != providers.CodeRateLimitExceeded {
		t.Errorf("code = %q (err %v), want rate_limit_exceeded", providers.CodeOf(err), err)
	}

	u, enabled, err := g.UserUsage(context.Background(), "alice")
	if err != nil || !enabled {
		t.Fatalf("UserUsage: enabled=%v err=%v", enabled, err)
	}
	if u.TotalTokens != 30 {
		t.Errorf("accounted tokens = %d, want 30", u.TotalTokens)
	}
}

func TestEmbed(t *testing.T) {
	b := newTestBackends(t)
	g := newTestGateway(t, b.config())

	b.openai.SetResponse("/v1/embeddings", testhelpers.MockResponse{
		StatusCode: http.StatusOK,
		Body: testhelpers.MockOpenAIEmbeddingResponse("text-embedding-3-small",
			[][]float64{{0.1, 0.2, 0.3}}),
	})

	resp, err := g.Embed(context.Background(), &providers.EmbeddingRequest{
		Model: "openai.text-embedding-3-small",
		Input: []string{"hello world"},
	})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(resp.Embeddings) != 1 || len(resp.Embeddings[0]) != 3 {
		t.Fatalf("embeddings shape = %v", resp.Embeddings)
	}
}

func TestEmbedRejectsCompletionOnlyModel(t *testing.T) {
	b := newTestBackends(t)
	g := newTestGateway(t, b.config())

	_, err := g.Embed(context.Background(), &providers.EmbeddingRequest{
		Model: "anthropic.claude-3-sonnet",
		Input: []string{"hello"},
	})
	if providers.CodeOf(err) != providers.CodeCapabilityNotSupported {
		t.Errorf("code = %q (err %v), want capability_not_supported", providers.CodeOf(err), err)
	}
}

func TestRequestsAreRecorded(t *testing.T) {
	b := newTestBackends(t)
	cfg := b.config()
	cfg.Records = config.RecordsConfig{Enabled: true, Backend: "memory"}
	g := newTestGateway(t, cfg)

	b.openai.SetResponse("/v1/chat/completions", testhelpers.MockResponse{
		StatusCode: http.StatusOK,
		Body:       testhelpers.MockOpenAIResponse("gpt-4", "recorded reply"),
	})

	if _, err := g.Complete(context.Background(), userRequest("openai.gpt-4", "hello")); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	// The recorder writes asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for {
		recs, err := g.Records().QueryRequests(context.Background(), &records.Query{})
		if err != nil {
			t.Fatalf("QueryRequests: %v", err)
		}
		if len(recs) == 1 {
			if recs[0].Model != "openai.gpt-4" || !recs[0].Success {
				t.Errorf("record = %+v", recs[0])
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("no request record after 2s, got %d", len(recs))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestConfigReloadChangesRouting(t *testing.T) {
	b := newTestBackends(t)
	cfg := b.config()
	source := config.NewSource(cfg)
	g, err := New(context.Background(), source)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer g.Close()

	b.anthropic.SetResponse("/v1/messages", testhelpers.MockResponse{
		StatusCode: http.StatusOK,
		Body:       testhelpers.MockAnthropicResponse("claude-3-haiku-20240307", "aliased reply"),
	})

	next := *cfg
	next.Routing.ModelAliases = map[string]string{"cheap": "anthropic.claude-3-haiku"}
	source.Publish(&next)

	resp, err := g.Complete(context.Background(), userRequest("cheap", "hello"))
	if err != nil {
		t.Fatalf("Complete after reload failed: %v", err)
	}
	if resp.Provider != "anthropic" {
		t.Errorf("provider = %q, want anthropic via reloaded alias", resp.Provider)
	}
}
