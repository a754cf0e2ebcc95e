package proxy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/monitor"
	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/proxy/types"
	"meridian-hq/janus/pkg/registry"
	"meridian-hq/janus/pkg/security/auth"
)

// fakeCore scripts gateway behavior for handler tests.
type fakeCore struct {
	resp      *providers.CompletionResponse
	chunks    []*providers.CompletionChunk
	embedding *providers.EmbeddingResponse
	err       error

	lastCompletion *providers.CompletionRequest
	lastEmbedding  *providers.EmbeddingRequest
}

func (f *fakeCore) Complete(_ context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	f.lastCompletion = req
	return f.resp, f.err
}

func (f *fakeCore) CompleteStream(_ context.Context, req *providers.CompletionRequest) (<-chan *providers.CompletionChunk, error) {
	f.lastCompletion = req
	if f.err != nil {
		return nil, f.err
	}
	out := make(chan *providers.CompletionChunk, len(f.chunks))
	for _, c := range f.chunks {
		out <- c
	}
	close(out)
	return out, nil
}

func (f *fakeCore) Embed(_ context.Context, req *providers.EmbeddingRequest) (*providers.EmbeddingResponse, error) {
	f.lastEmbedding = req
	return f.embedding, f.err
}

type fakeModels struct {
	models   []registry.ModelInfo
	upserted []config.ModelOverride
}

func (f *fakeModels) ListModels() []registry.ModelInfo      { return f.models }
func (f *fakeModels) UpsertOverride(o config.ModelOverride) { f.upserted = append(f.upserted, o) }

type fakeHealth map[string]monitor.ProviderHealth

func (f fakeHealth) Health() map[string]monitor.ProviderHealth { return f }

func newTestHandler(core *fakeCore, models *fakeModels, adminKey string) http.Handler {
	return NewHandler(config.ServerConfig{RequestTimeoutSeconds: 5}, Deps{
		Core:   core,
		Models: models,
		Health: fakeHealth{"openai": {Provider: "openai", Available: true}},
		Ready:  func() bool { return true },
		Admin:  auth.NewValidator(adminKey),
	})
}

func TestCompletionsEndpoint(t *testing.T) {
	core := &fakeCore{resp: &providers.CompletionResponse{
		ID:           "resp-1",
		Model:        "gpt-4",
		Provider:     "openai",
		Content:      "hello back",
		FinishReason: "stop",
		Usage:        providers.TokenUsage{PromptTokens: 3, CompletionTokens: 5, TotalTokens: 8},
	}}
	handler := newTestHandler(core, &fakeModels{}, "")

	body := `{"model":"openai.gpt-4","messages":[{"role":"user","content":"hello"}]}`
	req := httptest.NewRequest("POST", "/v1/completions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var wire types.CompletionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &wire); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(wire.Choices) != 1 || wire.Choices[0].Message == nil {
		t.Fatalf("choices = %+v", wire.Choices)
	}
	if wire.Choices[0].Message.Content != "hello back" {
		t.Errorf("content = %q", wire.Choices[0].Message.Content)
	}
	if wire.Usage == nil || wire.Usage.TotalTokens != 8 {
		t.Errorf("usage = %+v", wire.Usage)
	}
	if core.lastCompletion.Model != "openai.gpt-4" {
		t.Errorf("model passed through = %q", core.lastCompletion.Model)
	}
	if rec.Header().Get("X-Correlation-ID") == "" {
		t.Error("no correlation id echoed")
	}
}

func TestCompletionsError(t *testing.T) {
	core := &fakeCore{err: &providers.ModelNotFoundError{Model: "nope"}}
	handler := newTestHandler(core, &fakeModels{}, "")

	body := `{"model":"nope","messages":[{"role":"user","content":"hello"}]}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/completions", strings.NewReader(body)))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("content type = %q", ct)
	}
	var p types.Problem
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Code != "model_not_found" {
		t.Errorf("code = %q", p.Code)
	}
	if p.CorrelationID == "" {
		t.Error("problem lacks correlation id")
	}
}

func TestCompletionsMalformedBody(t *testing.T) {
	handler := newTestHandler(&fakeCore{}, &fakeModels{}, "")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/completions", strings.NewReader("{not json")))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCompletionsStreaming(t *testing.T) {
	core := &fakeCore{chunks: []*providers.CompletionChunk{
		{ID: "c1", Model: "gpt-4", Delta: "Hel"},
		{ID: "c1", Model: "gpt-4", Delta: "lo", FinishReason: "stop",
			Usage: &providers.TokenUsage{TotalTokens: 5}},
	}}
	handler := newTestHandler(core, &fakeModels{}, "")

	body := `{"model":"openai.gpt-4","stream":true,"messages":[{"role":"user","content":"hello"}]}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/completions", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	frames := strings.Split(strings.TrimSpace(rec.Body.String()), "\n\n")
	if len(frames) != 3 {
		t.Fatalf("frames = %d: %q", len(frames), rec.Body.String())
	}
	if frames[2] != "data: [DONE]" {
		t.Errorf("terminal frame = %q", frames[2])
	}

	var assembled strings.Builder
	for _, frame := range frames[:2] {
		payload := strings.TrimPrefix(frame, "data: ")
		var chunk types.CompletionResponse
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			t.Fatalf("chunk decode: %v", err)
		}
		if chunk.Object != "completion.chunk" {
			t.Errorf("object = %q", chunk.Object)
		}
		assembled.WriteString(chunk.Choices[0].Delta.Content)
	}
	if assembled.String() != "Hello" {
		t.Errorf("assembled = %q", assembled.String())
	}
}

func TestEmbeddingsAcceptsSingleString(t *testing.T) {
	core := &fakeCore{embedding: &providers.EmbeddingResponse{
		Model:      "text-embedding-3-small",
		Provider:   "openai",
		Embeddings: [][]float64{{0.1, 0.2}},
		Usage:      providers.TokenUsage{PromptTokens: 2, TotalTokens: 2},
	}}
	handler := newTestHandler(core, &fakeModels{}, "")

	body := `{"model":"openai.text-embedding-3-small","input":"hello"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/embeddings", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := core.lastEmbedding.Input; len(got) != 1 || got[0] != "hello" {
		t.Errorf("input = %v", got)
	}
	var wire types.EmbeddingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &wire); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if wire.Object != "list" || len(wire.Data) != 1 {
		t.Errorf("wire = %+v", wire)
	}
}

func TestModelsList(t *testing.T) {
	models := &fakeModels{models: []registry.ModelInfo{{
		ID:       "openai.gpt-4",
		Provider: "openai",
		Capabilities: registry.Capabilities{
			Completions: true,
			Streaming:   true,
		},
	}}}
	handler := newTestHandler(&fakeCore{}, models, "")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/models", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var wire types.ModelList
	if err := json.Unmarshal(rec.Body.Bytes(), &wire); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(wire.Data) != 1 || wire.Data[0].ID != "openai.gpt-4" {
		t.Errorf("data = %+v", wire.Data)
	}
	if got := wire.Data[0].Capabilities; len(got) != 2 {
		t.Errorf("capabilities = %v", got)
	}
}

func TestAdminModelsGuard(t *testing.T) {
	models := &fakeModels{}
	handler := newTestHandler(&fakeCore{}, models, "s3cret")

	body := `{"id":"internal.gpt-4","provider":"azure","provider_model_id":"gpt-4"}`

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/admin/models", strings.NewReader(body)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest("POST", "/admin/models", strings.NewReader(body))
	req.Header.Set(auth.HeaderAPIKey, "s3cret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("with key: status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(models.upserted) != 1 || models.upserted[0].ID != "internal.gpt-4" {
		t.Errorf("upserted = %+v", models.upserted)
	}
}

func TestAdminSurfaceHiddenWithoutKey(t *testing.T) {
	handler := newTestHandler(&fakeCore{}, &fakeModels{}, "")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/admin/models", strings.NewReader("{}")))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when admin is disabled", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	handler := newTestHandler(&fakeCore{}, &fakeModels{}, "")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/health status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/ready status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health/providers", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/health/providers status = %d", rec.Code)
	}
	var out struct {
		Providers map[string]struct {
			Available bool `json:"available"`
		} `json:"providers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Providers["openai"].Available {
		t.Errorf("providers = %+v", out.Providers)
	}
}

func TestNotReady(t *testing.T) {
	handler := NewHandler(config.ServerConfig{}, Deps{
		Core:   &fakeCore{},
		Models: &fakeModels{},
		Health: fakeHealth{},
		Ready:  func() bool { return false },
		Admin:  auth.NewValidator(""),
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
