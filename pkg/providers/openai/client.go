package openai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"meridian-hq/janus/pkg/providers"
)

// Default endpoint paths for the OpenAI API.
const (
	DefaultBaseURL         = "https://api.openai.com"
	DefaultCompletionsPath = "/v1/chat/completions"
	DefaultEmbeddingsPath  = "/v1/embeddings"
	DefaultModelsPath      = "/v1/models"
)

// Endpoints resolves the request URLs for the three API surfaces. The model
// argument lets deployment-addressed backends (Azure OpenAI) put the model
// into the path.
type Endpoints struct {
	Completions func(model string) string
	Embeddings  func(model string) string
	Models      func() string
}

// Adapter is the OpenAI provider adapter. It also serves as the engine for
// every OpenAI-compatible backend: the azure and huggingface adapters wrap
// it with their own endpoints and headers.
type Adapter struct {
	*providers.HTTPBase
	endpoints Endpoints
	headers   func() map[string]string
}

// New creates an OpenAI adapter from gateway configuration.
func New(cfg providers.Config) (*Adapter, error) {
	if cfg.Name == "" {
		cfg.Name = "openai"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: cfg.Name,
			Field:    "api_key",
			Message:  "API key is required",
		}
	}

	base := providers.NewHTTPBase(cfg)
	completions := cfg.BaseURL + pathOr(cfg.CompletionsPath, DefaultCompletionsPath)
	embeddings := cfg.BaseURL + pathOr(cfg.EmbeddingsPath, DefaultEmbeddingsPath)
	models := cfg.BaseURL + pathOr(cfg.ModelsPath, DefaultModelsPath)

	apiKey := cfg.APIKey
	a := NewCompatible(base, Endpoints{
		Completions: func(string) string { return completions },
		Embeddings:  func(string) string { return embeddings },
		Models:      func() string { return models },
	}, func() map[string]string {
		return map[string]string{"Authorization": "Bearer " + apiKey}
	})

	slog.Info("provider adapter initialized",
		"provider", cfg.Name,
		"base_url", cfg.BaseURL,
	)
	return a, nil
}

// NewCompatible builds an adapter over a prepared transport with custom
// endpoint resolution and headers. Used by the OpenAI-compatible backends.
func NewCompatible(base *providers.HTTPBase, endpoints Endpoints, headers func() map[string]string) *Adapter {
	return &Adapter{
		HTTPBase:  base,
		endpoints: endpoints,
		headers:   headers,
	}
}

// CreateCompletion sends a chat completion request.
func (a *Adapter) CreateCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	if err := validateCompletion(req); err != nil {
		return nil, err
	}

	wire := encodeRequest(req)
	wire.Stream = false

	var resp Response
	err := a.DoJSON(ctx, http.MethodPost, a.endpoints.Completions(req.Model), wire, &resp, a.headers())
	if err != nil {
		return nil, providers.ScopeToModel(err, a.Name(), req.Model)
	}

	result, err := decodeResponse(a.Name(), &resp)
	if err != nil {
		return nil, &providers.ParseError{Provider: a.Name(), Cause: err}
	}

	slog.Debug("completion succeeded",
		"provider", a.Name(),
		"model", result.Model,
		"tokens", result.Usage.TotalTokens,
	)
	return result, nil
}

// CreateEmbedding embeds the inputs.
func (a *Adapter) CreateEmbedding(ctx context.Context, req *providers.EmbeddingRequest) (*providers.EmbeddingResponse, error) {
	if req == nil || req.Model == "" {
		return nil, &providers.ValidationError{Field: "model", Message: "model is required"}
	}
	if len(req.Input) == 0 {
		return nil, &providers.ValidationError{Field: "input", Message: "at least one input is required"}
	}

	wire := &EmbeddingRequest{
		Model: req.Model,
		Input: req.Input,
		User:  req.User,
	}

	var resp EmbeddingResponse
	err := a.DoJSON(ctx, http.MethodPost, a.endpoints.Embeddings(req.Model), wire, &resp, a.headers())
	if err != nil {
		return nil, providers.ScopeToModel(err, a.Name(), req.Model)
	}

	out := decodeEmbeddings(a.Name(), &resp)
	if got := len(out.Embeddings); got != len(req.Input) {
		return nil, &providers.ParseError{
			Provider: a.Name(),
			Cause:    fmt.Errorf("backend returned %d embeddings for %d inputs", got, len(req.Input)),
		}
	}
	if out.Model == "" {
		out.Model = req.Model
	}
	return out, nil
}

// ListModels returns the backend's native model ids.
func (a *Adapter) ListModels(ctx context.Context) ([]string, error) {
	var list modelList
	if err := a.DoJSON(ctx, http.MethodGet, a.endpoints.Models(), nil, &list, a.headers()); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(list.Data))
	for _, m := range list.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// IsAvailable probes the models endpoint with the configured credentials.
func (a *Adapter) IsAvailable(ctx context.Context) error {
	started := time.Now()
	var list modelList
	err := a.DoJSON(ctx, http.MethodGet, a.endpoints.Models(), nil, &list, a.headers())
	a.MarkProbe(err, time.Since(started))
	return err
}

func validateCompletion(req *providers.CompletionRequest) error {
	if req == nil {
		return &providers.ValidationError{Field: "request", Message: "request cannot be nil"}
	}
	if req.Model == "" {
		return &providers.ValidationError{Field: "model", Message: "model is required"}
	}
	if len(req.Messages) == 0 {
		return &providers.ValidationError{Field: "messages", Message: "at least one message is required"}
	}
	return nil
}

func pathOr(path, fallback string) string {
	if path != "" {
		return path
	}
	return fallback
}
