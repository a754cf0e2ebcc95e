package cohere

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"meridian-hq/janus/pkg/providers"
)

// Default endpoint paths for the Cohere v2 API.
const (
	DefaultBaseURL    = "https://api.cohere.com"
	DefaultChatPath   = "/v2/chat"
	DefaultEmbedPath  = "/v2/embed"
	DefaultModelsPath = "/v1/models"
)

// Adapter is the Cohere provider adapter for the v2 chat and embed APIs.
type Adapter struct {
	*providers.HTTPBase
	chatURL   string
	embedURL  string
	modelsURL string
}

// New creates a Cohere adapter from gateway configuration.
func New(cfg providers.Config) (*Adapter, error) {
	if cfg.Name == "" {
		cfg.Name = "cohere"
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

	chat := cfg.CompletionsPath
	if chat == "" {
		chat = DefaultChatPath
	}
	embed := cfg.EmbeddingsPath
	if embed == "" {
		embed = DefaultEmbedPath
	}
	models := cfg.ModelsPath
	if models == "" {
		models = DefaultModelsPath
	}

	a := &Adapter{
		HTTPBase:  providers.NewHTTPBase(cfg),
		chatURL:   cfg.BaseURL + chat,
		embedURL:  cfg.BaseURL + embed,
		modelsURL: cfg.BaseURL + models,
	}

	slog.Info("provider adapter initialized",
		"provider", cfg.Name,
		"base_url", cfg.BaseURL,
	)
	return a, nil
}

func (a *Adapter) requestHeaders() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + a.Config().APIKey,
	}
}

// CreateCompletion sends a v2 chat request.
func (a *Adapter) CreateCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	if err := validateCompletion(req); err != nil {
		return nil, err
	}

	wire := encodeRequest(req)
	wire.Stream = false

	var resp Response
	if err := a.DoJSON(ctx, http.MethodPost, a.chatURL, wire, &resp, a.requestHeaders()); err != nil {
		return nil, providers.ScopeToModel(err, a.Name(), req.Model)
	}

	result, err := decodeResponse(a.Name(), &resp)
	if err != nil {
		return nil, &providers.ParseError{Provider: a.Name(), Cause: err}
	}
	// The v2 response omits the model id; restore it from the request.
	result.Model = req.Model

	slog.Debug("completion succeeded",
		"provider", a.Name(),
		"model", result.Model,
		"tokens", result.Usage.TotalTokens,
	)
	return result, nil
}

// CreateEmbedding embeds the inputs via the v2 embed endpoint.
func (a *Adapter) CreateEmbedding(ctx context.Context, req *providers.EmbeddingRequest) (*providers.EmbeddingResponse, error) {
	if req == nil || req.Model == "" {
		return nil, &providers.ValidationError{Field: "model", Message: "model is required"}
	}
	if len(req.Input) == 0 {
		return nil, &providers.ValidationError{Field: "input", Message: "at least one input is required"}
	}

	wire := &EmbedRequest{
		Model:          req.Model,
		Texts:          req.Input,
		InputType:      "search_document",
		EmbeddingTypes: []string{"float"},
	}

	var resp EmbedResponse
	if err := a.DoJSON(ctx, http.MethodPost, a.embedURL, wire, &resp, a.requestHeaders()); err != nil {
		return nil, providers.ScopeToModel(err, a.Name(), req.Model)
	}

	if got := len(resp.Embeddings.Float); got != len(req.Input) {
		return nil, &providers.ParseError{
			Provider: a.Name(),
			Cause:    fmt.Errorf("backend returned %d embeddings for %d inputs", got, len(req.Input)),
		}
	}

	return &providers.EmbeddingResponse{
		Model:      req.Model,
		Provider:   a.Name(),
		Embeddings: resp.Embeddings.Float,
		Usage: providers.TokenUsage{
			PromptTokens: resp.Meta.BilledUnits.InputTokens,
			TotalTokens:  resp.Meta.BilledUnits.InputTokens,
		},
	}, nil
}

// ListModels returns the backend's model names.
func (a *Adapter) ListModels(ctx context.Context) ([]string, error) {
	var list modelList
	if err := a.DoJSON(ctx, http.MethodGet, a.modelsURL, nil, &list, a.requestHeaders()); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.Name)
	}
	return ids, nil
}

// IsAvailable probes the models endpoint with the configured credentials.
func (a *Adapter) IsAvailable(ctx context.Context) error {
	started := time.Now()
	var list modelList
	err := a.DoJSON(ctx, http.MethodGet, a.modelsURL, nil, &list, a.requestHeaders())
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
