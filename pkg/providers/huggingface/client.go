// Package huggingface implements the HuggingFace provider adapter.
//
// Chat completions and model listing go through the HuggingFace inference
// router, which speaks the OpenAI wire format, so the adapter wraps the
// openai engine with bearer authentication. Embeddings are different: the
// router exposes them through the feature-extraction pipeline with its own
// request shape, so CreateEmbedding is implemented natively here.
package huggingface

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/providers/openai"
)

// Default endpoints for the HuggingFace inference router.
const (
	DefaultBaseURL         = "https://router.huggingface.co"
	DefaultCompletionsPath = "/v1/chat/completions"
	DefaultModelsPath      = "/v1/models"
)

// Adapter is the HuggingFace provider adapter.
type Adapter struct {
	*openai.Adapter
	baseURL string
}

// New creates a HuggingFace adapter from gateway configuration.
func New(cfg providers.Config) (*Adapter, error) {
	if cfg.Name == "" {
		cfg.Name = "huggingface"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: cfg.Name,
			Field:    "api_key",
			Message:  "API token is required",
		}
	}

	base := providers.NewHTTPBase(cfg)
	completions := cfg.BaseURL + pathOr(cfg.CompletionsPath, DefaultCompletionsPath)
	models := cfg.BaseURL + pathOr(cfg.ModelsPath, DefaultModelsPath)
	apiKey := cfg.APIKey

	engine := openai.NewCompatible(base, openai.Endpoints{
		Completions: func(string) string { return completions },
		// Embeddings never route through the engine; CreateEmbedding below
		// overrides it with the feature-extraction pipeline.
		Embeddings: func(string) string { return completions },
		Models:     func() string { return models },
	}, func() map[string]string {
		return map[string]string{"Authorization": "Bearer " + apiKey}
	})

	slog.Info("provider adapter initialized",
		"provider", cfg.Name,
		"base_url", cfg.BaseURL,
	)
	return &Adapter{Adapter: engine, baseURL: cfg.BaseURL}, nil
}

// featureExtractionRequest is the pipeline wire request.
type featureExtractionRequest struct {
	Inputs []string `json:"inputs"`
}

// CreateEmbedding embeds the inputs through the feature-extraction pipeline.
// The pipeline returns one vector per input and reports no token counts, so
// prompt tokens are estimated from input length.
func (a *Adapter) CreateEmbedding(ctx context.Context, req *providers.EmbeddingRequest) (*providers.EmbeddingResponse, error) {
	if req == nil || req.Model == "" {
		return nil, &providers.ValidationError{Field: "model", Message: "model is required"}
	}
	if len(req.Input) == 0 {
		return nil, &providers.ValidationError{Field: "input", Message: "at least one input is required"}
	}

	// Model ids are org/name paths; the slash is part of the URL.
	endpoint := fmt.Sprintf("%s/hf-inference/models/%s/pipeline/feature-extraction",
		a.baseURL, req.Model)

	var vectors [][]float64
	err := a.DoJSON(ctx, http.MethodPost, endpoint,
		&featureExtractionRequest{Inputs: req.Input}, &vectors,
		map[string]string{"Authorization": "Bearer " + a.Config().APIKey})
	if err != nil {
		return nil, providers.ScopeToModel(err, a.Name(), req.Model)
	}

	if len(vectors) != len(req.Input) {
		return nil, &providers.ParseError{
			Provider: a.Name(),
			Cause:    fmt.Errorf("pipeline returned %d vectors for %d inputs", len(vectors), len(req.Input)),
		}
	}

	chars := 0
	for _, input := range req.Input {
		chars += len(input)
	}
	estimated := chars / 4

	return &providers.EmbeddingResponse{
		Model:      req.Model,
		Provider:   a.Name(),
		Embeddings: vectors,
		Usage: providers.TokenUsage{
			PromptTokens: estimated,
			TotalTokens:  estimated,
		},
	}, nil
}

func pathOr(path, fallback string) string {
	if path != "" {
		return path
	}
	return fallback
}
