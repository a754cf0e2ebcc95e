package anthropic

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"meridian-hq/janus/pkg/providers"
)

const (
	// DefaultBaseURL is the Anthropic API endpoint.
	DefaultBaseURL = "https://api.anthropic.com"

	// DefaultAPIVersion is the anthropic-version header value.
	DefaultAPIVersion = "2023-06-01"

	// DefaultMaxTokens is applied when the caller leaves max_tokens unset;
	// the Messages API rejects requests without it.
	DefaultMaxTokens = 4096

	// DefaultMessagesPath is the Messages API path.
	DefaultMessagesPath = "/v1/messages"
)

// staticModels is the catalogue returned by ListModels. The API has no
// listing endpoint.
var staticModels = []string{
	"claude-3-opus-20240229",
	"claude-3-sonnet-20240229",
	"claude-3-haiku-20240307",
}

// Adapter is the Anthropic provider adapter for the Messages API.
type Adapter struct {
	*providers.HTTPBase
	messagesURL string
	apiVersion  string
}

// New creates an Anthropic adapter from gateway configuration.
func New(cfg providers.Config) (*Adapter, error) {
	if cfg.Name == "" {
		cfg.Name = "anthropic"
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
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}

	path := cfg.CompletionsPath
	if path == "" {
		path = DefaultMessagesPath
	}

	a := &Adapter{
		HTTPBase:    providers.NewHTTPBase(cfg),
		messagesURL: cfg.BaseURL + path,
		apiVersion:  cfg.APIVersion,
	}

	slog.Info("provider adapter initialized",
		"provider", cfg.Name,
		"base_url", cfg.BaseURL,
		"api_version", cfg.APIVersion,
	)
	return a, nil
}

func (a *Adapter) requestHeaders() map[string]string {
	return map[string]string{
		"x-api-key":         a.Config().APIKey,
		"anthropic-version": a.apiVersion,
	}
}

// CreateCompletion sends a Messages API request.
func (a *Adapter) CreateCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	if err := validateCompletion(req); err != nil {
		return nil, err
	}

	wire, err := encodeRequest(req)
	if err != nil {
		return nil, err
	}
	wire.Stream = false

	var resp Response
	if err := a.DoJSON(ctx, http.MethodPost, a.messagesURL, wire, &resp, a.requestHeaders()); err != nil {
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

// CreateEmbedding always fails: Anthropic has no embedding endpoint.
func (a *Adapter) CreateEmbedding(ctx context.Context, req *providers.EmbeddingRequest) (*providers.EmbeddingResponse, error) {
	model := ""
	if req != nil {
		model = req.Model
	}
	return nil, &providers.CapabilityError{
		Provider:   a.Name(),
		Model:      model,
		Capability: "embeddings",
	}
}

// ListModels returns the static model catalogue.
func (a *Adapter) ListModels(ctx context.Context) ([]string, error) {
	out := make([]string, len(staticModels))
	copy(out, staticModels)
	return out, nil
}

// IsAvailable probes the Messages API with a deliberately invalid request:
// an empty messages array draws a free 400 once authentication passes, while
// a bad key still surfaces as AuthError. Credentials are checked before
// request validation, so a request-level rejection proves the backend is up.
func (a *Adapter) IsAvailable(ctx context.Context) error {
	started := time.Now()
	err := a.DoJSON(ctx, http.MethodPost, a.messagesURL, &Request{
		Model:     staticModels[len(staticModels)-1],
		MaxTokens: 1,
		Messages:  []Message{},
	}, nil, a.requestHeaders())
	latency := time.Since(started)

	var pe *providers.ProviderError
	if errors.As(err, &pe) && pe.StatusCode < 500 {
		err = nil
	}

	a.MarkProbe(err, latency)
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
