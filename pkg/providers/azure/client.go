// Package azure implements the Azure OpenAI provider adapter.
//
// Azure serves the OpenAI wire format, so the adapter wraps the openai
// engine and only changes what Azure changes: requests are addressed to a
// deployment (`/openai/deployments/{model}/...?api-version=`) instead of a
// shared path, and authentication uses the api-key header instead of a
// bearer token. The deployment name is the provider model id the registry
// resolves, so no separate deployment mapping is needed.
package azure

import (
	"fmt"
	"log/slog"
	"net/url"

	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/providers/openai"
)

// DefaultAPIVersion is the api-version query value.
const DefaultAPIVersion = "2024-02-01"

// Adapter is the Azure OpenAI provider adapter.
type Adapter struct {
	*openai.Adapter
}

// New creates an Azure OpenAI adapter from gateway configuration. BaseURL is
// the resource endpoint (https://{resource}.openai.azure.com) and has no
// usable default.
func New(cfg providers.Config) (*Adapter, error) {
	if cfg.Name == "" {
		cfg.Name = "azure"
	}
	if cfg.BaseURL == "" {
		return nil, &providers.ConfigError{
			Provider: cfg.Name,
			Field:    "base_url",
			Message:  "resource endpoint is required for Azure OpenAI",
		}
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

	base := providers.NewHTTPBase(cfg)
	baseURL, version, apiKey := cfg.BaseURL, cfg.APIVersion, cfg.APIKey

	deployment := func(model, surface string) string {
		return fmt.Sprintf("%s/openai/deployments/%s/%s?api-version=%s",
			baseURL, url.PathEscape(model), surface, url.QueryEscape(version))
	}
	modelsURL := fmt.Sprintf("%s/openai/models?api-version=%s", baseURL, url.QueryEscape(version))

	engine := openai.NewCompatible(base, openai.Endpoints{
		Completions: func(model string) string { return deployment(model, "chat/completions") },
		Embeddings:  func(model string) string { return deployment(model, "embeddings") },
		Models:      func() string { return modelsURL },
	}, func() map[string]string {
		return map[string]string{"api-key": apiKey}
	})

	slog.Info("provider adapter initialized",
		"provider", cfg.Name,
		"base_url", cfg.BaseURL,
		"api_version", version,
	)
	return &Adapter{Adapter: engine}, nil
}
