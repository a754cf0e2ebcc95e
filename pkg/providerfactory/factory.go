// Package providerfactory constructs provider adapters from gateway
// configuration and manages their collective lifecycle.
package providerfactory

import (
	"fmt"
	"log/slog"

	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/providers/anthropic"
	"meridian-hq/janus/pkg/providers/azure"
	"meridian-hq/janus/pkg/providers/cohere"
	"meridian-hq/janus/pkg/providers/huggingface"
	"meridian-hq/janus/pkg/providers/openai"
)

// New creates the adapter for one configured provider. The provider name
// selects the adapter kind: openai, anthropic, cohere, huggingface or azure.
func New(name string, cfg config.ProviderConfig) (providers.Adapter, error) {
	adapterCfg := adapterConfig(name, cfg)

	slog.Debug("creating provider adapter",
		"provider", name,
		"base_url", adapterCfg.BaseURL,
	)

	var adapter providers.Adapter
	var err error

	switch name {
	case "openai":
		adapter, err = openai.New(adapterCfg)
	case "anthropic":
		adapter, err = anthropic.New(adapterCfg)
	case "cohere":
		adapter, err = cohere.New(adapterCfg)
	case "huggingface":
		adapter, err = huggingface.New(adapterCfg)
	case "azure":
		adapter, err = azure.New(adapterCfg)
	default:
		return nil, &providers.ConfigError{
			Provider: name,
			Field:    "name",
			Message:  fmt.Sprintf("unsupported provider %q (supported: %v)", name, config.KnownProviders),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("creating provider %q: %w", name, err)
	}
	return adapter, nil
}

// adapterConfig projects the configuration section onto the adapter config.
func adapterConfig(name string, cfg config.ProviderConfig) providers.Config {
	return providers.Config{
		Name:                name,
		BaseURL:             cfg.APIURL,
		APIKey:              cfg.APIKey,
		APIVersion:          cfg.APIVersion,
		CompletionsPath:     cfg.CompletionsPath,
		EmbeddingsPath:      cfg.EmbeddingsPath,
		ModelsPath:          cfg.ModelsPath,
		Timeout:             cfg.Timeout,
		MaxRetries:          cfg.MaxRetries,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
	}
}
