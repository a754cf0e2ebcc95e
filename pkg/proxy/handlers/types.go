package handlers

import (
	"context"

	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/monitor"
	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/registry"
)

// Core is the gateway surface the request handlers drive. Implemented by
// *gateway.Gateway.
type Core interface {
	Complete(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error)
	CompleteStream(ctx context.Context, req *providers.CompletionRequest) (<-chan *providers.CompletionChunk, error)
	Embed(ctx context.Context, req *providers.EmbeddingRequest) (*providers.EmbeddingResponse, error)
}

// ModelSource is the registry surface for listing and administration.
// Implemented by *registry.Registry.
type ModelSource interface {
	ListModels() []registry.ModelInfo
	UpsertOverride(o config.ModelOverride)
}

// HealthSource supplies the latest provider probe state. Implemented by
// *gateway.Gateway.
type HealthSource interface {
	Health() map[string]monitor.ProviderHealth
}
