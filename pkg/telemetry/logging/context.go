package logging

import (
	"context"
)

// contextKey is a private type for context keys defined in this package.
type contextKey string

const (
	// CorrelationIDKey is the context key for request correlation ids.
	CorrelationIDKey contextKey = "correlation_id"

	// UserKey is the context key for user identifiers.
	UserKey contextKey = "user"

	// ProviderKey is the context key for provider names.
	ProviderKey contextKey = "provider"

	// ModelKey is the context key for model ids.
	ModelKey contextKey = "model"

	// StrategyKey is the context key for routing strategy names.
	StrategyKey contextKey = "strategy"
)

// WithCorrelationID adds a correlation id to the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// GetCorrelationID retrieves the correlation id from the context.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// WithUser adds a user identifier to the context.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// GetUser retrieves the user identifier from the context.
func GetUser(ctx context.Context) string {
	if user, ok := ctx.Value(UserKey).(string); ok {
		return user
	}
	return ""
}

// WithProvider adds a provider name to the context.
func WithProvider(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, ProviderKey, provider)
}

// GetProvider retrieves the provider name from the context.
func GetProvider(ctx context.Context) string {
	if provider, ok := ctx.Value(ProviderKey).(string); ok {
		return provider
	}
	return ""
}

// WithModel adds a model id to the context.
func WithModel(ctx context.Context, model string) context.Context {
	return context.WithValue(ctx, ModelKey, model)
}

// GetModel retrieves the model id from the context.
func GetModel(ctx context.Context) string {
	if model, ok := ctx.Value(ModelKey).(string); ok {
		return model
	}
	return ""
}

// WithStrategy adds a routing strategy name to the context.
func WithStrategy(ctx context.Context, strategy string) context.Context {
	return context.WithValue(ctx, StrategyKey, strategy)
}

// GetStrategy retrieves the routing strategy name from the context.
func GetStrategy(ctx context.Context) string {
	if strategy, ok := ctx.Value(StrategyKey).(string); ok {
		return strategy
	}
	return ""
}

// extractContextFields extracts the correlation fields present in ctx as a
// slice of key-value pairs suitable for slog.
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if id := GetCorrelationID(ctx); id != "" {
		fields = append(fields, "correlation_id", id)
	}
	if user := GetUser(ctx); user != "" {
		fields = append(fields, "user", user)
	}
	if provider := GetProvider(ctx); provider != "" {
		fields = append(fields, "provider", provider)
	}
	if model := GetModel(ctx); model != "" {
		fields = append(fields, "model", model)
	}
	if strategy := GetStrategy(ctx); strategy != "" {
		fields = append(fields, "strategy", strategy)
	}

	return fields
}
