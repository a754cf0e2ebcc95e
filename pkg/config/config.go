package config

import (
	"time"
)

// Config is the root configuration for the gateway. It is loaded from YAML,
// filled in by ApplyDefaults, checked by Validate, and published as an
// immutable epoch through a Source. Components must not mutate a Config after
// publication.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server"`

	// Providers configures the upstream LLM backends, keyed by provider name
	// (openai, anthropic, cohere, huggingface, azure).
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Routing configures model selection.
	Routing RoutingConfig `yaml:"routing"`

	// Fallbacks configures the fallback chains walked on provider failure.
	Fallbacks FallbackConfig `yaml:"fallbacks"`

	// Health configures the provider health probe loop.
	Health HealthConfig `yaml:"health"`

	// Alerts configures alert emission and performance thresholds.
	Alerts AlertConfig `yaml:"alerts"`

	// Registry configures the model registry overlay.
	Registry RegistryConfig `yaml:"registry"`

	// Records configures the append-only request/health/alert record store.
	Records RecordsConfig `yaml:"records"`

	// Usage configures token-usage accounting and budgets.
	Usage UsageConfig `yaml:"usage"`

	// Filter configures the content filter.
	Filter FilterConfig `yaml:"filter"`

	// Telemetry configures logging, metrics and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Admin configures the administrative endpoints.
	Admin AdminConfig `yaml:"admin"`
}

// ServerConfig configures the HTTP listener and global request handling.
type ServerConfig struct {
	// ListenAddress is the address the server binds to (e.g., ":8080").
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing the response.
	// Streaming responses are exempted from this timeout.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// RequestTimeoutSeconds is the default per-provider call timeout in
	// seconds. Individual providers may override it with their own timeout.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`

	// CORS configures cross-origin request handling.
	CORS CORSConfig `yaml:"cors"`

	// TLS configures TLS termination.
	TLS TLSConfig `yaml:"tls"`
}

// CORSConfig configures cross-origin resource sharing.
type CORSConfig struct {
	Enabled          bool     `yaml:"enabled"`
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	ExposedHeaders   []string `yaml:"exposed_headers"`
	MaxAge           int      `yaml:"max_age"`
	AllowCredentials bool     `yaml:"allow_credentials"`
}

// TLSConfig configures TLS termination for the listener.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// ProviderConfig configures a single upstream backend.
type ProviderConfig struct {
	// Enabled controls whether the provider is constructed at startup.
	Enabled bool `yaml:"enabled"`

	// APIKey is the provider credential. Usually supplied via the
	// JANUS_PROVIDERS_<NAME>_API_KEY environment variable.
	APIKey string `yaml:"api_key"`

	// APIURL is the base URL of the provider API. Defaults per provider.
	APIURL string `yaml:"api_url"`

	// APIVersion is the provider API version header/query value where the
	// backend requires one (Anthropic, Azure OpenAI).
	APIVersion string `yaml:"api_version"`

	// CompletionsPath overrides the completions endpoint path.
	CompletionsPath string `yaml:"completions_path"`

	// EmbeddingsPath overrides the embeddings endpoint path.
	EmbeddingsPath string `yaml:"embeddings_path"`

	// ModelsPath overrides the model-listing endpoint path.
	ModelsPath string `yaml:"models_path"`

	// Timeout is the per-request timeout for this provider. Defaults to
	// server.request_timeout_seconds.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of transport-level retries inside the adapter.
	MaxRetries int `yaml:"max_retries"`

	// MaxIdleConns sizes the shared connection pool.
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost sizes the per-host connection pool.
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long idle connections are kept.
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// ModelMapping maps a requested model id to a concrete provider deployment.
type ModelMapping struct {
	// Provider is the provider name (must match a key in Providers).
	Provider string `yaml:"provider"`

	// Model is the provider-native model id.
	Model string `yaml:"model"`
}

// RoutingConfig configures model selection.
type RoutingConfig struct {
	// EnableSmartRouting is the master toggle for strategy selection. When
	// false, requests resolve through mappings and the registry only.
	EnableSmartRouting bool `yaml:"enable_smart_routing"`

	// Per-strategy gates. A disabled strategy reports failure and the
	// router moves on.
	EnableContentBasedRouting bool `yaml:"enable_content_based_routing"`
	EnableCostOptimized       bool `yaml:"enable_cost_optimized"`
	EnableLatencyOptimized    bool `yaml:"enable_latency_optimized"`
	EnableQualityOptimized    bool `yaml:"enable_quality_optimized"`
	EnableLoadBalancing       bool `yaml:"enable_load_balancing"`

	// MinContextWindow filters load-balanced candidates by context window.
	MinContextWindow int `yaml:"min_context_window"`

	// ModelMappings is the static direct-mapping table, keyed by requested
	// model id.
	ModelMappings map[string]ModelMapping `yaml:"model_mappings"`

	// ModelAliases maps alias → target model id, applied before any other
	// resolution step.
	ModelAliases map[string]string `yaml:"model_aliases"`

	// UserModelPreferences maps user id → model id override.
	UserModelPreferences map[string]string `yaml:"user_model_preferences"`

	// UserRoutingPreferences maps user id → preferred strategy name.
	UserRoutingPreferences map[string]string `yaml:"user_routing_preferences"`

	// ModelRoutingStrategies pins a strategy per requested model id.
	ModelRoutingStrategies map[string]string `yaml:"model_routing_strategies"`
}

// FallbackRule names the ordered substitutes for a model and optionally
// restricts the error codes that trigger them.
type FallbackRule struct {
	// Model is the primary model id the rule applies to.
	Model string `yaml:"model"`

	// Fallbacks is the ordered list of substitute model ids.
	Fallbacks []string `yaml:"fallbacks"`

	// OnlyErrorCodes, when non-empty, restricts fallback to failures whose
	// error code is in this set (e.g., rate_limit_exceeded).
	OnlyErrorCodes []string `yaml:"only_error_codes"`
}

// FallbackConfig configures the fallback executor.
type FallbackConfig struct {
	// Enabled is the master toggle for fallback chains.
	Enabled bool `yaml:"enabled"`

	// MaxAttempts caps total attempts per request, primary included.
	MaxAttempts int `yaml:"max_attempts"`

	// AttemptTimeout bounds each individual attempt.
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`

	// Rules is the per-model fallback table.
	Rules []FallbackRule `yaml:"rules"`
}

// HealthConfig configures the provider health probe loop.
type HealthConfig struct {
	// CheckIntervalMinutes is the probe cadence in minutes.
	CheckIntervalMinutes int `yaml:"check_interval_minutes"`

	// ProbeTimeout bounds a single availability probe.
	ProbeTimeout time.Duration `yaml:"probe_timeout"`

	// ConsecutiveFailuresBeforeAlert is the threshold for the
	// provider_unavailable alert.
	ConsecutiveFailuresBeforeAlert int `yaml:"consecutive_failures_before_alert"`
}

// AlertConfig configures alert emission and the performance thresholds that
// trigger model_performance alerts.
type AlertConfig struct {
	// Enabled is the master toggle for the alert sink.
	Enabled bool `yaml:"enabled"`

	// MinSuccessRate is the success-rate floor (0..1) below which a
	// model_performance alert fires.
	MinSuccessRate float64 `yaml:"min_success_rate"`

	// MaxAvgLatencyMS is the average-latency ceiling in milliseconds.
	MaxAvgLatencyMS int64 `yaml:"max_avg_latency_ms"`

	// MinObservations is the minimum sample size before thresholds apply.
	MinObservations int64 `yaml:"min_observations"`
}

// ModelOverride is an administrator-supplied registry entry. Overrides win
// over dynamic listings, which win over the built-in catalogue. Zero fields
// leave the underlying value untouched; a non-empty Capabilities list
// replaces the capability flags outright. The JSON tags serve the
// POST /admin/models endpoint, which accepts the same shape.
type ModelOverride struct {
	// ID is the canonical model id (provider.model).
	ID string `yaml:"id" json:"id"`

	// Provider is the provider name.
	Provider string `yaml:"provider" json:"provider"`

	// ProviderModelID is the provider-native model id.
	ProviderModelID string `yaml:"provider_model_id" json:"provider_model_id"`

	// DisplayName is a human-readable name.
	DisplayName string `yaml:"display_name" json:"display_name,omitempty"`

	// ContextWindow is the context window in tokens.
	ContextWindow int `yaml:"context_window" json:"context_window,omitempty"`

	// InputCostPer1K / OutputCostPer1K are USD prices per 1000 tokens.
	InputCostPer1K  float64 `yaml:"input_cost_per_1k" json:"input_cost_per_1k,omitempty"`
	OutputCostPer1K float64 `yaml:"output_cost_per_1k" json:"output_cost_per_1k,omitempty"`

	// DefaultLatencyMS seeds the latency router before live metrics exist.
	DefaultLatencyMS int64 `yaml:"default_latency_ms" json:"default_latency_ms,omitempty"`

	// Capabilities lists capability flags to set (completions, embeddings,
	// streaming, function_calling, vision).
	Capabilities []string `yaml:"capabilities" json:"capabilities,omitempty"`
}

// RegistryConfig configures the model registry.
type RegistryConfig struct {
	// DynamicListing enables merging of live provider model listings.
	DynamicListing bool `yaml:"dynamic_listing"`

	// RefreshIntervalMinutes is the dynamic listing cache TTL in minutes.
	RefreshIntervalMinutes int `yaml:"refresh_interval_minutes"`

	// Overrides are administrator-supplied registry entries.
	Overrides []ModelOverride `yaml:"overrides"`
}

// RecordsConfig configures the append-only record store.
type RecordsConfig struct {
	// Enabled toggles recording entirely.
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend ("sqlite" or "memory").
	Backend string `yaml:"backend"`

	// Path is the SQLite database file path.
	Path string `yaml:"path"`

	// BufferSize is the async recorder queue depth. When the queue is full
	// records are dropped rather than blocking request handling.
	BufferSize int `yaml:"buffer_size"`

	// RedactPrompts strips prompt and response excerpts before storage.
	RedactPrompts bool `yaml:"redact_prompts"`

	// RetentionDays prunes records older than this many days (0 disables).
	RetentionDays int `yaml:"retention_days"`

	// MaxRecords caps the total stored request records (0 disables).
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a cron expression for scheduled pruning
	// (e.g., "0 3 * * *" for daily at 3 AM).
	PruneSchedule string `yaml:"prune_schedule"`
}

// Budget is a per-user token budget over the accounting window.
type Budget struct {
	// User is the user identifier the budget applies to. The reserved name
	// "*" applies to every user without an explicit budget.
	User string `yaml:"user"`

	// MaxTokens is the total-token allowance per window.
	MaxTokens int64 `yaml:"max_tokens"`

	// Enforce rejects requests once the budget is exhausted. When false the
	// budget only raises token_usage alerts.
	Enforce bool `yaml:"enforce"`
}

// UsageConfig configures token-usage accounting.
type UsageConfig struct {
	// Enabled toggles usage accounting.
	Enabled bool `yaml:"enabled"`

	// Backend selects the usage store ("memory" or "sqlite").
	Backend string `yaml:"backend"`

	// Path is the SQLite database file path for the sqlite backend.
	Path string `yaml:"path"`

	// Window is the sliding accounting window.
	Window time.Duration `yaml:"window"`

	// Budgets is the per-user budget table.
	Budgets []Budget `yaml:"budgets"`
}

// FilterRule is a content-filter deny rule.
type FilterRule struct {
	// Name identifies the rule in decisions and logs.
	Name string `yaml:"name"`

	// Pattern is the regular expression matched against request text.
	Pattern string `yaml:"pattern"`

	// Categories labels the rule for the denial report.
	Categories []string `yaml:"categories"`
}

// FilterConfig configures the content filter.
type FilterConfig struct {
	// Enabled toggles content filtering.
	Enabled bool `yaml:"enabled"`

	// Rules is the deny-pattern table, compiled once at startup.
	Rules []FilterRule `yaml:"rules"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"`
	AddSource     bool   `yaml:"add_source"`
	RedactSecrets bool   `yaml:"redact_secrets"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Exporter    string  `yaml:"exporter"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	Sampler     string  `yaml:"sampler"`
	SampleRatio float64 `yaml:"sample_ratio"`
	ServiceName string  `yaml:"service_name"`
}

// TelemetryConfig groups logging, metrics and tracing.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// AdminConfig configures the administrative endpoints.
type AdminConfig struct {
	// APIKey guards the /admin endpoints. Empty disables them.
	APIKey string `yaml:"api_key"`
}

// FallbackRuleFor returns the fallback rule for a model id, or nil.
func (c *FallbackConfig) FallbackRuleFor(model string) *FallbackRule {
	for i := range c.Rules {
		if c.Rules[i].Model == model {
			return &c.Rules[i]
		}
	}
	return nil
}

// BudgetFor returns the budget for a user, falling back to the "*" budget.
func (c *UsageConfig) BudgetFor(user string) *Budget {
	var wildcard *Budget
	for i := range c.Budgets {
		switch c.Budgets[i].User {
		case user:
			return &c.Budgets[i]
		case "*":
			wildcard = &c.Budgets[i]
		}
	}
	return wildcard
}

// CheckInterval returns the health probe cadence as a duration.
func (c *HealthConfig) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalMinutes) * time.Minute
}

// RequestTimeout returns the default provider call timeout as a duration.
func (c *ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
