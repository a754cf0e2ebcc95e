package config

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates all validation failures found in one pass.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d configuration errors: %s", len(e), strings.Join(msgs, "; "))
}

// Strategy names accepted in routing preference tables.
var validStrategyNames = map[string]bool{
	"DirectMapping":    true,
	"ContentBased":     true,
	"CostOptimized":    true,
	"LatencyOptimized": true,
	"QualityOptimized": true,
	"LoadBalanced":     true,
}

// Validate checks the configuration for consistency. All problems found in
// one pass are reported together.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	addErr := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Server
	if cfg.Server.ListenAddress == "" {
		addErr("server.listen_address", "must not be empty")
	}
	if cfg.Server.RequestTimeoutSeconds < 0 {
		addErr("server.request_timeout_seconds", "must not be negative")
	}
	if cfg.Server.TLS.Enabled {
		if cfg.Server.TLS.CertFile == "" {
			addErr("server.tls.cert_file", "required when TLS is enabled")
		}
		if cfg.Server.TLS.KeyFile == "" {
			addErr("server.tls.key_file", "required when TLS is enabled")
		}
	}

	// Providers
	knownProvider := make(map[string]bool, len(KnownProviders))
	for _, name := range KnownProviders {
		knownProvider[name] = true
	}
	for name, p := range cfg.Providers {
		field := "providers." + name
		if !knownProvider[name] {
			addErr(field, "unknown provider (expected one of %s)", strings.Join(KnownProviders, ", "))
			continue
		}
		if !p.Enabled {
			continue
		}
		if p.APIKey == "" && name != "huggingface" {
			addErr(field+".api_key", "required for enabled provider")
		}
		if p.APIURL == "" {
			addErr(field+".api_url", "required for enabled provider")
		}
		if p.Timeout < 0 {
			addErr(field+".timeout", "must not be negative")
		}
	}

	// Routing tables
	for reqModel, mapping := range cfg.Routing.ModelMappings {
		field := fmt.Sprintf("routing.model_mappings[%s]", reqModel)
		if mapping.Provider == "" {
			addErr(field, "provider must not be empty")
		}
		if mapping.Model == "" {
			addErr(field, "model must not be empty")
		}
	}
	for alias, target := range cfg.Routing.ModelAliases {
		if target == "" {
			addErr(fmt.Sprintf("routing.model_aliases[%s]", alias), "target must not be empty")
		}
		if alias == target {
			addErr(fmt.Sprintf("routing.model_aliases[%s]", alias), "alias must not reference itself")
		}
	}
	for user, strategy := range cfg.Routing.UserRoutingPreferences {
		if !validStrategyNames[strategy] {
			addErr(fmt.Sprintf("routing.user_routing_preferences[%s]", user),
				"unknown strategy %q", strategy)
		}
	}
	for model, strategy := range cfg.Routing.ModelRoutingStrategies {
		if !validStrategyNames[strategy] {
			addErr(fmt.Sprintf("routing.model_routing_strategies[%s]", model),
				"unknown strategy %q", strategy)
		}
	}
	if cfg.Routing.MinContextWindow < 0 {
		addErr("routing.min_context_window", "must not be negative")
	}

	// Fallbacks
	if cfg.Fallbacks.MaxAttempts < 1 {
		addErr("fallbacks.max_attempts", "must be at least 1")
	}
	seenRule := make(map[string]bool)
	for i, rule := range cfg.Fallbacks.Rules {
		field := fmt.Sprintf("fallbacks.rules[%d]", i)
		if rule.Model == "" {
			addErr(field+".model", "must not be empty")
		}
		if len(rule.Fallbacks) == 0 {
			addErr(field+".fallbacks", "must name at least one substitute")
		}
		if seenRule[rule.Model] {
			addErr(field+".model", "duplicate rule for model %q", rule.Model)
		}
		seenRule[rule.Model] = true
		for _, sub := range rule.Fallbacks {
			if sub == rule.Model {
				addErr(field+".fallbacks", "substitute must differ from the primary model")
			}
		}
	}

	// Health
	if cfg.Health.CheckIntervalMinutes < 1 {
		addErr("health.check_interval_minutes", "must be at least 1")
	}
	if cfg.Health.ConsecutiveFailuresBeforeAlert < 1 {
		addErr("health.consecutive_failures_before_alert", "must be at least 1")
	}

	// Alerts
	if cfg.Alerts.MinSuccessRate < 0 || cfg.Alerts.MinSuccessRate > 1 {
		addErr("alerts.min_success_rate", "must be between 0 and 1")
	}

	// Registry overrides
	for i, o := range cfg.Registry.Overrides {
		field := fmt.Sprintf("registry.overrides[%d]", i)
		if o.ID == "" {
			addErr(field+".id", "must not be empty")
		}
		for _, c := range o.Capabilities {
			switch c {
			case "completions", "embeddings", "streaming", "function_calling", "vision":
			default:
				addErr(field+".capabilities", "unknown capability %q", c)
			}
		}
	}

	// Records
	switch cfg.Records.Backend {
	case "sqlite", "memory":
	default:
		addErr("records.backend", "must be sqlite or memory, got %q", cfg.Records.Backend)
	}
	if cfg.Records.RetentionDays < 0 {
		addErr("records.retention_days", "must not be negative")
	}

	// Usage
	switch cfg.Usage.Backend {
	case "sqlite", "memory":
	default:
		addErr("usage.backend", "must be sqlite or memory, got %q", cfg.Usage.Backend)
	}
	for i, b := range cfg.Usage.Budgets {
		field := fmt.Sprintf("usage.budgets[%d]", i)
		if b.User == "" {
			addErr(field+".user", "must not be empty")
		}
		if b.MaxTokens <= 0 {
			addErr(field+".max_tokens", "must be positive")
		}
	}

	// Filter rules must compile.
	for i, rule := range cfg.Filter.Rules {
		field := fmt.Sprintf("filter.rules[%d]", i)
		if rule.Pattern == "" {
			addErr(field+".pattern", "must not be empty")
			continue
		}
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			addErr(field+".pattern", "does not compile: %v", err)
		}
	}

	// Telemetry
	switch cfg.Telemetry.Tracing.Exporter {
	case "otlp", "none", "":
	default:
		addErr("telemetry.tracing.exporter", "must be otlp or none, got %q", cfg.Telemetry.Tracing.Exporter)
	}
	switch cfg.Telemetry.Tracing.Sampler {
	case "always", "never", "ratio", "":
	default:
		addErr("telemetry.tracing.sampler", "must be always, never or ratio, got %q", cfg.Telemetry.Tracing.Sampler)
	}
	if r := cfg.Telemetry.Tracing.SampleRatio; r < 0 || r > 1 {
		addErr("telemetry.tracing.sample_ratio", "must be between 0 and 1")
	}
	if cfg.Telemetry.Tracing.Enabled && cfg.Telemetry.Tracing.Exporter == "otlp" &&
		cfg.Telemetry.Tracing.Endpoint == "" {
		addErr("telemetry.tracing.endpoint", "required when the otlp exporter is enabled")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
