package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults and
// validates the result. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides of the form JANUS_SECTION_FIELD
// (e.g., JANUS_SERVER_LISTEN_ADDRESS, JANUS_PROVIDERS_OPENAI_API_KEY).
// Environment variables take precedence over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	// A provider enabled purely through environment variables has no file
	// entry, so defaults must be filled in again for it.
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies JANUS_SECTION_FIELD environment overrides.
func applyEnvOverrides(cfg *Config) {
	// Server
	if val := os.Getenv("JANUS_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("JANUS_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("JANUS_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("JANUS_SERVER_REQUEST_TIMEOUT_SECONDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.RequestTimeoutSeconds = i
		}
	}
	if val := os.Getenv("JANUS_SERVER_TLS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Server.TLS.Enabled = b
		}
	}
	if val := os.Getenv("JANUS_SERVER_TLS_CERT_FILE"); val != "" {
		cfg.Server.TLS.CertFile = val
	}
	if val := os.Getenv("JANUS_SERVER_TLS_KEY_FILE"); val != "" {
		cfg.Server.TLS.KeyFile = val
	}

	// Providers
	for _, name := range KnownProviders {
		applyProviderEnvOverrides(cfg, name)
	}

	// Routing
	if val := os.Getenv("JANUS_ROUTING_ENABLE_SMART_ROUTING"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Routing.EnableSmartRouting = b
		}
	}
	if val := os.Getenv("JANUS_ROUTING_ENABLE_CONTENT_BASED_ROUTING"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Routing.EnableContentBasedRouting = b
		}
	}
	if val := os.Getenv("JANUS_ROUTING_ENABLE_COST_OPTIMIZED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Routing.EnableCostOptimized = b
		}
	}
	if val := os.Getenv("JANUS_ROUTING_ENABLE_LATENCY_OPTIMIZED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Routing.EnableLatencyOptimized = b
		}
	}
	if val := os.Getenv("JANUS_ROUTING_ENABLE_QUALITY_OPTIMIZED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Routing.EnableQualityOptimized = b
		}
	}
	if val := os.Getenv("JANUS_ROUTING_ENABLE_LOAD_BALANCING"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Routing.EnableLoadBalancing = b
		}
	}
	if val := os.Getenv("JANUS_ROUTING_MIN_CONTEXT_WINDOW"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Routing.MinContextWindow = i
		}
	}

	// Fallbacks
	if val := os.Getenv("JANUS_FALLBACKS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Fallbacks.Enabled = b
		}
	}
	if val := os.Getenv("JANUS_FALLBACKS_MAX_ATTEMPTS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Fallbacks.MaxAttempts = i
		}
	}
	if val := os.Getenv("JANUS_FALLBACKS_ATTEMPT_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Fallbacks.AttemptTimeout = d
		}
	}

	// Health
	if val := os.Getenv("JANUS_HEALTH_CHECK_INTERVAL_MINUTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Health.CheckIntervalMinutes = i
		}
	}
	if val := os.Getenv("JANUS_HEALTH_PROBE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Health.ProbeTimeout = d
		}
	}
	if val := os.Getenv("JANUS_HEALTH_CONSECUTIVE_FAILURES_BEFORE_ALERT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Health.ConsecutiveFailuresBeforeAlert = i
		}
	}

	// Alerts
	if val := os.Getenv("JANUS_ALERTS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Alerts.Enabled = b
		}
	}
	if val := os.Getenv("JANUS_ALERTS_MIN_SUCCESS_RATE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Alerts.MinSuccessRate = f
		}
	}
	if val := os.Getenv("JANUS_ALERTS_MAX_AVG_LATENCY_MS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Alerts.MaxAvgLatencyMS = i
		}
	}

	// Records
	if val := os.Getenv("JANUS_RECORDS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Records.Enabled = b
		}
	}
	if val := os.Getenv("JANUS_RECORDS_BACKEND"); val != "" {
		cfg.Records.Backend = val
	}
	if val := os.Getenv("JANUS_RECORDS_PATH"); val != "" {
		cfg.Records.Path = val
	}
	if val := os.Getenv("JANUS_RECORDS_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Records.RetentionDays = i
		}
	}
	if val := os.Getenv("JANUS_RECORDS_PRUNE_SCHEDULE"); val != "" {
		cfg.Records.PruneSchedule = val
	}

	// Usage
	if val := os.Getenv("JANUS_USAGE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Usage.Enabled = b
		}
	}
	if val := os.Getenv("JANUS_USAGE_BACKEND"); val != "" {
		cfg.Usage.Backend = val
	}
	if val := os.Getenv("JANUS_USAGE_PATH"); val != "" {
		cfg.Usage.Path = val
	}

	// Telemetry
	if val := os.Getenv("JANUS_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("JANUS_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("JANUS_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("JANUS_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("JANUS_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("JANUS_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}

	// Admin
	if val := os.Getenv("JANUS_ADMIN_API_KEY"); val != "" {
		cfg.Admin.APIKey = val
	}
}

// applyProviderEnvOverrides applies JANUS_PROVIDERS_<NAME>_<FIELD> overrides
// for one provider. Setting JANUS_PROVIDERS_<NAME>_API_KEY implicitly enables
// a provider that has no file entry.
func applyProviderEnvOverrides(cfg *Config, name string) {
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}

	provider, exists := cfg.Providers[name]
	prefix := fmt.Sprintf("JANUS_PROVIDERS_%s_", strings.ToUpper(name))
	modified := false

	if val := os.Getenv(prefix + "API_KEY"); val != "" {
		provider.APIKey = val
		if !exists {
			provider.Enabled = true
		}
		modified = true
	}
	if val := os.Getenv(prefix + "API_URL"); val != "" {
		provider.APIURL = val
		modified = true
	}
	if val := os.Getenv(prefix + "API_VERSION"); val != "" {
		provider.APIVersion = val
		modified = true
	}
	if val := os.Getenv(prefix + "ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			provider.Enabled = b
			modified = true
		}
	}
	if val := os.Getenv(prefix + "TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			provider.Timeout = d
			modified = true
		}
	}
	if val := os.Getenv(prefix + "MAX_RETRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			provider.MaxRetries = i
			modified = true
		}
	}

	if modified || exists {
		cfg.Providers[name] = provider
	}
}
