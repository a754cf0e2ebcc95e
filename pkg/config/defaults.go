package config

import "time"

// Default values applied by ApplyDefaults.
const (
	DefaultListenAddress         = ":8080"
	DefaultReadTimeout           = 30 * time.Second
	DefaultWriteTimeout          = 120 * time.Second
	DefaultIdleTimeout           = 90 * time.Second
	DefaultShutdownTimeout       = 15 * time.Second
	DefaultMaxHeaderBytes        = 1 << 20 // 1 MiB
	DefaultRequestTimeoutSeconds = 30

	DefaultFallbackMaxAttempts   = 4
	DefaultAttemptTimeout        = 30 * time.Second
	DefaultHealthIntervalMinutes = 1
	DefaultProbeTimeout          = 5 * time.Second
	DefaultFailuresBeforeAlert   = 3

	DefaultMinSuccessRate  = 0.8
	DefaultMaxAvgLatencyMS = 10_000
	DefaultMinObservations = 10

	DefaultRecordsBackend = "sqlite"
	DefaultRecordsPath    = "data/records.db"
	DefaultRecordsBuffer  = 1024

	DefaultUsageBackend = "memory"
	DefaultUsagePath    = "data/usage.db"
	DefaultUsageWindow  = time.Hour

	DefaultRegistryRefreshMinutes = 60

	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "janus"
	DefaultTracingExporter  = "otlp"
	DefaultTracingSampler   = "ratio"
	DefaultSampleRatio      = 0.1
	DefaultServiceName      = "janus"
)

// Provider base URLs used when api_url is not configured. Azure has no
// default because the resource endpoint is account-specific.
var defaultProviderURLs = map[string]string{
	"openai":      "https://api.openai.com/v1",
	"anthropic":   "https://api.anthropic.com",
	"cohere":      "https://api.cohere.com",
	"huggingface": "https://api-inference.huggingface.co",
}

// Provider API versions used when api_version is not configured.
var defaultProviderVersions = map[string]string{
	"anthropic": "2023-06-01",
	"azure":     "2024-02-01",
}

// KnownProviders lists the provider names the gateway ships adapters for.
var KnownProviders = []string{"openai", "anthropic", "cohere", "huggingface", "azure"}

// ApplyDefaults fills in zero-valued fields with their defaults. It is called
// by LoadConfig after parsing and may be called directly on hand-built
// configurations (tests, examples).
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyProviderDefaults(cfg)
	applyRoutingDefaults(&cfg.Routing)
	applyFallbackDefaults(&cfg.Fallbacks)
	applyHealthDefaults(&cfg.Health)
	applyAlertDefaults(&cfg.Alerts)
	applyRegistryDefaults(&cfg.Registry)
	applyRecordsDefaults(&cfg.Records)
	applyUsageDefaults(&cfg.Usage)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyServerDefaults(s *ServerConfig) {
	if s.ListenAddress == "" {
		s.ListenAddress = DefaultListenAddress
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = DefaultShutdownTimeout
	}
	if s.MaxHeaderBytes == 0 {
		s.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if s.RequestTimeoutSeconds == 0 {
		s.RequestTimeoutSeconds = DefaultRequestTimeoutSeconds
	}
	if s.CORS.Enabled {
		if len(s.CORS.AllowedMethods) == 0 {
			s.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
		}
		if len(s.CORS.AllowedHeaders) == 0 {
			s.CORS.AllowedHeaders = []string{"Content-Type", "Authorization", "X-Correlation-ID"}
		}
		if s.CORS.MaxAge == 0 {
			s.CORS.MaxAge = 600
		}
	}
}

func applyProviderDefaults(cfg *Config) {
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	for name, p := range cfg.Providers {
		if p.APIURL == "" {
			p.APIURL = defaultProviderURLs[name]
		}
		if p.APIVersion == "" {
			p.APIVersion = defaultProviderVersions[name]
		}
		if p.Timeout == 0 {
			p.Timeout = cfg.Server.RequestTimeout()
		}
		if p.MaxRetries == 0 {
			p.MaxRetries = 2
		}
		if p.MaxIdleConns == 0 {
			p.MaxIdleConns = 100
		}
		if p.MaxIdleConnsPerHost == 0 {
			p.MaxIdleConnsPerHost = 10
		}
		if p.IdleConnTimeout == 0 {
			p.IdleConnTimeout = 90 * time.Second
		}
		cfg.Providers[name] = p
	}
}

func applyRoutingDefaults(r *RoutingConfig) {
	if r.ModelMappings == nil {
		r.ModelMappings = make(map[string]ModelMapping)
	}
	if r.ModelAliases == nil {
		r.ModelAliases = make(map[string]string)
	}
	if r.UserModelPreferences == nil {
		r.UserModelPreferences = make(map[string]string)
	}
	if r.UserRoutingPreferences == nil {
		r.UserRoutingPreferences = make(map[string]string)
	}
	if r.ModelRoutingStrategies == nil {
		r.ModelRoutingStrategies = make(map[string]string)
	}
}

func applyFallbackDefaults(f *FallbackConfig) {
	if f.MaxAttempts == 0 {
		f.MaxAttempts = DefaultFallbackMaxAttempts
	}
	if f.AttemptTimeout == 0 {
		f.AttemptTimeout = DefaultAttemptTimeout
	}
}

func applyHealthDefaults(h *HealthConfig) {
	if h.CheckIntervalMinutes == 0 {
		h.CheckIntervalMinutes = DefaultHealthIntervalMinutes
	}
	if h.ProbeTimeout == 0 {
		h.ProbeTimeout = DefaultProbeTimeout
	}
	if h.ConsecutiveFailuresBeforeAlert == 0 {
		h.ConsecutiveFailuresBeforeAlert = DefaultFailuresBeforeAlert
	}
}

func applyAlertDefaults(a *AlertConfig) {
	if a.MinSuccessRate == 0 {
		a.MinSuccessRate = DefaultMinSuccessRate
	}
	if a.MaxAvgLatencyMS == 0 {
		a.MaxAvgLatencyMS = DefaultMaxAvgLatencyMS
	}
	if a.MinObservations == 0 {
		a.MinObservations = DefaultMinObservations
	}
}

func applyRegistryDefaults(r *RegistryConfig) {
	if r.RefreshIntervalMinutes == 0 {
		r.RefreshIntervalMinutes = DefaultRegistryRefreshMinutes
	}
}

func applyRecordsDefaults(r *RecordsConfig) {
	if r.Backend == "" {
		r.Backend = DefaultRecordsBackend
	}
	if r.Path == "" {
		r.Path = DefaultRecordsPath
	}
	if r.BufferSize == 0 {
		r.BufferSize = DefaultRecordsBuffer
	}
}

func applyUsageDefaults(u *UsageConfig) {
	if u.Backend == "" {
		u.Backend = DefaultUsageBackend
	}
	if u.Path == "" {
		u.Path = DefaultUsagePath
	}
	if u.Window == 0 {
		u.Window = DefaultUsageWindow
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Logging.Level == "" {
		t.Logging.Level = "info"
	}
	if t.Logging.Format == "" {
		t.Logging.Format = "json"
	}
	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultMetricsPath
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if t.Tracing.Exporter == "" {
		t.Tracing.Exporter = DefaultTracingExporter
	}
	if t.Tracing.Sampler == "" {
		t.Tracing.Sampler = DefaultTracingSampler
	}
	if t.Tracing.SampleRatio == 0 {
		t.Tracing.SampleRatio = DefaultSampleRatio
	}
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultServiceName
	}
}
