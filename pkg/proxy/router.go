package proxy

import (
	"net/http"
	"time"

	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/proxy/handlers"
	"meridian-hq/janus/pkg/proxy/middleware"
	"meridian-hq/janus/pkg/security/auth"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	// Core drives completions and embeddings. Required.
	Core handlers.Core

	// Models backs /v1/models and the admin override upsert. Required.
	Models handlers.ModelSource

	// Health backs /health/providers. Required.
	Health handlers.HealthSource

	// Ready reports whether the gateway can route at all.
	Ready func() bool

	// Admin guards the /admin endpoints. A validator without a key makes
	// the admin surface answer 404.
	Admin *auth.Validator

	// Metrics is the promhttp handler, mounted at MetricsPath when
	// non-nil.
	Metrics     http.Handler
	MetricsPath string
}

// NewHandler builds the full HTTP handler: routes plus the middleware
// chain. The completions endpoint is exempt from the request deadline
// because a stream legitimately outlives it; the fallback executor's
// per-attempt timeout bounds it instead.
func NewHandler(cfg config.ServerConfig, d Deps) http.Handler {
	completions := handlers.NewCompletions(d.Core)
	embeddings := handlers.NewEmbeddings(d.Core)
	models := handlers.NewModels(d.Models)
	health := handlers.NewHealth(d.Health, d.Ready)

	deadline := middleware.Timeout(requestTimeout(cfg))

	mux := http.NewServeMux()
	mux.Handle("POST /v1/completions", completions)
	mux.Handle("POST /v1/embeddings", deadline(embeddings))
	mux.Handle("GET /v1/models", deadline(http.HandlerFunc(models.List)))

	mux.HandleFunc("GET /health", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health/providers", health.Providers)

	admin := auth.RequireKey(d.Admin)
	mux.Handle("POST /admin/models", admin(deadline(http.HandlerFunc(models.Upsert))))

	if d.Metrics != nil {
		path := d.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, d.Metrics)
	}

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.CORS)(handler)
	handler = middleware.CorrelationID(handler)
	handler = middleware.Logging(handler)
	handler = middleware.Recovery(handler)
	return handler
}

// requestTimeout derives the handler deadline from the provider-call
// default, with headroom for fallback attempts.
func requestTimeout(cfg config.ServerConfig) time.Duration {
	if cfg.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(cfg.RequestTimeoutSeconds) * time.Second * 2
}
