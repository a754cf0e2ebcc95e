package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"meridian-hq/janus/pkg/alerts"
	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/filter"
	"meridian-hq/janus/pkg/monitor"
	"meridian-hq/janus/pkg/processing/costs"
	"meridian-hq/janus/pkg/providerfactory"
	"meridian-hq/janus/pkg/records"
	"meridian-hq/janus/pkg/records/recorder"
	"meridian-hq/janus/pkg/records/retention"
	"meridian-hq/janus/pkg/records/storage"
	"meridian-hq/janus/pkg/registry"
	"meridian-hq/janus/pkg/routing"
	"meridian-hq/janus/pkg/routing/strategies"
	"meridian-hq/janus/pkg/telemetry/metrics"
	"meridian-hq/janus/pkg/telemetry/tracing"
	"meridian-hq/janus/pkg/usage"

	"github.com/prometheus/client_golang/prometheus"
)

// Gateway is the assembled pipeline. Construct with New, then Start the
// background loops; Close releases everything in reverse order.
type Gateway struct {
	source *config.Source
	log    *slog.Logger

	registry *registry.Registry
	adapters *providerfactory.Manager
	router   *routing.Router
	executor *routing.Executor
	perf     *monitor.PerformanceMonitor
	health   *monitor.HealthMonitor

	filter atomic.Pointer[filter.Filter]

	usage      *usage.Tracker
	usageStore usage.Store

	store     records.Storage
	recorder  *recorder.Recorder
	scheduler *retention.Scheduler

	collector *metrics.Collector
	tracer    *tracing.Tracer
	costs     *costs.Calculator

	started atomic.Bool
}

// New builds a gateway from the current configuration epoch and subscribes
// to reloads. The context bounds construction-time work (tracer exporter
// dial, usage store open); it does not control the gateway's lifetime.
func New(ctx context.Context, source *config.Source) (*Gateway, error) {
	cfg := source.Current()

	g := &Gateway{
		source: source,
		log:    slog.Default().With("component", "gateway"),
		costs:  costs.NewCalculator(),
	}

	g.registry = registry.New(cfg.Registry)

	g.adapters = providerfactory.NewManager()
	if err := g.adapters.LoadFromConfig(cfg.Providers); err != nil {
		// A partially loaded provider set still serves the models that did
		// come up; the failures are in the error.
		g.log.Warn("some providers failed to load", "error", err)
	}
	if g.adapters.Count() == 0 && len(cfg.Providers) > 0 {
		return nil, errors.New("no provider adapter could be constructed")
	}

	f, err := filter.New(cfg.Filter)
	if err != nil {
		return nil, fmt.Errorf("content filter: %w", err)
	}
	g.filter.Store(f)

	g.collector = metrics.NewCollector(cfg.Telemetry.Metrics, prometheus.NewRegistry())

	g.tracer, err = tracing.New(ctx, cfg.Telemetry.Tracing)
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	if cfg.Records.Enabled {
		g.store, err = openRecordStorage(cfg.Records)
		if err != nil {
			return nil, fmt.Errorf("record storage: %w", err)
		}
		g.recorder = recorder.New(g.store, cfg.Records)
		if cfg.Records.PruneSchedule != "" {
			pruner := retention.NewPruner(g.store, cfg.Records)
			g.scheduler = retention.NewScheduler(pruner, cfg.Records.PruneSchedule)
		}
	}

	sink := g.buildAlertSink(cfg)

	if cfg.Usage.Enabled {
		g.usageStore, err = usage.OpenStore(cfg.Usage)
		if err != nil {
			return nil, fmt.Errorf("usage store: %w", err)
		}
		g.usage = usage.NewTracker(g.usageStore, cfg.Usage, sink)
	}

	g.perf = monitor.NewPerformanceMonitor(cfg.Alerts, sink)
	g.health = monitor.NewHealthMonitor(cfg.Health, g.probers(), sink, &healthFanout{
		recorder:  g.recorder,
		collector: g.collector,
	})

	g.router = routing.NewRouter(g.registry, g.perf,
		func() config.RoutingConfig { return source.Current().Routing },
		strategies.All())

	g.executor = routing.NewExecutor(g.router, g.adapters, g.perf,
		g.attemptObserver(),
		func() config.FallbackConfig { return source.Current().Fallbacks })

	source.OnChange(g.applyConfig)

	return g, nil
}

// buildAlertSink chains the alert destinations: the structured log when
// alerting is enabled, the record store when recording is on, and the
// metrics counter on the outside so every alert is counted.
func (g *Gateway) buildAlertSink(cfg *config.Config) alerts.Sink {
	var sink alerts.Sink = alerts.NopSink{}
	if cfg.Alerts.Enabled {
		sink = alerts.NewLogSink()
	}
	if g.recorder != nil {
		sink = alerts.MultiSink{sink, g.recorder}
	}
	if g.collector.Enabled() {
		sink = g.collector.NewAlertSink(sink)
	}
	return sink
}

// attemptObserver fans provider attempts out to the recorder and the
// metrics collector. Either may be absent.
func (g *Gateway) attemptObserver() routing.AttemptObserver {
	fan := attemptFanout{}
	if g.recorder != nil {
		fan = append(fan, g.recorder)
	}
	if g.collector.Enabled() {
		fan = append(fan, &metricsObserver{collector: g.collector})
	}
	if len(fan) == 0 {
		return nil
	}
	return fan
}

func (g *Gateway) probers() []monitor.Prober {
	all := g.adapters.All()
	probers := make([]monitor.Prober, 0, len(all))
	for _, adapter := range all {
		probers = append(probers, adapter)
	}
	return probers
}

func (g *Gateway) listers() []registry.Lister {
	all := g.adapters.All()
	listers := make([]registry.Lister, 0, len(all))
	for _, adapter := range all {
		listers = append(listers, adapter)
	}
	return listers
}

// applyConfig propagates a configuration reload to the components that
// follow epochs. The router and executor read the source directly per
// request and need no push.
func (g *Gateway) applyConfig(cfg *config.Config) {
	g.registry.Rebuild(cfg.Registry)
	g.perf.SetOptions(cfg.Alerts)
	if g.usage != nil {
		g.usage.SetOptions(cfg.Usage)
	}

	f, err := filter.New(cfg.Filter)
	if err != nil {
		g.log.Error("reload kept previous content filter", "error", err)
	} else {
		g.filter.Store(f)
	}
}

// Start launches the background loops: health probing, scheduled record
// pruning and an initial dynamic model refresh. Idempotent.
func (g *Gateway) Start(ctx context.Context) error {
	if !g.started.CompareAndSwap(false, true) {
		return nil
	}

	g.health.Start()

	if g.scheduler != nil {
		if err := g.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("retention scheduler: %w", err)
		}
	}

	// Dynamic listings are best effort; the catalogue already covers the
	// known models.
	refreshCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := g.registry.Refresh(refreshCtx, g.listers()); err != nil {
		g.log.Warn("dynamic model refresh incomplete", "error", err)
	}

	return nil
}

// Close stops the background loops and releases stores and adapters. Safe
// to call once, after Start or without it.
func (g *Gateway) Close() error {
	var errs []error

	if g.started.Load() {
		g.health.Stop()
		if g.scheduler != nil {
			g.scheduler.Stop()
		}
	}
	if g.recorder != nil {
		if err := g.recorder.Close(); err != nil {
			errs = append(errs, fmt.Errorf("recorder: %w", err))
		}
	}
	if g.store != nil {
		if err := g.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("record storage: %w", err))
		}
	}
	if g.usageStore != nil {
		if err := g.usageStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("usage store: %w", err))
		}
	}
	if err := g.adapters.Close(); err != nil {
		errs = append(errs, fmt.Errorf("adapters: %w", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.tracer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("tracer: %w", err))
	}

	return errors.Join(errs...)
}

// Registry exposes the model registry for the admin surface and the CLI.
func (g *Gateway) Registry() *registry.Registry { return g.registry }

// Adapters exposes the provider manager.
func (g *Gateway) Adapters() *providerfactory.Manager { return g.adapters }

// Records exposes the record store, nil when recording is disabled.
func (g *Gateway) Records() records.Storage { return g.store }

// Metrics exposes the collector so the server can mount its handler.
func (g *Gateway) Metrics() *metrics.Collector { return g.collector }

// Tracer exposes the tracer for inbound context extraction.
func (g *Gateway) Tracer() *tracing.Tracer { return g.tracer }

// Health returns the latest probe state for every provider.
func (g *Gateway) Health() map[string]monitor.ProviderHealth {
	return g.health.AllHealth()
}

// ProviderHealth returns the probe state for one provider.
func (g *Gateway) ProviderHealth(provider string) (monitor.ProviderHealth, bool) {
	return g.health.Health(provider)
}

// Performance returns the live per-model metrics.
func (g *Gateway) Performance() map[string]monitor.ModelPerformance {
	return g.perf.GetAllMetrics()
}

// RoutingStats returns a snapshot of the routing counters.
func (g *Gateway) RoutingStats() routing.StatsSnapshot {
	return g.router.Stats()
}

// UserUsage returns the usage for one user over the accounting window.
// Returns false when usage accounting is disabled.
func (g *Gateway) UserUsage(ctx context.Context, user string) (usage.UserUsage, bool, error) {
	if g.usage == nil {
		return usage.UserUsage{}, false, nil
	}
	u, err := g.usage.Usage(ctx, user)
	return u, true, err
}

// AllUsage returns per-user usage over the accounting window. Returns nil
// when usage accounting is disabled.
func (g *Gateway) AllUsage(ctx context.Context) ([]usage.UserUsage, error) {
	if g.usage == nil {
		return nil, nil
	}
	return g.usage.AllUsage(ctx)
}

func openRecordStorage(cfg config.RecordsConfig) (records.Storage, error) {
	switch cfg.Backend {
	case "memory":
		return storage.NewMemoryStorage(), nil
	case "sqlite", "":
		sc := storage.DefaultSQLiteConfig()
		sc.Path = cfg.Path
		return storage.NewSQLiteStorage(sc)
	default:
		return nil, fmt.Errorf("unknown records backend %q", cfg.Backend)
	}
}
