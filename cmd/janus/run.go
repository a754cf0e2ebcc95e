package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"meridian-hq/janus/pkg/cli"
	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/gateway"
	"meridian-hq/janus/pkg/proxy"
	"meridian-hq/janus/pkg/security/auth"
	"meridian-hq/janus/pkg/server"
	"meridian-hq/janus/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
	watch         bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Janus gateway server",
	Long: `Start the Janus gateway server with the specified configuration.

The server listens on the configured address and routes LLM API requests
through the model registry, routing strategies and fallback executor.

Examples:
  # Start with default config
  janus run

  # Start with custom config
  janus run --config /etc/janus/config.yaml

  # Override listen address
  janus run --listen 0.0.0.0:8080

  # Reload configuration when the file changes
  janus run --watch

  # Validate config without starting the server
  janus run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", false, "reload configuration on file change")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger, err := logging.New(logging.Config{
		Level:         cfg.Telemetry.Logging.Level,
		Format:        cfg.Telemetry.Logging.Format,
		AddSource:     cfg.Telemetry.Logging.AddSource,
		RedactSecrets: cfg.Telemetry.Logging.RedactSecrets,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	logger.Install()

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Janus v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx := cmd.Context()
	source := config.NewSource(cfg)

	gw, err := gateway.New(ctx, source)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer gw.Close()

	if err := gw.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Printf("✓ Providers initialized (%d providers)\n", gw.Adapters().Count())

	admin := auth.NewValidator(cfg.Admin.APIKey)
	source.OnChange(func(c *config.Config) {
		admin.SetKey(c.Admin.APIKey)
	})

	var metricsHandler http.Handler
	if cfg.Telemetry.Metrics.Enabled {
		metricsHandler = gw.Metrics().Handler()
	}

	handler := proxy.NewHandler(cfg.Server, proxy.Deps{
		Core:        gw,
		Models:      gw.Registry(),
		Health:      gw,
		Ready:       func() bool { return gw.Adapters().Count() > 0 },
		Admin:       admin,
		Metrics:     metricsHandler,
		MetricsPath: cfg.Telemetry.Metrics.Path,
	})

	if runFlags.watch {
		watcher, err := config.NewWatcher(config.WatcherConfig{Path: cfgFile}, source, logger.Slog())
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to create config watcher: %w", err))
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				slog.Error("config watcher stopped", "error", err)
			}
		}()
		defer watcher.Stop()
		fmt.Println("✓ Configuration watcher started")
	}

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	srv := server.New(cfg.Server, handler)
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}
