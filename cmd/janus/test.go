package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"meridian-hq/janus/pkg/cli"
	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/providerfactory"
)

var testFlags struct {
	provider string
	timeout  time.Duration
	format   string
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Probe configured provider connectivity",
	Long: `Probe every enabled provider with a cheap authenticated request and
report availability, probe latency, and the number of models the backend
lists.

Examples:
  # Probe all enabled providers
  janus test

  # Probe one provider
  janus test --provider openai

  # Machine-readable results
  janus test --format json`,
	RunE: testProviders,
}

func init() {
	rootCmd.AddCommand(testCmd)

	testCmd.Flags().StringVarP(&testFlags.provider, "provider", "p", "", "probe a single provider")
	testCmd.Flags().DurationVar(&testFlags.timeout, "timeout", 15*time.Second, "per-provider probe timeout")
	testCmd.Flags().StringVar(&testFlags.format, "format", "text", "output format: text, json")
}

// probeResult is one provider's connectivity outcome.
type probeResult struct {
	Provider  string `json:"provider"`
	Available bool   `json:"available"`
	LatencyMS int64  `json:"latency_ms"`
	Models    int    `json:"models,omitempty"`
	Error     string `json:"error,omitempty"`
}

func testProviders(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	manager := providerfactory.NewManager()
	defer manager.Close()
	if err := manager.LoadFromConfig(cfg.Providers); err != nil {
		fmt.Printf("! Some providers failed to initialize: %v\n", err)
	}

	names := manager.Names()
	if testFlags.provider != "" {
		names = []string{testFlags.provider}
	}
	sort.Strings(names)

	if len(names) == 0 {
		return fmt.Errorf("no providers configured")
	}

	results := make([]probeResult, 0, len(names))
	failures := 0
	for _, name := range names {
		result := probeProvider(cmd.Context(), manager, name)
		if !result.Available {
			failures++
		}
		results = append(results, result)
	}

	if testFlags.format == "json" {
		if err := cli.NewFormatter(cli.FormatJSON).FormatTo(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	} else {
		fmt.Printf("Probing %d providers...\n\n", len(names))
		for _, result := range results {
			if result.Available {
				fmt.Printf("✓ %-12s available (%dms, %d models)\n",
					result.Provider, result.LatencyMS, result.Models)
			} else {
				fmt.Printf("✗ %-12s unavailable: %s\n", result.Provider, result.Error)
			}
		}
		fmt.Println()
		fmt.Printf("Summary: %d available, %d unavailable\n", len(results)-failures, failures)
	}

	if failures > 0 {
		return cli.NewCommandError("test", fmt.Errorf("%d providers unavailable", failures))
	}
	return nil
}

func probeProvider(ctx context.Context, manager *providerfactory.Manager, name string) probeResult {
	result := probeResult{Provider: name}

	adapter, err := manager.Get(name)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	probeCtx, cancel := context.WithTimeout(ctx, testFlags.timeout)
	defer cancel()

	start := time.Now()
	if err := adapter.IsAvailable(probeCtx); err != nil {
		result.LatencyMS = time.Since(start).Milliseconds()
		result.Error = err.Error()
		return result
	}
	result.LatencyMS = time.Since(start).Milliseconds()
	result.Available = true

	if models, err := adapter.ListModels(probeCtx); err == nil {
		result.Models = len(models)
	}
	return result
}
