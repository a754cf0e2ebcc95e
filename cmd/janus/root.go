package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "janus",
	Short: "Janus - LLM gateway",
	Long: `Janus is an open-source LLM gateway that puts one API surface in front
of many model providers.

It routes completion and embedding requests, providing:
  - Model mapping, aliases and content-aware routing strategies
  - Automatic fallback chains on provider failure
  - Provider health probing and performance tracking
  - Request recording, usage budgets and cost accounting
  - Prometheus metrics and OpenTelemetry tracing`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
