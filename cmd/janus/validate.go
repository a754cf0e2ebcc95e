package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"meridian-hq/janus/pkg/cli"
	"meridian-hq/janus/pkg/config"
)

var validateFlags struct {
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load and validate a configuration file without starting the server.

The validate command parses the YAML file, applies defaults and environment
overrides (JANUS_* variables), runs the full validation pass, and prints a
summary of the effective configuration.

Examples:
  # Validate the default config
  janus validate

  # Validate a specific file
  janus validate --config /etc/janus/config.yaml

  # Machine-readable summary
  janus validate --format json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// configSummary is the validate command's result shape.
type configSummary struct {
	ConfigFile     string   `json:"config_file"`
	ListenAddress  string   `json:"listen_address"`
	Providers      []string `json:"providers"`
	SmartRouting   bool     `json:"smart_routing"`
	Mappings       int      `json:"model_mappings"`
	Aliases        int      `json:"model_aliases"`
	FallbackRules  int      `json:"fallback_rules"`
	RecordsBackend string   `json:"records_backend,omitempty"`
	UsageBudgets   int      `json:"usage_budgets"`
	AdminEnabled   bool     `json:"admin_enabled"`
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("validation failed: %v", err))
	}

	enabled := make([]string, 0, len(cfg.Providers))
	for name, p := range cfg.Providers {
		if p.Enabled {
			enabled = append(enabled, name)
		}
	}
	sort.Strings(enabled)

	summary := configSummary{
		ConfigFile:    cfgFile,
		ListenAddress: cfg.Server.ListenAddress,
		Providers:     enabled,
		SmartRouting:  cfg.Routing.EnableSmartRouting,
		Mappings:      len(cfg.Routing.ModelMappings),
		Aliases:       len(cfg.Routing.ModelAliases),
		FallbackRules: len(cfg.Fallbacks.Rules),
		UsageBudgets:  len(cfg.Usage.Budgets),
		AdminEnabled:  cfg.Admin.APIKey != "",
	}
	if cfg.Records.Enabled {
		summary.RecordsBackend = cfg.Records.Backend
	}

	if validateFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(cmd.OutOrStdout(), summary)
	}

	fmt.Println("✓ Configuration valid")
	fmt.Println()
	fmt.Printf("  Listen address:  %s\n", summary.ListenAddress)
	fmt.Printf("  Providers:       %d enabled\n", len(summary.Providers))
	for _, name := range summary.Providers {
		fmt.Printf("    - %s\n", name)
	}
	fmt.Printf("  Smart routing:   %v\n", summary.SmartRouting)
	fmt.Printf("  Model mappings:  %d\n", summary.Mappings)
	fmt.Printf("  Model aliases:   %d\n", summary.Aliases)
	fmt.Printf("  Fallback rules:  %d\n", summary.FallbackRules)
	if summary.RecordsBackend != "" {
		fmt.Printf("  Records backend: %s\n", summary.RecordsBackend)
	}
	fmt.Printf("  Usage budgets:   %d\n", summary.UsageBudgets)
	fmt.Printf("  Admin endpoints: %v\n", summary.AdminEnabled)

	return nil
}
