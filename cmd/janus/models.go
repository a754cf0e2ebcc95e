package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"meridian-hq/janus/pkg/cli"
	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/registry"
)

var modelsFlags struct {
	provider string
	format   string
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the model catalogue",
	Long: `List every model the gateway knows about: the built-in per-provider
catalogue merged with the configured registry overrides.

Only the static view is shown; dynamic provider listings require a running
gateway and appear in GET /v1/models.

Examples:
  # List all models
  janus models

  # Only one provider's models
  janus models --provider anthropic

  # Export as CSV
  janus models --format csv`,
	RunE: listModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)

	modelsCmd.Flags().StringVarP(&modelsFlags.provider, "provider", "p", "", "filter by provider")
	modelsCmd.Flags().StringVar(&modelsFlags.format, "format", "text", "output format: text, json, csv")
}

// modelTable adapts a model list to the CSV formatter.
type modelTable []registry.ModelInfo

func (t modelTable) Header() []string {
	return []string{
		"id", "provider", "provider_model_id", "context_window",
		"input_cost_per_1k", "output_cost_per_1k", "capabilities",
	}
}

func (t modelTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, m := range t {
		rows = append(rows, []string{
			m.ID,
			m.Provider,
			m.ProviderModelID,
			strconv.Itoa(m.ContextWindow),
			strconv.FormatFloat(m.InputCostPer1K, 'f', -1, 64),
			strconv.FormatFloat(m.OutputCostPer1K, 'f', -1, 64),
			strings.Join(capabilityNames(m.Capabilities), " "),
		})
	}
	return rows
}

func listModels(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	reg := registry.New(cfg.Registry)

	models := reg.ListModels()
	if modelsFlags.provider != "" {
		filtered := make([]registry.ModelInfo, 0, len(models))
		for _, m := range models {
			if m.Provider == modelsFlags.provider {
				filtered = append(filtered, m)
			}
		}
		models = filtered
	}

	switch modelsFlags.format {
	case "json":
		return cli.NewFormatter(cli.FormatJSON).FormatTo(cmd.OutOrStdout(), models)
	case "csv":
		return cli.NewFormatter(cli.FormatCSV).FormatTo(cmd.OutOrStdout(), modelTable(models))
	}

	fmt.Printf("%-40s %-12s %10s %12s\n", "MODEL", "PROVIDER", "CONTEXT", "COST/1K IN")
	for _, m := range models {
		cost := "-"
		if m.HasCost {
			cost = strconv.FormatFloat(m.InputCostPer1K, 'f', -1, 64)
		}
		fmt.Printf("%-40s %-12s %10d %12s\n", m.ID, m.Provider, m.ContextWindow, cost)
	}
	fmt.Printf("\n%d models\n", len(models))
	return nil
}

func capabilityNames(c registry.Capabilities) []string {
	var names []string
	if c.Completions {
		names = append(names, "completions")
	}
	if c.Embeddings {
		names = append(names, "embeddings")
	}
	if c.Streaming {
		names = append(names, "streaming")
	}
	if c.FunctionCalling {
		names = append(names, "function_calling")
	}
	if c.Vision {
		names = append(names, "vision")
	}
	return names
}
