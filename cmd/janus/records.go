package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"meridian-hq/janus/pkg/cli"
	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/records"
	"meridian-hq/janus/pkg/records/export"
	"meridian-hq/janus/pkg/records/retention"
	"meridian-hq/janus/pkg/records/storage"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Inspect and manage recorded requests",
	Long: `Query, summarize and prune the request record store.

The gateway records every completion and embedding attempt when records are
enabled in the configuration. These subcommands operate on the same store
offline.`,
}

var recordsQueryFlags struct {
	user      string
	provider  string
	model     string
	errorCode string
	since     time.Duration
	timeRange string
	failed    bool
	limit     int
	format    string
}

var recordsQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query request records",
	Long: `Query request records with filters.

Examples:
  # Last day of requests for one user
  janus records query --since 24h --user alice

  # Failed requests against one provider
  janus records query --provider openai --failed

  # Explicit RFC3339 interval, exported as CSV
  janus records query --time-range "2026-08-01T00:00:00Z/2026-08-02T00:00:00Z" --format csv`,
	RunE: queryRecords,
}

var recordsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the record store",
	RunE:  recordStats,
}

var recordsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy once",
	Long: `Remove records older than records.retention_days and enforce the
records.max_records cap, exactly as the scheduled pruner would.`,
	RunE: pruneRecords,
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.AddCommand(recordsQueryCmd)
	recordsCmd.AddCommand(recordsStatsCmd)
	recordsCmd.AddCommand(recordsPruneCmd)

	recordsQueryCmd.Flags().StringVar(&recordsQueryFlags.user, "user", "", "filter by user")
	recordsQueryCmd.Flags().StringVar(&recordsQueryFlags.provider, "provider", "", "filter by provider")
	recordsQueryCmd.Flags().StringVar(&recordsQueryFlags.model, "model", "", "filter by served model")
	recordsQueryCmd.Flags().StringVar(&recordsQueryFlags.errorCode, "error-code", "", "filter by error code")
	recordsQueryCmd.Flags().DurationVar(&recordsQueryFlags.since, "since", 0, "only records newer than this age (e.g. 24h)")
	recordsQueryCmd.Flags().StringVar(&recordsQueryFlags.timeRange, "time-range", "", "RFC3339 interval start/end")
	recordsQueryCmd.Flags().BoolVar(&recordsQueryFlags.failed, "failed", false, "only failed requests")
	recordsQueryCmd.Flags().IntVar(&recordsQueryFlags.limit, "limit", 100, "maximum records returned")
	recordsQueryCmd.Flags().StringVar(&recordsQueryFlags.format, "format", "json", "output format: json, csv")
}

// openRecordStore opens the configured record store for offline access.
func openRecordStore() (records.Storage, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	if !cfg.Records.Enabled {
		return nil, fmt.Errorf("records are disabled in %s", cfgFile)
	}
	if cfg.Records.Backend != "sqlite" {
		return nil, fmt.Errorf("records backend %q has no offline store", cfg.Records.Backend)
	}

	sqliteCfg := storage.DefaultSQLiteConfig()
	if cfg.Records.Path != "" {
		sqliteCfg.Path = cfg.Records.Path
	}
	store, err := storage.NewSQLiteStorage(sqliteCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}
	return store, nil
}

func buildQuery() (*records.Query, error) {
	q := &records.Query{
		User:      recordsQueryFlags.user,
		Provider:  recordsQueryFlags.provider,
		Model:     recordsQueryFlags.model,
		ErrorCode: recordsQueryFlags.errorCode,
		Limit:     recordsQueryFlags.limit,
	}

	if recordsQueryFlags.failed {
		failed := false
		q.Success = &failed
	}

	if recordsQueryFlags.since > 0 {
		start := time.Now().Add(-recordsQueryFlags.since)
		q.StartTime = &start
	}

	if recordsQueryFlags.timeRange != "" {
		parts := strings.Split(recordsQueryFlags.timeRange, "/")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid time range format (expected start/end)")
		}
		start, err := time.Parse(time.RFC3339, parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid start time: %w", err)
		}
		end, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid end time: %w", err)
		}
		q.StartTime = &start
		q.EndTime = &end
	}

	return q, nil
}

func queryRecords(cmd *cobra.Command, args []string) error {
	store, err := openRecordStore()
	if err != nil {
		return err
	}
	defer store.Close()

	query, err := buildQuery()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	recs, err := store.QueryRequests(ctx, query)
	if err != nil {
		return cli.NewCommandError("records query", err)
	}

	switch recordsQueryFlags.format {
	case "csv":
		return export.NewCSVExporter(true).Export(ctx, recs, cmd.OutOrStdout())
	default:
		return export.NewJSONExporter(true).Export(ctx, recs, cmd.OutOrStdout())
	}
}

func recordStats(cmd *cobra.Command, args []string) error {
	store, err := openRecordStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	total, err := store.CountRequests(ctx, &records.Query{})
	if err != nil {
		return cli.NewCommandError("records stats", err)
	}

	failed := false
	failures, err := store.CountRequests(ctx, &records.Query{Success: &failed})
	if err != nil {
		return cli.NewCommandError("records stats", err)
	}

	dayAgo := time.Now().Add(-24 * time.Hour)
	recent, err := store.CountRequests(ctx, &records.Query{StartTime: &dayAgo})
	if err != nil {
		return cli.NewCommandError("records stats", err)
	}

	fmt.Printf("Total requests:  %d\n", total)
	fmt.Printf("Failed requests: %d\n", failures)
	fmt.Printf("Last 24 hours:   %d\n", recent)
	return nil
}

func pruneRecords(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	store, err := openRecordStore()
	if err != nil {
		return err
	}
	defer store.Close()

	pruner := retention.NewPruner(store, cfg.Records)
	deleted, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("records prune", err)
	}

	fmt.Printf("✓ Pruned %d records\n", deleted)
	return nil
}
