package retention

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/records"
)

// Pruner enforces the retention policy on a record store: an age limit
// (RetentionDays) and a total-count cap (MaxRecords). Both are optional;
// with neither configured Prune is a no-op.
type Pruner struct {
	storage records.Storage
	cfg     config.RecordsConfig
	log     *slog.Logger

	mu      sync.Mutex
	lastRun time.Time
}

// NewPruner creates a pruner over a record store.
func NewPruner(storage records.Storage, cfg config.RecordsConfig) *Pruner {
	return &Pruner{
		storage: storage,
		cfg:     cfg,
		log:     slog.Default().With("component", "records.retention"),
	}
}

// Prune applies the retention policy once and reports how many records were
// removed. Age pruning covers request, health and alert records; the count
// cap applies to request records only.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	p.mu.Lock()
	p.lastRun = time.Now()
	p.mu.Unlock()

	var deleted int64

	if p.cfg.RetentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -p.cfg.RetentionDays)
		n, err := p.storage.PruneBefore(ctx, cutoff)
		if err != nil {
			return deleted, records.NewRetentionError(p.cfg.RetentionDays, err)
		}
		deleted += n
	}

	if p.cfg.MaxRecords > 0 {
		n, err := p.pruneExcess(ctx)
		if err != nil {
			return deleted, records.NewRetentionError(p.cfg.RetentionDays, err)
		}
		deleted += n
	}

	if deleted > 0 {
		p.log.Info("retention pruning removed records",
			"deleted", deleted,
			"retention_days", p.cfg.RetentionDays,
			"max_records", p.cfg.MaxRecords,
		)
	}
	return deleted, nil
}

// pruneExcess removes the oldest request records above the count cap.
// Records sharing the boundary timestamp are removed together, so the store
// may briefly dip below the cap.
func (p *Pruner) pruneExcess(ctx context.Context) (int64, error) {
	total, err := p.storage.CountRequests(ctx, &records.Query{})
	if err != nil {
		return 0, err
	}
	excess := total - p.cfg.MaxRecords
	if excess <= 0 {
		return 0, nil
	}

	oldest, err := p.storage.QueryRequests(ctx, &records.Query{
		Limit:     int(excess),
		SortBy:    "time",
		SortOrder: "asc",
	})
	if err != nil {
		return 0, err
	}
	if len(oldest) == 0 {
		return 0, nil
	}

	boundary := oldest[len(oldest)-1].Time
	return p.storage.DeleteRequests(ctx, &records.Query{EndTime: &boundary})
}

// LastRun returns when Prune last started, zero before the first run.
func (p *Pruner) LastRun() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRun
}
