package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the pruner on a cron schedule (standard five-field syntax,
// e.g. "0 3 * * *" for daily at 3 AM). An empty schedule disables it.
type Scheduler struct {
	pruner   *Pruner
	schedule string
	cron     *cron.Cron
	log      *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler for a pruner.
func NewScheduler(pruner *Pruner, schedule string) *Scheduler {
	return &Scheduler{
		pruner:   pruner,
		schedule: schedule,
		cron:     cron.New(),
		log:      slog.Default().With("component", "records.scheduler"),
	}
}

// Start validates the schedule and begins scheduled pruning. Idempotent.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.schedule == "" {
		s.log.Debug("prune schedule not configured, scheduler idle")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", s.schedule, err)
	}
	if _, err := s.cron.AddFunc(s.schedule, func() { s.runOnce(ctx) }); err != nil {
		return fmt.Errorf("scheduling prune job: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.log.Info("retention scheduler started", "schedule", s.schedule)
	return nil
}

// Stop halts scheduling and waits for a running prune to finish. Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.log.Info("retention scheduler stopped")
}

// Running reports whether the scheduler is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.pruner.Prune(ctx); err != nil {
		s.log.Error("scheduled pruning failed", "error", err)
	}
}
