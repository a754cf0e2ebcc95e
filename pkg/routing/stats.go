package routing

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats tracks routing decision counters. All counters are updated with
// atomic operations so reporting never contends with the request path.
type Stats struct {
	total         atomic.Int64
	errors        atomic.Int64
	userOverrides atomic.Int64

	// perStrategy and perProvider hold *atomic.Int64 values keyed by name.
	perStrategy sync.Map
	perProvider sync.Map

	mu        sync.RWMutex
	lastReset time.Time
}

// StatsSnapshot is a point-in-time copy of the counters, safe to read
// without synchronization.
type StatsSnapshot struct {
	// TotalDecisions counts routing calls, successful or not.
	TotalDecisions int64 `json:"total_decisions"`

	// Errors counts calls that resolved no model.
	Errors int64 `json:"errors"`

	// UserOverrides counts decisions where a per-user model preference
	// replaced the requested model.
	UserOverrides int64 `json:"user_overrides"`

	// ByStrategy counts selections per strategy name.
	ByStrategy map[string]int64 `json:"by_strategy"`

	// ByProvider counts selections per provider.
	ByProvider map[string]int64 `json:"by_provider"`

	// LastReset is when the counters were last zeroed.
	LastReset time.Time `json:"last_reset"`
}

// NewStats creates a zeroed counter set.
func NewStats() *Stats {
	return &Stats{lastReset: time.Now()}
}

func (s *Stats) incTotal()        { s.total.Add(1) }
func (s *Stats) incErrors()       { s.errors.Add(1) }
func (s *Stats) incUserOverride() { s.userOverrides.Add(1) }

func (s *Stats) incStrategy(name string) {
	val, _ := s.perStrategy.LoadOrStore(name, &atomic.Int64{})
	val.(*atomic.Int64).Add(1)
}

func (s *Stats) incProvider(name string) {
	val, _ := s.perProvider.LoadOrStore(name, &atomic.Int64{})
	val.(*atomic.Int64).Add(1)
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	lastReset := s.lastReset
	s.mu.RUnlock()

	byStrategy := make(map[string]int64)
	s.perStrategy.Range(func(key, value any) bool {
		byStrategy[key.(string)] = value.(*atomic.Int64).Load()
		return true
	})

	byProvider := make(map[string]int64)
	s.perProvider.Range(func(key, value any) bool {
		byProvider[key.(string)] = value.(*atomic.Int64).Load()
		return true
	})

	return StatsSnapshot{
		TotalDecisions: s.total.Load(),
		Errors:         s.errors.Load(),
		UserOverrides:  s.userOverrides.Load(),
		ByStrategy:     byStrategy,
		ByProvider:     byProvider,
		LastReset:      lastReset,
	}
}

// Reset zeroes every counter.
func (s *Stats) Reset() {
	s.total.Store(0)
	s.errors.Store(0)
	s.userOverrides.Store(0)

	s.perStrategy.Range(func(key, _ any) bool {
		s.perStrategy.Delete(key)
		return true
	})
	s.perProvider.Range(func(key, _ any) bool {
		s.perProvider.Delete(key)
		return true
	})

	s.mu.Lock()
	s.lastReset = time.Now()
	s.mu.Unlock()
}
