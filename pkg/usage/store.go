package usage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Store accumulates token events per user. Implementations must be safe for
// concurrent use.
type Store interface {
	// Add records tokens consumed by a user at a point in time.
	Add(ctx context.Context, user string, tokens int64, at time.Time) error

	// Sum returns the user's token total since the given time.
	Sum(ctx context.Context, user string, since time.Time) (int64, error)

	// Users lists the users with recorded events since the given time.
	Users(ctx context.Context, since time.Time) ([]string, error)

	// Prune drops events older than the cutoff.
	Prune(ctx context.Context, before time.Time) error

	// Close releases backend resources.
	Close() error
}

// event is one token increment in the memory store.
type event struct {
	at     time.Time
	tokens int64
}

// MemoryStore keeps usage events in memory. Suitable for single-instance
// deployments that can lose accounting state on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string][]event
}

// NewMemoryStore creates an in-memory usage store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[string][]event)}
}

// Add implements Store.
func (s *MemoryStore) Add(ctx context.Context, user string, tokens int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[user] = append(s.events[user], event{at: at, tokens: tokens})
	return nil
}

// Sum implements Store.
func (s *MemoryStore) Sum(ctx context.Context, user string, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, ev := range s.events[user] {
		if !ev.at.Before(since) {
			total += ev.tokens
		}
	}
	return total, nil
}

// Users implements Store.
func (s *MemoryStore) Users(ctx context.Context, since time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []string
	for user, evs := range s.events {
		for _, ev := range evs {
			if !ev.at.Before(since) {
				users = append(users, user)
				break
			}
		}
	}
	sort.Strings(users)
	return users, nil
}

// Prune implements Store.
func (s *MemoryStore) Prune(ctx context.Context, before time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for user, evs := range s.events {
		kept := evs[:0]
		for _, ev := range evs {
			if !ev.at.Before(before) {
				kept = append(kept, ev)
			}
		}
		if len(kept) == 0 {
			delete(s.events, user)
		} else {
			s.events[user] = kept
		}
	}
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
