package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"meridian-hq/janus/pkg/records"
)

// MemoryStorage implements records.Storage in memory. It backs tests and
// deployments that want recent history without a database file; records do
// not survive a restart.
type MemoryStorage struct {
	mu       sync.RWMutex
	requests []*records.RequestRecord
	health   []*records.HealthRecord
	alerts   []*records.AlertRecord
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// StoreRequest persists one request record.
func (s *MemoryStorage) StoreRequest(ctx context.Context, rec *records.RequestRecord) error {
	clone := *rec
	s.mu.Lock()
	s.requests = append(s.requests, &clone)
	s.mu.Unlock()
	return nil
}

// StoreHealth persists one health record.
func (s *MemoryStorage) StoreHealth(ctx context.Context, rec *records.HealthRecord) error {
	clone := *rec
	s.mu.Lock()
	s.health = append(s.health, &clone)
	s.mu.Unlock()
	return nil
}

// StoreAlert persists one alert record.
func (s *MemoryStorage) StoreAlert(ctx context.Context, rec *records.AlertRecord) error {
	clone := *rec
	s.mu.Lock()
	s.alerts = append(s.alerts, &clone)
	s.mu.Unlock()
	return nil
}

// QueryRequests returns the request records matching q.
func (s *MemoryStorage) QueryRequests(ctx context.Context, q *records.Query) ([]*records.RequestRecord, error) {
	s.mu.RLock()
	matched := make([]*records.RequestRecord, 0)
	for _, rec := range s.requests {
		if matches(rec, q) {
			clone := *rec
			matched = append(matched, &clone)
		}
	}
	s.mu.RUnlock()

	sortRequests(matched, q.SortBy, q.SortOrder)
	return paginate(matched, q.Limit, q.Offset), nil
}

// StreamRequests streams the matching request records through a channel.
func (s *MemoryStorage) StreamRequests(ctx context.Context, q *records.Query) (<-chan *records.RequestRecord, <-chan error, error) {
	matched, err := s.QueryRequests(ctx, q)
	if err != nil {
		return nil, nil, err
	}

	recCh := make(chan *records.RequestRecord, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(recCh)
		defer close(errCh)
		for _, rec := range matched {
			select {
			case recCh <- rec:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
	}()

	return recCh, errCh, nil
}

// CountRequests returns the number of request records matching q.
func (s *MemoryStorage) CountRequests(ctx context.Context, q *records.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, rec := range s.requests {
		if matches(rec, q) {
			count++
		}
	}
	return count, nil
}

// DeleteRequests removes the request records matching q.
func (s *MemoryStorage) DeleteRequests(ctx context.Context, q *records.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.requests[:0]
	var deleted int64
	for _, rec := range s.requests {
		if matches(rec, q) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	s.requests = kept
	return deleted, nil
}

// RecentHealth returns the newest health records, newest first.
func (s *MemoryStorage) RecentHealth(ctx context.Context, limit int) ([]*records.HealthRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*records.HealthRecord, 0, limit)
	for i := len(s.health) - 1; i >= 0 && len(out) < limit; i-- {
		clone := *s.health[i]
		out = append(out, &clone)
	}
	return out, nil
}

// RecentAlerts returns the newest alert records, newest first.
func (s *MemoryStorage) RecentAlerts(ctx context.Context, limit int) ([]*records.AlertRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*records.AlertRecord, 0, limit)
	for i := len(s.alerts) - 1; i >= 0 && len(out) < limit; i-- {
		clone := *s.alerts[i]
		out = append(out, &clone)
	}
	return out, nil
}

// PruneBefore removes records of every kind older than cutoff.
func (s *MemoryStorage) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64

	keptRequests := s.requests[:0]
	for _, rec := range s.requests {
		if rec.Time.Before(cutoff) {
			deleted++
			continue
		}
		keptRequests = append(keptRequests, rec)
	}
	s.requests = keptRequests

	keptHealth := s.health[:0]
	for _, rec := range s.health {
		if rec.Time.Before(cutoff) {
			deleted++
			continue
		}
		keptHealth = append(keptHealth, rec)
	}
	s.health = keptHealth

	keptAlerts := s.alerts[:0]
	for _, rec := range s.alerts {
		if rec.Time.Before(cutoff) {
			deleted++
			continue
		}
		keptAlerts = append(keptAlerts, rec)
	}
	s.alerts = keptAlerts

	return deleted, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStorage) Close() error { return nil }

// matches reports whether a record passes every filter in q.
func matches(rec *records.RequestRecord, q *records.Query) bool {
	if q == nil {
		return true
	}
	if q.StartTime != nil && rec.Time.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && rec.Time.After(*q.EndTime) {
		return false
	}
	if q.CorrelationID != "" && rec.CorrelationID != q.CorrelationID {
		return false
	}
	if q.User != "" && rec.User != q.User {
		return false
	}
	if q.Provider != "" && rec.Provider != q.Provider {
		return false
	}
	if q.Model != "" && rec.Model != q.Model {
		return false
	}
	if q.Strategy != "" && rec.Strategy != q.Strategy {
		return false
	}
	if q.ErrorCode != "" && rec.ErrorCode != q.ErrorCode {
		return false
	}
	if q.Success != nil && rec.Success != *q.Success {
		return false
	}
	if q.MinTokens != nil && rec.TotalTokens < *q.MinTokens {
		return false
	}
	if q.MaxTokens != nil && rec.TotalTokens > *q.MaxTokens {
		return false
	}
	return true
}

// sortRequests orders records by the query's sort column and direction.
func sortRequests(recs []*records.RequestRecord, sortBy, sortOrder string) {
	asc := strings.EqualFold(sortOrder, "asc")

	less := func(a, b *records.RequestRecord) bool { return a.Time.Before(b.Time) }
	switch sortBy {
	case "tokens":
		less = func(a, b *records.RequestRecord) bool { return a.TotalTokens < b.TotalTokens }
	case "latency":
		less = func(a, b *records.RequestRecord) bool { return a.LatencyMS < b.LatencyMS }
	case "cost":
		less = func(a, b *records.RequestRecord) bool { return a.Cost < b.Cost }
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if asc {
			return less(recs[i], recs[j])
		}
		return less(recs[j], recs[i])
	})
}

// paginate applies the query's limit and offset.
func paginate(recs []*records.RequestRecord, limit, offset int) []*records.RequestRecord {
	if limit <= 0 {
		limit = 100
	}
	if offset >= len(recs) {
		return []*records.RequestRecord{}
	}
	recs = recs[offset:]
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}
