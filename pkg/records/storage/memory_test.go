package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"meridian-hq/janus/pkg/records"
)

func requestAt(t time.Time, id, user, provider string, tokens int, success bool) *records.RequestRecord {
	return &records.RequestRecord{
		ID:             id,
		CorrelationID:  "corr-" + id,
		Time:           t,
		RecordedTime:   t,
		Kind:           records.KindCompletion,
		RequestedModel: "gpt-4",
		Model:          provider + ".model",
		Provider:       provider,
		Strategy:       "DirectMapping",
		Attempt:        1,
		User:           user,
		TotalTokens:    tokens,
		Success:        success,
	}
}

func seedMemory(t *testing.T) (*MemoryStorage, time.Time) {
	t.Helper()
	s := NewMemoryStorage()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		rec := requestAt(base.Add(time.Duration(i)*time.Minute),
			fmt.Sprintf("r%d", i), "alice", "openai", 100*(i+1), i%2 == 0)
		if i >= 3 {
			rec.User = "bob"
			rec.Provider = "anthropic"
			rec.Model = "anthropic.model"
		}
		if err := s.StoreRequest(ctx, rec); err != nil {
			t.Fatalf("StoreRequest: %v", err)
		}
	}
	return s, base
}

func TestMemoryQueryFilters(t *testing.T) {
	s, _ := seedMemory(t)
	ctx := context.Background()

	recs, err := s.QueryRequests(ctx, &records.Query{User: "alice"})
	if err != nil {
		t.Fatalf("QueryRequests: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records for alice, want 3", len(recs))
	}

	recs, err = s.QueryRequests(ctx, &records.Query{Provider: "anthropic"})
	if err != nil {
		t.Fatalf("QueryRequests: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records for anthropic, want 2", len(recs))
	}

	success := true
	recs, err = s.QueryRequests(ctx, &records.Query{Success: &success})
	if err != nil {
		t.Fatalf("QueryRequests: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d successful records, want 3", len(recs))
	}

	minTokens := 300
	recs, err = s.QueryRequests(ctx, &records.Query{MinTokens: &minTokens})
	if err != nil {
		t.Fatalf("QueryRequests: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records with >=300 tokens, want 3", len(recs))
	}
}

func TestMemoryQueryTimeRange(t *testing.T) {
	s, base := seedMemory(t)

	start := base.Add(1 * time.Minute)
	end := base.Add(3 * time.Minute)
	recs, err := s.QueryRequests(context.Background(), &records.Query{StartTime: &start, EndTime: &end})
	if err != nil {
		t.Fatalf("QueryRequests: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records in range, want 3", len(recs))
	}
}

func TestMemorySortAndPagination(t *testing.T) {
	s, _ := seedMemory(t)
	ctx := context.Background()

	recs, err := s.QueryRequests(ctx, &records.Query{SortBy: "tokens", SortOrder: "asc"})
	if err != nil {
		t.Fatalf("QueryRequests: %v", err)
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].TotalTokens < recs[i-1].TotalTokens {
			t.Fatalf("records not sorted ascending by tokens")
		}
	}

	// Default sort is newest first.
	recs, err = s.QueryRequests(ctx, &records.Query{Limit: 2})
	if err != nil {
		t.Fatalf("QueryRequests: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].ID != "r4" {
		t.Errorf("first record = %s, want r4", recs[0].ID)
	}

	recs, err = s.QueryRequests(ctx, &records.Query{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("QueryRequests: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records after offset, want 1", len(recs))
	}
}

func TestMemoryCountAndDelete(t *testing.T) {
	s, _ := seedMemory(t)
	ctx := context.Background()

	count, err := s.CountRequests(ctx, &records.Query{})
	if err != nil {
		t.Fatalf("CountRequests: %v", err)
	}
	if count != 5 {
		t.Fatalf("count = %d, want 5", count)
	}

	deleted, err := s.DeleteRequests(ctx, &records.Query{User: "bob"})
	if err != nil {
		t.Fatalf("DeleteRequests: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted = %d, want 2", deleted)
	}

	count, _ = s.CountRequests(ctx, &records.Query{})
	if count != 3 {
		t.Fatalf("count after delete = %d, want 3", count)
	}
}

func TestMemoryPruneBefore(t *testing.T) {
	s, base := seedMemory(t)
	ctx := context.Background()

	s.StoreHealth(ctx, &records.HealthRecord{ID: "h1", Time: base, Provider: "openai", Available: true})
	s.StoreAlert(ctx, &records.AlertRecord{ID: "a1", Time: base, Kind: "provider_unavailable", Message: "down"})

	deleted, err := s.PruneBefore(ctx, base.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("PruneBefore: %v", err)
	}
	// Two request records plus one health and one alert record.
	if deleted != 4 {
		t.Fatalf("pruned = %d, want 4", deleted)
	}
}

func TestMemoryStreamRequests(t *testing.T) {
	s, _ := seedMemory(t)

	recCh, errCh, err := s.StreamRequests(context.Background(), &records.Query{User: "alice"})
	if err != nil {
		t.Fatalf("StreamRequests: %v", err)
	}

	var got int
	for range recCh {
		got++
	}
	if err := <-errCh; err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if got != 3 {
		t.Fatalf("streamed %d records, want 3", got)
	}
}

func TestMemoryRecentHealthAndAlerts(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 3; i++ {
		s.StoreHealth(ctx, &records.HealthRecord{
			ID: fmt.Sprintf("h%d", i), Time: base.Add(time.Duration(i) * time.Second),
			Provider: "openai", Available: i != 1,
		})
		s.StoreAlert(ctx, &records.AlertRecord{
			ID: fmt.Sprintf("a%d", i), Time: base.Add(time.Duration(i) * time.Second),
			Kind: "model_performance", Message: "slow",
		})
	}

	health, err := s.RecentHealth(ctx, 2)
	if err != nil {
		t.Fatalf("RecentHealth: %v", err)
	}
	if len(health) != 2 || health[0].ID != "h2" {
		t.Fatalf("RecentHealth = %+v, want newest first", health)
	}

	alerts, err := s.RecentAlerts(ctx, 10)
	if err != nil {
		t.Fatalf("RecentAlerts: %v", err)
	}
	if len(alerts) != 3 || alerts[0].ID != "a2" {
		t.Fatalf("RecentAlerts = %+v, want newest first", alerts)
	}
}
