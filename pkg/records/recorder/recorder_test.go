package recorder

import (
	"context"
	"errors"
	"testing"
	"time"

	"meridian-hq/janus/pkg/alerts"
	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/monitor"
	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/records"
	"meridian-hq/janus/pkg/records/storage"
	"meridian-hq/janus/pkg/registry"
	"meridian-hq/janus/pkg/routing"
)

func waitForRequests(t *testing.T, store records.Storage, want int64) []*records.RequestRecord {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		n, err := store.CountRequests(context.Background(), &records.Query{})
		if err != nil {
			t.Fatalf("CountRequests failed: %v", err)
		}
		if n >= want {
			recs, err := store.QueryRequests(context.Background(), &records.Query{})
			if err != nil {
				t.Fatalf("QueryRequests failed: %v", err)
			}
			return recs
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d request records", want)
	return nil
}

func TestObserveAttemptWritesRecord(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := New(store, config.RecordsConfig{Enabled: true, BufferSize: 16})
	defer rec.Close()

	ctx := WithRequestInfo(context.Background(), RequestInfo{
		CorrelationID:  "corr-1",
		User:           "alice",
		Kind:           records.KindCompletion,
		RequestedModel: "gpt-4",
		Messages:       2,
		PromptExcerpt:  "hello",
	})

	rec.ObserveAttempt(ctx, routing.Attempt{
		Model: registry.ModelInfo{
			ID:              "openai.gpt-4",
			Provider:        "openai",
			ProviderModelID: "gpt-4",
			InputCostPer1K:  0.03,
			OutputCostPer1K: 0.06,
			HasCost:         true,
		},
		Index:    1,
		Strategy: routing.StrategyDirectMapping,
		Latency:  250 * time.Millisecond,
		Usage:    providers.TokenUsage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
	})

	got := waitForRequests(t, store, 1)[0]
	if got.CorrelationID != "corr-1" || got.User != "alice" {
		t.Errorf("request context not folded in: %+v", got)
	}
	if got.Model != "openai.gpt-4" || got.Provider != "openai" {
		t.Errorf("model fields wrong: %+v", got)
	}
	if !got.Success || got.ErrorCode != "" {
		t.Errorf("expected success record, got %+v", got)
	}
	if got.PromptExcerpt != "hello" {
		t.Errorf("PromptExcerpt = %q, want %q", got.PromptExcerpt, "hello")
	}
	if got.TotalTokens != 30 {
		t.Errorf("TotalTokens = %d, want 30", got.TotalTokens)
	}
	// 10 in at 0.03/1K + 20 out at 0.06/1K.
	wantCost := 0.03*10/1000 + 0.06*20/1000
	if diff := got.Cost - wantCost; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Cost = %v, want %v", got.Cost, wantCost)
	}
}

func TestObserveAttemptFailure(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := New(store, config.RecordsConfig{Enabled: true})
	defer rec.Close()

	rec.ObserveAttempt(context.Background(), routing.Attempt{
		Model:    registry.ModelInfo{ID: "openai.gpt-4", Provider: "openai"},
		Index:    1,
		Strategy: routing.StrategyDirectMapping,
		Err:      &providers.RateLimitError{Provider: "openai"},
	})

	got := waitForRequests(t, store, 1)[0]
	if got.Success {
		t.Fatal("expected failure record")
	}
	if got.ErrorCode != providers.CodeRateLimitExceeded {
		t.Errorf("ErrorCode = %q, want %q", got.ErrorCode, providers.CodeRateLimitExceeded)
	}
}

func TestRedactPrompts(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := New(store, config.RecordsConfig{Enabled: true, RedactPrompts: true})
	defer rec.Close()

	ctx := WithRequestInfo(context.Background(), RequestInfo{
		CorrelationID: "corr-2",
		PromptExcerpt: "secret prompt",
	})
	rec.ObserveAttempt(ctx, routing.Attempt{
		Model: registry.ModelInfo{ID: "openai.gpt-4", Provider: "openai"},
		Index: 1,
	})

	got := waitForRequests(t, store, 1)[0]
	if got.PromptExcerpt != "" {
		t.Errorf("prompt excerpt stored despite redaction: %q", got.PromptExcerpt)
	}
}

func TestRecordHealthAndAlert(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec := New(store, config.RecordsConfig{Enabled: true})

	rec.RecordHealth(context.Background(), monitor.ProviderHealth{
		Provider:            "anthropic",
		Available:           false,
		LastCheck:           time.Now(),
		ConsecutiveFailures: 3,
		LastError:           "connection refused",
	})
	rec.Send(context.Background(), alerts.Alert{
		Kind:     alerts.KindProviderUnavailable,
		Provider: "anthropic",
		Message:  "provider anthropic unavailable",
		Time:     time.Now(),
	})

	// Close drains the queue, so reads afterwards see everything.
	if err := rec.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	health, err := store.RecentHealth(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentHealth failed: %v", err)
	}
	if len(health) != 1 || health[0].Provider != "anthropic" || health[0].Available {
		t.Errorf("unexpected health records: %+v", health)
	}

	al, err := store.RecentAlerts(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentAlerts failed: %v", err)
	}
	if len(al) != 1 || al[0].Kind != string(alerts.KindProviderUnavailable) {
		t.Errorf("unexpected alert records: %+v", al)
	}
}

func TestQueueFullDrops(t *testing.T) {
	store := &blockingStorage{Storage: storage.NewMemoryStorage(), gate: make(chan struct{})}
	rec := New(store, config.RecordsConfig{Enabled: true, BufferSize: 1})
	defer rec.Close()
	defer close(store.gate)

	att := routing.Attempt{Model: registry.ModelInfo{ID: "m", Provider: "p"}, Index: 1}
	for i := 0; i < 10; i++ {
		rec.ObserveAttempt(context.Background(), att)
	}

	if rec.Dropped() == 0 {
		t.Error("expected drops with a full queue")
	}
}

type blockingStorage struct {
	records.Storage
	gate chan struct{}
}

func (s *blockingStorage) StoreRequest(ctx context.Context, rec *records.RequestRecord) error {
	<-s.gate
	return errors.New("closed")
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"hello world", 5, "hello…"},
		{"héllo wörld", 5, "héllo…"},
		{"unlimited", 0, "unlimited"},
	}
	for _, tt := range tests {
		if got := Excerpt(tt.in, tt.max); got != tt.want {
			t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
