package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"meridian-hq/janus/pkg/alerts"
	"meridian-hq/janus/pkg/config"
	"meridian-hq/janus/pkg/monitor"
	"meridian-hq/janus/pkg/processing/costs"
	"meridian-hq/janus/pkg/providers"
	"meridian-hq/janus/pkg/records"
	"meridian-hq/janus/pkg/routing"
)

// DefaultBufferSize is the async queue depth when the configuration leaves
// it unset.
const DefaultBufferSize = 1000

// Recorder writes request, health and alert records to a store without ever
// blocking the request path: records are queued on a buffered channel and
// drained by a background worker, and a full queue drops the record.
//
// It implements routing.AttemptObserver, monitor.HealthSink and alerts.Sink.
type Recorder struct {
	storage records.Storage
	costs   *costs.Calculator
	cfg     config.RecordsConfig

	queue chan any
	done  chan struct{}
	wg    sync.WaitGroup
	log   *slog.Logger

	dropped int64
	mu      sync.Mutex
}

// New creates a recorder over a store and starts its worker. Callers own the
// storage and must Close the recorder before closing the store.
func New(storage records.Storage, cfg config.RecordsConfig) *Recorder {
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}

	r := &Recorder{
		storage: storage,
		costs:   costs.NewCalculator(),
		cfg:     cfg,
		queue:   make(chan any, buffer),
		done:    make(chan struct{}),
		log:     slog.Default().With("component", "records.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	return r
}

// ObserveAttempt implements routing.AttemptObserver. Request context fields
// attached with WithRequestInfo are folded into the record.
func (r *Recorder) ObserveAttempt(ctx context.Context, att routing.Attempt) {
	rec := &records.RequestRecord{
		ID:               uuid.New().String(),
		Time:             time.Now().Add(-att.Latency),
		Kind:             records.KindCompletion,
		Model:            att.Model.ID,
		Provider:         att.Model.Provider,
		Strategy:         att.Strategy,
		Attempt:          att.Index,
		PromptTokens:     att.Usage.PromptTokens,
		CompletionTokens: att.Usage.CompletionTokens,
		TotalTokens:      att.Usage.TotalTokens,
		LatencyMS:        att.Latency.Milliseconds(),
		Success:          att.Err == nil,
	}

	if info, ok := InfoFromContext(ctx); ok {
		rec.CorrelationID = info.CorrelationID
		rec.User = info.User
		rec.RequestedModel = info.RequestedModel
		rec.Stream = info.Stream
		rec.Messages = info.Messages
		if info.Kind != "" {
			rec.Kind = info.Kind
		}
		if !r.cfg.RedactPrompts {
			rec.PromptExcerpt = info.PromptExcerpt
		}
	}

	if att.Err != nil {
		rec.Error = att.Err.Error()
		rec.ErrorCode = providers.CodeOf(att.Err)
	}
	if est := r.costs.ActualCost(att.Model, att.Usage); est != nil {
		rec.Cost = est.TotalCost
	}

	r.enqueue(rec)
}

// RecordHealth implements monitor.HealthSink.
func (r *Recorder) RecordHealth(ctx context.Context, health monitor.ProviderHealth) {
	r.enqueue(&records.HealthRecord{
		ID:                  uuid.New().String(),
		Time:                health.LastCheck,
		Provider:            health.Provider,
		Available:           health.Available,
		LatencyMS:           health.ProbeLatency.Milliseconds(),
		ConsecutiveFailures: health.ConsecutiveFailures,
		Error:               health.LastError,
	})
}

// Send implements alerts.Sink.
func (r *Recorder) Send(ctx context.Context, alert alerts.Alert) {
	r.enqueue(&records.AlertRecord{
		ID:       uuid.New().String(),
		Time:     alert.Time,
		Kind:     string(alert.Kind),
		Provider: alert.Provider,
		Model:    alert.Model,
		User:     alert.User,
		Message:  alert.Message,
	})
}

// Dropped returns how many records were dropped because the queue was full.
func (r *Recorder) Dropped() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Close drains the queue and stops the worker. The recorder must not be used
// afterwards.
func (r *Recorder) Close() error {
	close(r.done)
	r.wg.Wait()
	return nil
}

// enqueue offers a record to the worker. Recording is best-effort: a full
// queue or a closing recorder drops the record.
func (r *Recorder) enqueue(rec any) {
	select {
	case r.queue <- rec:
	case <-r.done:
	default:
		r.mu.Lock()
		r.dropped++
		dropped := r.dropped
		r.mu.Unlock()
		r.log.Warn("record queue full, dropping record", "dropped_total", dropped)
	}
}

// worker drains the queue. On shutdown it flushes whatever is already
// queued, then exits.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case rec := <-r.queue:
			r.write(rec)
		case <-r.done:
			for {
				select {
				case rec := <-r.queue:
					r.write(rec)
				default:
					return
				}
			}
		}
	}
}

// write persists one record. Storage failures are logged, never surfaced.
func (r *Recorder) write(rec any) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	switch rec := rec.(type) {
	case *records.RequestRecord:
		err = r.storage.StoreRequest(ctx, rec)
	case *records.HealthRecord:
		err = r.storage.StoreHealth(ctx, rec)
	case *records.AlertRecord:
		err = r.storage.StoreAlert(ctx, rec)
	}
	if err != nil {
		r.log.Error("failed to write record", "error", err)
	}
}

// Excerpt truncates text for storage in a record. Multibyte runes are never
// split.
func Excerpt(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…"
}
