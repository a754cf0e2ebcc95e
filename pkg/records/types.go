package records

import (
	"context"
	"io"
	"time"
)

// Request kinds.
const (
	KindCompletion = "completion"
	KindEmbedding  = "embedding"
)

// RequestRecord is one provider attempt. A request that falls back across
// three models leaves three records sharing one correlation id, with Attempt
// counting up from 1.
type RequestRecord struct {
	// ID is the record's UUID.
	ID string `json:"id"`

	// CorrelationID ties the record to the client request.
	CorrelationID string `json:"correlation_id"`

	// Time is when the attempt started.
	Time time.Time `json:"time"`

	// RecordedTime is when the record was written.
	RecordedTime time.Time `json:"recorded_time"`

	// Kind is the request kind (completion, embedding).
	Kind string `json:"kind"`

	// RequestedModel is the model id the client asked for.
	RequestedModel string `json:"requested_model"`

	// Model is the canonical id of the model the attempt targeted.
	Model string `json:"model"`

	// Provider is the backend that served the attempt.
	Provider string `json:"provider"`

	// Strategy names the routing strategy that selected the model.
	Strategy string `json:"strategy"`

	// Attempt is the 1-based attempt number within the request.
	Attempt int `json:"attempt"`

	// User is the end-user identifier, when supplied.
	User string `json:"user,omitempty"`

	// Stream reports whether the attempt was a streaming completion.
	Stream bool `json:"stream,omitempty"`

	// Messages is the conversation length of the request.
	Messages int `json:"messages,omitempty"`

	// PromptExcerpt is the leading text of the last user message. Empty
	// when prompt redaction is enabled.
	PromptExcerpt string `json:"prompt_excerpt,omitempty"`

	// Token usage as reported by the backend.
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Cost is the estimated USD cost of the attempt, when the model has a
	// cost row.
	Cost float64 `json:"cost"`

	// LatencyMS is the attempt round-trip time in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// Success reports whether the attempt succeeded.
	Success bool `json:"success"`

	// Error is the failure message, empty on success.
	Error string `json:"error,omitempty"`

	// ErrorCode is the stable gateway error code of the failure.
	ErrorCode string `json:"error_code,omitempty"`
}

// HealthRecord is one provider probe outcome.
type HealthRecord struct {
	ID                  string    `json:"id"`
	Time                time.Time `json:"time"`
	Provider            string    `json:"provider"`
	Available           bool      `json:"available"`
	LatencyMS           int64     `json:"latency_ms"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	Error               string    `json:"error,omitempty"`
}

// AlertRecord is one raised alert.
type AlertRecord struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	Kind     string    `json:"kind"`
	Provider string    `json:"provider,omitempty"`
	Model    string    `json:"model,omitempty"`
	User     string    `json:"user,omitempty"`
	Message  string    `json:"message"`
}

// Query filters request records. Zero-valued fields do not filter.
type Query struct {
	// StartTime and EndTime bound the attempt time, inclusive.
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Equality filters.
	CorrelationID string `json:"correlation_id,omitempty"`
	User          string `json:"user,omitempty"`
	Provider      string `json:"provider,omitempty"`
	Model         string `json:"model,omitempty"`
	Strategy      string `json:"strategy,omitempty"`
	ErrorCode     string `json:"error_code,omitempty"`

	// Success filters by outcome when non-nil.
	Success *bool `json:"success,omitempty"`

	// Token thresholds, inclusive.
	MinTokens *int `json:"min_tokens,omitempty"`
	MaxTokens *int `json:"max_tokens,omitempty"`

	// Pagination. Limit defaults to 100 when zero.
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Sorting. SortBy is one of time, tokens, latency, cost; SortOrder is
	// asc or desc. Defaults: time, desc.
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
}

// Storage is the record store contract. Implementations must be safe for
// concurrent use.
type Storage interface {
	// StoreRequest persists one request record.
	StoreRequest(ctx context.Context, rec *RequestRecord) error

	// StoreHealth persists one health record.
	StoreHealth(ctx context.Context, rec *HealthRecord) error

	// StoreAlert persists one alert record.
	StoreAlert(ctx context.Context, rec *AlertRecord) error

	// QueryRequests returns the request records matching q.
	QueryRequests(ctx context.Context, q *Query) ([]*RequestRecord, error)

	// StreamRequests returns the matching request records as a channel, for
	// result sets too large to hold in memory. Both channels close when the
	// query completes; callers must drain the error channel.
	StreamRequests(ctx context.Context, q *Query) (<-chan *RequestRecord, <-chan error, error)

	// CountRequests returns the number of request records matching q.
	CountRequests(ctx context.Context, q *Query) (int64, error)

	// DeleteRequests removes the request records matching q and reports how
	// many were removed.
	DeleteRequests(ctx context.Context, q *Query) (int64, error)

	// RecentHealth returns the newest health records, newest first.
	RecentHealth(ctx context.Context, limit int) ([]*HealthRecord, error)

	// RecentAlerts returns the newest alert records, newest first.
	RecentAlerts(ctx context.Context, limit int) ([]*AlertRecord, error)

	// PruneBefore removes records of every kind older than cutoff and
	// reports the total removed.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases backend resources.
	Close() error
}

// Exporter writes request records to an output in a concrete format.
type Exporter interface {
	Export(ctx context.Context, recs []*RequestRecord, w io.Writer) error
}
