package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"meridian-hq/janus/pkg/records"
)

// SQLiteConfig configures the SQLite record store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns caps open connections. Default 10.
	MaxOpenConns int

	// MaxIdleConns caps idle connections. Default 5.
	MaxIdleConns int

	// WALMode enables write-ahead logging. Default true.
	WALMode bool

	// BusyTimeout is how long a writer waits on a locked database.
	// Default 5 seconds.
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/records.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements records.Storage on SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens (creating if needed) the record database and
// verifies its schema version.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, records.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: slog.Default().With("component", "records.storage.sqlite"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("record store opened",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)
	return s, nil
}

// initialize applies pragmas, creates the schema and checks its version.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return records.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return records.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return records.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return records.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return records.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return records.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

const requestColumns = `id, correlation_id, time, recorded_time, kind,
	requested_model, model, provider, strategy, attempt,
	user, stream, messages, prompt_excerpt,
	prompt_tokens, completion_tokens, total_tokens, cost, latency_ms,
	success, error, error_code`

// StoreRequest persists one request record.
func (s *SQLiteStorage) StoreRequest(ctx context.Context, rec *records.RequestRecord) error {
	query := `INSERT INTO requests (` + requestColumns + `) VALUES
		(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var errVal, codeVal any
	if rec.Error != "" {
		errVal = rec.Error
	}
	if rec.ErrorCode != "" {
		codeVal = rec.ErrorCode
	}

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.CorrelationID, rec.Time, rec.RecordedTime, rec.Kind,
		rec.RequestedModel, rec.Model, rec.Provider, rec.Strategy, rec.Attempt,
		rec.User, rec.Stream, rec.Messages, rec.PromptExcerpt,
		rec.PromptTokens, rec.CompletionTokens, rec.TotalTokens, rec.Cost, rec.LatencyMS,
		rec.Success, errVal, codeVal,
	)
	if err != nil {
		return records.NewStorageError("sqlite", "store_request", err)
	}
	return nil
}

// StoreHealth persists one health record.
func (s *SQLiteStorage) StoreHealth(ctx context.Context, rec *records.HealthRecord) error {
	var errVal any
	if rec.Error != "" {
		errVal = rec.Error
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO health (id, time, provider, available, latency_ms, consecutive_failures, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Time, rec.Provider, rec.Available, rec.LatencyMS, rec.ConsecutiveFailures, errVal,
	)
	if err != nil {
		return records.NewStorageError("sqlite", "store_health", err)
	}
	return nil
}

// StoreAlert persists one alert record.
func (s *SQLiteStorage) StoreAlert(ctx context.Context, rec *records.AlertRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (id, time, kind, provider, model, user, message)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Time, rec.Kind, rec.Provider, rec.Model, rec.User, rec.Message,
	)
	if err != nil {
		return records.NewStorageError("sqlite", "store_alert", err)
	}
	return nil
}

// QueryRequests returns the request records matching q.
func (s *SQLiteStorage) QueryRequests(ctx context.Context, q *records.Query) ([]*records.RequestRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.selectQuery(q), whereArgs(q)...)
	if err != nil {
		return nil, records.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	recs := []*records.RequestRecord{}
	for rows.Next() {
		rec, err := scanRequest(rows)
		if err != nil {
			return nil, records.NewStorageError("sqlite", "scan", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, records.NewStorageError("sqlite", "query", err)
	}
	return recs, nil
}

// StreamRequests streams the matching request records through a channel.
func (s *SQLiteStorage) StreamRequests(ctx context.Context, q *records.Query) (<-chan *records.RequestRecord, <-chan error, error) {
	recCh := make(chan *records.RequestRecord, 100)
	errCh := make(chan error, 1)

	query := s.selectQuery(q)
	args := whereArgs(q)

	go func() {
		defer close(recCh)
		defer close(errCh)

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			errCh <- records.NewStorageError("sqlite", "stream", err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanRequest(rows)
			if err != nil {
				errCh <- records.NewStorageError("sqlite", "scan", err)
				return
			}
			select {
			case recCh <- rec:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		if err := rows.Err(); err != nil {
			errCh <- records.NewStorageError("sqlite", "stream", err)
		}
	}()

	return recCh, errCh, nil
}

// CountRequests returns the number of request records matching q.
func (s *SQLiteStorage) CountRequests(ctx context.Context, q *records.Query) (int64, error) {
	query := "SELECT COUNT(*) FROM requests"
	if where := whereClause(q); where != "" {
		query += " WHERE " + where
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, query, whereArgs(q)...).Scan(&count); err != nil {
		return 0, records.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// DeleteRequests removes the request records matching q.
func (s *SQLiteStorage) DeleteRequests(ctx context.Context, q *records.Query) (int64, error) {
	query := "DELETE FROM requests"
	if where := whereClause(q); where != "" {
		query += " WHERE " + where
	}

	result, err := s.db.ExecContext(ctx, query, whereArgs(q)...)
	if err != nil {
		return 0, records.NewStorageError("sqlite", "delete", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, records.NewStorageError("sqlite", "delete", err)
	}
	return count, nil
}

// RecentHealth returns the newest health records, newest first.
func (s *SQLiteStorage) RecentHealth(ctx context.Context, limit int) ([]*records.HealthRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, time, provider, available, latency_ms, consecutive_failures, error
		 FROM health ORDER BY time DESC LIMIT ?`, limit)
	if err != nil {
		return nil, records.NewStorageError("sqlite", "recent_health", err)
	}
	defer rows.Close()

	recs := []*records.HealthRecord{}
	for rows.Next() {
		var rec records.HealthRecord
		var errVal sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Time, &rec.Provider, &rec.Available,
			&rec.LatencyMS, &rec.ConsecutiveFailures, &errVal); err != nil {
			return nil, records.NewStorageError("sqlite", "scan", err)
		}
		rec.Error = errVal.String
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, records.NewStorageError("sqlite", "recent_health", err)
	}
	return recs, nil
}

// RecentAlerts returns the newest alert records, newest first.
func (s *SQLiteStorage) RecentAlerts(ctx context.Context, limit int) ([]*records.AlertRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, time, kind, provider, model, user, message
		 FROM alerts ORDER BY time DESC LIMIT ?`, limit)
	if err != nil {
		return nil, records.NewStorageError("sqlite", "recent_alerts", err)
	}
	defer rows.Close()

	recs := []*records.AlertRecord{}
	for rows.Next() {
		var rec records.AlertRecord
		if err := rows.Scan(&rec.ID, &rec.Time, &rec.Kind, &rec.Provider,
			&rec.Model, &rec.User, &rec.Message); err != nil {
			return nil, records.NewStorageError("sqlite", "scan", err)
		}
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, records.NewStorageError("sqlite", "recent_alerts", err)
	}
	return recs, nil
}

// PruneBefore removes records of every kind older than cutoff.
func (s *SQLiteStorage) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var total int64
	for _, table := range []string{"requests", "health", "alerts"} {
		result, err := s.db.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE time < ?", table), cutoff)
		if err != nil {
			return total, records.NewStorageError("sqlite", "prune_"+table, err)
		}
		count, err := result.RowsAffected()
		if err != nil {
			return total, records.NewStorageError("sqlite", "prune_"+table, err)
		}
		total += count
	}
	return total, nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return records.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("record store closed")
	return nil
}

// selectQuery assembles the SELECT statement for q: filters, sorting and
// pagination. Sort columns are mapped through an allow-list, never
// interpolated from caller input.
func (s *SQLiteStorage) selectQuery(q *records.Query) string {
	query := "SELECT " + requestColumns + " FROM requests"
	if where := whereClause(q); where != "" {
		query += " WHERE " + where
	}

	column := "time"
	switch q.SortBy {
	case "", "time":
	case "tokens":
		column = "total_tokens"
	case "latency":
		column = "latency_ms"
	case "cost":
		column = "cost"
	}

	order := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		order = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", column, order)

	limit := 100
	if q.Limit > 0 {
		limit = q.Limit
	}
	query += fmt.Sprintf(" LIMIT %d", limit)
	if q.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", q.Offset)
	}

	return query
}

// whereClause builds the WHERE clause for q, without the keyword.
func whereClause(q *records.Query) string {
	var conditions []string

	if q.StartTime != nil {
		conditions = append(conditions, "time >= ?")
	}
	if q.EndTime != nil {
		conditions = append(conditions, "time <= ?")
	}
	if q.CorrelationID != "" {
		conditions = append(conditions, "correlation_id = ?")
	}
	if q.User != "" {
		conditions = append(conditions, "user = ?")
	}
	if q.Provider != "" {
		conditions = append(conditions, "provider = ?")
	}
	if q.Model != "" {
		conditions = append(conditions, "model = ?")
	}
	if q.Strategy != "" {
		conditions = append(conditions, "strategy = ?")
	}
	if q.ErrorCode != "" {
		conditions = append(conditions, "error_code = ?")
	}
	if q.Success != nil {
		conditions = append(conditions, "success = ?")
	}
	if q.MinTokens != nil {
		conditions = append(conditions, "total_tokens >= ?")
	}
	if q.MaxTokens != nil {
		conditions = append(conditions, "total_tokens <= ?")
	}

	return strings.Join(conditions, " AND ")
}

// whereArgs collects the arguments matching whereClause, in the same order.
func whereArgs(q *records.Query) []any {
	var args []any

	if q.StartTime != nil {
		args = append(args, *q.StartTime)
	}
	if q.EndTime != nil {
		args = append(args, *q.EndTime)
	}
	if q.CorrelationID != "" {
		args = append(args, q.CorrelationID)
	}
	if q.User != "" {
		args = append(args, q.User)
	}
	if q.Provider != "" {
		args = append(args, q.Provider)
	}
	if q.Model != "" {
		args = append(args, q.Model)
	}
	if q.Strategy != "" {
		args = append(args, q.Strategy)
	}
	if q.ErrorCode != "" {
		args = append(args, q.ErrorCode)
	}
	if q.Success != nil {
		args = append(args, *q.Success)
	}
	if q.MinTokens != nil {
		args = append(args, *q.MinTokens)
	}
	if q.MaxTokens != nil {
		args = append(args, *q.MaxTokens)
	}

	return args
}

// scanRequest scans one requests row.
func scanRequest(rows *sql.Rows) (*records.RequestRecord, error) {
	var rec records.RequestRecord
	var errVal, codeVal sql.NullString

	err := rows.Scan(
		&rec.ID, &rec.CorrelationID, &rec.Time, &rec.RecordedTime, &rec.Kind,
		&rec.RequestedModel, &rec.Model, &rec.Provider, &rec.Strategy, &rec.Attempt,
		&rec.User, &rec.Stream, &rec.Messages, &rec.PromptExcerpt,
		&rec.PromptTokens, &rec.CompletionTokens, &rec.TotalTokens, &rec.Cost, &rec.LatencyMS,
		&rec.Success, &errVal, &codeVal,
	)
	if err != nil {
		return nil, err
	}

	rec.Error = errVal.String
	rec.ErrorCode = codeVal.String
	return &rec, nil
}
