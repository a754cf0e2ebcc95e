package usage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

const usageSchema = `
CREATE TABLE IF NOT EXISTS usage_events (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	user    TEXT NOT NULL,
	at      INTEGER NOT NULL,
	tokens  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_usage_user_at ON usage_events(user, at);
CREATE INDEX IF NOT EXISTS idx_usage_at ON usage_events(at);
`

// SQLiteStore persists usage events in SQLite, so budgets survive restarts.
type SQLiteStore struct {
	db *sql.DB

	addStmt  *sql.Stmt
	sumStmt  *sql.Stmt
	usrsStmt *sql.Stmt
}

// NewSQLiteStore opens (creating if needed) the usage database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &StoreError{Backend: "sqlite", Operation: "open", Cause: err}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StoreError{Backend: "sqlite", Operation: "open", Cause: err}
	}

	// Accounting writes are single-row inserts; WAL keeps readers off the
	// writers' backs.
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, &StoreError{Backend: "sqlite", Operation: "pragma", Cause: err}
	}
	if _, err := db.Exec(usageSchema); err != nil {
		db.Close()
		return nil, &StoreError{Backend: "sqlite", Operation: "schema", Cause: err}
	}

	s := &SQLiteStore{db: db}
	if err := s.prepare(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) prepare() error {
	var err error
	if s.addStmt, err = s.db.Prepare(
		"INSERT INTO usage_events (user, at, tokens) VALUES (?, ?, ?)"); err != nil {
		return &StoreError{Backend: "sqlite", Operation: "prepare", Cause: err}
	}
	if s.sumStmt, err = s.db.Prepare(
		"SELECT COALESCE(SUM(tokens), 0) FROM usage_events WHERE user = ? AND at >= ?"); err != nil {
		return &StoreError{Backend: "sqlite", Operation: "prepare", Cause: err}
	}
	if s.usrsStmt, err = s.db.Prepare(
		"SELECT DISTINCT user FROM usage_events WHERE at >= ? ORDER BY user"); err != nil {
		return &StoreError{Backend: "sqlite", Operation: "prepare", Cause: err}
	}
	return nil
}

// Add implements Store.
func (s *SQLiteStore) Add(ctx context.Context, user string, tokens int64, at time.Time) error {
	if _, err := s.addStmt.ExecContext(ctx, user, at.UnixMilli(), tokens); err != nil {
		return &StoreError{Backend: "sqlite", Operation: "add", Cause: err}
	}
	return nil
}

// Sum implements Store.
func (s *SQLiteStore) Sum(ctx context.Context, user string, since time.Time) (int64, error) {
	var total int64
	if err := s.sumStmt.QueryRowContext(ctx, user, since.UnixMilli()).Scan(&total); err != nil {
		return 0, &StoreError{Backend: "sqlite", Operation: "sum", Cause: err}
	}
	return total, nil
}

// Users implements Store.
func (s *SQLiteStore) Users(ctx context.Context, since time.Time) ([]string, error) {
	rows, err := s.usrsStmt.QueryContext(ctx, since.UnixMilli())
	if err != nil {
		return nil, &StoreError{Backend: "sqlite", Operation: "users", Cause: err}
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var user string
		if err := rows.Scan(&user); err != nil {
			return nil, &StoreError{Backend: "sqlite", Operation: "users", Cause: err}
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Backend: "sqlite", Operation: "users", Cause: err}
	}
	return users, nil
}

// Prune implements Store.
func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM usage_events WHERE at < ?", before.UnixMilli()); err != nil {
		return &StoreError{Backend: "sqlite", Operation: "prune", Cause: err}
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	for _, stmt := range []*sql.Stmt{s.addStmt, s.sumStmt, s.usrsStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing usage database: %w", err)
	}
	return nil
}
