package storage

// SchemaVersion is the current schema version. A database created by a
// different version is rejected at startup.
const SchemaVersion = 1

// Schema creates the record tables and their indexes. Statements are
// idempotent so reopening an existing database is safe.
const Schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS requests (
	id TEXT PRIMARY KEY,
	correlation_id TEXT NOT NULL,
	time TIMESTAMP NOT NULL,
	recorded_time TIMESTAMP NOT NULL,
	kind TEXT NOT NULL,
	requested_model TEXT NOT NULL,
	model TEXT NOT NULL,
	provider TEXT NOT NULL,
	strategy TEXT NOT NULL,
	attempt INTEGER NOT NULL,
	user TEXT NOT NULL DEFAULT '',
	stream INTEGER NOT NULL DEFAULT 0,
	messages INTEGER NOT NULL DEFAULT 0,
	prompt_excerpt TEXT NOT NULL DEFAULT '',
	prompt_tokens INTEGER NOT NULL DEFAULT 0,
	completion_tokens INTEGER NOT NULL DEFAULT 0,
	total_tokens INTEGER NOT NULL DEFAULT 0,
	cost REAL NOT NULL DEFAULT 0,
	latency_ms INTEGER NOT NULL DEFAULT 0,
	success INTEGER NOT NULL,
	error TEXT,
	error_code TEXT
);

CREATE INDEX IF NOT EXISTS idx_requests_time ON requests(time);
CREATE INDEX IF NOT EXISTS idx_requests_correlation ON requests(correlation_id);
CREATE INDEX IF NOT EXISTS idx_requests_user ON requests(user);
CREATE INDEX IF NOT EXISTS idx_requests_provider ON requests(provider);
CREATE INDEX IF NOT EXISTS idx_requests_model ON requests(model);

CREATE TABLE IF NOT EXISTS health (
	id TEXT PRIMARY KEY,
	time TIMESTAMP NOT NULL,
	provider TEXT NOT NULL,
	available INTEGER NOT NULL,
	latency_ms INTEGER NOT NULL DEFAULT 0,
	consecutive_failures INTEGER NOT NULL DEFAULT 0,
	error TEXT
);

CREATE INDEX IF NOT EXISTS idx_health_time ON health(time);
CREATE INDEX IF NOT EXISTS idx_health_provider ON health(provider);

CREATE TABLE IF NOT EXISTS alerts (
	id TEXT PRIMARY KEY,
	time TIMESTAMP NOT NULL,
	kind TEXT NOT NULL,
	provider TEXT NOT NULL DEFAULT '',
	model TEXT NOT NULL DEFAULT '',
	user TEXT NOT NULL DEFAULT '',
	message TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_time ON alerts(time);
`

// InsertSchemaVersion records the schema version on first open.
const InsertSchemaVersion = `
INSERT INTO schema_version (version) VALUES (?)
ON CONFLICT (version) DO NOTHING
`

// GetSchemaVersion reads the recorded schema version.
const GetSchemaVersion = `SELECT version FROM schema_version LIMIT 1`
