package database

import "database/sql"

// Schema is the full DDL for the webhook subsystem. Statements are
// idempotent so Migrate can run at every startup.
const Schema = `
CREATE TABLE IF NOT EXISTS webhooks (
	id TEXT PRIMARY KEY,
	walker_name TEXT NOT NULL,
	direction TEXT NOT NULL,
	url TEXT,
	secret TEXT,
	enabled INTEGER NOT NULL DEFAULT 1,
	static INTEGER NOT NULL DEFAULT 0,
	metadata TEXT,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_webhooks_walker ON webhooks(walker_name);

CREATE TABLE IF NOT EXISTS api_keys (
	id TEXT PRIMARY KEY,
	webhook_id TEXT NOT NULL,
	name TEXT NOT NULL,
	key_hash TEXT NOT NULL,
	key_prefix TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	expires_at INTEGER,
	revoked_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_api_keys_webhook ON api_keys(webhook_id);

CREATE TABLE IF NOT EXISTS delivery_logs (
	id TEXT PRIMARY KEY,
	webhook_id TEXT NOT NULL,
	delivery_id TEXT NOT NULL,
	attempt_number INTEGER NOT NULL,
	status TEXT NOT NULL,
	http_status INTEGER,
	error_message TEXT,
	payload_digest TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_delivery_logs_webhook ON delivery_logs(webhook_id);

CREATE TABLE IF NOT EXISTS dead_letters (
	id TEXT PRIMARY KEY,
	webhook_id TEXT NOT NULL,
	walker_name TEXT NOT NULL,
	payload BLOB NOT NULL,
	attempts_made INTEGER NOT NULL,
	last_error TEXT,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_logs (
	id TEXT PRIMARY KEY,
	actor TEXT,
	action TEXT NOT NULL,
	resource_type TEXT NOT NULL,
	resource_id TEXT NOT NULL,
	metadata TEXT,
	created_at INTEGER NOT NULL
);
`

func Migrate(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
