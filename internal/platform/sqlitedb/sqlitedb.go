// Package sqlitedb opens the shared SQLite database and owns its schema.
package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open creates the parent directory, opens the database with WAL enabled
// and migrates the schema.
func Open(ctx context.Context, dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS raw_events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  fingerprint TEXT NOT NULL UNIQUE,
  package_name TEXT NOT NULL,
  class_name TEXT,
  event_type TEXT NOT NULL,
  timestamp_ms INTEGER NOT NULL,
  local_date TEXT,
  source TEXT,
  scroll_dx INTEGER,
  scroll_dy INTEGER,
  value INTEGER
);
CREATE INDEX IF NOT EXISTS idx_raw_events_ts ON raw_events(timestamp_ms);

CREATE TABLE IF NOT EXISTS scroll_sessions (
  package_name TEXT NOT NULL,
  scroll_amount_x INTEGER NOT NULL,
  scroll_amount_y INTEGER NOT NULL,
  scroll_amount INTEGER NOT NULL,
  session_start INTEGER NOT NULL,
  session_end INTEGER NOT NULL,
  date_string TEXT NOT NULL,
  data_type TEXT NOT NULL,
  end_reason TEXT,
  PRIMARY KEY (package_name, date_string, session_start)
);
CREATE INDEX IF NOT EXISTS idx_scroll_sessions_date ON scroll_sessions(date_string);

CREATE TABLE IF NOT EXISTS daily_app_usage (
  package_name TEXT NOT NULL,
  date_string TEXT NOT NULL,
  usage_time_ms INTEGER NOT NULL,
  active_time_ms INTEGER NOT NULL,
  app_open_count INTEGER NOT NULL,
  notification_count INTEGER NOT NULL,
  PRIMARY KEY (package_name, date_string)
);
CREATE INDEX IF NOT EXISTS idx_daily_app_usage_date ON daily_app_usage(date_string);

CREATE TABLE IF NOT EXISTS daily_device_summary (
  date_string TEXT PRIMARY KEY,
  total_usage_time_ms INTEGER NOT NULL,
  total_unlock_count INTEGER NOT NULL,
  total_notification_count INTEGER NOT NULL,
  total_app_opens INTEGER NOT NULL,
  first_unlock_ts INTEGER,
  last_unlock_ts INTEGER
);

CREATE TABLE IF NOT EXISTS unlock_sessions (
  unlock_ts INTEGER NOT NULL,
  lock_ts INTEGER,
  duration_ms INTEGER,
  date_string TEXT NOT NULL,
  first_app_package TEXT,
  triggering_notification_package TEXT,
  session_type TEXT,
  end_reason TEXT,
  is_compulsive INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (date_string, unlock_ts)
);

CREATE TABLE IF NOT EXISTS daily_insights (
  date_string TEXT NOT NULL,
  insight_key TEXT NOT NULL,
  string_value TEXT,
  long_value INTEGER,
  double_value REAL,
  PRIMARY KEY (date_string, insight_key)
);
`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

func NullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func NullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func Int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	out := v.Int64
	return &out
}
