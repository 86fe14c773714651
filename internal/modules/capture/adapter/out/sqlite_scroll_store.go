package out

import (
	"context"
	"database/sql"
	"fmt"

	"usagetrail/internal/modules/capture/domain"
	captureout "usagetrail/internal/modules/capture/port/out"
	"usagetrail/internal/platform/sqlitedb"
)

const insertScrollSession = `
INSERT INTO scroll_sessions(package_name, scroll_amount_x, scroll_amount_y, scroll_amount, session_start, session_end, date_string, data_type, end_reason)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const replaceOnConflict = `ON CONFLICT(package_name, date_string, session_start) DO UPDATE SET
  scroll_amount_x = excluded.scroll_amount_x,
  scroll_amount_y = excluded.scroll_amount_y,
  scroll_amount = excluded.scroll_amount,
  session_end = excluded.session_end,
  data_type = excluded.data_type,
  end_reason = excluded.end_reason
`

// Extends add to whatever row is stored under the key, which is the batch
// row when the day was replaced after the tail was committed.
const extendOnConflict = `ON CONFLICT(package_name, date_string, session_start) DO UPDATE SET
  scroll_amount_x = scroll_sessions.scroll_amount_x + excluded.scroll_amount_x,
  scroll_amount_y = scroll_sessions.scroll_amount_y + excluded.scroll_amount_y,
  scroll_amount = scroll_sessions.scroll_amount + excluded.scroll_amount,
  session_end = MAX(scroll_sessions.session_end, excluded.session_end),
  end_reason = CASE WHEN excluded.session_end >= scroll_sessions.session_end THEN excluded.end_reason ELSE scroll_sessions.end_reason END,
  data_type = CASE WHEN scroll_sessions.data_type = 'MEASURED' OR excluded.data_type = 'MEASURED' THEN 'MEASURED' ELSE excluded.data_type END
`

type SQLiteScrollSessionStore struct {
	db *sql.DB
}

func NewSQLiteScrollSessionStore(db *sql.DB) captureout.ScrollSessionWriter {
	return &SQLiteScrollSessionStore{db: db}
}

func (s *SQLiteScrollSessionStore) WriteScrollSessions(ctx context.Context, writes []domain.Write) error {
	if len(writes) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin scroll session tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	replace, err := tx.PrepareContext(ctx, insertScrollSession+replaceOnConflict)
	if err != nil {
		return fmt.Errorf("prepare scroll session upsert: %w", err)
	}
	defer replace.Close()
	extend, err := tx.PrepareContext(ctx, insertScrollSession+extendOnConflict)
	if err != nil {
		return fmt.Errorf("prepare scroll session extend: %w", err)
	}
	defer extend.Close()

	for _, w := range writes {
		stmt := replace
		if w.Extend {
			stmt = extend
		}
		r := w.Session
		if _, err := stmt.ExecContext(ctx,
			r.PackageName, r.ScrollAmountX, r.ScrollAmountY, r.ScrollAmount,
			r.SessionStart, r.SessionEnd, r.DateString, string(r.DataType), sqlitedb.NullString(string(r.EndReason)),
		); err != nil {
			return fmt.Errorf("write scroll session %s@%d: %w", r.PackageName, r.SessionStart, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scroll sessions: %w", err)
	}
	return nil
}
