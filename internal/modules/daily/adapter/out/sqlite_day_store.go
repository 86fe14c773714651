package out

import (
	"context"
	"database/sql"
	"fmt"

	dailyout "usagetrail/internal/modules/daily/port/out"
	"usagetrail/internal/platform/record"
	"usagetrail/internal/platform/sqlitedb"
)

type SQLiteDayStore struct {
	db *sql.DB
}

func NewSQLiteDayStore(db *sql.DB) dailyout.DayStore {
	return &SQLiteDayStore{db: db}
}

func (s *SQLiteDayStore) ReplaceDay(ctx context.Context, result record.DayResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin day tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"scroll_sessions", "daily_app_usage", "daily_device_summary", "unlock_sessions", "daily_insights"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE date_string = ?", result.Date); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, r := range result.ScrollSessions {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO scroll_sessions(package_name, scroll_amount_x, scroll_amount_y, scroll_amount, session_start, session_end, date_string, data_type, end_reason)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(package_name, date_string, session_start) DO UPDATE SET
  scroll_amount_x = excluded.scroll_amount_x,
  scroll_amount_y = excluded.scroll_amount_y,
  scroll_amount = excluded.scroll_amount,
  session_end = excluded.session_end,
  data_type = excluded.data_type,
  end_reason = excluded.end_reason
`, r.PackageName, r.ScrollAmountX, r.ScrollAmountY, r.ScrollAmount, r.SessionStart, r.SessionEnd, r.DateString, string(r.DataType), sqlitedb.NullString(string(r.EndReason))); err != nil {
			return fmt.Errorf("insert scroll session: %w", err)
		}
	}

	for _, r := range result.AppUsage {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO daily_app_usage(package_name, date_string, usage_time_ms, active_time_ms, app_open_count, notification_count)
VALUES(?, ?, ?, ?, ?, ?)
`, r.PackageName, r.DateString, r.UsageTimeMillis, r.ActiveTimeMillis, r.AppOpenCount, r.NotificationCount); err != nil {
			return fmt.Errorf("insert app usage %s: %w", r.PackageName, err)
		}
	}

	sum := result.Summary
	if _, err := tx.ExecContext(ctx, `
INSERT INTO daily_device_summary(date_string, total_usage_time_ms, total_unlock_count, total_notification_count, total_app_opens, first_unlock_ts, last_unlock_ts)
VALUES(?, ?, ?, ?, ?, ?, ?)
`, result.Date, sum.TotalUsageTimeMillis, sum.TotalUnlockCount, sum.TotalNotificationCount, sum.TotalAppOpens,
		sqlitedb.NullInt64(sum.FirstUnlockTimestamp), sqlitedb.NullInt64(sum.LastUnlockTimestamp)); err != nil {
		return fmt.Errorf("insert device summary: %w", err)
	}

	for _, r := range result.UnlockSessions {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO unlock_sessions(unlock_ts, lock_ts, duration_ms, date_string, first_app_package, triggering_notification_package, session_type, end_reason, is_compulsive)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(date_string, unlock_ts) DO NOTHING
`, r.UnlockTimestamp, sqlitedb.NullInt64(r.LockTimestamp), sqlitedb.NullInt64(r.DurationMillis), r.DateString,
			sqlitedb.NullString(r.FirstAppPackageName), sqlitedb.NullString(r.TriggeringNotificationPackageName),
			sqlitedb.NullString(string(r.SessionType)), sqlitedb.NullString(string(r.EndReason)), r.IsCompulsive); err != nil {
			return fmt.Errorf("insert unlock session: %w", err)
		}
	}

	for _, r := range result.Insights {
		var str sql.NullString
		if r.StringValue != nil {
			str = sql.NullString{String: *r.StringValue, Valid: true}
		}
		var dbl sql.NullFloat64
		if r.DoubleValue != nil {
			dbl = sql.NullFloat64{Float64: *r.DoubleValue, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO daily_insights(date_string, insight_key, string_value, long_value, double_value)
VALUES(?, ?, ?, ?, ?)
`, r.DateString, string(r.Key), str, sqlitedb.NullInt64(r.LongValue), dbl); err != nil {
			return fmt.Errorf("insert insight %s: %w", r.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit day %s: %w", result.Date, err)
	}
	return nil
}
