package out_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	dailyout "usagetrail/internal/modules/daily/adapter/out"
	"usagetrail/internal/platform/record"
	"usagetrail/internal/platform/sqlitedb"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlitedb.Open(context.Background(), filepath.Join(t.TempDir(), "usagetrail.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func count(t *testing.T, db *sql.DB, table, date string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE date_string = ?", date).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func sampleDay(date string, pkgs ...string) record.DayResult {
	result := record.DayResult{
		Date:    date,
		Summary: record.DeviceSummary{DateString: date, TotalUnlockCount: 1, FirstUnlockTimestamp: record.Int64(100)},
		UnlockSessions: []record.UnlockSession{
			{UnlockTimestamp: 100, DateString: date},
		},
		Insights: []record.Insight{
			{DateString: date, Key: record.InsightFirstUnlockTime, LongValue: record.Int64(100)},
			{DateString: date, Key: record.InsightBusiestUnlockHour, LongValue: record.Int64(0), DoubleValue: record.Float64(1)},
		},
	}
	for i, pkg := range pkgs {
		result.AppUsage = append(result.AppUsage, record.AppUsage{PackageName: pkg, DateString: date, UsageTimeMillis: 1000})
		result.ScrollSessions = append(result.ScrollSessions, record.ScrollSession{
			PackageName: pkg, ScrollAmountY: 10, ScrollAmount: 10, SessionStart: int64(200 + i), SessionEnd: int64(300 + i),
			DateString: date, DataType: record.DataMeasured, EndReason: record.EndOfData,
		})
	}
	return result
}

func TestReplaceDayReplacesOnlyThatDate(t *testing.T) {
	t.Parallel()
	db := openDB(t)
	store := dailyout.NewSQLiteDayStore(db)
	ctx := context.Background()

	if err := store.ReplaceDay(ctx, sampleDay("2026-03-10", "a", "b", "c")); err != nil {
		t.Fatalf("replace first: %v", err)
	}
	if err := store.ReplaceDay(ctx, sampleDay("2026-03-11", "a")); err != nil {
		t.Fatalf("replace other day: %v", err)
	}
	if err := store.ReplaceDay(ctx, sampleDay("2026-03-10", "a")); err != nil {
		t.Fatalf("replace again: %v", err)
	}

	if n := count(t, db, "daily_app_usage", "2026-03-10"); n != 1 {
		t.Fatalf("expected stale usage rows to be removed, got %d", n)
	}
	if n := count(t, db, "scroll_sessions", "2026-03-10"); n != 1 {
		t.Fatalf("expected 1 scroll session, got %d", n)
	}
	if n := count(t, db, "daily_device_summary", "2026-03-10"); n != 1 {
		t.Fatalf("expected 1 summary row, got %d", n)
	}
	if n := count(t, db, "daily_insights", "2026-03-10"); n != 2 {
		t.Fatalf("expected 2 insights, got %d", n)
	}
	if n := count(t, db, "daily_app_usage", "2026-03-11"); n != 1 {
		t.Fatalf("other date must be untouched, got %d", n)
	}

	var lock sql.NullInt64
	if err := db.QueryRow("SELECT lock_ts FROM unlock_sessions WHERE date_string = ?", "2026-03-10").Scan(&lock); err != nil {
		t.Fatalf("read unlock session: %v", err)
	}
	if lock.Valid {
		t.Fatalf("open unlock session must store a null lock timestamp")
	}
}
