package out

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"usagetrail/internal/modules/report/domain"
	reportout "usagetrail/internal/modules/report/port/out"
	"usagetrail/internal/platform/record"
	"usagetrail/internal/platform/sqlitedb"
)

type SQLiteReportReader struct {
	db *sql.DB
}

func NewSQLiteReportReader(db *sql.DB) reportout.Reader {
	return &SQLiteReportReader{db: db}
}

// Days returns a report for every date in [from, to] that has stored data,
// ordered by date.
func (r *SQLiteReportReader) Days(ctx context.Context, from, to string) ([]domain.DayReport, error) {
	days := map[string]*domain.DayReport{}
	get := func(date string) *domain.DayReport {
		d, ok := days[date]
		if !ok {
			d = &domain.DayReport{Date: date}
			days[date] = d
		}
		return d
	}

	if err := r.summaries(ctx, from, to, get); err != nil {
		return nil, err
	}
	if err := r.appUsage(ctx, from, to, get); err != nil {
		return nil, err
	}
	if err := r.scrollSessions(ctx, from, to, get); err != nil {
		return nil, err
	}
	if err := r.unlockSessions(ctx, from, to, get); err != nil {
		return nil, err
	}
	if err := r.insights(ctx, from, to, get); err != nil {
		return nil, err
	}

	out := make([]domain.DayReport, 0, len(days))
	for _, d := range days {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *SQLiteReportReader) summaries(ctx context.Context, from, to string, get func(string) *domain.DayReport) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT date_string, total_usage_time_ms, total_unlock_count, total_notification_count, total_app_opens, first_unlock_ts, last_unlock_ts
FROM daily_device_summary
WHERE date_string BETWEEN ? AND ?
`, from, to)
	if err != nil {
		return fmt.Errorf("query device summaries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		s := record.DeviceSummary{}
		var first, last sql.NullInt64
		if err := rows.Scan(&s.DateString, &s.TotalUsageTimeMillis, &s.TotalUnlockCount, &s.TotalNotificationCount, &s.TotalAppOpens, &first, &last); err != nil {
			return fmt.Errorf("scan device summary: %w", err)
		}
		s.FirstUnlockTimestamp = sqlitedb.Int64Ptr(first)
		s.LastUnlockTimestamp = sqlitedb.Int64Ptr(last)
		get(s.DateString).Summary = &s
	}
	return rows.Err()
}

func (r *SQLiteReportReader) appUsage(ctx context.Context, from, to string, get func(string) *domain.DayReport) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT package_name, date_string, usage_time_ms, active_time_ms, app_open_count, notification_count
FROM daily_app_usage
WHERE date_string BETWEEN ? AND ?
ORDER BY date_string, package_name
`, from, to)
	if err != nil {
		return fmt.Errorf("query app usage: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		u := record.AppUsage{}
		if err := rows.Scan(&u.PackageName, &u.DateString, &u.UsageTimeMillis, &u.ActiveTimeMillis, &u.AppOpenCount, &u.NotificationCount); err != nil {
			return fmt.Errorf("scan app usage: %w", err)
		}
		d := get(u.DateString)
		d.AppUsage = append(d.AppUsage, u)
	}
	return rows.Err()
}

func (r *SQLiteReportReader) scrollSessions(ctx context.Context, from, to string, get func(string) *domain.DayReport) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT package_name, scroll_amount_x, scroll_amount_y, scroll_amount, session_start, session_end, date_string, data_type, end_reason
FROM scroll_sessions
WHERE date_string BETWEEN ? AND ?
ORDER BY date_string, session_start, package_name
`, from, to)
	if err != nil {
		return fmt.Errorf("query scroll sessions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		s := record.ScrollSession{}
		var dataType string
		var reason sql.NullString
		if err := rows.Scan(&s.PackageName, &s.ScrollAmountX, &s.ScrollAmountY, &s.ScrollAmount, &s.SessionStart, &s.SessionEnd, &s.DateString, &dataType, &reason); err != nil {
			return fmt.Errorf("scan scroll session: %w", err)
		}
		s.DataType = record.DataType(dataType)
		s.EndReason = record.EndReason(reason.String)
		d := get(s.DateString)
		d.ScrollSessions = append(d.ScrollSessions, s)
	}
	return rows.Err()
}

func (r *SQLiteReportReader) unlockSessions(ctx context.Context, from, to string, get func(string) *domain.DayReport) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT unlock_ts, lock_ts, duration_ms, date_string, first_app_package, triggering_notification_package, session_type, end_reason, is_compulsive
FROM unlock_sessions
WHERE date_string BETWEEN ? AND ?
ORDER BY date_string, unlock_ts
`, from, to)
	if err != nil {
		return fmt.Errorf("query unlock sessions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		s := record.UnlockSession{}
		var (
			lock, duration                  sql.NullInt64
			firstApp, trigger, kind, reason sql.NullString
		)
		if err := rows.Scan(&s.UnlockTimestamp, &lock, &duration, &s.DateString, &firstApp, &trigger, &kind, &reason, &s.IsCompulsive); err != nil {
			return fmt.Errorf("scan unlock session: %w", err)
		}
		s.LockTimestamp = sqlitedb.Int64Ptr(lock)
		s.DurationMillis = sqlitedb.Int64Ptr(duration)
		s.FirstAppPackageName = firstApp.String
		s.TriggeringNotificationPackageName = trigger.String
		s.SessionType = record.SessionType(kind.String)
		s.EndReason = record.EndReason(reason.String)
		d := get(s.DateString)
		d.UnlockSessions = append(d.UnlockSessions, s)
	}
	return rows.Err()
}

func (r *SQLiteReportReader) insights(ctx context.Context, from, to string, get func(string) *domain.DayReport) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT date_string, insight_key, string_value, long_value, double_value
FROM daily_insights
WHERE date_string BETWEEN ? AND ?
ORDER BY date_string, insight_key
`, from, to)
	if err != nil {
		return fmt.Errorf("query insights: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		in := record.Insight{}
		var (
			key  string
			str  sql.NullString
			long sql.NullInt64
			dbl  sql.NullFloat64
		)
		if err := rows.Scan(&in.DateString, &key, &str, &long, &dbl); err != nil {
			return fmt.Errorf("scan insight: %w", err)
		}
		in.Key = record.InsightKey(key)
		if str.Valid {
			in.StringValue = record.String(str.String)
		}
		in.LongValue = sqlitedb.Int64Ptr(long)
		if dbl.Valid {
			in.DoubleValue = record.Float64(dbl.Float64)
		}
		d := get(in.DateString)
		d.Insights = append(d.Insights, in)
	}
	return rows.Err()
}

// PackageDays returns one entry per requested date, in request order.
func (r *SQLiteReportReader) PackageDays(ctx context.Context, pkg string, dates []string) ([]domain.PackageDay, error) {
	if len(dates) == 0 {
		return []domain.PackageDay{}, nil
	}
	byDate := make(map[string]*domain.PackageDay, len(dates))
	out := make([]domain.PackageDay, len(dates))
	for i, date := range dates {
		out[i] = domain.PackageDay{Date: date}
	}
	for i := range out {
		if _, ok := byDate[out[i].Date]; !ok {
			byDate[out[i].Date] = &out[i]
		}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(dates)), ",")
	args := make([]any, 0, len(dates)+1)
	args = append(args, pkg)
	for _, date := range dates {
		args = append(args, date)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT date_string, usage_time_ms, active_time_ms, app_open_count, notification_count
FROM daily_app_usage
WHERE package_name = ? AND date_string IN (`+placeholders+`)
`, args...)
	if err != nil {
		return nil, fmt.Errorf("query package usage: %w", err)
	}
	for rows.Next() {
		var date string
		var usage, active int64
		var opens, notified int
		if err := rows.Scan(&date, &usage, &active, &opens, &notified); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan package usage: %w", err)
		}
		if d, ok := byDate[date]; ok {
			d.UsageTimeMillis, d.ActiveTimeMillis, d.AppOpenCount, d.NotificationCount = usage, active, opens, notified
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate package usage: %w", err)
	}
	rows.Close()

	rows, err = r.db.QueryContext(ctx, `
SELECT date_string, COALESCE(SUM(scroll_amount), 0), COUNT(*)
FROM scroll_sessions
WHERE package_name = ? AND date_string IN (`+placeholders+`)
GROUP BY date_string
`, args...)
	if err != nil {
		return nil, fmt.Errorf("query package scroll: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var date string
		var amount int64
		var sessions int
		if err := rows.Scan(&date, &amount, &sessions); err != nil {
			return nil, fmt.Errorf("scan package scroll: %w", err)
		}
		if d, ok := byDate[date]; ok {
			d.ScrollAmount, d.ScrollSessions = amount, sessions
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate package scroll: %w", err)
	}

	// Repeated dates share the first entry's figures.
	for i := range out {
		out[i] = *byDate[out[i].Date]
	}
	return out, nil
}
