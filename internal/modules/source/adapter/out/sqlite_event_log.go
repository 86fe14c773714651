package out

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"usagetrail/internal/modules/source/domain"
	sourceout "usagetrail/internal/modules/source/port/out"
	"usagetrail/internal/platform/event"
	"usagetrail/internal/platform/record"
	"usagetrail/internal/platform/sqlitedb"
)

// SQLiteEventLog is the local append-only raw event table.
type SQLiteEventLog struct {
	db       *sql.DB
	location *time.Location
}

func NewSQLiteEventLog(db *sql.DB, loc *time.Location) sourceout.EventLog {
	if loc == nil {
		loc = time.Local
	}
	return &SQLiteEventLog{db: db, location: loc}
}

func (s *SQLiteEventLog) Describe(ctx context.Context) (domain.Metadata, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return domain.Metadata{}, fmt.Errorf("ping event log: %w", err)
	}
	return domain.Metadata{Kind: domain.KindSQLite, Name: "raw_events"}, nil
}

func (s *SQLiteEventLog) Append(ctx context.Context, events []event.RawEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin append tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO raw_events(fingerprint, package_name, class_name, event_type, timestamp_ms, local_date, source, scroll_dx, scroll_dy, value)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(fingerprint) DO NOTHING
`)
	if err != nil {
		return 0, fmt.Errorf("prepare append: %w", err)
	}
	defer stmt.Close()

	appended := 0
	for _, ev := range events {
		fp, err := Fingerprint(ev)
		if err != nil {
			return 0, err
		}
		localDate := ev.LocalDate
		if localDate == "" {
			localDate = record.LocalDate(ev.TimestampMs, s.location)
		}
		res, err := stmt.ExecContext(ctx, fp, ev.PackageName, sqlitedb.NullString(ev.ClassName), ev.Type.String(), ev.TimestampMs,
			localDate, sqlitedb.NullString(ev.Source), sqlitedb.NullInt64(ev.ScrollDeltaX), sqlitedb.NullInt64(ev.ScrollDeltaY), sqlitedb.NullInt64(ev.Value))
		if err != nil {
			return 0, fmt.Errorf("append event: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			appended += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit append: %w", err)
	}
	return appended, nil
}

func (s *SQLiteEventLog) ReadEvents(ctx context.Context, window domain.Window) (domain.Batch, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT package_name, class_name, event_type, timestamp_ms, local_date, source, scroll_dx, scroll_dy, value
FROM raw_events
WHERE timestamp_ms >= ? AND timestamp_ms < ?
ORDER BY timestamp_ms, id
`, window.Start.UnixMilli(), window.End.UnixMilli())
	if err != nil {
		return domain.Batch{}, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	batch := domain.Batch{}
	for rows.Next() {
		var (
			pkg, typeName                string
			className, localDate, source sql.NullString
			ts                           int64
			dx, dy, value                sql.NullInt64
		)
		if err := rows.Scan(&pkg, &className, &typeName, &ts, &localDate, &source, &dx, &dy, &value); err != nil {
			return domain.Batch{}, fmt.Errorf("scan event: %w", err)
		}
		t, err := event.ParseType(typeName)
		if err != nil {
			batch.Skipped++
			continue
		}
		batch.Events = append(batch.Events, event.RawEvent{
			PackageName:  pkg,
			ClassName:    className.String,
			Type:         t,
			TimestampMs:  ts,
			LocalDate:    localDate.String,
			Source:       source.String,
			ScrollDeltaX: sqlitedb.Int64Ptr(dx),
			ScrollDeltaY: sqlitedb.Int64Ptr(dy),
			Value:        sqlitedb.Int64Ptr(value),
		})
	}
	if err := rows.Err(); err != nil {
		return domain.Batch{}, fmt.Errorf("iterate events: %w", err)
	}
	return batch, nil
}

// Fingerprint identifies an event by its content. The local date is left
// out since it is derived from the timestamp.
func Fingerprint(ev event.RawEvent) (string, error) {
	w := event.ToWire(ev)
	w.Date = ""
	payload, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("fingerprint event: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
