package record_test

import (
	"testing"
	"time"

	"usagetrail/internal/platform/record"
)

func TestLocalDateUsesLocation(t *testing.T) {
	t.Parallel()
	plus2 := time.FixedZone("UTC+2", 2*60*60)
	ms := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC).UnixMilli()
	if got := record.LocalDate(ms, time.UTC); got != "2026-03-10" {
		t.Fatalf("unexpected UTC date: %s", got)
	}
	if got := record.LocalDate(ms, plus2); got != "2026-03-11" {
		t.Fatalf("unexpected +2 date: %s", got)
	}
	if record.StartOfDayMs(ms, plus2) != time.Date(2026, 3, 11, 0, 0, 0, 0, plus2).UnixMilli() {
		t.Fatalf("unexpected start of day")
	}
	if record.EndOfDayMs(ms, time.UTC) != time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC).UnixMilli()-1 {
		t.Fatalf("unexpected end of day")
	}
}

func TestDayWindowHandlesDST(t *testing.T) {
	t.Parallel()
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	start, end, err := record.DayWindow("2026-03-29", loc)
	if err != nil {
		t.Fatalf("day window: %v", err)
	}
	if end.Sub(start) != 23*time.Hour {
		t.Fatalf("expected a 23h day, got %s", end.Sub(start))
	}
	start, end, err = record.DayWindow("2026-10-25", loc)
	if err != nil {
		t.Fatalf("day window: %v", err)
	}
	if end.Sub(start) != 25*time.Hour {
		t.Fatalf("expected a 25h day, got %s", end.Sub(start))
	}
	if _, _, err := record.DayWindow("2026-13-01", loc); err == nil {
		t.Fatalf("expected invalid date error")
	}
}

func TestDateRange(t *testing.T) {
	t.Parallel()
	dates, err := record.DateRange("2026-02-27", "2026-03-02", time.UTC)
	if err != nil {
		t.Fatalf("date range: %v", err)
	}
	want := []string{"2026-02-27", "2026-02-28", "2026-03-01", "2026-03-02"}
	if len(dates) != len(want) {
		t.Fatalf("expected %v, got %v", want, dates)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, dates)
		}
	}
	if _, err := record.DateRange("2026-03-02", "2026-03-01", time.UTC); err == nil {
		t.Fatalf("expected reversed range error")
	}
}
