package record

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// LocalDate formats the local calendar date of a millisecond timestamp.
func LocalDate(ms int64, loc *time.Location) string {
	return time.UnixMilli(ms).In(loc).Format(DateLayout)
}

func ParseDate(date string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	return t, nil
}

// StartOfDayMs returns the first millisecond of the local day containing ms.
func StartOfDayMs(ms int64, loc *time.Location) int64 {
	t := time.UnixMilli(ms).In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc).UnixMilli()
}

// StartOfNextDayMs returns the first millisecond after the local day
// containing ms. DST days are 23 or 25 hours long.
func StartOfNextDayMs(ms int64, loc *time.Location) int64 {
	t := time.UnixMilli(ms).In(loc)
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc).UnixMilli()
}

// EndOfDayMs returns the last millisecond of the local day containing ms.
func EndOfDayMs(ms int64, loc *time.Location) int64 {
	return StartOfNextDayMs(ms, loc) - 1
}

// DayWindow returns the [start, end) UTC window of a local date.
func DayWindow(date string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end := time.Date(start.Year(), start.Month(), start.Day()+1, 0, 0, 0, 0, loc)
	return start.UTC(), end.UTC(), nil
}

// DateRange lists every local date from..to inclusive.
func DateRange(from, to string, loc *time.Location) ([]string, error) {
	start, err := ParseDate(from, loc)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(to, loc)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("date range end %s is before start %s", to, from)
	}
	out := []string{}
	for d := start; !d.After(end); d = time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, loc) {
		out = append(out, d.Format(DateLayout))
	}
	return out, nil
}
