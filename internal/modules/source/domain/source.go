package domain

import (
	"fmt"
	"sort"
	"time"

	"usagetrail/internal/platform/event"
	"usagetrail/internal/platform/record"
)

type Kind string

const (
	KindSQLite Kind = "sqlite"
	KindNDJSON Kind = "ndjson"
	KindPlugin Kind = "plugin"
)

type Metadata struct {
	Kind    Kind
	Name    string
	Version string
}

// Window is a half-open [Start, End) time range.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("window bounds are required")
	}
	if !w.End.After(w.Start) {
		return fmt.Errorf("window end %s must be after start %s", w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
	}
	return nil
}

func (w Window) Contains(ms int64) bool {
	return ms >= w.Start.UnixMilli() && ms < w.End.UnixMilli()
}

// Batch is what a reader returned, with the count of lines or rows it could
// not turn into events.
type Batch struct {
	Events  []event.RawEvent
	Skipped int
}

// Normalize keeps events inside w, orders them by time and fills in the
// local date where the producer left it empty.
func Normalize(events []event.RawEvent, w Window, loc *time.Location) []event.RawEvent {
	out := make([]event.RawEvent, 0, len(events))
	for _, ev := range events {
		if !w.Contains(ev.TimestampMs) {
			continue
		}
		if ev.LocalDate == "" {
			ev.LocalDate = record.LocalDate(ev.TimestampMs, loc)
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampMs < out[j].TimestampMs
	})
	return out
}
