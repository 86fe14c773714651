package out

import (
	"context"
	"time"

	"usagetrail/internal/platform/event"
	"usagetrail/internal/platform/record"
)

// EventSource returns the raw events in [start, end), ordered by time.
type EventSource interface {
	Events(ctx context.Context, start, end time.Time) ([]event.RawEvent, error)
}

// DayStore replaces everything stored for result.Date in one transaction.
type DayStore interface {
	ReplaceDay(ctx context.Context, result record.DayResult) error
}

// FilterProvider returns the packages excluded from per-package output. The
// returned set must not be modified.
type FilterProvider interface {
	HiddenPackages(ctx context.Context) (map[string]struct{}, error)
}
