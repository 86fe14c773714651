package domain

import (
	"time"

	"usagetrail/internal/platform/event"
	"usagetrail/internal/platform/record"
)

// Processor computes every derived record for one local date. It holds no
// state; running it twice over the same events yields the same result.
type Processor struct {
	Thresholds Thresholds
	Location   *time.Location
}

func NewProcessor(th Thresholds, loc *time.Location) Processor {
	if loc == nil {
		loc = time.Local
	}
	return Processor{Thresholds: th, Location: loc}
}

// Process runs all calculators over the date's events. nowMs cuts intervals
// still open on a day that has not ended yet; pass 0 for a finished day.
func (p Processor) Process(date string, events []event.RawEvent, hidden Filter, nowMs int64) (record.DayResult, error) {
	period, err := NewPeriod(date, p.Location, nowMs)
	if err != nil {
		return record.DayResult{}, err
	}
	evs := sorted(events)

	usage, summary := AppUsage(evs, hidden, period, p.Thresholds)
	unlocks := UnlockSessions(evs, hidden, period, p.Thresholds)
	return record.DayResult{
		Date:           date,
		ScrollSessions: ScrollSessions(evs, hidden, p.Thresholds, p.Location),
		AppUsage:       usage,
		Summary:        summary,
		UnlockSessions: unlocks,
		Insights:       Insights(date, unlocks, evs, hidden, p.Thresholds, p.Location),
	}, nil
}
