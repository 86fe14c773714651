package domain

import (
	"time"

	"usagetrail/internal/platform/event"
	"usagetrail/internal/platform/record"
)

// ScrollSessions rebuilds scroll sessions from a day's scroll events. An
// event continues the open session only for the same package and scroll
// kind within the merge gap.
func ScrollSessions(events []event.RawEvent, hidden Filter, th Thresholds, loc *time.Location) []record.ScrollSession {
	gap := th.ScrollMergeGap.Milliseconds()
	out := []record.ScrollSession{}
	var (
		cur     *record.ScrollSession
		curType event.Type
	)
	closeWith := func(reason record.EndReason) {
		if cur == nil {
			return
		}
		cur.EndReason = reason
		out = append(out, *cur)
		cur = nil
	}

	for _, ev := range sorted(events) {
		if !ev.Type.IsScroll() || hidden.Hidden(ev.PackageName) {
			continue
		}
		dx, dy, ok := ev.ScrollDelta()
		if !ok {
			continue
		}
		dx, dy = abs(dx), abs(dy)
		if cur != nil {
			switch {
			case cur.PackageName != ev.PackageName:
				closeWith(record.EndPackageChange)
			case curType != ev.Type:
				closeWith(record.EndTypeChange)
			case ev.TimestampMs-cur.SessionEnd > gap:
				closeWith(record.EndGap)
			}
		}
		if cur == nil {
			cur = &record.ScrollSession{
				PackageName:  ev.PackageName,
				SessionStart: ev.TimestampMs,
				SessionEnd:   ev.TimestampMs,
				DateString:   record.LocalDate(ev.TimestampMs, loc),
				DataType:     dataType(ev.Type),
			}
			curType = ev.Type
		}
		cur.ScrollAmountX += dx
		cur.ScrollAmountY += dy
		cur.ScrollAmount += dx + dy
		cur.SessionEnd = ev.TimestampMs
	}
	closeWith(record.EndOfData)
	return out
}

func dataType(t event.Type) record.DataType {
	if t == event.ScrollMeasured {
		return record.DataMeasured
	}
	return record.DataInferred
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
