package domain

import (
	"math"
	"time"

	"usagetrail/internal/platform/record"
)

const SchemaVersion = 1

// Tracking is the live session state. The zero value is Idle.
type Tracking struct {
	Active       bool
	PackageName  string
	ActivityName string
	ScrollX      int64
	ScrollY      int64
	StartTime    int64
	LastUpdate   int64
	Measured     bool
}

func (t Tracking) ScrollAmount() int64 {
	return t.ScrollX + t.ScrollY
}

// Trivial reports whether finalizing t would emit nothing.
func (t Tracking) Trivial() bool {
	return !t.Active || t.ScrollAmount() == 0 || t.StartTime == 0
}

func (t Tracking) DataType() record.DataType {
	if t.Measured {
		return record.DataMeasured
	}
	return record.DataInferred
}

// AddScroll accumulates absolute deltas. Measured input upgrades the whole
// session.
func (t *Tracking) AddScroll(dx, dy int64, measured bool, at int64) {
	t.ScrollX += abs(dx)
	t.ScrollY += abs(dy)
	if measured {
		t.Measured = true
	}
	if at > t.LastUpdate {
		t.LastUpdate = at
	}
}

// SessionDraft is the persisted snapshot of a non-trivial live session.
type SessionDraft struct {
	Version        int    `json:"version"`
	PackageName    string `json:"package_name"`
	ActivityName   string `json:"activity_name,omitempty"`
	ScrollAmount   int64  `json:"scroll_amount"`
	ScrollX        int64  `json:"scroll_x"`
	ScrollY        int64  `json:"scroll_y"`
	Measured       bool   `json:"measured"`
	StartTime      int64  `json:"start_time"`
	LastUpdateTime int64  `json:"last_update_time"`
}

func DraftFrom(t Tracking) SessionDraft {
	return SessionDraft{
		Version:        SchemaVersion,
		PackageName:    t.PackageName,
		ActivityName:   t.ActivityName,
		ScrollAmount:   t.ScrollAmount(),
		ScrollX:        t.ScrollX,
		ScrollY:        t.ScrollY,
		Measured:       t.Measured,
		StartTime:      t.StartTime,
		LastUpdateTime: t.LastUpdate,
	}
}

// Tracking restores live state from a draft. Drafts written without per-axis
// amounts carry the whole amount on the vertical axis.
func (d SessionDraft) Tracking() Tracking {
	x, y := d.ScrollX, d.ScrollY
	if x+y != d.ScrollAmount {
		x, y = 0, d.ScrollAmount
	}
	last := d.LastUpdateTime
	if last < d.StartTime {
		last = d.StartTime
	}
	return Tracking{
		Active:       true,
		PackageName:  d.PackageName,
		ActivityName: d.ActivityName,
		ScrollX:      x,
		ScrollY:      y,
		StartTime:    d.StartTime,
		LastUpdate:   last,
		Measured:     d.Measured,
	}
}

// Split turns a tracked session ending at endTime into one record, or two
// when it crosses local midnight. The fragments' amounts always sum to the
// tracked total; empty fragments are dropped.
func Split(t Tracking, endTime int64, reason record.EndReason, loc *time.Location) []record.ScrollSession {
	start := t.StartTime
	end := endTime
	if end < start {
		end = start
	}
	startDate := record.LocalDate(start, loc)
	endDate := record.LocalDate(end, loc)
	if startDate == endDate {
		return []record.ScrollSession{{
			PackageName:   t.PackageName,
			ScrollAmountX: t.ScrollX,
			ScrollAmountY: t.ScrollY,
			ScrollAmount:  t.ScrollAmount(),
			SessionStart:  start,
			SessionEnd:    end,
			DateString:    startDate,
			DataType:      t.DataType(),
			EndReason:     reason,
		}}
	}

	boundary := record.StartOfNextDayMs(start, loc)
	ratio := float64(boundary-start) / float64(end-start)
	total := t.ScrollAmount()
	firstPart := clamp(int64(math.Round(float64(total)*ratio)), 0, total)
	firstX := clamp(int64(math.Round(float64(t.ScrollX)*ratio)), 0, min(t.ScrollX, firstPart))
	firstY := firstPart - firstX
	if firstY > t.ScrollY {
		firstY = t.ScrollY
		firstX = firstPart - firstY
	}

	out := make([]record.ScrollSession, 0, 2)
	if firstPart > 0 {
		out = append(out, record.ScrollSession{
			PackageName:   t.PackageName,
			ScrollAmountX: firstX,
			ScrollAmountY: firstY,
			ScrollAmount:  firstPart,
			SessionStart:  start,
			SessionEnd:    boundary - 1,
			DateString:    startDate,
			DataType:      t.DataType(),
			EndReason:     reason,
		})
	}
	if rest := total - firstPart; rest > 0 {
		out = append(out, record.ScrollSession{
			PackageName:   t.PackageName,
			ScrollAmountX: t.ScrollX - firstX,
			ScrollAmountY: t.ScrollY - firstY,
			ScrollAmount:  rest,
			SessionStart:  record.StartOfDayMs(end, loc),
			SessionEnd:    end,
			DateString:    endDate,
			DataType:      t.DataType(),
			EndReason:     reason,
		})
	}
	return out
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
