package domain

import (
	"sort"
	"time"

	"usagetrail/internal/platform/event"
	"usagetrail/internal/platform/record"
)

// Thresholds parameterise the batch calculators.
type Thresholds struct {
	ScrollMergeGap       time.Duration
	AppOpenDebounce      time.Duration
	AppSwitchExtension   time.Duration
	MinSignificantUsage  time.Duration
	ScrollActiveWindow   time.Duration
	ClickActiveWindow    time.Duration
	TypingActiveWindow   time.Duration
	FocusActiveWindow    time.Duration
	InteractionWindow    time.Duration
	GlanceThreshold      time.Duration
	CompulsiveThreshold  time.Duration
	NotificationLookback time.Duration
	UnlockDedupeWindow   time.Duration
	NightOwlEndHour      int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		ScrollMergeGap:       5 * time.Second,
		AppOpenDebounce:      3 * time.Second,
		AppSwitchExtension:   5 * time.Second,
		ScrollActiveWindow:   3 * time.Second,
		ClickActiveWindow:    3 * time.Second,
		TypingActiveWindow:   5 * time.Second,
		FocusActiveWindow:    time.Second,
		InteractionWindow:    2 * time.Second,
		GlanceThreshold:      2 * time.Second,
		CompulsiveThreshold:  3 * time.Second,
		NotificationLookback: time.Minute,
		UnlockDedupeWindow:   time.Second,
		NightOwlEndHour:      4,
	}
}

// activeWindow is how long an interaction keeps its app counted as active.
func (t Thresholds) activeWindow(kind event.Type) int64 {
	switch kind {
	case event.ScrollMeasured, event.ScrollInferred:
		return t.ScrollActiveWindow.Milliseconds()
	case event.AccessibilityClick:
		return t.ClickActiveWindow.Milliseconds()
	case event.AccessibilityTyping:
		return t.TypingActiveWindow.Milliseconds()
	case event.AccessibilityFocus:
		return t.FocusActiveWindow.Milliseconds()
	case event.UserInteraction:
		return t.InteractionWindow.Milliseconds()
	default:
		return 0
	}
}

// Period is the [Start, End) millisecond range a day is computed over. End
// is cut at "now" while the day is still running.
type Period struct {
	Date     string
	Start    int64
	End      int64
	Location *time.Location
}

func NewPeriod(date string, loc *time.Location, nowMs int64) (Period, error) {
	start, end, err := record.DayWindow(date, loc)
	if err != nil {
		return Period{}, err
	}
	p := Period{Date: date, Start: start.UnixMilli(), End: end.UnixMilli(), Location: loc}
	if nowMs > 0 && nowMs < p.End {
		p.End = max(nowMs, p.Start)
	}
	return p, nil
}

func (p Period) clamp(ms int64) int64 {
	return min(max(ms, p.Start), p.End)
}

// Filter is the set of package names excluded from per-package output.
type Filter map[string]struct{}

func NewFilter(packages []string) Filter {
	f := Filter{}
	for _, p := range packages {
		f[p] = struct{}{}
	}
	return f
}

func (f Filter) Hidden(pkg string) bool {
	_, ok := f[pkg]
	return ok
}

// sorted returns a time-ordered copy with unknown event types dropped.
func sorted(events []event.RawEvent) []event.RawEvent {
	out := make([]event.RawEvent, 0, len(events))
	for _, ev := range events {
		if ev.Type.Valid() {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampMs < out[j].TimestampMs
	})
	return out
}

// unlockTracker decides which unlock-class events start a new unlock. A
// second unlock signal shortly after the first belongs to the same unlock.
type unlockTracker struct {
	window int64
	open   bool
	openAt int64
}

func (u *unlockTracker) unlock(t int64) bool {
	if u.open && t-u.openAt < u.window {
		return false
	}
	u.open = true
	u.openAt = t
	return true
}

func (u *unlockTracker) lock() {
	u.open = false
}
