package domain

import (
	"sort"

	"usagetrail/internal/platform/event"
	"usagetrail/internal/platform/record"
)

type interval struct {
	start int64
	end   int64
}

type packageUsage struct {
	intervals   []interval
	openAt      int64
	open        bool
	opens       int
	notified    int
	lastResume  int64
	interaction []interval
}

// AppUsage rebuilds per-package foreground time, active time, opens and
// notifications for one day, plus the device summary.
func AppUsage(events []event.RawEvent, hidden Filter, period Period, th Thresholds) ([]record.AppUsage, record.DeviceSummary) {
	evs := sorted(events)
	usage := map[string]*packageUsage{}
	get := func(pkg string) *packageUsage {
		u, ok := usage[pkg]
		if !ok {
			u = &packageUsage{lastResume: -1}
			usage[pkg] = u
		}
		return u
	}

	tracker := unlockTracker{window: th.UnlockDedupeWindow.Milliseconds()}
	summary := record.DeviceSummary{DateString: period.Date}
	forceOpen := false
	lastOpened := ""
	seenLifecycle := false
	debounce := th.AppOpenDebounce.Milliseconds()
	extension := th.AppSwitchExtension.Milliseconds()

	for i, ev := range evs {
		switch {
		case ev.Type.IsUnlock():
			if tracker.unlock(ev.TimestampMs) {
				summary.TotalUnlockCount++
				if summary.FirstUnlockTimestamp == nil {
					summary.FirstUnlockTimestamp = record.Int64(ev.TimestampMs)
				}
				summary.LastUnlockTimestamp = record.Int64(ev.TimestampMs)
			}
			forceOpen = true
			continue
		case ev.Type == event.NotificationPosted:
			if !hidden.Hidden(ev.PackageName) {
				get(ev.PackageName).notified++
			}
			continue
		case ev.Type.IsInteraction():
			if w := th.activeWindow(ev.Type); w > 0 && !hidden.Hidden(ev.PackageName) {
				u := get(ev.PackageName)
				u.interaction = append(u.interaction, interval{start: ev.TimestampMs, end: ev.TimestampMs + w})
			}
			continue
		case !ev.Type.IsLifecycle():
			continue
		}

		first := !seenLifecycle
		seenLifecycle = true
		switch ev.Type {
		case event.ActivityResumed:
			if hidden.Hidden(ev.PackageName) {
				forceOpen = true
				lastOpened = ""
				continue
			}
			u := get(ev.PackageName)
			if forceOpen || lastOpened != ev.PackageName || u.lastResume < 0 || ev.TimestampMs-u.lastResume >= debounce {
				u.opens++
			}
			forceOpen = false
			lastOpened = ev.PackageName
			u.lastResume = ev.TimestampMs
			if !u.open {
				u.open = true
				u.openAt = ev.TimestampMs
			}
		case event.ActivityPaused, event.ActivityStopped:
			if hidden.Hidden(ev.PackageName) {
				continue
			}
			u := get(ev.PackageName)
			if !u.open {
				if !first {
					continue
				}
				// Foreground since before the day started.
				u.open = true
				u.openAt = period.Start
			}
			closeAt := ev.TimestampMs
			if next, ok := nextLifecycle(evs, i); ok && next.Type == event.ActivityResumed &&
				next.PackageName != ev.PackageName && next.TimestampMs-ev.TimestampMs <= extension {
				closeAt = max(closeAt, next.TimestampMs-1)
			}
			u.close(closeAt, period)
		case event.ScreenNonInteractive:
			tracker.lock()
			for _, u := range usage {
				if u.open {
					u.close(ev.TimestampMs, period)
				}
			}
		}
	}
	for _, u := range usage {
		if u.open {
			u.close(period.End, period)
		}
	}

	minUsage := th.MinSignificantUsage.Milliseconds()
	pkgs := make([]string, 0, len(usage))
	for pkg := range usage {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)

	rows := []record.AppUsage{}
	for _, pkg := range pkgs {
		u := usage[pkg]
		total := u.total()
		if !(total > 0 && total >= minUsage) && u.notified == 0 {
			continue
		}
		active := min(u.active(), total)
		rows = append(rows, record.AppUsage{
			PackageName:       pkg,
			DateString:        period.Date,
			UsageTimeMillis:   total,
			ActiveTimeMillis:  active,
			AppOpenCount:      u.opens,
			NotificationCount: u.notified,
		})
		summary.TotalUsageTimeMillis += total
		summary.TotalAppOpens += u.opens
		summary.TotalNotificationCount += u.notified
	}
	return rows, summary
}

func nextLifecycle(evs []event.RawEvent, i int) (event.RawEvent, bool) {
	for j := i + 1; j < len(evs); j++ {
		if evs[j].Type.IsLifecycle() {
			return evs[j], true
		}
	}
	return event.RawEvent{}, false
}

func (u *packageUsage) close(at int64, period Period) {
	start := period.clamp(u.openAt)
	end := period.clamp(at)
	if end > start {
		u.intervals = append(u.intervals, interval{start: start, end: end})
	}
	u.open = false
}

func (u *packageUsage) total() int64 {
	var sum int64
	for _, iv := range u.intervals {
		sum += iv.end - iv.start
	}
	return sum
}

// active intersects the merged interaction windows with foreground time.
func (u *packageUsage) active() int64 {
	windows := mergeIntervals(u.interaction)
	var sum int64
	for _, fg := range u.intervals {
		for _, w := range windows {
			lo := max(fg.start, w.start)
			hi := min(fg.end, w.end)
			if hi > lo {
				sum += hi - lo
			}
		}
	}
	return sum
}

func mergeIntervals(in []interval) []interval {
	if len(in) == 0 {
		return nil
	}
	ivs := append([]interval(nil), in...)
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].start < ivs[j].start })
	out := []interval{ivs[0]}
	for _, iv := range ivs[1:] {
		last := &out[len(out)-1]
		if iv.start <= last.end {
			last.end = max(last.end, iv.end)
			continue
		}
		out = append(out, iv)
	}
	return out
}
