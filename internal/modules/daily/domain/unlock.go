package domain

import (
	"usagetrail/internal/platform/event"
	"usagetrail/internal/platform/record"
)

// UnlockSessions pairs unlocks with the following lock. An unlock arriving
// while a session is still open closes the stale one as GHOST. A session
// still open at the end of the events stays open.
func UnlockSessions(events []event.RawEvent, hidden Filter, period Period, th Thresholds) []record.UnlockSession {
	tracker := unlockTracker{window: th.UnlockDedupeWindow.Milliseconds()}
	glance := th.GlanceThreshold.Milliseconds()
	compulsive := th.CompulsiveThreshold.Milliseconds()
	lookback := th.NotificationLookback.Milliseconds()

	out := []record.UnlockSession{}
	notifications := []event.RawEvent{}
	open := -1

	closeOpen := func(at int64, reason record.EndReason) {
		if open < 0 {
			return
		}
		s := &out[open]
		duration := max(at-s.UnlockTimestamp, 0)
		s.LockTimestamp = record.Int64(at)
		s.DurationMillis = record.Int64(duration)
		s.EndReason = reason
		if duration < glance {
			s.SessionType = record.SessionGlance
		} else {
			s.SessionType = record.SessionIntentional
		}
		open = -1
	}

	for _, ev := range sorted(events) {
		switch {
		case ev.Type == event.NotificationPosted:
			if !hidden.Hidden(ev.PackageName) {
				notifications = append(notifications, ev)
			}
		case ev.Type.IsUnlock():
			if !tracker.unlock(ev.TimestampMs) {
				continue
			}
			closeOpen(ev.TimestampMs, record.EndGhost)
			out = append(out, record.UnlockSession{
				UnlockTimestamp:                   ev.TimestampMs,
				DateString:                        record.LocalDate(ev.TimestampMs, period.Location),
				TriggeringNotificationPackageName: triggeringNotification(notifications, ev.TimestampMs, lookback),
			})
			open = len(out) - 1
		case ev.Type.IsLock():
			tracker.lock()
			closeOpen(ev.TimestampMs, record.EndLock)
		case ev.Type == event.ActivityResumed:
			if open < 0 || hidden.Hidden(ev.PackageName) {
				continue
			}
			s := &out[open]
			if s.FirstAppPackageName != "" {
				continue
			}
			s.FirstAppPackageName = ev.PackageName
			s.IsCompulsive = ev.TimestampMs-s.UnlockTimestamp <= compulsive
		}
	}
	return out
}

func triggeringNotification(posted []event.RawEvent, unlockAt, lookback int64) string {
	for i := len(posted) - 1; i >= 0; i-- {
		n := posted[i]
		if n.TimestampMs > unlockAt {
			continue
		}
		if unlockAt-n.TimestampMs > lookback {
			break
		}
		return n.PackageName
	}
	return ""
}
