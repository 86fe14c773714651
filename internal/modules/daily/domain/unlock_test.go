package domain_test

import (
	"testing"

	"usagetrail/internal/modules/daily/domain"
	"usagetrail/internal/platform/event"
	"usagetrail/internal/platform/record"
)

func TestUnlockSessionGlanceBoundary(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		lockAt int64
		want   record.SessionType
	}{
		{lockAt: 1_999, want: record.SessionGlance},
		{lockAt: 2_000, want: record.SessionIntentional},
		{lockAt: 2_001, want: record.SessionIntentional},
	} {
		got := domain.UnlockSessions([]event.RawEvent{
			ev("android", event.UserUnlocked, 0),
			ev("android", event.ScreenNonInteractive, tc.lockAt),
		}, nil, period(), domain.DefaultThresholds())
		if len(got) != 1 {
			t.Fatalf("expected one session, got %+v", got)
		}
		s := got[0]
		if s.SessionType != tc.want || s.EndReason != record.EndLock || *s.DurationMillis != tc.lockAt || *s.LockTimestamp != at(tc.lockAt) {
			t.Fatalf("lock at %d: unexpected session %+v", tc.lockAt, s)
		}
	}
}

func TestUnlockSessionsGhostDedupeAndOpenTail(t *testing.T) {
	t.Parallel()
	events := []event.RawEvent{
		ev("android", event.UserPresent, 0),
		ev("android", event.KeyguardHidden, 300),
		ev("android", event.UserUnlocked, 60_000),
		ev("android", event.ScreenNonInteractive, 61_000),
		ev("android", event.ScreenNonInteractive, 62_000),
		ev("android", event.UserUnlocked, 90_000),
	}
	got := domain.UnlockSessions(events, nil, period(), domain.DefaultThresholds())
	if len(got) != 3 {
		t.Fatalf("expected three sessions, got %+v", got)
	}
	if got[0].EndReason != record.EndGhost || *got[0].LockTimestamp != at(60_000) || got[0].SessionType != record.SessionIntentional {
		t.Fatalf("stale session must be closed as ghost at the next unlock: %+v", got[0])
	}
	if got[1].EndReason != record.EndLock || got[1].SessionType != record.SessionGlance {
		t.Fatalf("unexpected second session %+v", got[1])
	}
	if !got[2].Open() || got[2].SessionType != "" || got[2].DurationMillis != nil {
		t.Fatalf("last session must stay open: %+v", got[2])
	}
	open := 0
	for _, s := range got {
		if s.Open() {
			open++
		}
		if s.DateString != day {
			t.Fatalf("unexpected date %s", s.DateString)
		}
	}
	if open > 1 {
		t.Fatalf("at most one open session allowed, got %d", open)
	}
}

func TestUnlockSessionFirstAppCompulsiveAndNotification(t *testing.T) {
	t.Parallel()
	hidden := domain.NewFilter([]string{"launcher"})
	events := []event.RawEvent{
		ev("chat", event.NotificationPosted, -120_000),
		ev("mail", event.NotificationPosted, -30_000),
		ev("launcher", event.NotificationPosted, -1_000),
		ev("android", event.UserUnlocked, 0),
		ev("launcher", event.ActivityResumed, 500),
		ev("social", event.ActivityResumed, 2_000),
		ev("maps", event.ActivityResumed, 2_500),
		ev("android", event.ScreenNonInteractive, 30_000),
		ev("android", event.UserUnlocked, 200_000),
		ev("news", event.ActivityResumed, 210_000),
		ev("android", event.ScreenNonInteractive, 220_000),
	}
	got := domain.UnlockSessions(events, hidden, period(), domain.DefaultThresholds())
	if len(got) != 2 {
		t.Fatalf("expected two sessions, got %+v", got)
	}
	first := got[0]
	if first.FirstAppPackageName != "social" || !first.IsCompulsive || first.TriggeringNotificationPackageName != "mail" {
		t.Fatalf("unexpected first session %+v", first)
	}
	second := got[1]
	if second.FirstAppPackageName != "news" || second.IsCompulsive || second.TriggeringNotificationPackageName != "" {
		t.Fatalf("unexpected second session %+v", second)
	}
}
