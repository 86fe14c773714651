package domain_test

import (
	"testing"
	"time"

	"usagetrail/internal/modules/daily/domain"
	"usagetrail/internal/platform/event"
	"usagetrail/internal/platform/record"
)

func insightMap(in []record.Insight) map[record.InsightKey]record.Insight {
	out := map[record.InsightKey]record.Insight{}
	for _, i := range in {
		out[i.Key] = i
	}
	return out
}

func hour(h, m int) int64 {
	return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC).UnixMilli()
}

func TestInsightsFromUnlocksAndResumes(t *testing.T) {
	t.Parallel()
	sessions := []record.UnlockSession{
		{UnlockTimestamp: hour(1, 0), FirstAppPackageName: "video", IsCompulsive: true},
		{UnlockTimestamp: hour(9, 0), FirstAppPackageName: "social", IsCompulsive: true, TriggeringNotificationPackageName: "chat"},
		{UnlockTimestamp: hour(9, 30), FirstAppPackageName: "social", IsCompulsive: true},
		{UnlockTimestamp: hour(13, 0), TriggeringNotificationPackageName: "chat"},
		{UnlockTimestamp: hour(13, 10), TriggeringNotificationPackageName: "mail"},
	}
	events := []event.RawEvent{
		{PackageName: "launcher", Type: event.ActivityResumed, TimestampMs: hour(1, 0)},
		{PackageName: "video", Type: event.ActivityResumed, TimestampMs: hour(1, 1)},
		{PackageName: "reader", Type: event.ActivityResumed, TimestampMs: hour(3, 59)},
		{PackageName: "social", Type: event.ActivityResumed, TimestampMs: hour(9, 1)},
		{PackageName: "maps", Type: event.ActivityResumed, TimestampMs: hour(22, 0)},
	}
	got := insightMap(domain.Insights(day, sessions, events, domain.NewFilter([]string{"launcher"}), domain.DefaultThresholds(), time.UTC))

	checks := []struct {
		key record.InsightKey
		str string
		num int64
	}{
		{record.InsightFirstAppUsed, "video", hour(1, 1)},
		{record.InsightLastAppUsed, "maps", hour(22, 0)},
		{record.InsightNightOwlLastApp, "reader", hour(3, 59)},
		{record.InsightTopCompulsiveApp, "social", 2},
		{record.InsightTopNotificationUnlockApp, "chat", 2},
	}
	for _, c := range checks {
		i, ok := got[c.key]
		if !ok || i.StringValue == nil || *i.StringValue != c.str || i.LongValue == nil || *i.LongValue != c.num {
			t.Fatalf("%s: expected %s/%d, got %+v", c.key, c.str, c.num, i)
		}
	}
	if busiest := got[record.InsightBusiestUnlockHour]; busiest.LongValue == nil || *busiest.LongValue != 9 {
		t.Fatalf("ties must go to the earliest hour, got %+v", busiest)
	}
	if first := got[record.InsightFirstUnlockTime]; *first.LongValue != hour(1, 0) {
		t.Fatalf("unexpected first unlock %+v", first)
	}
	if last := got[record.InsightLastUnlockTime]; *last.LongValue != hour(13, 10) {
		t.Fatalf("unexpected last unlock %+v", last)
	}
}

func TestInsightsOmitKeysWithoutData(t *testing.T) {
	t.Parallel()
	got := domain.Insights(day, nil, []event.RawEvent{
		{PackageName: "maps", Type: event.ActivityResumed, TimestampMs: hour(12, 0)},
	}, nil, domain.DefaultThresholds(), time.UTC)
	if len(got) != 1 || got[0].Key != record.InsightLastAppUsed {
		t.Fatalf("only last_app_used has data, got %+v", got)
	}
	for _, i := range got {
		if i.StringValue == nil && i.LongValue == nil && i.DoubleValue == nil {
			t.Fatalf("insight rows must carry a value: %+v", i)
		}
	}
}
