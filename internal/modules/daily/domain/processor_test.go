package domain_test

import (
	"reflect"
	"testing"
	"time"

	"usagetrail/internal/modules/daily/domain"
	"usagetrail/internal/platform/event"
	"usagetrail/internal/platform/record"
)

func TestProcessorScenarioAndIdempotence(t *testing.T) {
	t.Parallel()
	events := []event.RawEvent{
		ev("android", event.UserUnlocked, -2_000),
		ev("A", event.ActivityResumed, 0),
		scrollEv("A", event.ScrollMeasured, 10, 50),
		scrollEv("A", event.ScrollMeasured, 20, 50),
		ev("A", event.ActivityPaused, 30),
		ev("android", event.ScreenNonInteractive, 10_000),
	}
	p := domain.NewProcessor(domain.DefaultThresholds(), time.UTC)
	hidden := domain.NewFilter([]string{"android"})

	first, err := p.Process(day, events, hidden, 0)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(first.ScrollSessions) != 1 {
		t.Fatalf("expected one scroll session, got %+v", first.ScrollSessions)
	}
	s := first.ScrollSessions[0]
	if s.PackageName != "A" || s.ScrollAmountY != 100 || s.DataType != record.DataMeasured {
		t.Fatalf("unexpected scroll session %+v", s)
	}
	if len(first.AppUsage) != 1 || first.AppUsage[0].PackageName != "A" || first.AppUsage[0].UsageTimeMillis != 30 {
		t.Fatalf("unexpected app usage %+v", first.AppUsage)
	}
	if first.Summary.TotalUnlockCount != 1 || len(first.UnlockSessions) != 1 || !first.UnlockSessions[0].IsCompulsive {
		t.Fatalf("unexpected unlock data %+v / %+v", first.Summary, first.UnlockSessions)
	}

	reversed := make([]event.RawEvent, len(events))
	for i, e := range events {
		reversed[len(events)-1-i] = e
	}
	second, err := p.Process(day, reversed, hidden, 0)
	if err != nil {
		t.Fatalf("reprocess: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reprocessing must be idempotent:\n%+v\n%+v", first, second)
	}
}

func TestProcessorRejectsBadDate(t *testing.T) {
	t.Parallel()
	if _, err := domain.NewProcessor(domain.DefaultThresholds(), time.UTC).Process("10/03/2026", nil, nil, 0); err == nil {
		t.Fatalf("expected date parse error")
	}
}
