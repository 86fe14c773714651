package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"

	captureout "usagetrail/internal/modules/capture/adapter/out"
	"usagetrail/internal/modules/capture/domain"
	"usagetrail/internal/modules/capture/service"
	"usagetrail/internal/modules/capture/usecase"
	"usagetrail/internal/platform/event"
	"usagetrail/internal/platform/metrics"
	"usagetrail/internal/platform/record"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type memoryWriter struct {
	mu   sync.Mutex
	rows []record.ScrollSession
}

func (w *memoryWriter) WriteScrollSessions(_ context.Context, writes []domain.Write) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, wr := range writes {
		w.rows = append(w.rows, wr.Session)
	}
	return nil
}

type staticFilter map[string]struct{}

func (f staticFilter) HiddenPackages(context.Context) (map[string]struct{}, error) {
	return f, nil
}

func dy(v int64) *int64 { return &v }

func TestRunTurnsLiveEventsIntoScrollSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	m := metrics.New()
	drafts := captureout.NewFileDraftStore(dir + "/session-draft.json")
	writer := &memoryWriter{}
	agg := service.NewAggregator(writer, service.AggregatorOptions{MergeGap: 5 * time.Second, Metrics: m})
	manager := service.NewSessionManager(drafts, agg, service.SessionManagerOptions{Location: time.UTC, Metrics: m})
	uc := usecase.NewInteractor(manager, agg, drafts, staticFilter{"com.android.systemui": {}}, fixedClock{now: time.UnixMilli(100_000)}, hclog.NewNullLogger(), m)

	events := make(chan event.RawEvent, 16)
	for _, ev := range []event.RawEvent{
		{PackageName: "a", ClassName: "Main", Type: event.ActivityResumed, TimestampMs: 1_000},
		{PackageName: "a", Type: event.ScrollMeasured, TimestampMs: 1_010, ScrollDeltaY: dy(50)},
		{PackageName: "com.android.systemui", Type: event.ScrollInferred, TimestampMs: 1_015, ScrollDeltaY: dy(999)},
		{PackageName: "a", Type: event.ScrollMeasured, TimestampMs: 1_020, ScrollDeltaY: dy(50)},
		{PackageName: "a", Type: event.ScrollInferred, TimestampMs: 1_025},
		{PackageName: "b", Type: event.ScrollInferred, TimestampMs: 2_000, Value: dy(9)},
		{PackageName: "b", Type: event.ScreenNonInteractive, TimestampMs: 3_000},
		{PackageName: "b", Type: event.TypeUnknown, TimestampMs: 3_100},
	} {
		events <- ev
	}
	close(events)

	out, err := uc.Run(ctx, events)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Handled != 7 || out.Skipped != 1 {
		t.Fatalf("unexpected run counts %+v", out)
	}
	if err := uc.Stop(ctx, record.EndServiceStopped); err != nil {
		t.Fatalf("stop: %v", err)
	}

	if len(writer.rows) != 2 {
		t.Fatalf("expected two scroll sessions, got %+v", writer.rows)
	}
	a, b := writer.rows[0], writer.rows[1]
	if a.PackageName != "a" || a.ScrollAmountY != 100 || a.DataType != record.DataMeasured || a.SessionEnd != 1_999 || a.EndReason != record.EndAppSwitch {
		t.Fatalf("unexpected session for a: %+v", a)
	}
	if b.PackageName != "b" || b.ScrollAmount != 9 || b.DataType != record.DataInferred || b.EndReason != record.EndScreenOff {
		t.Fatalf("unexpected session for b: %+v", b)
	}
}

func TestRecoverAndDraftAccessors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	drafts := captureout.NewFileDraftStore(dir + "/session-draft.json")
	writer := &memoryWriter{}
	agg := service.NewAggregator(writer, service.AggregatorOptions{MergeGap: time.Second})
	manager := service.NewSessionManager(drafts, agg, service.SessionManagerOptions{Location: time.UTC})
	uc := usecase.NewInteractor(manager, agg, drafts, nil, fixedClock{now: time.UnixMilli(10_000)}, nil, nil)

	if out, err := uc.Recover(ctx); err != nil || out.Recovered {
		t.Fatalf("nothing to recover expected, got %+v err=%v", out, err)
	}
	if err := uc.Handle(ctx, event.RawEvent{PackageName: "a", Type: event.ActivityResumed, TimestampMs: 1_000}); err != nil {
		t.Fatalf("handle resume: %v", err)
	}
	if err := uc.Handle(ctx, event.RawEvent{PackageName: "a", Type: event.ScrollMeasured, TimestampMs: 1_500, ScrollDeltaX: dy(-4)}); err != nil {
		t.Fatalf("handle scroll: %v", err)
	}
	state, err := uc.State(ctx)
	if err != nil || !state.Tracking || state.ScrollAmount != 4 {
		t.Fatalf("unexpected state %+v err=%v", state, err)
	}
	if err := uc.Stop(ctx, record.EndServiceStopped); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if _, err := uc.Draft(ctx); err == nil {
		t.Fatalf("draft must be cleared after a clean stop")
	}
	if len(writer.rows) != 1 || writer.rows[0].SessionEnd != 10_000 || writer.rows[0].EndReason != record.EndServiceStopped {
		t.Fatalf("unexpected rows %+v", writer.rows)
	}
}
