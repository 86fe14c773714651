package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"usagetrail/internal/modules/daily/domain"
	dailydto "usagetrail/internal/modules/daily/dto"
	"usagetrail/internal/modules/daily/service"
	"usagetrail/internal/modules/daily/usecase"
	apperrors "usagetrail/internal/platform/errors"
	"usagetrail/internal/platform/event"
	"usagetrail/internal/platform/metrics"
	"usagetrail/internal/platform/record"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fixedIDs struct{}

func (fixedIDs) New() string { return "run-1" }

type flakySource struct {
	failDate string
}

func (s flakySource) Events(_ context.Context, start, _ time.Time) ([]event.RawEvent, error) {
	if start.Format(time.DateOnly) == s.failDate {
		return nil, errors.New("source unavailable")
	}
	return []event.RawEvent{
		{PackageName: "android", Type: event.UserPresent, TimestampMs: start.Add(time.Hour).UnixMilli()},
	}, nil
}

type countingStore struct {
	written chan string
}

func (s countingStore) ReplaceDay(_ context.Context, result record.DayResult) error {
	s.written <- result.Date
	return nil
}

func build(failDate string) (countingStore, func() []string, *service.DailyService) {
	store := countingStore{written: make(chan string, 64)}
	svc := service.NewDailyService(domain.NewProcessor(domain.DefaultThresholds(), time.UTC), flakySource{failDate: failDate}, store,
		nil, fixedClock{now: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}, nil)
	drain := func() []string {
		out := []string{}
		for {
			select {
			case d := <-store.written:
				out = append(out, d)
			default:
				return out
			}
		}
	}
	return store, drain, svc
}

func TestProcessRangeContinuesPastFailures(t *testing.T) {
	t.Parallel()
	m := metrics.New()
	_, drain, svc := build("2026-03-11")
	uc := usecase.NewInteractor(svc, time.UTC, 3, fixedIDs{}, m)

	out, err := uc.ProcessRange(context.Background(), dailydto.ProcessRangeInput{From: "2026-03-09", To: "2026-03-12"})
	if err == nil {
		t.Fatalf("expected joined error for the failed date")
	}
	if out.RunID != "run-1" {
		t.Fatalf("expected run id, got %q", out.RunID)
	}
	if len(out.Days) != 3 {
		t.Fatalf("expected 3 processed days, got %d", len(out.Days))
	}
	if len(out.Failures) != 1 || out.Failures[0].Date != "2026-03-11" {
		t.Fatalf("unexpected failures: %+v", out.Failures)
	}
	for i, want := range []string{"2026-03-09", "2026-03-10", "2026-03-12"} {
		if out.Days[i].Date != want {
			t.Fatalf("expected sorted days, got %s at %d", out.Days[i].Date, i)
		}
	}
	if written := drain(); len(written) != 3 {
		t.Fatalf("expected 3 writes, got %d", len(written))
	}
	if got := testutil.ToFloat64(m.DailyRuns.WithLabelValues("error")); got != 1 {
		t.Fatalf("expected 1 failed run recorded, got %v", got)
	}
	if got := testutil.ToFloat64(m.DailyRuns.WithLabelValues("ok")); got != 3 {
		t.Fatalf("expected 3 ok runs recorded, got %v", got)
	}
}

func TestProcessDayDryRun(t *testing.T) {
	t.Parallel()
	_, drain, svc := build("")
	uc := usecase.NewInteractor(svc, time.UTC, 1, nil, nil)

	out, err := uc.ProcessDay(context.Background(), dailydto.ProcessDayInput{Date: "2026-03-10", DryRun: true})
	if err != nil {
		t.Fatalf("process day: %v", err)
	}
	if out.Written {
		t.Fatalf("dry run must not report written")
	}
	if out.TotalUnlocks != 1 {
		t.Fatalf("expected 1 unlock, got %d", out.TotalUnlocks)
	}
	if written := drain(); len(written) != 0 {
		t.Fatalf("dry run wrote %v", written)
	}
}

func TestProcessDayRejectsBadDate(t *testing.T) {
	t.Parallel()
	_, _, svc := build("")
	uc := usecase.NewInteractor(svc, time.UTC, 1, nil, nil)
	if _, err := uc.ProcessDay(context.Background(), dailydto.ProcessDayInput{Date: "10/03/2026"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := uc.ProcessRange(context.Background(), dailydto.ProcessRangeInput{From: "2026-03-12", To: "2026-03-10"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for reversed range, got %v", err)
	}
}
