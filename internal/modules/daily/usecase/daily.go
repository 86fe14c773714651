package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	dailydto "usagetrail/internal/modules/daily/dto"
	dailyin "usagetrail/internal/modules/daily/port/in"
	"usagetrail/internal/modules/daily/service"
	apperrors "usagetrail/internal/platform/errors"
	"usagetrail/internal/platform/id"
	"usagetrail/internal/platform/metrics"
	"usagetrail/internal/platform/record"
)

type Interactor struct {
	svc         *service.DailyService
	location    *time.Location
	parallelism int
	ids         id.Generator
	metrics     *metrics.Metrics
}

func NewInteractor(svc *service.DailyService, location *time.Location, parallelism int, ids id.Generator, m *metrics.Metrics) dailyin.Usecase {
	if parallelism < 1 {
		parallelism = 1
	}
	if ids == nil {
		ids = id.UUID{}
	}
	if m == nil {
		m = metrics.New()
	}
	return &Interactor{svc: svc, location: location, parallelism: parallelism, ids: ids, metrics: m}
}

func (i *Interactor) ProcessDay(ctx context.Context, input dailydto.ProcessDayInput) (dailydto.DayOutput, error) {
	if _, err := record.ParseDate(input.Date, i.location); err != nil {
		return dailydto.DayOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return i.run(ctx, input.Date, input.DryRun)
}

// ProcessRange reprocesses every date in [From, To]. Dates run in parallel,
// each in its own transaction; a failed date does not stop the others.
func (i *Interactor) ProcessRange(ctx context.Context, input dailydto.ProcessRangeInput) (dailydto.RangeOutput, error) {
	dates, err := record.DateRange(input.From, input.To, i.location)
	if err != nil {
		return dailydto.RangeOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	var (
		mu   sync.Mutex
		out  dailydto.RangeOutput
		errs []error
	)
	out.RunID = i.ids.New()
	g := errgroup.Group{}
	g.SetLimit(i.parallelism)
	for _, date := range dates {
		date := date
		g.Go(func() error {
			day, err := i.run(ctx, date, input.DryRun)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.Failures = append(out.Failures, dailydto.DayFailure{Date: date, Error: err.Error()})
				errs = append(errs, err)
				return nil
			}
			out.Days = append(out.Days, day)
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(out.Days, func(a, b int) bool { return out.Days[a].Date < out.Days[b].Date })
	sort.Slice(out.Failures, func(a, b int) bool { return out.Failures[a].Date < out.Failures[b].Date })
	return out, errors.Join(errs...)
}

func (i *Interactor) run(ctx context.Context, date string, dryRun bool) (dailydto.DayOutput, error) {
	var (
		computed service.Computed
		err      error
	)
	if dryRun {
		computed, err = i.svc.Compute(ctx, date)
	} else {
		computed, err = i.svc.Process(ctx, date)
	}
	if err != nil {
		i.metrics.DailyRuns.WithLabelValues("error").Inc()
		return dailydto.DayOutput{}, err
	}
	i.metrics.DailyRuns.WithLabelValues("ok").Inc()
	r := computed.Result
	return dailydto.DayOutput{
		Date:             date,
		Events:           computed.Events,
		ScrollSessions:   len(r.ScrollSessions),
		AppUsageRows:     len(r.AppUsage),
		UnlockSessions:   len(r.UnlockSessions),
		Insights:         len(r.Insights),
		TotalUsageMillis: r.Summary.TotalUsageTimeMillis,
		TotalUnlocks:     r.Summary.TotalUnlockCount,
		TotalAppOpens:    r.Summary.TotalAppOpens,
		Written:          !dryRun,
	}, nil
}
