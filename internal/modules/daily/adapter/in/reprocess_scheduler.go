package in

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/hashicorp/go-hclog"

	dailydto "usagetrail/internal/modules/daily/dto"
	dailyin "usagetrail/internal/modules/daily/port/in"
	"usagetrail/internal/platform/clock"
	"usagetrail/internal/platform/logging"
)

// ReprocessScheduler rebuilds yesterday and today on a cron schedule so
// records stay correct after late events or a crash.
type ReprocessScheduler struct {
	usecase   dailyin.Usecase
	schedule  string
	location  *time.Location
	clock     clock.Clock
	logger    hclog.Logger
	scheduler gocron.Scheduler
}

func NewReprocessScheduler(usecase dailyin.Usecase, schedule string, loc *time.Location, clk clock.Clock, logger hclog.Logger) *ReprocessScheduler {
	if loc == nil {
		loc = time.Local
	}
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &ReprocessScheduler{
		usecase:  usecase,
		schedule: schedule,
		location: loc,
		clock:    clk,
		logger:   logging.OrNull(logger).Named("reprocess"),
	}
}

func (r *ReprocessScheduler) Start() error {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(r.location))
	if err != nil {
		return fmt.Errorf("create reprocess scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.CronJob(r.schedule, false),
		gocron.NewTask(func() {
			_, _ = r.RunOnce(context.Background())
		}),
		gocron.WithName("daily-reprocess"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("schedule reprocess job %q: %w", r.schedule, err)
	}
	scheduler.Start()
	r.scheduler = scheduler
	return nil
}

// RunOnce reprocesses yesterday and today in the configured timezone.
func (r *ReprocessScheduler) RunOnce(ctx context.Context) (dailydto.RangeOutput, error) {
	today := r.clock.Now().In(r.location)
	yesterday := today.AddDate(0, 0, -1)
	out, err := r.usecase.ProcessRange(ctx, dailydto.ProcessRangeInput{
		From: yesterday.Format(time.DateOnly),
		To:   today.Format(time.DateOnly),
	})
	if err != nil {
		r.logger.Error("scheduled reprocess failed", "run_id", out.RunID, "failures", len(out.Failures), "error", err)
		return out, err
	}
	r.logger.Info("scheduled reprocess done", "run_id", out.RunID, "days", len(out.Days))
	return out, nil
}

func (r *ReprocessScheduler) Stop() error {
	if r.scheduler == nil {
		return nil
	}
	if err := r.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("shutdown reprocess scheduler: %w", err)
	}
	r.scheduler = nil
	return nil
}
