package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/hashicorp/go-hclog"

	"usagetrail/internal/modules/capture/domain"
	captureout "usagetrail/internal/modules/capture/port/out"
	"usagetrail/internal/platform/clock"
	apperrors "usagetrail/internal/platform/errors"
	"usagetrail/internal/platform/logging"
	"usagetrail/internal/platform/metrics"
	"usagetrail/internal/platform/record"
)

type AggregatorOptions struct {
	MergeGap      time.Duration
	FlushInterval time.Duration
	Clock         clock.Clock
	Location      *time.Location
	Logger        hclog.Logger
	Metrics       *metrics.Metrics
}

// Aggregator buffers finalized scroll sessions and writes them in merged
// batches, either on its flush job or on demand.
type Aggregator struct {
	writer   captureout.ScrollSessionWriter
	mergeGap int64
	interval time.Duration
	clock    clock.Clock
	location *time.Location
	logger   hclog.Logger
	metrics  *metrics.Metrics

	mu     sync.Mutex
	buffer []record.ScrollSession
	closed bool

	flushMu   sync.Mutex
	tails     map[string]record.ScrollSession
	scheduler gocron.Scheduler
}

func NewAggregator(writer captureout.ScrollSessionWriter, opts AggregatorOptions) *Aggregator {
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = time.Minute
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Clock == nil {
		opts.Clock = clock.SystemClock{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Aggregator{
		writer:   writer,
		mergeGap: opts.MergeGap.Milliseconds(),
		interval: opts.FlushInterval,
		clock:    opts.Clock,
		location: opts.Location,
		logger:   logging.OrNull(opts.Logger).Named("aggregator"),
		metrics:  opts.Metrics,
		tails:    map[string]record.ScrollSession{},
	}
}

// Start schedules the periodic flush. A flush still running when the next
// tick arrives is not overlapped.
func (a *Aggregator) Start() error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create flush scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(a.interval),
		gocron.NewTask(func() {
			_ = a.Flush(context.Background())
		}),
		gocron.WithName("scroll-session-flush"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("schedule flush job: %w", err)
	}
	scheduler.Start()
	a.scheduler = scheduler
	return nil
}

// AddSessions buffers the records of one finalized session together.
func (a *Aggregator) AddSessions(_ context.Context, sessions []record.ScrollSession) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return apperrors.ErrAggregatorClosed
	}
	a.buffer = append(a.buffer, sessions...)
	a.metrics.BufferedSessions.Set(float64(len(a.buffer)))
	return nil
}

// Flush drains the buffer, merges it and writes the result. When the write
// fails every drained session goes back into the buffer.
func (a *Aggregator) Flush(ctx context.Context) error {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()

	a.mu.Lock()
	drained := a.buffer
	a.buffer = nil
	a.mu.Unlock()
	if len(drained) == 0 {
		return nil
	}

	writes, tails := domain.Coalesce(a.tails, drained, a.mergeGap)
	if err := a.writer.WriteScrollSessions(ctx, writes); err != nil {
		a.mu.Lock()
		a.buffer = append(drained, a.buffer...)
		a.metrics.BufferedSessions.Set(float64(len(a.buffer)))
		a.mu.Unlock()
		a.metrics.Flushes.WithLabelValues("error").Inc()
		a.logger.Warn("flush failed, sessions re-buffered", "sessions", len(drained), "error", err)
		return fmt.Errorf("flush scroll sessions: %w", err)
	}
	domain.PruneTails(tails, record.LocalDate(a.clock.Now().UnixMilli(), a.location))
	a.tails = tails

	a.mu.Lock()
	a.metrics.BufferedSessions.Set(float64(len(a.buffer)))
	a.mu.Unlock()
	a.metrics.Flushes.WithLabelValues("ok").Inc()
	a.logger.Debug("flushed scroll sessions", "drained", len(drained), "written", len(writes))
	return nil
}

// Buffered returns a copy of the sessions waiting for the next flush.
func (a *Aggregator) Buffered() []record.ScrollSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]record.ScrollSession(nil), a.buffer...)
}

// Stop rejects new sessions, waits for a running flush job and flushes what
// is left.
func (a *Aggregator) Stop(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	if a.scheduler != nil {
		if err := a.scheduler.Shutdown(); err != nil {
			a.logger.Warn("shutdown flush scheduler", "error", err)
		}
	}
	return a.Flush(ctx)
}
