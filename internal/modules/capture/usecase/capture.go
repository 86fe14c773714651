package usecase

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	capturedto "usagetrail/internal/modules/capture/dto"
	capturein "usagetrail/internal/modules/capture/port/in"
	captureout "usagetrail/internal/modules/capture/port/out"
	"usagetrail/internal/modules/capture/service"
	"usagetrail/internal/platform/clock"
	"usagetrail/internal/platform/event"
	"usagetrail/internal/platform/logging"
	"usagetrail/internal/platform/metrics"
	"usagetrail/internal/platform/record"
)

type Interactor struct {
	manager    *service.SessionManager
	aggregator *service.Aggregator
	drafts     captureout.DraftStore
	filter     captureout.PackageFilter
	clock      clock.Clock
	logger     hclog.Logger
	metrics    *metrics.Metrics
}

func NewInteractor(
	manager *service.SessionManager,
	aggregator *service.Aggregator,
	drafts captureout.DraftStore,
	filter captureout.PackageFilter,
	clk clock.Clock,
	logger hclog.Logger,
	m *metrics.Metrics,
) capturein.Usecase {
	if m == nil {
		m = metrics.New()
	}
	return &Interactor{
		manager:    manager,
		aggregator: aggregator,
		drafts:     drafts,
		filter:     filter,
		clock:      clk,
		logger:     logging.OrNull(logger).Named("capture"),
		metrics:    m,
	}
}

// Start begins the periodic aggregator flush.
func (i *Interactor) Start(_ context.Context) error {
	return i.aggregator.Start()
}

func (i *Interactor) Recover(ctx context.Context) (capturedto.RecoverOutput, error) {
	draft, ok, err := i.manager.Recover(ctx)
	if err != nil {
		return capturedto.RecoverOutput{}, err
	}
	if !ok {
		return capturedto.RecoverOutput{}, nil
	}
	return capturedto.RecoverOutput{
		Recovered:    true,
		PackageName:  draft.PackageName,
		ScrollAmount: draft.ScrollAmount,
		StartTime:    draft.StartTime,
		EndTime:      draft.LastUpdateTime,
	}, nil
}

// Handle applies one live event to the session manager.
func (i *Interactor) Handle(ctx context.Context, ev event.RawEvent) error {
	i.metrics.CaptureEvents.WithLabelValues(ev.Type.String()).Inc()
	switch {
	case ev.Type == event.ActivityResumed:
		return i.manager.StartNewSession(ctx, ev.PackageName, ev.ClassName, ev.TimestampMs)
	case ev.Type.IsScroll():
		if i.hidden(ctx, ev.PackageName) {
			return nil
		}
		dx, dy, ok := ev.ScrollDelta()
		if !ok {
			i.metrics.EventsSkipped.WithLabelValues("empty_scroll").Inc()
			return nil
		}
		if state := i.manager.State(); !state.Active || state.PackageName != ev.PackageName {
			if err := i.manager.StartNewSession(ctx, ev.PackageName, ev.ClassName, ev.TimestampMs); err != nil {
				return err
			}
		}
		return i.manager.UpdateScroll(ctx, dx, dy, ev.Type == event.ScrollMeasured, ev.TimestampMs)
	case ev.Type == event.ScreenNonInteractive, ev.Type == event.KeyguardShown:
		return i.manager.Finalize(ctx, ev.TimestampMs, record.EndScreenOff, true)
	case ev.Type == event.ServiceStopped:
		return i.manager.HandleStop(ctx, record.EndServiceStopped, ev.TimestampMs)
	default:
		return nil
	}
}

// Run feeds events to Handle until the channel closes or ctx is done.
func (i *Interactor) Run(ctx context.Context, events <-chan event.RawEvent) (capturedto.RunOutput, error) {
	out := capturedto.RunOutput{}
	for {
		select {
		case <-ctx.Done():
			return out, nil
		case ev, ok := <-events:
			if !ok {
				return out, nil
			}
			if !ev.Type.Valid() {
				out.Skipped++
				i.metrics.EventsSkipped.WithLabelValues("unknown_type").Inc()
				continue
			}
			if err := i.Handle(ctx, ev); err != nil {
				return out, fmt.Errorf("handle %s event: %w", ev.Type, err)
			}
			out.Handled++
		}
	}
}

// Stop finalizes the live session with reason and drains the aggregator.
func (i *Interactor) Stop(ctx context.Context, reason record.EndReason) error {
	if err := i.manager.HandleStop(ctx, reason, i.clock.Now().UnixMilli()); err != nil {
		i.logger.Warn("finalize on stop", "error", err)
	}
	i.manager.Close()
	return i.aggregator.Stop(ctx)
}

func (i *Interactor) State(_ context.Context) (capturedto.StateOutput, error) {
	s := i.manager.State()
	return capturedto.StateOutput{
		Tracking:     s.Active,
		PackageName:  s.PackageName,
		ActivityName: s.ActivityName,
		ScrollAmount: s.ScrollAmount(),
		StartTime:    s.StartTime,
		LastUpdate:   s.LastUpdate,
		Measured:     s.Measured,
	}, nil
}

func (i *Interactor) Draft(ctx context.Context) (capturedto.DraftOutput, error) {
	d, err := i.drafts.Get(ctx)
	if err != nil {
		return capturedto.DraftOutput{}, err
	}
	return capturedto.DraftOutput{
		PackageName:    d.PackageName,
		ActivityName:   d.ActivityName,
		ScrollAmount:   d.ScrollAmount,
		StartTime:      d.StartTime,
		LastUpdateTime: d.LastUpdateTime,
		Measured:       d.Measured,
	}, nil
}

func (i *Interactor) hidden(ctx context.Context, pkg string) bool {
	if i.filter == nil {
		return false
	}
	set, err := i.filter.HiddenPackages(ctx)
	if err != nil {
		i.logger.Warn("load hidden packages", "error", err)
		return false
	}
	_, ok := set[pkg]
	return ok
}
