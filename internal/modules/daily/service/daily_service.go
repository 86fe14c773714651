package service

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"usagetrail/internal/modules/daily/domain"
	dailyout "usagetrail/internal/modules/daily/port/out"
	"usagetrail/internal/platform/clock"
	"usagetrail/internal/platform/logging"
	"usagetrail/internal/platform/record"
)

type Computed struct {
	Result record.DayResult
	Events int
}

type DailyService struct {
	processor domain.Processor
	source    dailyout.EventSource
	store     dailyout.DayStore
	filter    dailyout.FilterProvider
	clock     clock.Clock
	logger    hclog.Logger
}

func NewDailyService(processor domain.Processor, source dailyout.EventSource, store dailyout.DayStore, filter dailyout.FilterProvider, clk clock.Clock, logger hclog.Logger) *DailyService {
	return &DailyService{
		processor: processor,
		source:    source,
		store:     store,
		filter:    filter,
		clock:     clk,
		logger:    logging.OrNull(logger).Named("daily"),
	}
}

// Compute loads the date's events and derives its records without writing.
func (s *DailyService) Compute(ctx context.Context, date string) (Computed, error) {
	start, end, err := record.DayWindow(date, s.processor.Location)
	if err != nil {
		return Computed{}, err
	}
	events, err := s.source.Events(ctx, start, end)
	if err != nil {
		return Computed{}, fmt.Errorf("load events for %s: %w", date, err)
	}
	hidden := domain.Filter{}
	if s.filter != nil {
		set, err := s.filter.HiddenPackages(ctx)
		if err != nil {
			return Computed{}, fmt.Errorf("load hidden packages: %w", err)
		}
		hidden = domain.Filter(set)
	}

	var nowMs int64
	if now := s.clock.Now(); now.Before(end) {
		nowMs = now.UnixMilli()
	}
	result, err := s.processor.Process(date, events, hidden, nowMs)
	if err != nil {
		return Computed{}, err
	}
	return Computed{Result: result, Events: len(events)}, nil
}

// Process computes date and replaces its stored records.
func (s *DailyService) Process(ctx context.Context, date string) (Computed, error) {
	computed, err := s.Compute(ctx, date)
	if err != nil {
		return Computed{}, err
	}
	if err := s.store.ReplaceDay(ctx, computed.Result); err != nil {
		return Computed{}, fmt.Errorf("replace day %s: %w", date, err)
	}
	s.logger.Debug("processed day", "date", date, "events", computed.Events,
		"scroll_sessions", len(computed.Result.ScrollSessions), "unlocks", len(computed.Result.UnlockSessions))
	return computed, nil
}
