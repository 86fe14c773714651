package out

import (
	"context"
	"time"

	dailyout "usagetrail/internal/modules/daily/port/out"
	sourcedto "usagetrail/internal/modules/source/dto"
	sourcein "usagetrail/internal/modules/source/port/in"
	"usagetrail/internal/platform/event"
)

// SourceEvents reads a day's events through the source module.
type SourceEvents struct {
	source sourcein.Usecase
}

func NewSourceEvents(source sourcein.Usecase) dailyout.EventSource {
	return &SourceEvents{source: source}
}

func (s *SourceEvents) Events(ctx context.Context, start, end time.Time) ([]event.RawEvent, error) {
	out, err := s.source.Events(ctx, sourcedto.WindowInput{Start: start, End: end})
	if err != nil {
		return nil, err
	}
	return out.Events, nil
}
