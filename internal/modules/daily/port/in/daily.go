package in

import (
	"context"

	"usagetrail/internal/modules/daily/dto"
)

type Usecase interface {
	ProcessDay(ctx context.Context, input dto.ProcessDayInput) (dto.DayOutput, error)
	ProcessRange(ctx context.Context, input dto.ProcessRangeInput) (dto.RangeOutput, error)
}
