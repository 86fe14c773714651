package in

import (
	"context"

	dailydto "usagetrail/internal/modules/daily/dto"
	dailyin "usagetrail/internal/modules/daily/port/in"
)

type CLIHandler struct {
	usecase dailyin.Usecase
}

func NewCLIHandler(usecase dailyin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) ProcessDay(ctx context.Context, date string, dryRun bool) (dailydto.DayOutput, error) {
	return h.usecase.ProcessDay(ctx, dailydto.ProcessDayInput{Date: date, DryRun: dryRun})
}

func (h CLIHandler) ProcessRange(ctx context.Context, from, to string, dryRun bool) (dailydto.RangeOutput, error) {
	return h.usecase.ProcessRange(ctx, dailydto.ProcessRangeInput{From: from, To: to, DryRun: dryRun})
}
