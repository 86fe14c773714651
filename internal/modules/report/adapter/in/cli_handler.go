package in

import (
	"context"

	reportdto "usagetrail/internal/modules/report/dto"
	reportin "usagetrail/internal/modules/report/port/in"
)

type CLIHandler struct {
	usecase reportin.Usecase
}

func NewCLIHandler(usecase reportin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Day(ctx context.Context, date string) (reportdto.DayReport, error) {
	return h.usecase.Day(ctx, reportdto.DayInput{Date: date})
}

func (h CLIHandler) Range(ctx context.Context, from, to string) ([]reportdto.DayReport, error) {
	return h.usecase.Range(ctx, reportdto.RangeInput{From: from, To: to})
}

func (h CLIHandler) Package(ctx context.Context, pkg string, dates []string) (reportdto.PackageReport, error) {
	return h.usecase.Package(ctx, reportdto.PackageInput{Package: pkg, Dates: dates})
}

func (h CLIHandler) WriteNote(ctx context.Context, date string) (reportdto.NoteOutput, error) {
	return h.usecase.WriteNote(ctx, reportdto.DayInput{Date: date})
}
