package in

import (
	"context"

	"usagetrail/internal/modules/report/dto"
)

type Usecase interface {
	Day(ctx context.Context, input dto.DayInput) (dto.DayReport, error)
	Range(ctx context.Context, input dto.RangeInput) ([]dto.DayReport, error)
	Package(ctx context.Context, input dto.PackageInput) (dto.PackageReport, error)
	WriteNote(ctx context.Context, input dto.DayInput) (dto.NoteOutput, error)
}
