package out

import (
	"context"

	"usagetrail/internal/modules/report/domain"
)

// Reader returns stored day records. Dates are inclusive YYYY-MM-DD bounds.
type Reader interface {
	Days(ctx context.Context, from, to string) ([]domain.DayReport, error)
	PackageDays(ctx context.Context, pkg string, dates []string) ([]domain.PackageDay, error)
}

type NoteStore interface {
	Save(ctx context.Context, report domain.DayReport) (string, error)
}
