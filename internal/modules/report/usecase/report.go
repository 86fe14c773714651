package usecase

import (
	"context"
	"fmt"
	"strings"

	"usagetrail/internal/modules/report/domain"
	reportdto "usagetrail/internal/modules/report/dto"
	reportin "usagetrail/internal/modules/report/port/in"
	"usagetrail/internal/modules/report/service"
	apperrors "usagetrail/internal/platform/errors"
)

type Interactor struct {
	svc *service.ReportService
}

func NewInteractor(svc *service.ReportService) reportin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Day(ctx context.Context, input reportdto.DayInput) (reportdto.DayReport, error) {
	report, err := i.svc.Day(ctx, input.Date)
	if err != nil {
		return reportdto.DayReport{}, err
	}
	return i.toDTO(report), nil
}

func (i *Interactor) Range(ctx context.Context, input reportdto.RangeInput) ([]reportdto.DayReport, error) {
	reports, err := i.svc.Range(ctx, input.From, input.To)
	if err != nil {
		return nil, err
	}
	out := make([]reportdto.DayReport, 0, len(reports))
	for _, r := range reports {
		out = append(out, i.toDTO(r))
	}
	return out, nil
}

func (i *Interactor) Package(ctx context.Context, input reportdto.PackageInput) (reportdto.PackageReport, error) {
	if strings.TrimSpace(input.Package) == "" {
		return reportdto.PackageReport{}, fmt.Errorf("%w: package is required", apperrors.ErrInvalidInput)
	}
	days, err := i.svc.PackageDays(ctx, input.Package, input.Dates)
	if err != nil {
		return reportdto.PackageReport{}, err
	}
	out := reportdto.PackageReport{Package: input.Package, Days: make([]reportdto.PackageDay, 0, len(days))}
	for _, d := range days {
		out.Days = append(out.Days, reportdto.PackageDay(d))
	}
	return out, nil
}

func (i *Interactor) WriteNote(ctx context.Context, input reportdto.DayInput) (reportdto.NoteOutput, error) {
	path, err := i.svc.WriteNote(ctx, input.Date)
	if err != nil {
		return reportdto.NoteOutput{}, err
	}
	return reportdto.NoteOutput{Date: input.Date, Path: path}, nil
}

func (i *Interactor) toDTO(r domain.DayReport) reportdto.DayReport {
	out := reportdto.DayReport{
		Date:        r.Date,
		Processed:   r.Summary != nil,
		TotalScroll: r.TotalScroll(),
		Unlocks:     reportdto.UnlockStats(r.UnlockStats()),
	}
	if r.Summary != nil {
		out.Summary = *r.Summary
	}
	scroll := r.ScrollByPackage()
	for _, a := range r.TopApps(0) {
		out.Apps = append(out.Apps, reportdto.AppRow{
			PackageName:       a.PackageName,
			UsageTimeMillis:   a.UsageTimeMillis,
			ActiveTimeMillis:  a.ActiveTimeMillis,
			AppOpenCount:      a.AppOpenCount,
			NotificationCount: a.NotificationCount,
			ScrollAmount:      scroll[a.PackageName],
		})
	}
	for _, in := range r.Insights {
		out.Insights = append(out.Insights, reportdto.InsightRow{Key: string(in.Key), Value: domain.FormatInsight(in, i.svc.Location())})
	}
	return out
}
