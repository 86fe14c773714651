package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"usagetrail/internal/modules/report/domain"
	reportdto "usagetrail/internal/modules/report/dto"
	"usagetrail/internal/modules/report/service"
	"usagetrail/internal/modules/report/usecase"
	apperrors "usagetrail/internal/platform/errors"
	"usagetrail/internal/platform/record"
)

type oneDay struct{ day domain.DayReport }

func (o oneDay) Days(_ context.Context, from, to string) ([]domain.DayReport, error) {
	if o.day.Date >= from && o.day.Date <= to {
		return []domain.DayReport{o.day}, nil
	}
	return nil, nil
}

func (o oneDay) PackageDays(_ context.Context, _ string, dates []string) ([]domain.PackageDay, error) {
	out := []domain.PackageDay{}
	for _, d := range dates {
		out = append(out, domain.PackageDay{Date: d, ScrollAmount: 5})
	}
	return out, nil
}

type noNotes struct{}

func (noNotes) Save(context.Context, domain.DayReport) (string, error) { return "", nil }

func newUsecase() *usecase.Interactor {
	day := domain.DayReport{
		Date:    "2026-03-10",
		Summary: &record.DeviceSummary{DateString: "2026-03-10", TotalUnlockCount: 1},
		AppUsage: []record.AppUsage{
			{PackageName: "com.small", UsageTimeMillis: 1000},
			{PackageName: "com.big", UsageTimeMillis: 5000},
		},
		ScrollSessions: []record.ScrollSession{
			{PackageName: "com.big", ScrollAmount: 20},
			{PackageName: "com.big", ScrollAmount: 30},
		},
		Insights: []record.Insight{{Key: record.InsightBusiestUnlockHour, LongValue: record.Int64(7), DoubleValue: record.Float64(1)}},
	}
	return usecase.NewInteractor(service.NewReportService(oneDay{day: day}, noNotes{}, time.UTC, nil)).(*usecase.Interactor)
}

func TestDayMapsReport(t *testing.T) {
	t.Parallel()
	out, err := newUsecase().Day(context.Background(), reportdto.DayInput{Date: "2026-03-10"})
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if !out.Processed || out.TotalScroll != 50 {
		t.Fatalf("unexpected report: %+v", out)
	}
	if out.Apps[0].PackageName != "com.big" || out.Apps[0].ScrollAmount != 50 {
		t.Fatalf("expected biggest app first with its scroll, got %+v", out.Apps[0])
	}
	if out.Insights[0].Value != "07:00 (1 unlocks)" {
		t.Fatalf("unexpected insight value: %q", out.Insights[0].Value)
	}
}

func TestPackageRequiresName(t *testing.T) {
	t.Parallel()
	uc := newUsecase()
	if _, err := uc.Package(context.Background(), reportdto.PackageInput{Dates: []string{"2026-03-10"}}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	out, err := uc.Package(context.Background(), reportdto.PackageInput{Package: "com.big", Dates: []string{"2026-03-10"}})
	if err != nil {
		t.Fatalf("package: %v", err)
	}
	if len(out.Days) != 1 || out.Days[0].ScrollAmount != 5 {
		t.Fatalf("unexpected package report: %+v", out)
	}
}
