package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"usagetrail/internal/modules/report/domain"
	reportout "usagetrail/internal/modules/report/port/out"
	apperrors "usagetrail/internal/platform/errors"
	"usagetrail/internal/platform/logging"
	"usagetrail/internal/platform/record"
)

type ReportService struct {
	reader   reportout.Reader
	notes    reportout.NoteStore
	location *time.Location
	logger   hclog.Logger
}

func NewReportService(reader reportout.Reader, notes reportout.NoteStore, loc *time.Location, logger hclog.Logger) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{reader: reader, notes: notes, location: loc, logger: logging.OrNull(logger).Named("report")}
}

func (s *ReportService) Location() *time.Location {
	return s.location
}

func (s *ReportService) Day(ctx context.Context, date string) (domain.DayReport, error) {
	days, err := s.Range(ctx, date, date)
	if err != nil {
		return domain.DayReport{}, err
	}
	return days[0], nil
}

// Range returns one report per date in [from, to]. Dates with nothing stored
// yield an empty report.
func (s *ReportService) Range(ctx context.Context, from, to string) ([]domain.DayReport, error) {
	dates, err := record.DateRange(from, to, s.location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	stored, err := s.reader.Days(ctx, from, to)
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]domain.DayReport, len(stored))
	for _, d := range stored {
		byDate[d.Date] = d
	}
	out := make([]domain.DayReport, 0, len(dates))
	for _, date := range dates {
		d, ok := byDate[date]
		if !ok {
			d = domain.DayReport{Date: date}
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *ReportService) PackageDays(ctx context.Context, pkg string, dates []string) ([]domain.PackageDay, error) {
	for _, date := range dates {
		if _, err := record.ParseDate(date, s.location); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
	}
	return s.reader.PackageDays(ctx, pkg, dates)
}

// WriteNote renders the stored day as a markdown note.
func (s *ReportService) WriteNote(ctx context.Context, date string) (string, error) {
	report, err := s.Day(ctx, date)
	if err != nil {
		return "", err
	}
	if report.Empty() {
		return "", fmt.Errorf("%w: no records stored for %s", apperrors.ErrNotFound, date)
	}
	path, err := s.notes.Save(ctx, report)
	if err != nil {
		return "", fmt.Errorf("save report note: %w", err)
	}
	s.logger.Info("wrote day note", "date", date, "path", path)
	return path, nil
}
