package out

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"usagetrail/internal/modules/report/domain"
	reportout "usagetrail/internal/modules/report/port/out"
	"usagetrail/internal/platform/markdown"
	"usagetrail/internal/platform/record"
)

type noteHeader struct {
	SchemaVersion     int    `yaml:"schema_version"`
	Date              string `yaml:"date"`
	TotalScroll       int64  `yaml:"total_scroll"`
	Unlocks           int    `yaml:"unlocks"`
	Glances           int    `yaml:"glances"`
	Compulsive        int    `yaml:"compulsive"`
	ScrollSessions    int    `yaml:"scroll_sessions"`
	TotalUsageMinutes *int64 `yaml:"total_usage_minutes,omitempty"`
	AppOpens          *int   `yaml:"app_opens,omitempty"`
	Notifications     *int   `yaml:"notifications,omitempty"`
}

type MarkdownNoteStore struct {
	reportDir string
	location  *time.Location
}

func NewMarkdownNoteStore(reportDir string, loc *time.Location) reportout.NoteStore {
	if loc == nil {
		loc = time.Local
	}
	return &MarkdownNoteStore{reportDir: reportDir, location: loc}
}

// Save writes the day note to <reportDir>/YYYY/MM/DD.md, replacing any
// previous note for the date.
func (s *MarkdownNoteStore) Save(_ context.Context, report domain.DayReport) (string, error) {
	date, err := record.ParseDate(report.Date, s.location)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.reportDir, date.Format("2006"), date.Format("01"), date.Format("02")+".md")

	stats := report.UnlockStats()
	header := noteHeader{
		SchemaVersion:  domain.SchemaVersion,
		Date:           report.Date,
		TotalScroll:    report.TotalScroll(),
		Unlocks:        stats.Total,
		Glances:        stats.Glances,
		Compulsive:     stats.Compulsive,
		ScrollSessions: len(report.ScrollSessions),
	}
	if sum := report.Summary; sum != nil {
		minutes := sum.TotalUsageTimeMillis / time.Minute.Milliseconds()
		opens, notifications := sum.TotalAppOpens, sum.TotalNotificationCount
		header.TotalUsageMinutes = &minutes
		header.AppOpens = &opens
		header.Notifications = &notifications
	}
	if err := markdown.WriteFile(path, header, s.body(report)); err != nil {
		return "", err
	}
	return path, nil
}

func (s *MarkdownNoteStore) body(report domain.DayReport) string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "# Usage %s\n\n", report.Date)

	b.WriteString("## Apps\n\n")
	apps := report.TopApps(0)
	if len(apps) == 0 {
		b.WriteString("No app usage recorded.\n\n")
	} else {
		scroll := report.ScrollByPackage()
		b.WriteString("| App | Usage | Active | Opens | Notifications | Scroll |\n|---|---|---|---|---|---|\n")
		for _, a := range apps {
			fmt.Fprintf(&b, "| %s | %s | %s | %d | %d | %d |\n", a.PackageName,
				time.Duration(a.UsageTimeMillis)*time.Millisecond, time.Duration(a.ActiveTimeMillis)*time.Millisecond,
				a.AppOpenCount, a.NotificationCount, scroll[a.PackageName])
		}
		b.WriteString("\n")
	}

	b.WriteString("## Unlocks\n\n")
	stats := report.UnlockStats()
	fmt.Fprintf(&b, "- Total: %d\n- Glances: %d\n- Intentional: %d\n- Compulsive: %d\n\n", stats.Total, stats.Glances, stats.Intentional, stats.Compulsive)

	if len(report.Insights) > 0 {
		b.WriteString("## Insights\n\n")
		for _, in := range report.Insights {
			fmt.Fprintf(&b, "- %s: %s\n", in.Key, domain.FormatInsight(in, s.location))
		}
	}
	return b.String()
}
