package in

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	reportdto "usagetrail/internal/modules/report/dto"
	"usagetrail/internal/ui/theme"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Surface1)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return theme.Header
			}
			return theme.Cell
		})
}

func duration(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Round(time.Second).String()
}

// RenderDay draws one day's report for the terminal.
func RenderDay(r reportdto.DayReport) string {
	b := strings.Builder{}
	b.WriteString(theme.Title.Render("Usage " + r.Date))
	b.WriteString("\n")
	if !r.Processed && len(r.Apps) == 0 {
		b.WriteString(theme.Muted.Render("nothing stored for this date; run `usagetrail process --date " + r.Date + "`"))
		b.WriteString("\n")
		return b.String()
	}

	summary := fmt.Sprintf("screen time %s · %d unlocks · %d opens · %d notifications · scroll %d",
		duration(r.Summary.TotalUsageTimeMillis), r.Summary.TotalUnlockCount, r.Summary.TotalAppOpens,
		r.Summary.TotalNotificationCount, r.TotalScroll)
	b.WriteString(theme.Pane.Render(summary))
	b.WriteString("\n")

	if len(r.Apps) > 0 {
		t := newTable("App", "Usage", "Active", "Opens", "Notifications", "Scroll")
		for _, a := range r.Apps {
			t.Row(a.PackageName, duration(a.UsageTimeMillis), duration(a.ActiveTimeMillis),
				strconv.Itoa(a.AppOpenCount), strconv.Itoa(a.NotificationCount), strconv.FormatInt(a.ScrollAmount, 10))
		}
		b.WriteString(t.Render())
		b.WriteString("\n")
	}

	u := r.Unlocks
	line := fmt.Sprintf("unlocks %d · glances %d · intentional %d", u.Total, u.Glances, u.Intentional)
	if u.Compulsive > 0 {
		line += " · " + theme.Hot.Render(fmt.Sprintf("compulsive %d", u.Compulsive))
	}
	b.WriteString(line)
	b.WriteString("\n")

	if len(r.Insights) > 0 {
		t := newTable("Insight", "Value")
		for _, in := range r.Insights {
			t.Row(in.Key, in.Value)
		}
		b.WriteString(t.Render())
		b.WriteString("\n")
	}
	return b.String()
}

// RenderRange draws one summary row per date.
func RenderRange(reports []reportdto.DayReport) string {
	t := newTable("Date", "Screen time", "Unlocks", "Opens", "Notifications", "Scroll")
	for _, r := range reports {
		if !r.Processed {
			t.Row(r.Date, "-", "-", "-", "-", strconv.FormatInt(r.TotalScroll, 10))
			continue
		}
		t.Row(r.Date, duration(r.Summary.TotalUsageTimeMillis), strconv.Itoa(r.Summary.TotalUnlockCount),
			strconv.Itoa(r.Summary.TotalAppOpens), strconv.Itoa(r.Summary.TotalNotificationCount), strconv.FormatInt(r.TotalScroll, 10))
	}
	return t.Render() + "\n"
}

func RenderPackage(r reportdto.PackageReport) string {
	t := newTable("Date", "Usage", "Active", "Opens", "Notifications", "Scroll", "Sessions")
	for _, d := range r.Days {
		t.Row(d.Date, duration(d.UsageTimeMillis), duration(d.ActiveTimeMillis), strconv.Itoa(d.AppOpenCount),
			strconv.Itoa(d.NotificationCount), strconv.FormatInt(d.ScrollAmount, 10), strconv.Itoa(d.ScrollSessions))
	}
	return theme.Title.Render(r.Package) + "\n" + t.Render() + "\n"
}

func RenderNote(out reportdto.NoteOutput) string {
	return theme.Good.Render("wrote") + " " + out.Path + "\n"
}
