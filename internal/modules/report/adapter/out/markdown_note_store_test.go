package out_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	reportout "usagetrail/internal/modules/report/adapter/out"
	"usagetrail/internal/modules/report/domain"
	"usagetrail/internal/platform/markdown"
	"usagetrail/internal/platform/record"
)

func TestMarkdownNoteStoreWritesDatedNote(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store := reportout.NewMarkdownNoteStore(dir, time.UTC)
	report := domain.DayReport{
		Date:    "2026-03-10",
		Summary: &record.DeviceSummary{DateString: "2026-03-10", TotalUsageTimeMillis: 3 * 60000, TotalAppOpens: 2},
		AppUsage: []record.AppUsage{
			{PackageName: "com.reader", DateString: "2026-03-10", UsageTimeMillis: 120000},
		},
		ScrollSessions: []record.ScrollSession{{PackageName: "com.reader", ScrollAmount: 40, DateString: "2026-03-10"}},
		Insights: []record.Insight{
			{DateString: "2026-03-10", Key: record.InsightFirstAppUsed, StringValue: record.String("com.reader"), LongValue: record.Int64(time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC).UnixMilli())},
		},
	}

	path, err := store.Save(context.Background(), report)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if want := filepath.Join(dir, "2026", "03", "10.md"); path != want {
		t.Fatalf("expected %s, got %s", want, path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	meta := map[string]any{}
	body, err := markdown.Parse(raw, &meta)
	if err != nil {
		t.Fatalf("parse note: %v", err)
	}
	if meta["date"] != "2026-03-10" || meta["total_scroll"] != 40 || meta["total_usage_minutes"] != 3 {
		t.Fatalf("unexpected frontmatter: %v", meta)
	}
	if !strings.Contains(body, "| com.reader | 2m0s |") {
		t.Fatalf("expected app row in body:\n%s", body)
	}
	if !strings.Contains(body, "first_app_used: com.reader at 08:30:00") {
		t.Fatalf("expected formatted insight in body:\n%s", body)
	}

	if _, err := store.Save(context.Background(), report); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestMarkdownNoteStoreOmitsSummaryFieldsWithoutSummary(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store := reportout.NewMarkdownNoteStore(dir, time.UTC)
	path, err := store.Save(context.Background(), domain.DayReport{
		Date:           "2026-03-11",
		UnlockSessions: []record.UnlockSession{{UnlockTimestamp: 1, DateString: "2026-03-11"}},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	meta := map[string]any{}
	body, err := markdown.Parse(raw, &meta)
	if err != nil {
		t.Fatalf("parse note: %v", err)
	}
	if _, ok := meta["total_usage_minutes"]; ok {
		t.Fatalf("summary fields should be omitted: %v", meta)
	}
	if meta["unlocks"] != 1 || meta["schema_version"] != domain.SchemaVersion {
		t.Fatalf("unexpected frontmatter: %v", meta)
	}
	if !strings.Contains(body, "No app usage recorded.") {
		t.Fatalf("expected empty app section:\n%s", body)
	}
}
