package dto

import "usagetrail/internal/platform/record"

type DayInput struct {
	Date string
}

type RangeInput struct {
	From string
	To   string
}

type PackageInput struct {
	Package string
	Dates   []string
}

type AppRow struct {
	PackageName       string
	UsageTimeMillis   int64
	ActiveTimeMillis  int64
	AppOpenCount      int
	NotificationCount int
	ScrollAmount      int64
}

type UnlockStats struct {
	Total       int
	Glances     int
	Intentional int
	Compulsive  int
	Open        int
}

type InsightRow struct {
	Key   string
	Value string
}

type DayReport struct {
	Date        string
	Processed   bool
	Summary     record.DeviceSummary
	Apps        []AppRow
	TotalScroll int64
	Unlocks     UnlockStats
	Insights    []InsightRow
}

type PackageDay struct {
	Date              string
	UsageTimeMillis   int64
	ActiveTimeMillis  int64
	AppOpenCount      int
	NotificationCount int
	ScrollAmount      int64
	ScrollSessions    int
}

type PackageReport struct {
	Package string
	Days    []PackageDay
}

type NoteOutput struct {
	Date string
	Path string
}
