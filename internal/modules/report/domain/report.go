package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"usagetrail/internal/platform/record"
)

const SchemaVersion = 1

// DayReport is everything stored for one local date. Summary is nil when the
// date has not been processed.
type DayReport struct {
	Date           string
	Summary        *record.DeviceSummary
	AppUsage       []record.AppUsage
	ScrollSessions []record.ScrollSession
	UnlockSessions []record.UnlockSession
	Insights       []record.Insight
}

func (r DayReport) Empty() bool {
	return r.Summary == nil && len(r.AppUsage) == 0 && len(r.ScrollSessions) == 0 &&
		len(r.UnlockSessions) == 0 && len(r.Insights) == 0
}

// ScrollByPackage sums scroll amounts per package.
func (r DayReport) ScrollByPackage() map[string]int64 {
	out := map[string]int64{}
	for _, s := range r.ScrollSessions {
		out[s.PackageName] += s.ScrollAmount
	}
	return out
}

func (r DayReport) TotalScroll() int64 {
	var sum int64
	for _, s := range r.ScrollSessions {
		sum += s.ScrollAmount
	}
	return sum
}

// TopApps returns up to n usage rows by descending usage time, ties by name.
func (r DayReport) TopApps(n int) []record.AppUsage {
	rows := append([]record.AppUsage(nil), r.AppUsage...)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].UsageTimeMillis != rows[j].UsageTimeMillis {
			return rows[i].UsageTimeMillis > rows[j].UsageTimeMillis
		}
		return rows[i].PackageName < rows[j].PackageName
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

type UnlockStats struct {
	Total       int
	Glances     int
	Intentional int
	Compulsive  int
	Open        int
}

func (r DayReport) UnlockStats() UnlockStats {
	stats := UnlockStats{Total: len(r.UnlockSessions)}
	for _, s := range r.UnlockSessions {
		switch {
		case s.Open():
			stats.Open++
		case s.SessionType == record.SessionGlance:
			stats.Glances++
		default:
			stats.Intentional++
		}
		if s.IsCompulsive {
			stats.Compulsive++
		}
	}
	return stats
}

func (r DayReport) Insight(key record.InsightKey) (record.Insight, bool) {
	for _, in := range r.Insights {
		if in.Key == key {
			return in, true
		}
	}
	return record.Insight{}, false
}

// PackageDay is one package's figures for one date. Dates without data are
// reported with zero values.
type PackageDay struct {
	Date              string
	UsageTimeMillis   int64
	ActiveTimeMillis  int64
	AppOpenCount      int
	NotificationCount int
	ScrollAmount      int64
	ScrollSessions    int
}

// FormatInsight renders an insight value for people. Timestamps are shown as
// local clock times.
func FormatInsight(in record.Insight, loc *time.Location) string {
	clock := func() string {
		if in.LongValue == nil {
			return ""
		}
		return time.UnixMilli(*in.LongValue).In(loc).Format("15:04:05")
	}
	switch in.Key {
	case record.InsightFirstUnlockTime, record.InsightLastUnlockTime:
		return clock()
	case record.InsightFirstAppUsed, record.InsightLastAppUsed, record.InsightNightOwlLastApp:
		if in.StringValue == nil {
			return ""
		}
		return fmt.Sprintf("%s at %s", *in.StringValue, clock())
	case record.InsightBusiestUnlockHour:
		if in.LongValue == nil {
			return ""
		}
		count := 0.0
		if in.DoubleValue != nil {
			count = *in.DoubleValue
		}
		return fmt.Sprintf("%02d:00 (%.0f unlocks)", *in.LongValue, count)
	default:
		parts := []string{}
		if in.StringValue != nil {
			parts = append(parts, *in.StringValue)
		}
		if in.LongValue != nil {
			parts = append(parts, fmt.Sprintf("(%d)", *in.LongValue))
		}
		return strings.Join(parts, " ")
	}
}
