package domain

import (
	"sort"
	"time"

	"usagetrail/internal/platform/event"
	"usagetrail/internal/platform/record"
)

// Insights derives the day's insight rows. A key without supporting data
// produces no row.
func Insights(date string, sessions []record.UnlockSession, events []event.RawEvent, hidden Filter, th Thresholds, loc *time.Location) []record.Insight {
	out := []record.Insight{}
	evs := sorted(events)

	if len(sessions) > 0 {
		first := sessions[0].UnlockTimestamp
		last := sessions[len(sessions)-1].UnlockTimestamp
		out = append(out,
			record.Insight{DateString: date, Key: record.InsightFirstUnlockTime, LongValue: record.Int64(first)},
			record.Insight{DateString: date, Key: record.InsightLastUnlockTime, LongValue: record.Int64(last)},
		)
		for _, ev := range evs {
			if ev.Type == event.ActivityResumed && ev.TimestampMs >= first && !hidden.Hidden(ev.PackageName) {
				out = append(out, record.Insight{
					DateString:  date,
					Key:         record.InsightFirstAppUsed,
					StringValue: record.String(ev.PackageName),
					LongValue:   record.Int64(ev.TimestampMs),
				})
				break
			}
		}
	}

	var lastApp, nightOwl *event.RawEvent
	for i := range evs {
		ev := evs[i]
		if ev.Type != event.ActivityResumed || hidden.Hidden(ev.PackageName) {
			continue
		}
		lastApp = &evs[i]
		if time.UnixMilli(ev.TimestampMs).In(loc).Hour() < th.NightOwlEndHour {
			nightOwl = &evs[i]
		}
	}
	if lastApp != nil {
		out = append(out, record.Insight{DateString: date, Key: record.InsightLastAppUsed, StringValue: record.String(lastApp.PackageName), LongValue: record.Int64(lastApp.TimestampMs)})
	}
	if nightOwl != nil {
		out = append(out, record.Insight{DateString: date, Key: record.InsightNightOwlLastApp, StringValue: record.String(nightOwl.PackageName), LongValue: record.Int64(nightOwl.TimestampMs)})
	}

	if len(sessions) > 0 {
		hours := map[int]int{}
		for _, s := range sessions {
			hours[time.UnixMilli(s.UnlockTimestamp).In(loc).Hour()]++
		}
		busiest, count := -1, 0
		for h := 0; h < 24; h++ {
			if hours[h] > count {
				busiest, count = h, hours[h]
			}
		}
		out = append(out, record.Insight{DateString: date, Key: record.InsightBusiestUnlockHour, LongValue: record.Int64(int64(busiest)), DoubleValue: record.Float64(float64(count))})
	}

	compulsive := map[string]int{}
	triggered := map[string]int{}
	for _, s := range sessions {
		if s.IsCompulsive && s.FirstAppPackageName != "" {
			compulsive[s.FirstAppPackageName]++
		}
		if s.TriggeringNotificationPackageName != "" {
			triggered[s.TriggeringNotificationPackageName]++
		}
	}
	if pkg, n, ok := mode(compulsive); ok {
		out = append(out, record.Insight{DateString: date, Key: record.InsightTopCompulsiveApp, StringValue: record.String(pkg), LongValue: record.Int64(int64(n))})
	}
	if pkg, n, ok := mode(triggered); ok {
		out = append(out, record.Insight{DateString: date, Key: record.InsightTopNotificationUnlockApp, StringValue: record.String(pkg), LongValue: record.Int64(int64(n))})
	}
	return out
}

// mode returns the most frequent key; ties go to the lexically first.
func mode(counts map[string]int) (string, int, bool) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best, n := "", 0
	for _, k := range keys {
		if counts[k] > n {
			best, n = k, counts[k]
		}
	}
	return best, n, n > 0
}
