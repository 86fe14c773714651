package domain_test

import (
	"time"

	"usagetrail/internal/modules/daily/domain"
	"usagetrail/internal/platform/event"
)

const day = "2026-03-10"

var base = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC).UnixMilli()

func at(offset int64) int64 { return base + offset }

func ev(pkg string, t event.Type, offset int64) event.RawEvent {
	return event.RawEvent{PackageName: pkg, Type: t, TimestampMs: at(offset)}
}

func scrollEv(pkg string, t event.Type, offset, dy int64) event.RawEvent {
	e := ev(pkg, t, offset)
	e.ScrollDeltaY = event.Int64(dy)
	return e
}

func period() domain.Period {
	p, err := domain.NewPeriod(day, time.UTC, 0)
	if err != nil {
		panic(err)
	}
	return p
}
