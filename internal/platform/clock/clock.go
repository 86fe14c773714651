package clock

import "time"

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Cancel stops a scheduled callback. It reports whether the callback was
// stopped before it ran.
type Cancel func() bool

// Scheduler runs a callback once after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Cancel
}

type SystemScheduler struct{}

func (SystemScheduler) AfterFunc(d time.Duration, fn func()) Cancel {
	timer := time.AfterFunc(d, fn)
	return timer.Stop
}
