package dto

import (
	"time"

	"usagetrail/internal/platform/event"
)

type WindowInput struct {
	Start time.Time
	End   time.Time
}

type EventsOutput struct {
	Events  []event.RawEvent
	Skipped int
}

type IngestInput struct {
	Path string
}

type IngestOutput struct {
	Read     int
	Appended int
	Skipped  int
}

type CheckOutput struct {
	Kind    string
	Name    string
	Version string
}

type FollowInput struct {
	Path      string
	FromStart bool
}
