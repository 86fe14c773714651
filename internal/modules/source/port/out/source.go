package out

import (
	"context"

	"usagetrail/internal/modules/source/domain"
	"usagetrail/internal/platform/event"
)

type EventReader interface {
	ReadEvents(ctx context.Context, window domain.Window) (domain.Batch, error)
	Describe(ctx context.Context) (domain.Metadata, error)
}

// EventLog is the append-only local event store. Appending an event that is
// already stored is a no-op.
type EventLog interface {
	EventReader
	Append(ctx context.Context, events []event.RawEvent) (int, error)
}

type FileDecoder interface {
	DecodeFile(ctx context.Context, path string) (domain.Batch, error)
}

// Follower streams events appended to a file until ctx is done.
type Follower interface {
	Follow(ctx context.Context, path string, fromStart bool) (<-chan event.RawEvent, error)
}
