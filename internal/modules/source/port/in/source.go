package in

import (
	"context"

	"usagetrail/internal/modules/source/dto"
	"usagetrail/internal/platform/event"
)

type Usecase interface {
	Events(ctx context.Context, input dto.WindowInput) (dto.EventsOutput, error)
	Ingest(ctx context.Context, input dto.IngestInput) (dto.IngestOutput, error)
	Check(ctx context.Context) (dto.CheckOutput, error)
	Follow(ctx context.Context, input dto.FollowInput) (<-chan event.RawEvent, error)
}
