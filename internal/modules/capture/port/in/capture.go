package in

import (
	"context"

	"usagetrail/internal/modules/capture/dto"
	"usagetrail/internal/platform/event"
	"usagetrail/internal/platform/record"
)

type Usecase interface {
	Start(ctx context.Context) error
	Recover(ctx context.Context) (dto.RecoverOutput, error)
	Handle(ctx context.Context, ev event.RawEvent) error
	Run(ctx context.Context, events <-chan event.RawEvent) (dto.RunOutput, error)
	Stop(ctx context.Context, reason record.EndReason) error
	State(ctx context.Context) (dto.StateOutput, error)
	Draft(ctx context.Context) (dto.DraftOutput, error)
}
