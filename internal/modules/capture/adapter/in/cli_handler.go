package in

import (
	"context"

	capturedto "usagetrail/internal/modules/capture/dto"
	capturein "usagetrail/internal/modules/capture/port/in"
	"usagetrail/internal/platform/event"
	"usagetrail/internal/platform/record"
)

type CLIHandler struct {
	usecase capturein.Usecase
}

func NewCLIHandler(usecase capturein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context) error {
	return h.usecase.Start(ctx)
}

func (h CLIHandler) Recover(ctx context.Context) (capturedto.RecoverOutput, error) {
	return h.usecase.Recover(ctx)
}

func (h CLIHandler) Run(ctx context.Context, events <-chan event.RawEvent) (capturedto.RunOutput, error) {
	return h.usecase.Run(ctx, events)
}

func (h CLIHandler) Stop(ctx context.Context) error {
	return h.usecase.Stop(ctx, record.EndServiceStopped)
}

func (h CLIHandler) State(ctx context.Context) (capturedto.StateOutput, error) {
	return h.usecase.State(ctx)
}

func (h CLIHandler) Draft(ctx context.Context) (capturedto.DraftOutput, error) {
	return h.usecase.Draft(ctx)
}
