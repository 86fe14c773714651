package in

import (
	"context"

	sourcedto "usagetrail/internal/modules/source/dto"
	sourcein "usagetrail/internal/modules/source/port/in"
	"usagetrail/internal/platform/event"
)

type CLIHandler struct {
	usecase sourcein.Usecase
}

func NewCLIHandler(usecase sourcein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Ingest(ctx context.Context, path string) (sourcedto.IngestOutput, error) {
	return h.usecase.Ingest(ctx, sourcedto.IngestInput{Path: path})
}

func (h CLIHandler) Check(ctx context.Context) (sourcedto.CheckOutput, error) {
	return h.usecase.Check(ctx)
}

func (h CLIHandler) Follow(ctx context.Context, path string, fromStart bool) (<-chan event.RawEvent, error) {
	return h.usecase.Follow(ctx, sourcedto.FollowInput{Path: path, FromStart: fromStart})
}
