package usecase

import (
	"context"
	"fmt"
	"strings"

	"usagetrail/internal/modules/source/domain"
	sourcedto "usagetrail/internal/modules/source/dto"
	sourcein "usagetrail/internal/modules/source/port/in"
	"usagetrail/internal/modules/source/service"
	apperrors "usagetrail/internal/platform/errors"
	"usagetrail/internal/platform/event"
)

type Interactor struct {
	svc *service.SourceService
}

func NewInteractor(svc *service.SourceService) sourcein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Events(ctx context.Context, input sourcedto.WindowInput) (sourcedto.EventsOutput, error) {
	window := domain.Window{Start: input.Start, End: input.End}
	if err := window.Validate(); err != nil {
		return sourcedto.EventsOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	batch, err := i.svc.Events(ctx, window)
	if err != nil {
		return sourcedto.EventsOutput{}, err
	}
	return sourcedto.EventsOutput{Events: batch.Events, Skipped: batch.Skipped}, nil
}

func (i *Interactor) Ingest(ctx context.Context, input sourcedto.IngestInput) (sourcedto.IngestOutput, error) {
	if strings.TrimSpace(input.Path) == "" {
		return sourcedto.IngestOutput{}, fmt.Errorf("%w: ingest path is required", apperrors.ErrInvalidInput)
	}
	result, err := i.svc.Ingest(ctx, input.Path)
	if err != nil {
		return sourcedto.IngestOutput{}, err
	}
	return sourcedto.IngestOutput{Read: result.Read, Appended: result.Appended, Skipped: result.Skipped}, nil
}

func (i *Interactor) Check(ctx context.Context) (sourcedto.CheckOutput, error) {
	meta, err := i.svc.Describe(ctx)
	if err != nil {
		return sourcedto.CheckOutput{}, err
	}
	return sourcedto.CheckOutput{Kind: string(meta.Kind), Name: meta.Name, Version: meta.Version}, nil
}

func (i *Interactor) Follow(ctx context.Context, input sourcedto.FollowInput) (<-chan event.RawEvent, error) {
	if strings.TrimSpace(input.Path) == "" {
		return nil, fmt.Errorf("%w: follow path is required", apperrors.ErrInvalidInput)
	}
	return i.svc.Follow(ctx, input.Path, input.FromStart)
}
