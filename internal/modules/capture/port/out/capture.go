package out

import (
	"context"

	"usagetrail/internal/modules/capture/domain"
	"usagetrail/internal/platform/record"
)

// DraftStore is a single-slot, last-write-wins store. Get returns
// apperrors.ErrNoDraft when the slot is empty.
type DraftStore interface {
	Get(ctx context.Context) (domain.SessionDraft, error)
	Save(ctx context.Context, draft domain.SessionDraft) error
	Clear(ctx context.Context) error
}

// SessionSink receives the records of one finalized session. Either all of
// them are accepted or none is.
type SessionSink interface {
	AddSessions(ctx context.Context, sessions []record.ScrollSession) error
}

// ScrollSessionWriter applies flush writes keyed by package, date and start
// in one transaction. Plain writes replace the stored row; Extend writes add
// their amounts to it.
type ScrollSessionWriter interface {
	WriteScrollSessions(ctx context.Context, writes []domain.Write) error
}

type PackageFilter interface {
	HiddenPackages(ctx context.Context) (map[string]struct{}, error)
}
