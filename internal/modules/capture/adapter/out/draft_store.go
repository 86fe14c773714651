package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"usagetrail/internal/modules/capture/domain"
	captureout "usagetrail/internal/modules/capture/port/out"
	apperrors "usagetrail/internal/platform/errors"
)

type FileDraftStore struct {
	path string
}

func NewFileDraftStore(path string) captureout.DraftStore {
	return &FileDraftStore{path: path}
}

func (s *FileDraftStore) Save(_ context.Context, draft domain.SessionDraft) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create draft dir: %w", err)
	}
	if draft.Version == 0 {
		draft.Version = domain.SchemaVersion
	}
	payload, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session draft: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write session draft: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session draft: %w", err)
	}
	return nil
}

func (s *FileDraftStore) Get(_ context.Context) (domain.SessionDraft, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.SessionDraft{}, apperrors.ErrNoDraft
		}
		return domain.SessionDraft{}, fmt.Errorf("read session draft: %w", err)
	}
	draft := domain.SessionDraft{}
	if err := json.Unmarshal(payload, &draft); err != nil {
		return domain.SessionDraft{}, fmt.Errorf("decode session draft: %w", err)
	}
	if draft.PackageName == "" || draft.ScrollAmount <= 0 {
		return domain.SessionDraft{}, apperrors.ErrNoDraft
	}
	return draft, nil
}

func (s *FileDraftStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("clear session draft: %w", err)
	}
	return nil
}
