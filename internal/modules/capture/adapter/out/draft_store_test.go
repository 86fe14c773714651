package out_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	captureout "usagetrail/internal/modules/capture/adapter/out"
	"usagetrail/internal/modules/capture/domain"
	apperrors "usagetrail/internal/platform/errors"
)

func TestFileDraftStoreIsSingleSlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "session-draft.json")
	store := captureout.NewFileDraftStore(path)

	if _, err := store.Get(ctx); !errors.Is(err, apperrors.ErrNoDraft) {
		t.Fatalf("expected no draft, got %v", err)
	}
	first := domain.SessionDraft{PackageName: "a", ScrollAmount: 10, ScrollY: 10, StartTime: 1, LastUpdateTime: 2}
	second := domain.SessionDraft{PackageName: "b", ActivityName: "Main", ScrollAmount: 7, ScrollX: 7, StartTime: 3, LastUpdateTime: 9, Measured: true}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}
	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	second.Version = domain.SchemaVersion
	if got != second {
		t.Fatalf("expected last write to win, got %+v", got)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temporary file must not remain, stat err=%v", err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clearing an empty slot must succeed: %v", err)
	}
	if _, err := store.Get(ctx); !errors.Is(err, apperrors.ErrNoDraft) {
		t.Fatalf("expected no draft after clear, got %v", err)
	}
}

func TestFileDraftStoreRejectsCorruptPayload(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "session-draft.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt draft: %v", err)
	}
	if _, err := captureout.NewFileDraftStore(path).Get(context.Background()); err == nil || errors.Is(err, apperrors.ErrNoDraft) {
		t.Fatalf("expected decode error, got %v", err)
	}
}
