package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"usagetrail/internal/modules/capture/domain"
	"usagetrail/internal/platform/clock"
	apperrors "usagetrail/internal/platform/errors"
	"usagetrail/internal/platform/record"
)

type manualTask struct {
	fn        func()
	cancelled bool
	fired     bool
}

// manualScheduler fires callbacks only when the test asks it to.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

func (s *manualScheduler) AfterFunc(_ time.Duration, fn func()) clock.Cancel {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := &manualTask{fn: fn}
	s.tasks = append(s.tasks, task)
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if task.fired || task.cancelled {
			return false
		}
		task.cancelled = true
		return true
	}
}

func (s *manualScheduler) fire() int {
	s.mu.Lock()
	pending := []*manualTask{}
	for _, task := range s.tasks {
		if !task.fired && !task.cancelled {
			task.fired = true
			pending = append(pending, task)
		}
	}
	s.mu.Unlock()
	for _, task := range pending {
		task.fn()
	}
	return len(pending)
}

type memoryDrafts struct {
	mu      sync.Mutex
	current *domain.SessionDraft
	saves   []domain.SessionDraft
	clears  int
	saveErr error
}

func (d *memoryDrafts) Get(context.Context) (domain.SessionDraft, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return domain.SessionDraft{}, apperrors.ErrNoDraft
	}
	return *d.current, nil
}

func (d *memoryDrafts) Save(_ context.Context, draft domain.SessionDraft) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.saveErr != nil {
		return d.saveErr
	}
	d.saves = append(d.saves, draft)
	d.current = &draft
	return nil
}

func (d *memoryDrafts) Clear(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clears++
	d.current = nil
	return nil
}

func (d *memoryDrafts) snapshot() ([]domain.SessionDraft, *domain.SessionDraft) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.SessionDraft(nil), d.saves...), d.current
}

type recordingSink struct {
	mu       sync.Mutex
	sessions []record.ScrollSession
	err      error
	fail     int
}

func (s *recordingSink) AddSessions(_ context.Context, sessions []record.ScrollSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.fail > 0 {
		s.fail--
		return apperrors.ErrAggregatorClosed
	}
	s.sessions = append(s.sessions, sessions...)
	return nil
}

type recordingWriter struct {
	mu      sync.Mutex
	batches [][]domain.Write
	rows    map[string]record.ScrollSession
	fail    int
}

var errWrite = errors.New("disk full")

// WriteScrollSessions mirrors the scroll session table: extends add to the
// stored row, everything else replaces it.
func (w *recordingWriter) WriteScrollSessions(_ context.Context, writes []domain.Write) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail > 0 {
		w.fail--
		return errWrite
	}
	if w.rows == nil {
		w.rows = map[string]record.ScrollSession{}
	}
	w.batches = append(w.batches, append([]domain.Write(nil), writes...))
	for _, wr := range writes {
		s := wr.Session
		row, ok := w.rows[key(s)]
		if !wr.Extend || !ok {
			w.rows[key(s)] = s
			continue
		}
		row.ScrollAmountX += s.ScrollAmountX
		row.ScrollAmountY += s.ScrollAmountY
		row.ScrollAmount += s.ScrollAmount
		if s.SessionEnd >= row.SessionEnd {
			row.SessionEnd, row.EndReason = s.SessionEnd, s.EndReason
		}
		row.DataType = row.DataType.Merge(s.DataType)
		w.rows[key(s)] = row
	}
	return nil
}

func key(s record.ScrollSession) string {
	return s.PackageName + "|" + s.DateString + "|" + time.UnixMilli(s.SessionStart).UTC().Format(time.RFC3339Nano)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }
