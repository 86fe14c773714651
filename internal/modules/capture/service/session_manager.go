package service

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/go-hclog"

	"usagetrail/internal/modules/capture/domain"
	captureout "usagetrail/internal/modules/capture/port/out"
	"usagetrail/internal/platform/clock"
	apperrors "usagetrail/internal/platform/errors"
	"usagetrail/internal/platform/logging"
	"usagetrail/internal/platform/metrics"
	"usagetrail/internal/platform/record"
	"usagetrail/internal/platform/serial"
)

type SessionManagerOptions struct {
	Location      *time.Location
	DraftDebounce time.Duration
	Scheduler     clock.Scheduler
	Logger        hclog.Logger
	Metrics       *metrics.Metrics
}

// SessionManager owns the live scroll session. Every state change runs on a
// serial executor so events are applied one at a time.
type SessionManager struct {
	exec     *serial.Executor
	drafts   captureout.DraftStore
	sink     captureout.SessionSink
	sched    clock.Scheduler
	loc      *time.Location
	debounce time.Duration
	logger   hclog.Logger
	metrics  *metrics.Metrics

	// Touched only from exec.
	state       domain.Tracking
	pendingSave clock.Cancel
	saveSeq     uint64
}

func NewSessionManager(drafts captureout.DraftStore, sink captureout.SessionSink, opts SessionManagerOptions) *SessionManager {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Scheduler == nil {
		opts.Scheduler = clock.SystemScheduler{}
	}
	if opts.DraftDebounce <= 0 {
		opts.DraftDebounce = time.Second
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	return &SessionManager{
		exec:     serial.New(64),
		drafts:   drafts,
		sink:     sink,
		sched:    opts.Scheduler,
		loc:      opts.Location,
		debounce: opts.DraftDebounce,
		logger:   logging.OrNull(opts.Logger).Named("session"),
		metrics:  opts.Metrics,
	}
}

// StartNewSession moves tracking to pkg. A non-empty session of another
// package is finalized first with APP_SWITCH at t-1.
func (m *SessionManager) StartNewSession(ctx context.Context, pkg, activity string, t int64) error {
	return m.exec.Do(func() {
		if m.state.Active && m.state.PackageName != pkg && m.state.ScrollAmount() != 0 {
			m.finalize(ctx, t-1, record.EndAppSwitch, false)
		}
		if !m.state.Active || m.state.PackageName != pkg {
			m.state = domain.Tracking{
				Active:      true,
				PackageName: pkg,
				StartTime:   t,
				LastUpdate:  t,
			}
		}
		m.state.ActivityName = activity
	})
}

// UpdateScroll adds a delta to the tracked session and reschedules the
// debounced draft save.
func (m *SessionManager) UpdateScroll(ctx context.Context, dx, dy int64, measured bool, t int64) error {
	return m.exec.Do(func() {
		if !m.state.Active {
			m.logger.Warn("scroll update without a tracked app", "dx", dx, "dy", dy)
			return
		}
		m.state.AddScroll(dx, dy, measured, t)
		m.scheduleSave(ctx)
	})
}

// Finalize emits the tracked session ending at endTime. With reset false the
// package and activity stay tracked and accumulation restarts at endTime.
func (m *SessionManager) Finalize(ctx context.Context, endTime int64, reason record.EndReason, reset bool) error {
	return m.exec.Do(func() {
		m.finalize(ctx, endTime, reason, reset)
	})
}

// Recover finalizes a draft left behind by a previous process, ending it at
// its last update time.
func (m *SessionManager) Recover(ctx context.Context) (domain.SessionDraft, bool, error) {
	var (
		draft     domain.SessionDraft
		recovered bool
		loadErr   error
	)
	err := m.exec.Do(func() {
		d, err := m.drafts.Get(ctx)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNoDraft) {
				loadErr = err
			}
			return
		}
		draft = d
		recovered = true
		m.state = d.Tracking()
		m.logger.Info("recovering session draft", "package", d.PackageName, "scroll", d.ScrollAmount)
		m.finalize(ctx, d.LastUpdateTime, record.EndRecoveredDraft, true)
	})
	if err != nil {
		return domain.SessionDraft{}, false, err
	}
	return draft, recovered, loadErr
}

// HandleStop saves the draft synchronously and then finalizes with reason.
func (m *SessionManager) HandleStop(ctx context.Context, reason record.EndReason, endTime int64) error {
	return m.exec.Do(func() {
		if m.state.Trivial() {
			return
		}
		m.cancelPendingSave()
		m.saveDraft(ctx)
		m.finalize(ctx, endTime, reason, true)
	})
}

func (m *SessionManager) State() domain.Tracking {
	var s domain.Tracking
	if err := m.exec.Do(func() { s = m.state }); err != nil {
		return domain.Tracking{}
	}
	return s
}

// Close cancels a pending draft save and stops the executor. The draft
// already on disk is left for Recover.
func (m *SessionManager) Close() {
	_ = m.exec.Go(m.cancelPendingSave)
	m.exec.Close()
}

func (m *SessionManager) finalize(ctx context.Context, endTime int64, reason record.EndReason, reset bool) {
	m.cancelPendingSave()
	if m.state.Trivial() {
		m.clearDraft(ctx)
		if reset {
			m.state = domain.Tracking{}
		}
		return
	}

	records := domain.Split(m.state, endTime, reason, m.loc)
	if err := m.sink.AddSessions(ctx, records); err != nil {
		m.logger.Warn("finalize failed, keeping session as draft", "package", m.state.PackageName, "error", err)
		m.saveDraft(ctx)
		return
	}
	m.metrics.SessionsFinalized.WithLabelValues(string(reason)).Add(float64(len(records)))
	m.clearDraft(ctx)

	if reset {
		m.state = domain.Tracking{}
		return
	}
	if endTime < m.state.StartTime {
		endTime = m.state.StartTime
	}
	m.state = domain.Tracking{
		Active:       true,
		PackageName:  m.state.PackageName,
		ActivityName: m.state.ActivityName,
		StartTime:    endTime,
		LastUpdate:   endTime,
	}
}

func (m *SessionManager) scheduleSave(ctx context.Context) {
	m.cancelPendingSave()
	m.saveSeq++
	seq := m.saveSeq
	m.pendingSave = m.sched.AfterFunc(m.debounce, func() {
		_ = m.exec.Go(func() {
			if seq != m.saveSeq {
				return
			}
			m.pendingSave = nil
			m.saveDraft(context.WithoutCancel(ctx))
		})
	})
}

func (m *SessionManager) cancelPendingSave() {
	m.saveSeq++
	if m.pendingSave != nil {
		m.pendingSave()
		m.pendingSave = nil
	}
}

func (m *SessionManager) saveDraft(ctx context.Context) {
	if m.state.Trivial() {
		return
	}
	if err := m.drafts.Save(ctx, domain.DraftFrom(m.state)); err != nil {
		m.metrics.DraftFailures.Inc()
		m.logger.Warn("save session draft", "package", m.state.PackageName, "error", err)
		return
	}
	m.metrics.DraftSaves.Inc()
}

func (m *SessionManager) clearDraft(ctx context.Context) {
	if err := m.drafts.Clear(ctx); err != nil {
		m.logger.Warn("clear session draft", "error", err)
	}
}
