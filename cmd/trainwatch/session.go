package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/CodexForgeBR/trainwatch/internal/exitcode"
	"github.com/CodexForgeBR/trainwatch/internal/logging"
	"github.com/CodexForgeBR/trainwatch/internal/notification"
	"github.com/CodexForgeBR/trainwatch/internal/state"
)

// session serializes updates to the saved run. Watch callbacks arrive from
// scheduler goroutines, so every mutation goes through update.
type session struct {
	mu  sync.Mutex
	rs  *state.RunState
	dir string
}

func newSession(rs *state.RunState, dir string) *session {
	return &session{rs: rs, dir: dir}
}

// update applies fn to the run state and saves it. A failed save is logged
// and retried on the next update.
func (s *session) update(fn func(rs *state.RunState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		fn(s.rs)
	}
	if err := state.Save(s.rs, s.dir); err != nil {
		logging.Warn(fmt.Sprintf("Failed to save state: %v", err))
	}
}

// loadExisting returns the saved run, or an exitcode.NoState error.
func (a *app) loadExisting() (*state.RunState, error) {
	rs, err := state.Load(a.cfg.StateDir)
	if errors.Is(err, state.ErrNoState) {
		return nil, &exitcode.ExitError{
			Code: exitcode.NoState,
			Err:  fmt.Errorf("no saved run in %s", a.cfg.StateDir),
		}
	}
	return rs, err
}

// loadOrNew returns the saved run, or a fresh one when none exists.
func (a *app) loadOrNew() (*state.RunState, bool, error) {
	rs, err := state.Load(a.cfg.StateDir)
	switch {
	case errors.Is(err, state.ErrNoState):
		return state.NewRunState(a.cfg.LogFile, a.cfg.QueueFile), true, nil
	case err != nil:
		return nil, false, err
	default:
		return rs, false, nil
	}
}

// runNotifier stamps events with the project and run before sending.
type runNotifier struct {
	sender  *notification.Sender
	project string
	runID   string
}

func (a *app) notifier(runID string) *runNotifier {
	project := "trainwatch"
	if wd, err := os.Getwd(); err == nil {
		project = filepath.Base(wd)
	}
	return &runNotifier{
		sender: &notification.Sender{
			Webhook: a.cfg.NotifyWebhook,
			Channel: a.cfg.NotifyChannel,
			ChatID:  a.cfg.NotifyChatID,
		},
		project: project,
		runID:   runID,
	}
}

func (n *runNotifier) notify(e notification.Event) {
	if !n.sender.Enabled() {
		return
	}
	e.Project = n.project
	e.RunID = n.runID
	n.sender.Notify(e)
}
