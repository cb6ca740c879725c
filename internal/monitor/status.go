package monitor

import (
	"fmt"
	"time"

	"github.com/CodexForgeBR/trainwatch/internal/logstore"
	"github.com/CodexForgeBR/trainwatch/internal/trainlog"
)

// State is the position of a training run in the class-sequencing machine.
type State int

const (
	// Idle: no snapshot has been parsed yet.
	Idle State = iota
	// Active: a snapshot is present and its class is still training.
	Active
	// ClassComplete: the latest snapshot carried a completion marker and more
	// classes remain.
	ClassComplete
	// AllComplete: every queued class has finished. Terminal.
	AllComplete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case ClassComplete:
		return "class_complete"
	case AllComplete:
		return "all_complete"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Severity ranks a status line for display.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarn
	SeverityError
	SeveritySuccess
)

// Status is a copy of the watcher's state at one instant.
type Status struct {
	State            State
	Snapshot         *trainlog.Snapshot
	LastUpdate       time.Time
	IsStale          bool
	CompletedClasses int
	TotalClasses     int
	// Err is the soft error from the latest poll, nil after a clean one.
	Err error
}

// CurrentClass is the 1-based index of the class being trained.
func (s Status) CurrentClass() int {
	c := s.CompletedClasses + 1
	if s.TotalClasses > 0 && c > s.TotalClasses {
		return s.TotalClasses
	}
	return c
}

// ErrKind classifies Err; zero when Err is nil or not a log read error.
func (s Status) ErrKind() logstore.Kind {
	return logstore.KindOf(s.Err)
}

// Line renders the one-line status a viewer should show at now.
func (s Status) Line(now time.Time) (Severity, string) {
	if s.State == AllComplete {
		return SeveritySuccess, "✓ Training Completed - Proceed to Generate"
	}

	if s.Err != nil {
		switch s.ErrKind() {
		case logstore.KindEmpty:
			if s.CompletedClasses > 0 {
				return SeverityInfo, fmt.Sprintf("Training completed for class %d. Moving on to next class...", s.CompletedClasses)
			}
			return SeverityInfo, "Waiting for training to start... (log is empty)"
		case logstore.KindNotFound:
			return SeverityInfo, "Waiting for training to start... (log not created yet)"
		default:
			return SeverityError, fmt.Sprintf("Training log error: %v", s.Err)
		}
	}

	if s.Snapshot == nil {
		return SeverityInfo, "Waiting for training to start..."
	}

	if s.IsStale {
		ago := int(now.Sub(s.LastUpdate).Seconds())
		return SeverityWarn, fmt.Sprintf("Training appears to have stopped. Last update: %ds ago", ago)
	}

	snap := s.Snapshot
	return SeverityInfo, fmt.Sprintf("Class %d/%d | Step %d/%d (%d%%) | Elapsed %s | Remaining %s | Loss %.4f (avg %.4f)",
		s.CurrentClass(), s.TotalClasses,
		snap.CurrentStep, snap.TotalSteps, snap.ProgressPercent,
		snap.TimeElapsed, orDash(snap.TimeRemaining),
		snap.CurrentLoss, snap.AverageLoss)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
