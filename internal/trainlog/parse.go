// Package trainlog interprets the plain-text log a training run appends to.
//
// Parse is a pure function over the full log text. It scans from the newest
// line backward and derives a Snapshot of progress, loss statistics,
// checkpoint bookkeeping and completion.
package trainlog

import (
	"strconv"
	"strings"
)

// MaxRecentLosses caps how many progress lines contribute to RecentLosses.
const MaxRecentLosses = 5

// None is reported for checkpoint fields that have not appeared in the log.
const None = "None"

// Snapshot is the parsed state of one class's training run.
type Snapshot struct {
	ProgressPercent int       `json:"progress_percent" yaml:"progress_percent"`
	CurrentStep     int       `json:"current_step" yaml:"current_step"`
	TotalSteps      int       `json:"total_steps" yaml:"total_steps"`
	TimeElapsed     string    `json:"time_elapsed" yaml:"time_elapsed"`
	TimeRemaining   string    `json:"time_remaining" yaml:"time_remaining"`
	CurrentLoss     float64   `json:"current_loss" yaml:"current_loss"`
	RecentLosses    []float64 `json:"recent_losses" yaml:"recent_losses"`
	AverageLoss     float64   `json:"average_loss" yaml:"average_loss"`
	LearningRate    float64   `json:"learning_rate" yaml:"learning_rate"`
	LastCheckpoint  string    `json:"last_checkpoint" yaml:"last_checkpoint"`
	LastStateSave   string    `json:"last_state_save" yaml:"last_state_save"`
	IsComplete      bool      `json:"is_complete" yaml:"is_complete"`
	// CompletedClass is the class named by the completion marker, if any.
	CompletedClass string `json:"completed_class,omitempty" yaml:"completed_class,omitempty"`
}

// Parse derives a Snapshot from the full text of a training log.
//
// It returns (nil, false) when no progress line is present: the run has not
// reported yet, which is different from a run at 0%.
//
// RecentLosses holds up to MaxRecentLosses values in the order they were
// logged (oldest first). The completion marker is searched over the whole
// log, not only the lines scanned for losses.
func Parse(text string) (*Snapshot, bool) {
	lines := splitLines(text)

	var (
		snap       Snapshot
		found      bool
		losses     []float64 // newest first
		checkpoint string
		saved      string
	)

	for i := len(lines) - 1; i >= 0; i-- {
		collecting := len(losses) < MaxRecentLosses
		if !collecting && snap.IsComplete {
			break
		}
		line := lines[i]

		if !snap.IsComplete {
			if m := completionPattern.FindStringSubmatch(line); m != nil {
				snap.IsComplete = true
				snap.CompletedClass = m[1]
			}
		}
		if !collecting {
			continue
		}

		if m := progressPattern.FindStringSubmatch(line); m != nil {
			loss, _ := strconv.ParseFloat(m[7], 64)
			if !found {
				found = true
				snap.ProgressPercent, _ = strconv.Atoi(m[1])
				snap.CurrentStep, _ = strconv.Atoi(m[2])
				snap.TotalSteps, _ = strconv.Atoi(m[3])
				snap.TimeElapsed = strings.TrimSpace(m[4])
				snap.TimeRemaining = strings.TrimSpace(m[5])
				snap.LearningRate, _ = strconv.ParseFloat(m[6], 64)
				snap.CurrentLoss = loss
			}
			losses = append(losses, loss)
		}

		if checkpoint == "" {
			if m := checkpointPattern.FindStringSubmatch(line); m != nil {
				checkpoint = m[1]
			}
		}
		if saved == "" {
			if m := statePattern.FindStringSubmatch(line); m != nil {
				saved = m[1]
			}
		}
	}

	if !found {
		return nil, false
	}

	snap.RecentLosses = make([]float64, len(losses))
	for i, l := range losses {
		snap.RecentLosses[len(losses)-1-i] = l
	}
	snap.AverageLoss = mean(losses)
	snap.LastCheckpoint = orNone(checkpoint)
	snap.LastStateSave = orNone(saved)
	return &snap, true
}

// splitLines breaks text on \n and on bare \r, since progress bars redraw
// in place with carriage returns.
func splitLines(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r'
	})
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func orNone(s string) string {
	if s == "" {
		return None
	}
	return s
}
