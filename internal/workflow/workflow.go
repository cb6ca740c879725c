// Package workflow holds the user-visible position in the four-stage
// dataset → train → generate → complete pipeline.
//
// A Workflow is owned explicitly by whoever drives the run and handed to the
// components that move it forward; it is never a package-level global.
package workflow

import (
	"fmt"
	"strings"
	"sync"
)

// Stage is one step of the pipeline.
type Stage int

const (
	StageSetup Stage = iota
	StageTrain
	StageGenerate
	StageComplete
)

var stageNames = [...]string{"setup", "train", "generate", "complete"}

// String returns the stage's lowercase name.
func (s Stage) String() string {
	if s < StageSetup || s > StageComplete {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// ParseStage converts a stage name back into a Stage.
func ParseStage(name string) (Stage, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range stageNames {
		if s == n {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q (want one of %s)", name, strings.Join(stageNames[:], ", "))
}

// State is a point-in-time copy of a Workflow.
type State struct {
	CurrentStage     Stage
	FurthestStage    Stage
	CompletedClasses int
	TotalClasses     int
}

// Finished reports whether every queued class has been trained.
func (s State) Finished() bool {
	return s.TotalClasses > 0 && s.CompletedClasses >= s.TotalClasses
}

// Workflow is safe for concurrent use.
type Workflow struct {
	mu       sync.Mutex
	state    State
	onChange func(State)
}

// New returns a workflow at the setup stage.
func New() *Workflow {
	return &Workflow{}
}

// Restore returns a workflow resumed from a persisted State.
func Restore(s State) *Workflow {
	if s.FurthestStage < s.CurrentStage {
		s.FurthestStage = s.CurrentStage
	}
	return &Workflow{state: s}
}

// OnChange registers fn to receive every state change. fn runs without the
// workflow lock held.
func (w *Workflow) OnChange(fn func(State)) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

// State returns a copy of the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Stage returns the current stage.
func (w *Workflow) Stage() Stage {
	return w.State().CurrentStage
}

// SetTotalClasses records how many classes the training queue holds.
// CompletedClasses is clamped so it never exceeds the new total.
func (w *Workflow) SetTotalClasses(n int) {
	w.mutate(func(s *State) {
		if n < 0 {
			n = 0
		}
		s.TotalClasses = n
		if n > 0 && s.CompletedClasses > n {
			s.CompletedClasses = n
		}
	})
}

// AdvanceStage moves to the next stage. It is a no-op at StageComplete.
func (w *Workflow) AdvanceStage() {
	w.mutate(func(s *State) {
		if s.CurrentStage >= StageComplete {
			return
		}
		s.CurrentStage++
		if s.CurrentStage > s.FurthestStage {
			s.FurthestStage = s.CurrentStage
		}
	})
}

// SetStage revisits a stage that has already been reached.
func (w *Workflow) SetStage(stage Stage) error {
	var err error
	w.mutate(func(s *State) {
		if stage < StageSetup || stage > s.FurthestStage {
			err = fmt.Errorf("stage %s not reached yet (furthest: %s)", stage, s.FurthestStage)
			return
		}
		s.CurrentStage = stage
	})
	return err
}

// CompleteClass records one finished class. The count is monotonic and,
// once the total is known, never exceeds it.
func (w *Workflow) CompleteClass() {
	w.mutate(func(s *State) {
		if s.TotalClasses > 0 && s.CompletedClasses >= s.TotalClasses {
			return
		}
		s.CompletedClasses++
	})
}

// Reset returns to the setup stage with no classes completed.
func (w *Workflow) Reset() {
	w.mutate(func(s *State) {
		*s = State{TotalClasses: s.TotalClasses}
	})
}

func (w *Workflow) mutate(fn func(*State)) {
	w.mu.Lock()
	before := w.state
	fn(&w.state)
	after := w.state
	notify := w.onChange
	w.mu.Unlock()

	if notify != nil && before != after {
		notify(after)
	}
}
