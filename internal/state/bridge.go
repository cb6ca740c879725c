package state

import (
	"fmt"
	"time"

	"github.com/CodexForgeBR/trainwatch/internal/monitor"
	"github.com/CodexForgeBR/trainwatch/internal/workflow"
)

// RecordWorkflow copies the workflow position into the run state.
func (s *RunState) RecordWorkflow(ws workflow.State) {
	s.Stage = ws.CurrentStage.String()
	s.FurthestStage = ws.FurthestStage.String()
	s.CompletedClasses = ws.CompletedClasses
	s.TotalClasses = ws.TotalClasses
	switch {
	case ws.CurrentStage == workflow.StageComplete:
		s.Status = StatusComplete
	case s.Status == StatusComplete:
		s.Status = StatusInProgress
	}
}

// Workflow rebuilds the workflow position saved in the run state.
func (s *RunState) Workflow() (workflow.State, error) {
	current, err := workflow.ParseStage(s.Stage)
	if err != nil {
		return workflow.State{}, fmt.Errorf("saved stage: %w", err)
	}
	furthest := current
	if s.FurthestStage != "" {
		if furthest, err = workflow.ParseStage(s.FurthestStage); err != nil {
			return workflow.State{}, fmt.Errorf("saved furthest stage: %w", err)
		}
	}
	return workflow.State{
		CurrentStage:     current,
		FurthestStage:    furthest,
		CompletedClasses: s.CompletedClasses,
		TotalClasses:     s.TotalClasses,
	}, nil
}

// RecordStatus copies the latest training snapshot and soft error.
func (s *RunState) RecordStatus(st monitor.Status) {
	if st.Snapshot != nil {
		s.LastSnapshot = st.Snapshot
		s.LastSnapshotAt = st.LastUpdate.UTC().Format(time.RFC3339)
	}
	s.LastError = ""
	if st.Err != nil {
		s.LastError = st.Err.Error()
	}
}
