package state

import "github.com/CodexForgeBR/trainwatch/internal/trainlog"

// SchemaVersion is written into every saved RunState.
const SchemaVersion = 1

// RunState is the persisted state of one trainwatch run.
// Written to <state dir>/current-state.json.
type RunState struct {
	SchemaVersion    int                `json:"schema_version"`
	RunID            string             `json:"run_id"`
	StartedAt        string             `json:"started_at"`
	LastUpdated      string             `json:"last_updated"`
	Status           string             `json:"status"`
	Stage            string             `json:"stage"`
	FurthestStage    string             `json:"furthest_stage"`
	LogFile          string             `json:"log_file"`
	QueueFile        string             `json:"queue_file"`
	QueueFileHash    string             `json:"queue_file_hash"`
	CompletedClasses int                `json:"completed_classes"`
	TotalClasses     int                `json:"total_classes"`
	LastSnapshot     *trainlog.Snapshot `json:"last_snapshot,omitempty"`
	LastSnapshotAt   string             `json:"last_snapshot_at,omitempty"`
	LastError        string             `json:"last_error,omitempty"`
	Split            *SplitState        `json:"split,omitempty"`
}

// SplitState records how the dataset was split.
type SplitState struct {
	Seed       int64          `json:"seed"`
	TrainRatio float64        `json:"train_ratio"`
	TestRatio  float64        `json:"test_ratio"`
	Counts     map[string]int `json:"counts"`
}

// Status constants
const (
	StatusInProgress  = "IN_PROGRESS"
	StatusInterrupted = "INTERRUPTED"
	StatusComplete    = "COMPLETE"
)
