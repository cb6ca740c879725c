package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/CodexForgeBR/trainwatch/internal/queue"
)

const stateFileName = "current-state.json"

// ErrNoState is returned by Load when no run has been saved yet.
var ErrNoState = errors.New("no saved run state")

// NewRunState starts a fresh run with a random ID.
func NewRunState(logFile, queueFile string) *RunState {
	now := time.Now().UTC().Format(time.RFC3339)
	return &RunState{
		SchemaVersion: SchemaVersion,
		RunID:         uuid.NewString(),
		StartedAt:     now,
		LastUpdated:   now,
		Status:        StatusInProgress,
		Stage:         "setup",
		FurthestStage: "setup",
		LogFile:       logFile,
		QueueFile:     queueFile,
	}
}

// Path returns the state file location inside dir.
func Path(dir string) string {
	return filepath.Join(dir, stateFileName)
}

// Save persists the run state as indented JSON, stamping LastUpdated.
// The file is written to a temporary name and renamed so readers never see
// a partial document.
func Save(s *RunState, dir string) error {
	s.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	path := Path(dir)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// Load reads the run state from dir. It returns ErrNoState when none exists.
func Load(dir string) (*RunState, error) {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoState
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var s RunState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	if s.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("unsupported state schema version %d", s.SchemaVersion)
	}
	return &s, nil
}

// Validate checks that the queue file the run was started with still exists
// and has not been replaced.
func Validate(s *RunState, queueFile string) error {
	if queueFile == "" {
		return nil
	}
	if _, err := os.Stat(queueFile); err != nil {
		return fmt.Errorf("queue file not found: %w", err)
	}

	currentHash, err := queue.HashFile(queueFile)
	if err != nil {
		return fmt.Errorf("hash queue file: %w", err)
	}
	if s.QueueFileHash != "" && s.QueueFileHash != currentHash {
		return fmt.Errorf("queue file changed: expected hash %s, got %s", s.QueueFileHash, currentHash)
	}
	return nil
}

// Remove deletes the saved state, if any.
func Remove(dir string) error {
	if err := os.Remove(Path(dir)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove state file: %w", err)
	}
	return nil
}
