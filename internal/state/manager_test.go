package state

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodexForgeBR/trainwatch/internal/logstore"
	"github.com/CodexForgeBR/trainwatch/internal/monitor"
	"github.com/CodexForgeBR/trainwatch/internal/queue"
	"github.com/CodexForgeBR/trainwatch/internal/trainlog"
	"github.com/CodexForgeBR/trainwatch/internal/workflow"
)

func writeQueueFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "queue.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewRunState(t *testing.T) {
	s := NewRunState("train.log", "queue.json")

	_, err := uuid.Parse(s.RunID)
	assert.NoError(t, err)
	assert.Equal(t, SchemaVersion, s.SchemaVersion)
	assert.Equal(t, StatusInProgress, s.Status)
	assert.Equal(t, "setup", s.Stage)
	assert.NotEqual(t, s.RunID, NewRunState("", "").RunID)
}

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".trainwatch")
	s := NewRunState("/tmp/train.log", "/tmp/queue.json")
	s.CompletedClasses = 1
	s.TotalClasses = 3
	s.LastSnapshot = &trainlog.Snapshot{CurrentStep: 10, TotalSteps: 100, RecentLosses: []float64{0.5}}
	s.Split = &SplitState{Seed: 42, TrainRatio: 0.8, TestRatio: 0.1, Counts: map[string]int{"train": 8}}

	require.NoError(t, Save(s, dir))

	data, err := os.ReadFile(Path(dir))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "\n    \"run_id\""), "4-space indent")
	assert.True(t, json.Valid(data))

	_, err = os.Stat(Path(dir) + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed away")

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestLoad_NoState(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrNoState))
}

func TestLoad_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir), []byte("{nope"), 0644))
	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal state")
}

func TestLoad_WrongSchema(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir), []byte(`{"schema_version": 99}`), 0644))
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	q := writeQueueFile(t, dir, `{"train_configs":[{"name":"a"}]}`)

	s := NewRunState("", q)
	assert.NoError(t, Validate(s, q), "no recorded hash")

	hash, err := queue.HashFile(q)
	require.NoError(t, err)
	s.QueueFileHash = hash
	assert.NoError(t, Validate(s, q))

	writeQueueFile(t, dir, `{"train_configs":[{"name":"a"},{"name":"b"}]}`)
	err = Validate(s, q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue file changed")

	assert.Error(t, Validate(s, filepath.Join(dir, "missing.json")))
	assert.NoError(t, Validate(s, ""))
}

func TestResume(t *testing.T) {
	dir := t.TempDir()
	q := writeQueueFile(t, dir, `{}`)
	hash, err := queue.HashFile(q)
	require.NoError(t, err)

	s := &RunState{Status: StatusInterrupted, QueueFileHash: hash, LastError: "old"}
	require.NoError(t, Resume(s, q, false))
	assert.Equal(t, StatusInProgress, s.Status)
	assert.Empty(t, s.LastError)

	s.QueueFileHash = "stale"
	assert.Error(t, Resume(s, q, false))
	assert.NoError(t, Resume(s, q, true), "force skips validation")

	done := &RunState{Status: StatusComplete}
	require.NoError(t, Resume(done, "", false))
	assert.Equal(t, StatusComplete, done.Status)
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(NewRunState("", ""), dir))
	require.NoError(t, Remove(dir))
	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrNoState)

	assert.NoError(t, Remove(dir), "removing twice is fine")
}

func TestWorkflowRoundTrip(t *testing.T) {
	s := NewRunState("", "")
	ws := workflow.State{
		CurrentStage:     workflow.StageTrain,
		FurthestStage:    workflow.StageGenerate,
		CompletedClasses: 2,
		TotalClasses:     4,
	}
	s.RecordWorkflow(ws)
	assert.Equal(t, "train", s.Stage)

	got, err := s.Workflow()
	require.NoError(t, err)
	assert.Equal(t, ws, got)

	s.RecordWorkflow(workflow.State{CurrentStage: workflow.StageComplete, FurthestStage: workflow.StageComplete})
	assert.Equal(t, StatusComplete, s.Status)

	s.RecordWorkflow(workflow.State{CurrentStage: workflow.StageGenerate, FurthestStage: workflow.StageComplete})
	assert.Equal(t, StatusInProgress, s.Status, "going back reopens the run")

	s.Stage = "bogus"
	_, err = s.Workflow()
	assert.Error(t, err)
}

func TestRecordStatus(t *testing.T) {
	s := NewRunState("", "")
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	s.RecordStatus(monitor.Status{
		Snapshot:   &trainlog.Snapshot{CurrentStep: 7},
		LastUpdate: at,
	})
	require.NotNil(t, s.LastSnapshot)
	assert.Equal(t, 7, s.LastSnapshot.CurrentStep)
	assert.Equal(t, "2026-03-01T10:00:00Z", s.LastSnapshotAt)
	assert.Empty(t, s.LastError)

	s.RecordStatus(monitor.Status{Err: &logstore.Error{Kind: logstore.KindEmpty, Path: "train.log"}})
	assert.Contains(t, s.LastError, "File is empty")
	assert.Equal(t, 7, s.LastSnapshot.CurrentStep, "a status without snapshot keeps the last one")
}
