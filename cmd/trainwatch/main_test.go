package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodexForgeBR/trainwatch/internal/exitcode"
	"github.com/CodexForgeBR/trainwatch/internal/logging"
	"github.com/CodexForgeBR/trainwatch/internal/state"
)

const progressLine = "Steps:  100%|██████████| 500/500 [10:00<00:00,  1.20s/it, lr=1e-05, step_loss=0.0421]"

// workspace is a temp project directory with its own HOME so no real
// global config leaks into the run.
type workspace struct {
	dir string
	out bytes.Buffer
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	color.NoColor = true
	t.Setenv("HOME", t.TempDir())
	logging.SetOutput(io.Discard, io.Discard)
	t.Cleanup(func() { logging.SetOutput(os.Stdout, os.Stderr) })
	return &workspace{dir: t.TempDir()}
}

func (w *workspace) path(name string) string { return filepath.Join(w.dir, name) }

func (w *workspace) run(args ...string) error {
	w.out.Reset()
	root := newRootCmd(&w.out)
	full := append([]string{
		"--state-dir", w.path(".trainwatch"),
		"--log-file", w.path("train.log"),
		"--queue-file", w.path("queue.json"),
	}, args...)
	root.SetArgs(full)
	return root.Execute()
}

func (w *workspace) write(t *testing.T, name, content string) {
	t.Helper()
	p := w.path(name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
}

func (w *workspace) writeQueue(t *testing.T, classes int, samples int) {
	t.Helper()
	doc := map[string]any{"train_configs": []any{}, "generate_configs": []any{}}
	train := make([]map[string]any, 0, classes)
	for i := 0; i < classes; i++ {
		train = append(train, map[string]any{"name": "run", "prompt": "sks dog"})
	}
	doc["train_configs"] = train
	if samples > 0 {
		doc["generate_configs"] = []map[string]any{{"name": "run", "prompt": "sks dog", "num_samples": samples}}
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	w.write(t, "queue.json", string(data))
}

func (w *workspace) state(t *testing.T) *state.RunState {
	t.Helper()
	rs, err := state.Load(w.path(".trainwatch"))
	require.NoError(t, err)
	return rs
}

func exitCode(err error) int {
	var exitErr *exitcode.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if err != nil {
		return exitcode.Error
	}
	return exitcode.Success
}

func TestSplitCommand_RecordsSplit(t *testing.T) {
	w := newWorkspace(t)
	for _, name := range []string{"a.png", "b.jpg", "c.webp", "notes.txt"} {
		w.write(t, filepath.Join("photos", name), name)
	}

	require.NoError(t, w.run("split", w.path("photos"), w.path("dataset"), "--seed", "42"))
	assert.Contains(t, w.out.String(), "seed 42")

	rs := w.state(t)
	require.NotNil(t, rs.Split)
	assert.Equal(t, int64(42), rs.Split.Seed)
	total := rs.Split.Counts["train"] + rs.Split.Counts["test"] + rs.Split.Counts["valid"]
	assert.Equal(t, 3, total)
	assert.Equal(t, "setup", rs.Stage)
}

func TestSplitCommand_DryRunSavesNothing(t *testing.T) {
	w := newWorkspace(t)
	w.write(t, filepath.Join("photos", "a.png"), "a")

	require.NoError(t, w.run("split", w.path("photos"), w.path("dataset"), "--dry-run"))
	assert.Contains(t, w.out.String(), "Dry run")
	assert.NoDirExists(t, w.path("dataset"))
	_, err := state.Load(w.path(".trainwatch"))
	assert.ErrorIs(t, err, state.ErrNoState)
}

func TestSplitCommand_InvalidRatios(t *testing.T) {
	w := newWorkspace(t)
	err := w.run("split", w.path("photos"), w.path("dataset"), "--train-ratio", "0.9", "--test-ratio", "0.5")
	assert.Error(t, err)
}

func TestStatusCommand_NoState(t *testing.T) {
	w := newWorkspace(t)
	err := w.run("status")
	assert.Equal(t, exitcode.NoState, exitCode(err))
}

func TestWatchCommand_SingleClassCompletes(t *testing.T) {
	w := newWorkspace(t)
	w.writeQueue(t, 1, 2)
	w.write(t, "train.log", progressLine+"\nComplete Training For 'sks dog'\n")

	require.NoError(t, w.run("watch", "--poll-interval", "1"))
	out := w.out.String()
	assert.Contains(t, out, "Finished sks dog (1/1)")
	assert.Contains(t, out, "Training Completed - Proceed to Generate")

	rs := w.state(t)
	assert.Equal(t, "generate", rs.Stage)
	assert.Equal(t, 1, rs.CompletedClasses)
	assert.Equal(t, 1, rs.TotalClasses)
	require.NotNil(t, rs.LastSnapshot)
	assert.Equal(t, 500, rs.LastSnapshot.CurrentStep)
	assert.NotEmpty(t, rs.QueueFileHash)

	// The last class leaves its log in place.
	data, err := os.ReadFile(w.path("train.log"))
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	// A finished run is reported and not re-watched.
	require.NoError(t, w.run("watch", "--resume"))
}

func TestWatchCommand_ResumeWithAllClassesDoneAdvances(t *testing.T) {
	w := newWorkspace(t)
	w.writeQueue(t, 1, 0)
	w.write(t, "train.log", progressLine+"\nComplete Training For 'sks dog'\n")
	require.NoError(t, w.run("watch"))

	// Saved between counting the last class and advancing the stage.
	rs := w.state(t)
	rs.Stage = "train"
	rs.FurthestStage = "train"
	require.NoError(t, state.Save(rs, w.path(".trainwatch")))
	require.NoError(t, os.Remove(w.path("train.log")))

	require.NoError(t, w.run("watch", "--resume"))
	rs = w.state(t)
	assert.Equal(t, "generate", rs.Stage)
	assert.Equal(t, 1, rs.CompletedClasses)
}

func TestWatchCommand_RequiresResumeForStartedRun(t *testing.T) {
	w := newWorkspace(t)
	w.writeQueue(t, 1, 0)
	w.write(t, "train.log", progressLine+"\nComplete Training For \"x\"\n")
	require.NoError(t, w.run("watch"))

	err := w.run("watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--resume")

	assert.Error(t, w.run("watch", "--resume", "--clean"))
}

func TestStatusCommand_Formats(t *testing.T) {
	w := newWorkspace(t)
	w.writeQueue(t, 1, 2)
	w.write(t, "train.log", progressLine+"\nComplete Training For 'sks dog'\n")
	require.NoError(t, w.run("watch"))

	require.NoError(t, w.run("status"))
	assert.Contains(t, w.out.String(), "Stage:    generate (furthest: generate)")
	assert.Contains(t, w.out.String(), "Images:   0/2 (0%)")

	require.NoError(t, w.run("status", "--format", "json"))
	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.out.Bytes(), &doc))
	assert.Equal(t, "generate", doc["stage"])

	require.NoError(t, w.run("status", "--format", "yaml"))
	assert.Contains(t, w.out.String(), "stage: generate")

	assert.Error(t, w.run("status", "--format", "xml"))
}

func TestGenerateCommand_OnceAndComplete(t *testing.T) {
	w := newWorkspace(t)
	w.writeQueue(t, 1, 2)
	w.write(t, "train.log", progressLine+"\nComplete Training For 'sks dog'\n")
	require.NoError(t, w.run("watch"))

	out := w.path("output")
	require.NoError(t, w.run("generate", "--once", "--output-dir", out))
	assert.Contains(t, w.out.String(), "Total: 0/2")

	w.write(t, filepath.Join("output", "run", "sks_dog", "0.png"), "x")
	w.write(t, filepath.Join("output", "run", "sks_dog", "1.png"), "x")
	require.NoError(t, w.run("generate", "--output-dir", out, "--poll-interval", "1"))
	assert.Contains(t, w.out.String(), "Generation Completed")

	rs := w.state(t)
	assert.Equal(t, "complete", rs.Stage)
	assert.Equal(t, state.StatusComplete, rs.Status)
}

func TestStageCommand(t *testing.T) {
	w := newWorkspace(t)
	assert.Equal(t, exitcode.NoState, exitCode(w.run("stage")))

	w.write(t, filepath.Join("photos", "a.png"), "a")
	require.NoError(t, w.run("split", w.path("photos"), w.path("dataset")))

	require.NoError(t, w.run("stage"))
	assert.True(t, strings.HasPrefix(w.out.String(), "setup"))

	assert.Error(t, w.run("stage", "generate"), "generate not reached yet")

	require.NoError(t, w.run("stage", "--advance"))
	assert.True(t, strings.HasPrefix(w.out.String(), "train"))

	require.NoError(t, w.run("stage", "setup"))
	assert.Equal(t, "setup", w.state(t).Stage)
	assert.Equal(t, "train", w.state(t).FurthestStage)

	require.NoError(t, w.run("stage", "--reset"))
	assert.Equal(t, "setup", w.state(t).FurthestStage)

	assert.Error(t, w.run("stage", "bogus"))
}

func TestClearLogCommand(t *testing.T) {
	w := newWorkspace(t)
	w.write(t, "train.log", progressLine+"\n")

	require.NoError(t, w.run("clear-log"))
	data, err := os.ReadFile(w.path("train.log"))
	require.NoError(t, err)
	assert.Empty(t, data)
}
