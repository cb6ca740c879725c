package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/CodexForgeBR/trainwatch/internal/genprogress"
	"github.com/CodexForgeBR/trainwatch/internal/state"
	"github.com/CodexForgeBR/trainwatch/internal/trainlog"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleState() *state.RunState {
	return &state.RunState{
		SchemaVersion:    state.SchemaVersion,
		RunID:            "run-1",
		Status:           state.StatusInProgress,
		Stage:            "train",
		FurthestStage:    "train",
		CompletedClasses: 1,
		TotalClasses:     3,
		LogFile:          "train.log",
		QueueFile:        "queue.json",
		LastSnapshot: &trainlog.Snapshot{
			ProgressPercent: 40,
			CurrentStep:     200,
			TotalSteps:      500,
			TimeElapsed:     "02:00",
			TimeRemaining:   "03:00",
			CurrentLoss:     0.12,
			RecentLosses:    []float64{0.1, 0.12},
			AverageLoss:     0.11,
			LearningRate:    1e-5,
			LastCheckpoint:  "checkpoint-200",
			LastStateSave:   trainlog.None,
		},
		LastSnapshotAt: now.Add(-30 * time.Second).Format(time.RFC3339),
		Split: &state.SplitState{
			Seed:       42,
			TrainRatio: 0.8,
			TestRatio:  0.1,
			Counts:     map[string]int{"train": 8, "test": 1, "valid": 1},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuild_Staleness(t *testing.T) {
	rs := sampleState()

	r := Build(rs, nil, now, time.Minute)
	assert.False(t, r.Stale)

	r = Build(rs, nil, now.Add(time.Minute), time.Minute)
	assert.True(t, r.Stale, "snapshot 90s old should be stale")

	rs.Stage = "generate"
	r = Build(rs, nil, now.Add(time.Hour), time.Minute)
	assert.False(t, r.Stale, "only a training run can be stale")
}

func TestBuild_CopiesSplit(t *testing.T) {
	r := Build(sampleState(), nil, now, time.Minute)
	require.NotNil(t, r.Split)
	assert.Equal(t, int64(42), r.Split.Seed)
	assert.Equal(t, 8, r.Split.Counts["train"])
}

func TestRender_Text(t *testing.T) {
	gen := &genprogress.Report{TotalExpected: 8, TotalGenerated: 2}
	r := Build(sampleState(), gen, now, time.Minute)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatText, r))
	out := buf.String()
	assert.Contains(t, out, "Run:      run-1")
	assert.Contains(t, out, "Stage:    train (furthest: train)")
	assert.Contains(t, out, "Classes:  1/3")
	assert.Contains(t, out, "Step:     200/500 (40%)")
	assert.Contains(t, out, "checkpoint-200 / None")
	assert.Contains(t, out, "seed 42, train 8 / test 1 / valid 1")
	assert.Contains(t, out, "Images:   2/8 (25%)")
	assert.NotContains(t, out, "appears to have stopped")
}

func TestRender_JSON(t *testing.T) {
	r := Build(sampleState(), nil, now, time.Minute)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, r))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run-1", got["run_id"])
	assert.Equal(t, float64(3), got["total_classes"])
	training := got["training"].(map[string]any)
	assert.Equal(t, "checkpoint-200", training["last_checkpoint"])
	assert.NotContains(t, got, "generation")
}

func TestRender_YAML(t *testing.T) {
	r := Build(sampleState(), nil, now, time.Minute)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatYAML, r))
	assert.Contains(t, buf.String(), "run_id: run-1")

	var got Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "train", got.Stage)
	require.NotNil(t, got.Training)
	assert.Equal(t, 200, got.Training.CurrentStep)
	assert.Equal(t, []float64{0.1, 0.12}, got.Training.RecentLosses)
}

func TestRender_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Render(&buf, Format("xml"), &Report{}))
}
