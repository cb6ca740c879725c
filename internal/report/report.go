// Package report renders the saved run state for the status command as
// plain text, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/CodexForgeBR/trainwatch/internal/genprogress"
	"github.com/CodexForgeBR/trainwatch/internal/state"
	"github.com/CodexForgeBR/trainwatch/internal/trainlog"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts text, json or yaml (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or yaml)", s)
	}
}

// Split summarises the recorded dataset split.
type Split struct {
	Seed       int64          `json:"seed" yaml:"seed"`
	TrainRatio float64        `json:"train_ratio" yaml:"train_ratio"`
	TestRatio  float64        `json:"test_ratio" yaml:"test_ratio"`
	Counts     map[string]int `json:"counts" yaml:"counts"`
}

// Report is the status view of one run.
type Report struct {
	RunID            string              `json:"run_id" yaml:"run_id"`
	Status           string              `json:"status" yaml:"status"`
	Stage            string              `json:"stage" yaml:"stage"`
	FurthestStage    string              `json:"furthest_stage" yaml:"furthest_stage"`
	CompletedClasses int                 `json:"completed_classes" yaml:"completed_classes"`
	TotalClasses     int                 `json:"total_classes" yaml:"total_classes"`
	LogFile          string              `json:"log_file" yaml:"log_file"`
	QueueFile        string              `json:"queue_file" yaml:"queue_file"`
	StartedAt        string              `json:"started_at" yaml:"started_at"`
	LastUpdated      string              `json:"last_updated" yaml:"last_updated"`
	Training         *trainlog.Snapshot  `json:"training,omitempty" yaml:"training,omitempty"`
	LastSnapshotAt   string              `json:"last_snapshot_at,omitempty" yaml:"last_snapshot_at,omitempty"`
	Stale            bool                `json:"stale" yaml:"stale"`
	LastError        string              `json:"last_error,omitempty" yaml:"last_error,omitempty"`
	Split            *Split              `json:"split,omitempty" yaml:"split,omitempty"`
	Generation       *genprogress.Report `json:"generation,omitempty" yaml:"generation,omitempty"`
}

// Build derives a Report from saved state. A snapshot older than staleAfter
// is flagged stale while the run is still in the train stage.
func Build(rs *state.RunState, gen *genprogress.Report, now time.Time, staleAfter time.Duration) *Report {
	r := &Report{
		RunID:            rs.RunID,
		Status:           rs.Status,
		Stage:            rs.Stage,
		FurthestStage:    rs.FurthestStage,
		CompletedClasses: rs.CompletedClasses,
		TotalClasses:     rs.TotalClasses,
		LogFile:          rs.LogFile,
		QueueFile:        rs.QueueFile,
		StartedAt:        rs.StartedAt,
		LastUpdated:      rs.LastUpdated,
		Training:         rs.LastSnapshot,
		LastSnapshotAt:   rs.LastSnapshotAt,
		LastError:        rs.LastError,
		Generation:       gen,
	}
	if rs.Split != nil {
		r.Split = &Split{
			Seed:       rs.Split.Seed,
			TrainRatio: rs.Split.TrainRatio,
			TestRatio:  rs.Split.TestRatio,
			Counts:     rs.Split.Counts,
		}
	}
	if rs.Stage == "train" && rs.LastSnapshot != nil && rs.LastSnapshotAt != "" {
		if at, err := time.Parse(time.RFC3339, rs.LastSnapshotAt); err == nil {
			r.Stale = now.Sub(at) > staleAfter
		}
	}
	return r
}

// Render writes r to w in the given format.
func Render(w io.Writer, f Format, r *Report) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatText, "":
		return renderText(w, r)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

func renderText(w io.Writer, r *Report) error {
	var b strings.Builder
	sep := strings.Repeat("─", 50)
	fmt.Fprintln(&b, sep)
	fmt.Fprintf(&b, "  Run:      %s\n", r.RunID)
	fmt.Fprintf(&b, "  Status:   %s\n", r.Status)
	fmt.Fprintf(&b, "  Stage:    %s (furthest: %s)\n", r.Stage, r.FurthestStage)
	fmt.Fprintf(&b, "  Classes:  %d/%d\n", r.CompletedClasses, r.TotalClasses)

	if s := r.Training; s != nil {
		fmt.Fprintf(&b, "  Step:     %d/%d (%d%%)\n", s.CurrentStep, s.TotalSteps, s.ProgressPercent)
		fmt.Fprintf(&b, "  Time:     %s elapsed, %s remaining\n", s.TimeElapsed, orDash(s.TimeRemaining))
		fmt.Fprintf(&b, "  Loss:     %.4f (avg %.4f over %d)\n", s.CurrentLoss, s.AverageLoss, len(s.RecentLosses))
		fmt.Fprintf(&b, "  LR:       %g\n", s.LearningRate)
		fmt.Fprintf(&b, "  Saved:    %s / %s\n", s.LastCheckpoint, s.LastStateSave)
		if r.LastSnapshotAt != "" {
			fmt.Fprintf(&b, "  Updated:  %s\n", r.LastSnapshotAt)
		}
	}
	if r.Stale {
		fmt.Fprintln(&b, "  ⚠ Training appears to have stopped")
	}
	if r.LastError != "" {
		fmt.Fprintf(&b, "  Log:      %s\n", r.LastError)
	}
	if sp := r.Split; sp != nil {
		fmt.Fprintf(&b, "  Split:    seed %d, train %d / test %d / valid %d\n",
			sp.Seed, sp.Counts["train"], sp.Counts["test"], sp.Counts["valid"])
	}
	if g := r.Generation; g != nil {
		fmt.Fprintf(&b, "  Images:   %d/%d (%d%%)\n", g.TotalGenerated, g.TotalExpected, g.Percent())
	}
	fmt.Fprintln(&b, sep)

	_, err := io.WriteString(w, b.String())
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
