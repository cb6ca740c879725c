package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/trainwatch/internal/logging"
	"github.com/CodexForgeBR/trainwatch/internal/logstore"
	"github.com/CodexForgeBR/trainwatch/internal/state"
	"github.com/CodexForgeBR/trainwatch/internal/workflow"
)

func (a *app) newClearLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-log",
		Short: "Truncate the training log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := logstore.New(a.cfg.LogFile).Clear(); err != nil {
				return err
			}
			logging.Success(fmt.Sprintf("Cleared %s", a.cfg.LogFile))
			return nil
		},
	}
}

func (a *app) newStageCmd() *cobra.Command {
	var advance, reset bool
	cmd := &cobra.Command{
		Use:   "stage [setup|train|generate|complete]",
		Short: "Show or move the workflow stage",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			return a.runStage(target, advance, reset)
		},
	}
	cmd.Flags().BoolVar(&advance, "advance", false, "Move to the next stage")
	cmd.Flags().BoolVar(&reset, "reset", false, "Return to setup with no classes completed")
	cmd.MarkFlagsMutuallyExclusive("advance", "reset")
	return cmd
}

func (a *app) runStage(target string, advance, reset bool) error {
	if target != "" && (advance || reset) {
		return fmt.Errorf("a stage name cannot be combined with --advance or --reset")
	}

	rs, err := a.loadExisting()
	if err != nil {
		return err
	}
	ws, err := rs.Workflow()
	if err != nil {
		return err
	}
	wf := workflow.Restore(ws)

	switch {
	case reset:
		wf.Reset()
	case advance:
		wf.AdvanceStage()
	case target != "":
		stage, err := workflow.ParseStage(target)
		if err != nil {
			return err
		}
		if err := wf.SetStage(stage); err != nil {
			return err
		}
	}

	st := wf.State()
	if st != ws {
		if reset {
			rs.Status = state.StatusInProgress
			rs.LastSnapshot = nil
			rs.LastSnapshotAt = ""
		}
		rs.RecordWorkflow(st)
		if err := state.Save(rs, a.cfg.StateDir); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.out, "%s (furthest: %s, classes %d/%d)\n", st.CurrentStage, st.FurthestStage, st.CompletedClasses, st.TotalClasses)
	return nil
}
