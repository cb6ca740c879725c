package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/trainwatch/internal/banner"
	"github.com/CodexForgeBR/trainwatch/internal/cli"
	"github.com/CodexForgeBR/trainwatch/internal/exitcode"
	"github.com/CodexForgeBR/trainwatch/internal/genprogress"
	"github.com/CodexForgeBR/trainwatch/internal/logging"
	"github.com/CodexForgeBR/trainwatch/internal/notification"
	"github.com/CodexForgeBR/trainwatch/internal/queue"
	sighandler "github.com/CodexForgeBR/trainwatch/internal/signal"
	"github.com/CodexForgeBR/trainwatch/internal/state"
	"github.com/CodexForgeBR/trainwatch/internal/workflow"
)

func (a *app) newGenerateCmd() *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Count generated images until every class has its samples",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd.Context(), once)
		},
	}
	cli.BindGenerateFlags(cmd, a.flags, &once)
	return cmd
}

func (a *app) runGenerate(ctx context.Context, once bool) error {
	cfg := a.cfg

	desc, err := queue.Load(cfg.QueueFile)
	if err != nil {
		return err
	}
	if len(desc.GenerateConfigs) == 0 {
		return fmt.Errorf("%s has no generate_configs", cfg.QueueFile)
	}

	if once {
		report, err := genprogress.Collect(cfg.GenerateOutputDir, desc.GenerateConfigs)
		banner.PrintGenerationBanner(a.out, report)
		return err
	}

	logging.Phase(fmt.Sprintf("Waiting for %d images in %s", desc.TotalSamples(), cfg.GenerateOutputDir))

	runCtx, interrupt := sighandler.WithInterrupt(ctx, func(os.Signal) {
		logging.Warn("Interrupted")
	})
	defer interrupt.Stop()

	last := -1
	report, err := genprogress.Watch(runCtx, cfg.GenerateOutputDir, desc.GenerateConfigs, cfg.GeneratePollDuration(),
		func(r *genprogress.Report, err error) {
			if err != nil {
				logging.Warn(err.Error())
			}
			if r.TotalGenerated != last {
				last = r.TotalGenerated
				logging.Info(fmt.Sprintf("Generated %d/%d images (%d%%)", r.TotalGenerated, r.TotalExpected, r.Percent()))
			}
		})
	banner.PrintGenerationBanner(a.out, report)

	if interrupt.Received() {
		return &exitcode.ExitError{Code: exitcode.Interrupted}
	}
	if err != nil {
		return err
	}
	runID, err := a.finishGeneration()
	if err != nil {
		return err
	}
	a.notifier(runID).notify(notification.Event{Kind: notification.EventGenerationComplete, Completed: report.TotalGenerated, Total: report.TotalExpected})
	return nil
}

// finishGeneration moves a saved run from generate to complete and returns
// its ID.
func (a *app) finishGeneration() (string, error) {
	rs, err := state.Load(a.cfg.StateDir)
	if errors.Is(err, state.ErrNoState) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	ws, err := rs.Workflow()
	if err != nil {
		return rs.RunID, err
	}
	wf := workflow.Restore(ws)
	if wf.Stage() != workflow.StageGenerate {
		return rs.RunID, nil
	}
	wf.AdvanceStage()
	rs.RecordWorkflow(wf.State())
	if err := state.Save(rs, a.cfg.StateDir); err != nil {
		return rs.RunID, err
	}
	logging.Success("Workflow complete")
	return rs.RunID, nil
}
