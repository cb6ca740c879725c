package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/trainwatch/internal/cli"
	"github.com/CodexForgeBR/trainwatch/internal/genprogress"
	"github.com/CodexForgeBR/trainwatch/internal/logging"
	"github.com/CodexForgeBR/trainwatch/internal/queue"
	"github.com/CodexForgeBR/trainwatch/internal/report"
	"github.com/CodexForgeBR/trainwatch/internal/state"
	"github.com/CodexForgeBR/trainwatch/internal/workflow"
)

func (a *app) newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the saved run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runStatus()
		},
	}
	cli.BindStatusFlags(cmd, a.flags)
	return cmd
}

func (a *app) runStatus() error {
	format, err := report.ParseFormat(a.cfg.Format)
	if err != nil {
		return err
	}

	rs, err := a.loadExisting()
	if err != nil {
		return err
	}

	staleAfter := time.Duration(a.cfg.StaleIntervals) * a.cfg.PollDuration()
	r := report.Build(rs, a.generationReport(rs), time.Now(), staleAfter)
	return report.Render(a.out, format, r)
}

// generationReport counts generated images once the run has reached the
// generate stage. Count failures only drop the section.
func (a *app) generationReport(rs *state.RunState) *genprogress.Report {
	furthest, err := workflow.ParseStage(rs.FurthestStage)
	if err != nil || furthest < workflow.StageGenerate {
		return nil
	}
	desc, err := queue.Load(a.cfg.QueueFile)
	if err != nil || len(desc.GenerateConfigs) == 0 {
		return nil
	}
	gen, err := genprogress.Collect(a.cfg.GenerateOutputDir, desc.GenerateConfigs)
	if err != nil {
		logging.Debug(fmt.Sprintf("count generated images: %v", err))
	}
	return gen
}
