package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/trainwatch/internal/banner"
	"github.com/CodexForgeBR/trainwatch/internal/cli"
	"github.com/CodexForgeBR/trainwatch/internal/logging"
	"github.com/CodexForgeBR/trainwatch/internal/split"
	"github.com/CodexForgeBR/trainwatch/internal/state"
)

func (a *app) newSplitCmd() *cobra.Command {
	var opts split.OrganizeOptions
	cmd := &cobra.Command{
		Use:   "split <src> <dst>",
		Short: "Split an image folder into train/test/valid deterministically",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSplit(cmd.Context(), args[0], args[1], opts)
		},
	}
	cli.BindSplitFlags(cmd, a.flags, &opts)
	return cmd
}

func (a *app) runSplit(ctx context.Context, src, dst string, opts split.OrganizeOptions) error {
	seed := split.Seed{
		Seed:       a.cfg.SplitSeed,
		TrainRatio: a.cfg.TrainRatio,
		TestRatio:  a.cfg.TestRatio,
	}
	if err := seed.Validate(); err != nil {
		return err
	}

	logging.Phase(fmt.Sprintf("Splitting %s into %s", src, dst))
	res, err := split.Organize(ctx, src, dst, seed, opts)
	if err != nil {
		return fmt.Errorf("split dataset: %w", err)
	}
	for _, as := range res.Assignments {
		logging.Debug(fmt.Sprintf("%s -> %s", as.File, as.Label))
	}
	banner.PrintSplitSummary(a.out, seed, res, dst, opts.DryRun)

	if opts.DryRun {
		return nil
	}

	rs, _, err := a.loadOrNew()
	if err != nil {
		return err
	}
	counts := make(map[string]int, len(split.Labels))
	for _, l := range split.Labels {
		counts[string(l)] = res.Counts[l]
	}
	rs.Split = &state.SplitState{
		Seed:       seed.Seed,
		TrainRatio: seed.TrainRatio,
		TestRatio:  seed.TestRatio,
		Counts:     counts,
	}
	if err := state.Save(rs, a.cfg.StateDir); err != nil {
		return err
	}
	logging.Success(fmt.Sprintf("Split %d files", res.Counts.Total()))
	return nil
}
