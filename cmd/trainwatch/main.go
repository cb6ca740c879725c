package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/trainwatch/internal/cli"
	"github.com/CodexForgeBR/trainwatch/internal/config"
	"github.com/CodexForgeBR/trainwatch/internal/exitcode"
	"github.com/CodexForgeBR/trainwatch/internal/logging"
)

// version vars injected via ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// appLogMaxSizeMB is the rotation size of --app-log-file.
const appLogMaxSizeMB = 10

func main() {
	root := newRootCmd(os.Stdout)
	err := root.Execute()
	logging.Close()
	if err != nil {
		code := exitcode.Error
		var exitErr *exitcode.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.Code
		}
		if code != exitcode.Interrupted {
			logging.Error(err.Error())
		}
		os.Exit(code)
	}
}

// app carries the flag-bound config and, after PersistentPreRunE, the
// resolved config every subcommand runs with.
type app struct {
	flags *config.Config
	cfg   *config.Config
	out   io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{flags: config.NewDefaultConfig(), out: out}

	root := &cobra.Command{
		Use:     "trainwatch",
		Short:   "Training companion for a text-to-image fine-tuning backend",
		Long:    "trainwatch splits datasets, follows the training log across queued classes, and tracks image generation.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.resolve(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	cli.BindGlobalFlags(root, a.flags)
	cli.SetCustomHelp(root)

	root.AddCommand(
		a.newSplitCmd(),
		a.newWatchCmd(),
		a.newGenerateCmd(),
		a.newStatusCmd(),
		a.newClearLogCmd(),
		a.newStageCmd(),
	)
	return root
}

// resolve validates flags and loads the config precedence chain. Flags the
// user set explicitly win over every config file.
func (a *app) resolve(cmd *cobra.Command) error {
	if err := cli.ValidateFlags(cmd, a.flags); err != nil {
		return err
	}

	cfg, err := config.LoadWithPrecedence(
		config.GlobalConfigPath(),
		config.ProjectConfigPath(a.flags.StateDir),
		a.flags.ConfigFile,
		cli.BuildOverrides(cmd, a.flags),
	)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// CLI-only flags
	cfg.ConfigFile = a.flags.ConfigFile
	cfg.Resume = a.flags.Resume
	cfg.ResumeForce = a.flags.ResumeForce
	cfg.Clean = a.flags.Clean
	cfg.Format = a.flags.Format
	a.cfg = cfg

	logging.SetVerbose(cfg.Verbose)
	if cfg.AppLogFile != "" {
		logging.SetLogFile(cfg.AppLogFile, appLogMaxSizeMB)
	}
	logging.Debug(fmt.Sprintf("config: log=%s queue=%s state=%s", cfg.LogFile, cfg.QueueFile, cfg.StateDir))
	return nil
}
