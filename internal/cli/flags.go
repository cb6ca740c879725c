// Package cli provides flag binding and validation for the trainwatch CLI.
package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/CodexForgeBR/trainwatch/internal/config"
	"github.com/CodexForgeBR/trainwatch/internal/report"
	"github.com/CodexForgeBR/trainwatch/internal/split"
)

// BindGlobalFlags registers the flags every subcommand shares as persistent
// flags on the root command.
func BindGlobalFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.PersistentFlags()

	flags.StringVar(&cfg.ConfigFile, "config", "", "Path to additional config file")
	flags.StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "Directory holding run state and project config")
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Training log written by the backend")
	flags.StringVar(&cfg.QueueFile, "queue-file", cfg.QueueFile, "Training queue descriptor (JSON)")
	flags.StringVar(&cfg.AppLogFile, "app-log-file", "", "Also write trainwatch's own log to this rotating file")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Show debug output")

	flags.StringVar(&cfg.NotifyWebhook, "notify-webhook", cfg.NotifyWebhook, "OpenClaw webhook URL")
	flags.StringVar(&cfg.NotifyChannel, "notify-channel", cfg.NotifyChannel, "Notification channel")
	flags.StringVar(&cfg.NotifyChatID, "notify-chat-id", "", "Recipient chat ID (enables notifications)")
}

// BindWatchFlags registers polling and session flags for the watch command.
func BindWatchFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	flags.IntVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Seconds between log reads")
	flags.IntVar(&cfg.StaleCheckInterval, "stale-check-interval", cfg.StaleCheckInterval, "Seconds between staleness checks")
	flags.IntVar(&cfg.StaleIntervals, "stale-intervals", cfg.StaleIntervals, "Poll intervals without progress before training is reported stopped")

	flags.BoolVar(&cfg.Resume, "resume", false, "Continue the saved run")
	flags.BoolVar(&cfg.ResumeForce, "resume-force", false, "Continue even if the queue file changed (implies --resume)")
	flags.BoolVar(&cfg.Clean, "clean", false, "Discard saved state and start fresh")
}

// BindSplitFlags registers the split ratios and organizer options.
func BindSplitFlags(cmd *cobra.Command, cfg *config.Config, opts *split.OrganizeOptions) {
	flags := cmd.Flags()

	flags.Int64Var(&cfg.SplitSeed, "seed", cfg.SplitSeed, "Split seed")
	flags.Float64Var(&cfg.TrainRatio, "train-ratio", cfg.TrainRatio, "Share of files assigned to train")
	flags.Float64Var(&cfg.TestRatio, "test-ratio", cfg.TestRatio, "Share of files assigned to test; the rest go to valid")

	flags.StringVar(&opts.ClassLabel, "class-label", "", "Caption written to metadata.jsonl (default: source directory name)")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "Print the split without copying files")
	flags.BoolVar(&opts.Overwrite, "overwrite", false, "Replace files already present in the destination")
}

// BindGenerateFlags registers flags for the generate command.
func BindGenerateFlags(cmd *cobra.Command, cfg *config.Config, once *bool) {
	flags := cmd.Flags()

	flags.StringVar(&cfg.GenerateOutputDir, "output-dir", cfg.GenerateOutputDir, "Root directory the backend writes generated images to")
	flags.IntVar(&cfg.GeneratePollInterval, "poll-interval", cfg.GeneratePollInterval, "Seconds between image counts")
	flags.BoolVar(once, "once", false, "Count once and exit instead of waiting for completion")
}

// BindStatusFlags registers flags for the status command.
func BindStatusFlags(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringVar(&cfg.Format, "format", cfg.Format, "Output format: text, json or yaml")
	cmd.Flags().StringVar(&cfg.GenerateOutputDir, "output-dir", cfg.GenerateOutputDir, "Root directory of generated images")
}

// BuildOverrides returns config-file keys for every flag the user set
// explicitly, so file values are not clobbered by flag defaults.
func BuildOverrides(cmd *cobra.Command, cfg *config.Config) map[string]string {
	overrides := make(map[string]string)
	flags := cmd.Flags()

	stringFlags := map[string]struct {
		key string
		val string
	}{
		"state-dir":      {"STATE_DIR", cfg.StateDir},
		"log-file":       {"LOG_FILE", cfg.LogFile},
		"queue-file":     {"QUEUE_FILE", cfg.QueueFile},
		"app-log-file":   {"APP_LOG_FILE", cfg.AppLogFile},
		"output-dir":     {"GENERATE_OUTPUT_DIR", cfg.GenerateOutputDir},
		"notify-webhook": {"NOTIFY_WEBHOOK", cfg.NotifyWebhook},
		"notify-channel": {"NOTIFY_CHANNEL", cfg.NotifyChannel},
		"notify-chat-id": {"NOTIFY_CHAT_ID", cfg.NotifyChatID},
	}
	for flag, mapping := range stringFlags {
		if changed(flags, flag) {
			overrides[mapping.key] = mapping.val
		}
	}

	intFlags := map[string]struct {
		key string
		val int
	}{
		"stale-check-interval": {"STALE_CHECK_INTERVAL", cfg.StaleCheckInterval},
		"stale-intervals":      {"STALE_INTERVALS", cfg.StaleIntervals},
	}
	for flag, mapping := range intFlags {
		if changed(flags, flag) {
			overrides[mapping.key] = strconv.Itoa(mapping.val)
		}
	}

	// --poll-interval means the log poll on watch and the image count on
	// generate.
	if changed(flags, "poll-interval") {
		if cmd.Name() == "generate" {
			overrides["GENERATE_POLL_INTERVAL"] = strconv.Itoa(cfg.GeneratePollInterval)
		} else {
			overrides["POLL_INTERVAL"] = strconv.Itoa(cfg.PollInterval)
		}
	}

	if changed(flags, "seed") {
		overrides["SPLIT_SEED"] = strconv.FormatInt(cfg.SplitSeed, 10)
	}
	if changed(flags, "train-ratio") {
		overrides["TRAIN_RATIO"] = strconv.FormatFloat(cfg.TrainRatio, 'f', -1, 64)
	}
	if changed(flags, "test-ratio") {
		overrides["TEST_RATIO"] = strconv.FormatFloat(cfg.TestRatio, 'f', -1, 64)
	}

	if changed(flags, "verbose") {
		overrides["VERBOSE"] = strconv.FormatBool(cfg.Verbose)
	}

	return overrides
}

// ValidateFlags checks for invalid flag combinations after parsing.
func ValidateFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cfg.ConfigFile != "" {
		if _, err := os.Stat(cfg.ConfigFile); err != nil {
			return fmt.Errorf("--config: %w", err)
		}
	}

	if cfg.ResumeForce {
		cfg.Resume = true
	}
	if cfg.Resume && cfg.Clean {
		return fmt.Errorf("--resume and --clean are mutually exclusive")
	}

	for _, name := range []string{"poll-interval", "stale-check-interval", "stale-intervals"} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			if v, err := strconv.Atoi(f.Value.String()); err != nil || v <= 0 {
				return fmt.Errorf("--%s must be a positive number of seconds, got: %s", name, f.Value.String())
			}
		}
	}

	if changed(cmd.Flags(), "train-ratio") || changed(cmd.Flags(), "test-ratio") {
		seed := split.Seed{Seed: cfg.SplitSeed, TrainRatio: cfg.TrainRatio, TestRatio: cfg.TestRatio}
		if err := seed.Validate(); err != nil {
			return err
		}
	}

	if changed(cmd.Flags(), "format") {
		if _, err := report.ParseFormat(cfg.Format); err != nil {
			return fmt.Errorf("--format: %w", err)
		}
	}

	return nil
}

func changed(flags *pflag.FlagSet, name string) bool {
	f := flags.Lookup(name)
	return f != nil && f.Changed
}
