// Package cli provides help text and usage formatting for the trainwatch CLI.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const helpTemplate = `trainwatch - training companion for a text-to-image fine-tuning backend

USAGE
  trainwatch <command> [flags]

COMMANDS
  split <src> <dst>      Split an image folder into train/test/valid deterministically
  watch                  Follow the training log until every queued class has trained
  generate               Count generated images until every class has its samples
  status                 Show the saved run
  clear-log              Truncate the training log
  stage [name]           Show or move the workflow stage (setup, train, generate, complete)

GLOBAL FLAGS
  --config <path>                  Path to additional config file
  --state-dir <dir>                Run state and project config (default: .trainwatch)
  --log-file <path>                Training log written by the backend (default: train.log)
  --queue-file <path>              Training queue descriptor (default: queue.json)
  --app-log-file <path>            Also write trainwatch's own log to this rotating file
  -v, --verbose                    Show debug output
  --notify-webhook <url>           OpenClaw webhook URL (default: http://127.0.0.1:18789/webhook)
  --notify-channel <channel>       Notification channel (default: telegram)
  --notify-chat-id <id>            Recipient chat ID (required to enable notifications)

SPLIT FLAGS
  --seed <int>                     Split seed (default: 42)
  --train-ratio <float>            Share assigned to train (default: 0.8)
  --test-ratio <float>             Share assigned to test; the rest go to valid (default: 0.1)
  --class-label <text>             Caption for metadata.jsonl (default: source directory name)
  --dry-run                        Print the split without copying
  --overwrite                      Replace files already in the destination

WATCH FLAGS
  --poll-interval <sec>            Seconds between log reads (default: 5)
  --stale-check-interval <sec>     Seconds between staleness checks (default: 5)
  --stale-intervals <n>            Intervals without progress before "stopped" (default: 12)
  --resume                         Continue the saved run
  --resume-force                   Continue even if the queue changed (implies --resume)
  --clean                          Discard saved state and start fresh

GENERATE FLAGS
  --output-dir <dir>               Root of generated images (default: output)
  --poll-interval <sec>            Seconds between counts (default: 3)
  --once                           Count once and exit

STATUS FLAGS
  --format <text|json|yaml>        Output format (default: text)

CONFIG FILES
  ~/.config/trainwatch/config, <state-dir>/config and --config hold KEY=VALUE
  lines. Later files win; flags set on the command line win over all files.

EXIT CODES
  0   Success              Command finished
  1   Error                Invalid arguments, unreadable queue, misconfiguration
  3   NoState              No saved run to show or update
  130 Interrupted          SIGINT or SIGTERM received

EXAMPLES
  # Split a class folder with the default 80/10/10 ratios
  trainwatch split photos/dog dataset

  # Follow training, resuming a run interrupted earlier
  trainwatch watch --resume

  # Inspect the run as YAML
  trainwatch status --format yaml
`

// SetCustomHelp uses the overview above for the root command and cobra's
// generated help for subcommands.
func SetCustomHelp(root *cobra.Command) {
	defaultHelp := root.HelpFunc()
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != root {
			defaultHelp(cmd, args)
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), helpTemplate)
	})
}
