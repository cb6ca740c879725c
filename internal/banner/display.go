// Package banner prints the colored banners trainwatch shows at startup,
// between classes, and when a stage finishes.
package banner

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/CodexForgeBR/trainwatch/internal/genprogress"
	"github.com/CodexForgeBR/trainwatch/internal/logging"
	"github.com/CodexForgeBR/trainwatch/internal/split"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold).SprintFunc()
	successColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	warnColor    = color.New(color.FgYellow, color.Bold).SprintFunc()
)

const rule = "═══════════════════════════════════════════════════"

// PrintStartupBanner displays the run header for the watch command.
//
// Example output:
//
//	═══════════════════════════════════════════════════
//	  trainwatch - Training Monitor
//	═══════════════════════════════════════════════════
//	  Run:        0b6f3c1e-...
//	  Log:        train.log
//	  Queue:      queue.json (3 classes)
//	═══════════════════════════════════════════════════
func PrintStartupBanner(w io.Writer, runID, logFile, queueFile string, totalClasses int) {
	sep := headerColor(rule)
	fmt.Fprintln(w, sep)
	fmt.Fprintln(w, headerColor("  trainwatch - Training Monitor"))
	fmt.Fprintln(w, sep)
	fmt.Fprintf(w, "  Run:        %s\n", runID)
	fmt.Fprintf(w, "  Log:        %s\n", logFile)
	if totalClasses > 0 {
		fmt.Fprintf(w, "  Queue:      %s (%d classes)\n", queueFile, totalClasses)
	} else {
		fmt.Fprintf(w, "  Queue:      %s (class count unknown)\n", queueFile)
	}
	fmt.Fprintln(w, sep)
}

// PrintClassCompleteBanner announces one finished class.
func PrintClassCompleteBanner(w io.Writer, class string, completed, total int) {
	label := class
	if label == "" {
		label = fmt.Sprintf("class %d", completed)
	}
	if total > 0 {
		fmt.Fprintf(w, "%s\n", successColor(fmt.Sprintf("  ✓ Finished %s (%d/%d)", label, completed, total)))
		return
	}
	fmt.Fprintf(w, "%s\n", successColor(fmt.Sprintf("  ✓ Finished %s (%d)", label, completed)))
}

// PrintTrainingCompleteBanner is shown once every queued class has trained.
//
// Example output:
//
//	═══════════════════════════════════════════════════
//	  ✓ Training Completed - Proceed to Generate
//	  Classes:  3
//	  Duration: 1h 23m 45s (5025s)
//	═══════════════════════════════════════════════════
func PrintTrainingCompleteBanner(w io.Writer, classes int, durationSecs int) {
	sep := successColor(rule)
	fmt.Fprintln(w, sep)
	fmt.Fprintln(w, successColor("  ✓ Training Completed - Proceed to Generate"))
	fmt.Fprintf(w, "  Classes:  %d\n", classes)
	fmt.Fprintf(w, "  Duration: %s (%ds)\n", logging.FormatDuration(durationSecs), durationSecs)
	fmt.Fprintln(w, sep)
}

// PrintGenerationBanner lists per-class generation progress.
func PrintGenerationBanner(w io.Writer, report *genprogress.Report) {
	sep := headerColor(rule)
	if report.Complete() {
		sep = successColor(rule)
	}
	fmt.Fprintln(w, sep)
	if report.Complete() {
		fmt.Fprintln(w, successColor("  ✓ Generation Completed"))
	} else {
		fmt.Fprintln(w, headerColor(fmt.Sprintf("  Generating images (%d%%)", report.Percent())))
	}
	for _, c := range report.Classes {
		mark := " "
		if c.Complete {
			mark = "✓"
		}
		fmt.Fprintf(w, "  %s %-24s %d/%d\n", mark, c.Prompt, c.Generated, c.Expected)
	}
	fmt.Fprintf(w, "  Total: %d/%d\n", report.TotalGenerated, report.TotalExpected)
	fmt.Fprintln(w, sep)
}

// PrintInterruptedBanner is shown when a signal stops a running command.
//
// Example output:
//
//	═══════════════════════════════════════════════════
//	  ⚠ Run interrupted
//	  Stage:    train
//	  Classes:  1/3
//	  Run watch again to continue from this point
//	═══════════════════════════════════════════════════
func PrintInterruptedBanner(w io.Writer, stage string, completed, total int) {
	sep := warnColor(rule)
	fmt.Fprintln(w, sep)
	fmt.Fprintln(w, warnColor("  ⚠ Run interrupted"))
	fmt.Fprintf(w, "  Stage:    %s\n", stage)
	fmt.Fprintf(w, "  Classes:  %d/%d\n", completed, total)
	fmt.Fprintln(w, "  Run watch again to continue from this point")
	fmt.Fprintln(w, sep)
}

// PrintSplitSummary reports how a dataset was divided.
//
// Example output:
//
//	──────────────────────────────────────────────────
//	  Split:  seed 42 (train 0.80 / test 0.10 / valid 0.10)
//	  train   812  (81.2%)
//	  test     97  ( 9.7%)
//	  valid    91  ( 9.1%)
//	  Copied 1000, skipped 0 → dataset
//	──────────────────────────────────────────────────
func PrintSplitSummary(w io.Writer, seed split.Seed, res *split.OrganizeResult, dst string, dryRun bool) {
	sep := strings.Repeat("─", 50)
	fmt.Fprintln(w, sep)
	fmt.Fprintf(w, "  Split:  seed %d (train %.2f / test %.2f / valid %.2f)\n",
		seed.Seed, seed.TrainRatio, seed.TestRatio, seed.ValidRatio())
	for _, l := range split.Labels {
		fmt.Fprintf(w, "  %-6s %5d  (%4.1f%%)\n", l, res.Counts[l], res.Counts.Share(l)*100)
	}
	if dryRun {
		fmt.Fprintf(w, "  Dry run: %d files would be written to %s\n", res.Counts.Total(), dst)
	} else {
		fmt.Fprintf(w, "  Copied %d, skipped %d → %s\n", res.Copied, res.Skipped, dst)
		if res.Pruned > 0 {
			fmt.Fprintf(w, "  Removed %d stale copies from other subsets\n", res.Pruned)
		}
	}
	fmt.Fprintln(w, sep)
}
