package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/trainwatch/internal/banner"
	"github.com/CodexForgeBR/trainwatch/internal/cli"
	"github.com/CodexForgeBR/trainwatch/internal/exitcode"
	"github.com/CodexForgeBR/trainwatch/internal/logging"
	"github.com/CodexForgeBR/trainwatch/internal/logstore"
	"github.com/CodexForgeBR/trainwatch/internal/monitor"
	"github.com/CodexForgeBR/trainwatch/internal/notification"
	"github.com/CodexForgeBR/trainwatch/internal/queue"
	sighandler "github.com/CodexForgeBR/trainwatch/internal/signal"
	"github.com/CodexForgeBR/trainwatch/internal/state"
	"github.com/CodexForgeBR/trainwatch/internal/workflow"
)

func (a *app) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the training log until every queued class has trained",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd.Context())
		},
	}
	cli.BindWatchFlags(cmd, a.flags)
	return cmd
}

// openWatchRun picks the run to watch: a fresh one, a resumed one, or a run
// that only has a dataset split recorded so far.
func (a *app) openWatchRun() (*state.RunState, error) {
	cfg := a.cfg
	if cfg.Clean {
		if err := state.Remove(cfg.StateDir); err != nil {
			return nil, err
		}
		logging.Info("Removed saved run state")
	}

	rs, fresh, err := a.loadOrNew()
	if err != nil {
		return nil, err
	}
	switch {
	case fresh:
	case cfg.Resume:
		if err := state.Resume(rs, cfg.QueueFile, cfg.ResumeForce); err != nil {
			return nil, err
		}
		logging.Info(fmt.Sprintf("Resuming run %s at stage %s (%d/%d classes)", rs.RunID, rs.Stage, rs.CompletedClasses, rs.TotalClasses))
	case rs.FurthestStage == workflow.StageSetup.String():
		logging.Debug(fmt.Sprintf("continuing setup run %s", rs.RunID))
	default:
		return nil, fmt.Errorf("a saved run exists (%s, stage %s); use --resume to continue or --clean to start over", rs.RunID, rs.Stage)
	}

	rs.LogFile = cfg.LogFile
	rs.QueueFile = cfg.QueueFile
	if hash, err := queue.HashFile(cfg.QueueFile); err == nil {
		rs.QueueFileHash = hash
	}
	return rs, nil
}

func (a *app) runWatch(ctx context.Context) error {
	cfg := a.cfg

	rs, err := a.openWatchRun()
	if err != nil {
		return err
	}

	// Without a readable queue the run is open-ended: classes are counted
	// and the log cleared after each, but the end is never detected.
	total := 0
	if desc, err := queue.Load(cfg.QueueFile); err != nil {
		logging.Warn(fmt.Sprintf("Class count unknown: %v", err))
	} else {
		total = desc.TotalClasses()
	}

	ws, err := rs.Workflow()
	if err != nil {
		return err
	}
	wf := workflow.Restore(ws)
	wf.SetTotalClasses(total)
	if wf.Stage() > workflow.StageTrain {
		logging.Success(fmt.Sprintf("Training already finished (stage %s)", wf.Stage()))
		return nil
	}
	for wf.Stage() < workflow.StageTrain {
		wf.AdvanceStage()
	}

	sess := newSession(rs, cfg.StateDir)
	sess.update(func(rs *state.RunState) { rs.RecordWorkflow(wf.State()) })
	wf.OnChange(func(s workflow.State) {
		sess.update(func(rs *state.RunState) { rs.RecordWorkflow(s) })
	})

	notifier := a.notifier(rs.RunID)
	view := &statusView{
		out:       a.out,
		completed: wf.State().CompletedClasses,
		notify:    func(e notification.Event) { go notifier.notify(e) },
	}
	watcher := monitor.NewWatcher(
		logstore.New(cfg.LogFile),
		monitor.Config{
			PollInterval:       cfg.PollDuration(),
			StaleCheckInterval: cfg.StaleCheckDuration(),
			StaleIntervals:     cfg.StaleIntervals,
		},
		monitor.WithSequencer(wf),
		monitor.WithTotalClasses(total),
		monitor.WithCompletedClasses(wf.State().CompletedClasses),
		monitor.OnUpdate(func(st monitor.Status) {
			sess.update(func(rs *state.RunState) { rs.RecordStatus(st) })
			view.show(st, time.Now())
		}),
	)

	banner.PrintStartupBanner(a.out, rs.RunID, cfg.LogFile, cfg.QueueFile, total)
	start := time.Now()

	runCtx, interrupt := sighandler.WithInterrupt(ctx, func(os.Signal) {
		logging.Warn("Interrupted, saving state...")
	})
	defer interrupt.Stop()

	runErr := watcher.Run(runCtx)
	final := watcher.Status()
	sess.update(func(rs *state.RunState) {
		rs.RecordStatus(final)
		rs.RecordWorkflow(wf.State())
	})

	if interrupt.Received() {
		sess.update(func(rs *state.RunState) { rs.Status = state.StatusInterrupted })
		banner.PrintInterruptedBanner(a.out, wf.Stage().String(), final.CompletedClasses, final.TotalClasses)
		notifier.notify(notification.Event{Kind: notification.EventInterrupted, Completed: final.CompletedClasses, Total: final.TotalClasses})
		return &exitcode.ExitError{Code: exitcode.Interrupted}
	}
	if runErr != nil {
		return runErr
	}

	banner.PrintTrainingCompleteBanner(a.out, final.CompletedClasses, int(time.Since(start).Seconds()))
	notifier.notify(notification.Event{Kind: notification.EventTrainingComplete, Completed: final.CompletedClasses, Total: final.TotalClasses})
	return nil
}

// statusView prints a status line whenever it changes and a banner for
// each finished class. Class completions, stalls and log errors are also
// sent to the notifier.
type statusView struct {
	out       io.Writer
	notify    func(notification.Event)
	mu        sync.Mutex
	lastLine  string
	completed int
	stale     bool
	lastErr   string
}

func (v *statusView) show(st monitor.Status, now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if st.CompletedClasses > v.completed {
		v.completed = st.CompletedClasses
		class := ""
		if st.Snapshot != nil {
			class = st.Snapshot.CompletedClass
		}
		banner.PrintClassCompleteBanner(v.out, class, st.CompletedClasses, st.TotalClasses)
		if st.State != monitor.AllComplete {
			v.send(notification.Event{Kind: notification.EventClassComplete, Completed: st.CompletedClasses, Total: st.TotalClasses, Detail: class})
		}
	}
	if st.State == monitor.AllComplete {
		return
	}

	if st.IsStale && !v.stale {
		ago := now.Sub(st.LastUpdate).Round(time.Second)
		v.send(notification.Event{Kind: notification.EventStalled, Completed: st.CompletedClasses, Total: st.TotalClasses, Detail: ago.String()})
	}
	v.stale = st.IsStale

	errText := ""
	if st.Err != nil && !st.ErrKind().Transient() {
		errText = st.Err.Error()
		if errText != v.lastErr {
			v.send(notification.Event{Kind: notification.EventLogError, Completed: st.CompletedClasses, Total: st.TotalClasses, Detail: errText})
		}
	}
	v.lastErr = errText

	sev, line := st.Line(now)
	if line == v.lastLine {
		return
	}
	v.lastLine = line
	switch sev {
	case monitor.SeverityWarn:
		logging.Warn(line)
	case monitor.SeverityError:
		logging.Error(line)
	case monitor.SeveritySuccess:
		logging.Success(line)
	default:
		logging.Info(line)
	}
}

func (v *statusView) send(e notification.Event) {
	if v.notify != nil {
		v.notify(e)
	}
}
