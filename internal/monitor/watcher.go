// Package monitor polls a training log and turns it into progress state.
//
// A Watcher re-reads the whole log on every poll, parses it with trainlog,
// and keeps one snapshot plus the bookkeeping that spans polls: when the
// snapshot was last refreshed, whether it has gone stale, and how many of
// the queued classes have finished.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/CodexForgeBR/trainwatch/internal/logging"
	"github.com/CodexForgeBR/trainwatch/internal/logstore"
	"github.com/CodexForgeBR/trainwatch/internal/queue"
	"github.com/CodexForgeBR/trainwatch/internal/trainlog"
)

// Defaults for Config fields left zero.
const (
	DefaultPollInterval       = 5 * time.Second
	DefaultStaleCheckInterval = 5 * time.Second
	DefaultStaleIntervals     = 12
)

// Config configures a Watcher.
type Config struct {
	PollInterval       time.Duration // interval between log reads (default 5s)
	StaleCheckInterval time.Duration // interval between staleness checks (default 5s)
	StaleIntervals     int           // poll intervals without an update before stale (default 12)
	QueueFile          string        // training queue descriptor; sets TotalClasses when non-empty
}

// StaleAfter is how long a snapshot may go without a refresh before it is
// reported stale.
func (c Config) StaleAfter() time.Duration {
	return time.Duration(c.StaleIntervals) * c.PollInterval
}

func (c *Config) applyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.StaleCheckInterval <= 0 {
		c.StaleCheckInterval = DefaultStaleCheckInterval
	}
	if c.StaleIntervals <= 0 {
		c.StaleIntervals = DefaultStaleIntervals
	}
}

// LogSource is the training log. Clear is the only write a Watcher issues,
// and only after it has observed a completion marker.
type LogSource interface {
	Read() (string, error)
	Clear() error
}

// Sequencer receives class-completion and stage-advance signals.
// *workflow.Workflow satisfies it.
type Sequencer interface {
	CompleteClass()
	AdvanceStage()
}

// Watcher interprets one training run. Poll and CheckStale may be called
// from different goroutines.
type Watcher struct {
	cfg    Config
	log    LogSource
	seq    Sequencer
	now    func() time.Time
	pollMu sync.Mutex // serializes Poll so the latest full read always wins

	mu           sync.Mutex
	snapshot     *trainlog.Snapshot
	lastUpdate   time.Time
	stale        bool
	completed    int
	total        int
	lastErr      error
	classCounted bool // completion in the current log already counted
	clearPending bool // a clear was requested but has not succeeded
	onUpdate     func(Status)
}

// Option customizes a Watcher.
type Option func(*Watcher)

// WithSequencer forwards class completions and the final stage advance.
func WithSequencer(s Sequencer) Option {
	return func(w *Watcher) { w.seq = s }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(w *Watcher) { w.now = now }
}

// WithTotalClasses sets the class count without reading a queue file.
func WithTotalClasses(n int) Option {
	return func(w *Watcher) { w.total = n }
}

// WithCompletedClasses resumes a run that already finished n classes.
func WithCompletedClasses(n int) Option {
	return func(w *Watcher) { w.completed = n }
}

// OnUpdate registers fn to receive the status after every poll and every
// staleness change.
func OnUpdate(fn func(Status)) Option {
	return func(w *Watcher) { w.onUpdate = fn }
}

// NewWatcher returns a Watcher over src.
func NewWatcher(src LogSource, cfg Config, opts ...Option) *Watcher {
	cfg.applyDefaults()
	w := &Watcher{cfg: cfg, log: src, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// LoadTotalClasses reads the queue descriptor and records its class count.
func (w *Watcher) LoadTotalClasses(path string) (int, error) {
	d, err := queue.Load(path)
	if err != nil {
		return 0, err
	}
	n := d.TotalClasses()
	w.mu.Lock()
	w.total = n
	w.mu.Unlock()
	return n, nil
}

// Status returns a copy of the current state.
func (w *Watcher) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.statusLocked()
}

// Done reports whether every class has finished.
func (w *Watcher) Done() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.allCompleteLocked()
}

// Poll reads the full log once and updates the watcher's state.
//
// Read errors never escape: they are stored on the returned Status so the
// caller can show them, and the next poll retries. Content without any
// progress line leaves the previous snapshot in place.
func (w *Watcher) Poll() Status {
	w.pollMu.Lock()
	defer w.pollMu.Unlock()

	w.mu.Lock()
	if w.allCompleteLocked() {
		st := w.statusLocked()
		w.mu.Unlock()
		return st
	}
	w.mu.Unlock()

	content, readErr := w.log.Read()
	var snap *trainlog.Snapshot
	if readErr == nil {
		snap, _ = trainlog.Parse(content)
	}

	w.mu.Lock()
	var completedClass, finished bool
	switch {
	case readErr != nil:
		w.lastErr = readErr
		if logstore.KindOf(readErr).Transient() {
			// The log was cleared or recreated: a new class is starting.
			w.classCounted = false
			w.clearPending = false
		}
	case snap == nil:
		w.lastErr = nil
		w.classCounted = false
		w.clearPending = false
	default:
		w.snapshot = snap
		w.lastUpdate = w.now()
		w.stale = false
		w.lastErr = nil

		if !snap.IsComplete {
			w.classCounted = false
			w.clearPending = false
			break
		}
		if !w.classCounted {
			w.classCounted = true
			completedClass = true
			w.completed++
			if w.allCompleteLocked() {
				finished = true
			} else {
				w.clearPending = true
			}
		}
	}
	needClear := w.clearPending
	w.mu.Unlock()

	if completedClass {
		logging.Debug(fmt.Sprintf("class %q finished", snap.CompletedClass))
		if w.seq != nil {
			w.seq.CompleteClass()
		}
	}
	if needClear {
		w.clearLog()
	}
	if finished && w.seq != nil {
		w.seq.AdvanceStage()
	}

	st := w.Status()
	w.notify(st)
	return st
}

func (w *Watcher) clearLog() {
	err := w.log.Clear()
	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.lastErr = fmt.Errorf("clear training log: %w", err)
		return
	}
	w.clearPending = false
}

// CheckStale marks the snapshot stale when it has not been refreshed for
// longer than the staleness window. It never touches the log and never
// drops the snapshot.
func (w *Watcher) CheckStale(now time.Time) bool {
	w.mu.Lock()
	was := w.stale
	w.stale = w.snapshot != nil && !w.allCompleteLocked() && now.Sub(w.lastUpdate) > w.cfg.StaleAfter()
	changed := was != w.stale
	st := w.statusLocked()
	w.mu.Unlock()

	if changed {
		w.notify(st)
	}
	return st.IsStale
}

// Run polls until ctx is cancelled or every class has finished.
//
// It loads the class count from the queue file (if configured). When every
// class is already counted it advances the sequencer once and returns nil.
// Otherwise it polls once immediately, then drives polls and staleness
// checks on two independent schedules. A poll tick that fires while the previous one is still reading
// is skipped. Run returns nil once all classes are done and ctx.Err()
// otherwise, after both schedules have stopped.
func (w *Watcher) Run(ctx context.Context) error {
	if w.cfg.QueueFile != "" {
		n, err := w.LoadTotalClasses(w.cfg.QueueFile)
		if err != nil {
			return fmt.Errorf("load training queue: %w", err)
		}
		logging.Info(fmt.Sprintf("Total classes to train: %d", n))
	}

	if w.Done() {
		// Restored with every class already counted: no poll will ever
		// finish the run, so move the sequencer on here.
		if w.seq != nil {
			w.seq.AdvanceStage()
		}
		w.notify(w.Status())
		return nil
	}

	w.Poll()
	if w.Done() {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := cron.New(
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
	)
	c.Schedule(cron.Every(w.cfg.PollInterval), cron.FuncJob(func() {
		w.Poll()
		if w.Done() {
			cancel()
		}
	}))
	c.Schedule(cron.Every(w.cfg.StaleCheckInterval), cron.FuncJob(func() {
		w.CheckStale(w.now())
	}))
	c.Start()

	<-runCtx.Done()
	<-c.Stop().Done()

	if w.Done() {
		return nil
	}
	return ctx.Err()
}

func (w *Watcher) notify(st Status) {
	w.mu.Lock()
	fn := w.onUpdate
	w.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}

func (w *Watcher) allCompleteLocked() bool {
	return w.total > 0 && w.completed >= w.total
}

func (w *Watcher) statusLocked() Status {
	st := Status{
		LastUpdate:       w.lastUpdate,
		IsStale:          w.stale,
		CompletedClasses: w.completed,
		TotalClasses:     w.total,
		Err:              w.lastErr,
	}
	if w.snapshot != nil {
		cp := *w.snapshot
		cp.RecentLosses = append([]float64(nil), w.snapshot.RecentLosses...)
		st.Snapshot = &cp
	}

	switch {
	case w.allCompleteLocked():
		st.State = AllComplete
	case w.classCounted:
		st.State = ClassComplete
	case w.snapshot != nil:
		st.State = Active
	default:
		st.State = Idle
	}
	return st
}
