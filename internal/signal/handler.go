// Package signal turns SIGINT and SIGTERM into context cancellation so the
// long-running watch and generate commands can persist state before exiting.
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// Interrupt reports whether a shutdown signal cancelled the context.
type Interrupt struct {
	received atomic.Bool
	stop     func()
}

// Received is true once SIGINT or SIGTERM has been delivered.
func (i *Interrupt) Received() bool { return i.received.Load() }

// Stop unregisters the handler and releases the derived context.
func (i *Interrupt) Stop() { i.stop() }

// WithInterrupt derives a context from parent that is cancelled on the first
// SIGINT or SIGTERM. onInterrupt, when non-nil, runs before the cancel.
//
// A single goroutine listens for the signal. It exits when a signal arrives
// or the derived context is done. Stop unregisters the handler, cancels the
// context and waits for that goroutine, so onInterrupt has returned by the
// time Stop does. Stop is safe to call more than once.
//
// Parameters:
//   - parent: The context to derive from; cancelling it also ends the listener
//   - onInterrupt: Optional callback run with the received signal before cancel
//
// Example usage:
//
//	ctx, interrupt := signal.WithInterrupt(context.Background(), func(os.Signal) {
//	    logging.Warn("Interrupted, saving state...")
//	})
//	defer interrupt.Stop()
//	err := watcher.Run(ctx)
//	if interrupt.Received() {
//	    // persist and exit with the interrupted code
//	}
func WithInterrupt(parent context.Context, onInterrupt func(os.Signal)) (context.Context, *Interrupt) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	in := &Interrupt{}
	done := make(chan struct{})
	in.stop = func() {
		signal.Stop(sigCh)
		cancel()
		<-done
	}

	// Listener goroutine.
	go func() {
		defer close(done)
		select {
		case sig := <-sigCh:
			in.received.Store(true)
			if onInterrupt != nil {
				onInterrupt(sig)
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, in
}
