package signal

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithInterrupt_SIGINTCancelsContext(t *testing.T) {
	got := make(chan os.Signal, 1)
	ctx, in := WithInterrupt(context.Background(), func(sig os.Signal) {
		got <- sig
	})
	defer in.Stop()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled after SIGINT")
	}

	select {
	case sig := <-got:
		assert.Equal(t, syscall.SIGINT, sig)
	case <-time.After(time.Second):
		t.Fatal("onInterrupt was not called")
	}
	assert.True(t, in.Received())
}

func TestWithInterrupt_SIGTERMWithoutCallback(t *testing.T) {
	ctx, in := WithInterrupt(context.Background(), nil)
	defer in.Stop()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled after SIGTERM")
	}
	assert.True(t, in.Received())
}

func TestWithInterrupt_ParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	called := false
	ctx, in := WithInterrupt(parent, func(os.Signal) { called = true })

	cancel()
	<-ctx.Done()
	in.Stop()

	assert.False(t, in.Received())
	assert.False(t, called)
}

func TestWithInterrupt_StopCancels(t *testing.T) {
	ctx, in := WithInterrupt(context.Background(), nil)
	in.Stop()

	select {
	case <-ctx.Done():
	default:
		t.Fatal("Stop should cancel the derived context")
	}
	assert.False(t, in.Received())
}

func TestWithInterrupt_StopTwice(t *testing.T) {
	_, in := WithInterrupt(context.Background(), nil)
	in.Stop()
	assert.NotPanics(t, in.Stop)
}
