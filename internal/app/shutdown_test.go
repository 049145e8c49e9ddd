package app

import (
	"context"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestAwaitShutdown_WaitsForLoopToFinish(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	quit := make(chan os.Signal, 1)
	done := make(chan struct{})
	var finished atomic.Bool

	go func() {
		defer close(done)
		<-ctx.Done()
		// still handling the last message after cancellation
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
	}()

	quit <- syscall.SIGTERM
	awaitShutdown(quit, cancel, done, zap.NewNop())

	assert.True(t, finished.Load())
}

func TestAwaitShutdown_LoopExitsFirst(t *testing.T) {
	_, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	close(done)

	returned := make(chan struct{})
	go func() {
		awaitShutdown(make(chan os.Signal), cancel, done, zap.NewNop())
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("awaitShutdown did not return after the loop exited")
	}
}
