package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTicker_RunsUntilFuncReturnsFalse(t *testing.T) {
	var calls atomic.Int32
	ticker := NewTicker(time.Millisecond, func(ctx context.Context) bool {
		return calls.Add(1) < 3
	})
	ticker.Start(context.Background())

	select {
	case <-ticker.Done():
	case <-time.After(time.Second):
		t.Fatal("ticker did not stop")
	}
	assert.Equal(t, int32(3), calls.Load())
	assert.False(t, ticker.Running())
}

func TestTicker_FirstCallIsImmediate(t *testing.T) {
	called := make(chan struct{}, 1)
	ticker := NewTicker(time.Hour, func(ctx context.Context) bool {
		called <- struct{}{}
		return true
	})
	ticker.Start(context.Background())
	defer ticker.Stop()

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("first tick did not run immediately")
	}
	assert.True(t, ticker.Running())
}

func TestTicker_StopWaitsForExit(t *testing.T) {
	var calls atomic.Int32
	ticker := NewTicker(time.Millisecond, func(ctx context.Context) bool {
		calls.Add(1)
		return true
	})
	ticker.Start(context.Background())
	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)

	ticker.Stop()
	after := calls.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, after, calls.Load())
	assert.False(t, ticker.Running())
}

func TestTicker_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ticker := NewTicker(time.Millisecond, func(ctx context.Context) bool { return true })
	ticker.Start(ctx)

	cancel()
	select {
	case <-ticker.Done():
	case <-time.After(time.Second):
		t.Fatal("ticker ignored context cancellation")
	}
}

func TestTicker_StopBeforeStart(t *testing.T) {
	ticker := NewTicker(time.Millisecond, func(ctx context.Context) bool {
		t.Error("stopped ticker must not tick")
		return false
	})
	ticker.Stop()
	ticker.Start(context.Background())

	select {
	case <-ticker.Done():
	default:
		t.Fatal("expected Done to be closed")
	}
	assert.False(t, ticker.Running())
}
