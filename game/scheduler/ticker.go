package scheduler

import (
	"context"
	"sync"
	"time"
)

// TickFunc is called once per tick. Returning false stops the ticker.
type TickFunc func(ctx context.Context) bool

// Ticker runs a TickFunc at a fixed cadence on its own goroutine. The first
// call happens immediately on Start.
type Ticker struct {
	interval time.Duration
	fn       TickFunc

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewTicker creates a stopped ticker.
func NewTicker(interval time.Duration, fn TickFunc) *Ticker {
	return &Ticker{
		interval: interval,
		fn:       fn,
		done:     make(chan struct{}),
	}
}

// Start launches the loop. It runs until ctx is cancelled, Stop is called
// or fn returns false. A ticker can only be started once.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return
	}
	t.started = true
	ctx, t.cancel = context.WithCancel(ctx)
	go t.loop(ctx)
}

func (t *Ticker) loop(ctx context.Context) {
	defer close(t.done)

	if !t.fn(ctx) {
		return
	}

	tick := time.NewTicker(t.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if ctx.Err() != nil || !t.fn(ctx) {
				return
			}
		}
	}
}

// Stop cancels the loop and waits for it to exit. It must not be called from
// inside the TickFunc. Stopping a ticker that never started marks it done.
func (t *Ticker) Stop() {
	t.mu.Lock()
	if !t.started {
		t.started = true
		close(t.done)
		t.mu.Unlock()
		return
	}
	t.cancel()
	t.mu.Unlock()
	<-t.done
}

// Done is closed once the loop has exited.
func (t *Ticker) Done() <-chan struct{} { return t.done }

// Running reports whether the loop has started and not yet exited.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	started := t.started
	t.mu.Unlock()
	if !started {
		return false
	}
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}
