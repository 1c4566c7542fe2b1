package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wricardo/stackquest/game/engine"
	"github.com/wricardo/stackquest/game/service"
)

// DefaultInterval is the tick cadence used when none is configured.
const DefaultInterval = 100 * time.Millisecond

// Broadcaster receives every snapshot the driver produces.
type Broadcaster interface {
	BroadcastSnapshot(sessionID string, snap *engine.Snapshot)
}

// Driver turns held input into ticks. Each session with a held direction
// gets its own Ticker; releasing the input stops it. Reset and quit are
// queued on the engine and applied by the next tick, which the driver
// resolves at once when no ticker is running.
type Driver struct {
	ctx      context.Context
	service  service.GameService
	out      Broadcaster
	interval time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	tickers map[string]*Ticker
	held    map[string]engine.Vector
}

// NewDriver creates a driver whose tickers live until ctx is cancelled. A
// nil out discards snapshots.
func NewDriver(ctx context.Context, svc service.GameService, out Broadcaster, interval time.Duration, logger *log.Logger) *Driver {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Driver{
		ctx:      ctx,
		service:  svc,
		out:      out,
		interval: interval,
		logger:   logger.WithPrefix("scheduler"),
		tickers:  make(map[string]*Ticker),
		held:     make(map[string]engine.Vector),
	}
}

// Hold submits dir as the held direction and starts ticking. A zero
// direction behaves like Release.
func (d *Driver) Hold(sessionID string, dir engine.Vector) error {
	dir = dir.Clamp()
	if err := d.service.SubmitDirection(d.ctx, sessionID, dir); err != nil {
		return err
	}
	if dir.IsZero() {
		d.stop(sessionID)
		return nil
	}

	d.mu.Lock()
	d.held[sessionID] = dir
	d.mu.Unlock()
	d.start(sessionID)
	return nil
}

// Release stops the session's ticker and zeroes the held direction. The
// ticker stops even when the session no longer exists.
func (d *Driver) Release(sessionID string) error {
	d.stop(sessionID)
	return d.service.SubmitDirection(d.ctx, sessionID, engine.Vector{})
}

// Reset queues a level reset.
func (d *Driver) Reset(sessionID string) error {
	return d.request(sessionID, d.service.RequestReset)
}

// Quit queues a quit.
func (d *Driver) Quit(sessionID string) error {
	return d.request(sessionID, d.service.RequestQuit)
}

func (d *Driver) request(sessionID string, fn func(context.Context, string) error) error {
	if err := fn(d.ctx, sessionID); err != nil {
		return err
	}
	if d.Running(sessionID) {
		return nil
	}
	if d.tick(d.ctx, sessionID) && d.holding(sessionID) {
		d.start(sessionID)
	}
	return nil
}

// Running reports whether sessionID has an active ticker.
func (d *Driver) Running(sessionID string) bool {
	d.mu.Lock()
	t := d.tickers[sessionID]
	d.mu.Unlock()
	return t != nil && t.Running()
}

func (d *Driver) holding(sessionID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.held[sessionID].IsZero()
}

func (d *Driver) start(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t := d.tickers[sessionID]; t != nil && t.Running() {
		return
	}

	t := NewTicker(d.interval, func(ctx context.Context) bool {
		return d.tick(ctx, sessionID)
	})
	d.tickers[sessionID] = t
	t.Start(d.ctx)

	go func() {
		<-t.Done()
		d.mu.Lock()
		if d.tickers[sessionID] == t {
			delete(d.tickers, sessionID)
		}
		d.mu.Unlock()
	}()
}

func (d *Driver) stop(sessionID string) {
	d.mu.Lock()
	t := d.tickers[sessionID]
	delete(d.tickers, sessionID)
	delete(d.held, sessionID)
	d.mu.Unlock()

	if t != nil {
		t.Stop()
	}
}

// tick resolves one tick and broadcasts the result. It reports whether the
// game can keep ticking.
func (d *Driver) tick(ctx context.Context, sessionID string) bool {
	res, err := d.service.Tick(ctx, sessionID)
	if err != nil {
		if ctx.Err() == nil {
			d.logger.Error("tick failed", "session", sessionID, "err", err)
		}
		return false
	}

	snap := res.Snapshot
	if d.out != nil && snap != nil {
		d.out.BroadcastSnapshot(sessionID, snap)
	}
	for _, ev := range res.Events {
		d.logger.Debug("event", "session", sessionID, "tick", ev.Tick, "kind", ev.Kind, "message", ev.Message)
	}
	return snap != nil && snap.GameState == engine.Playing && !snap.Quit
}

// Forget stops and drops any ticker for a deleted session.
func (d *Driver) Forget(sessionID string) {
	d.stop(sessionID)
}

// Shutdown stops every ticker.
func (d *Driver) Shutdown() {
	d.mu.Lock()
	tickers := make([]*Ticker, 0, len(d.tickers))
	for _, t := range d.tickers {
		tickers = append(tickers, t)
	}
	d.tickers = make(map[string]*Ticker)
	d.held = make(map[string]engine.Vector)
	d.mu.Unlock()

	for _, t := range tickers {
		t.Stop()
	}
}
