package engine

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/wricardo/stackquest/game/stack"
)

var ErrNoLevelSource = errors.New("level source is required")

// Engine provides the main interface for game operations
type Engine interface {
	// Input
	SubmitDirection(dir Vector)
	Direction() Vector
	RequestReset()
	RequestQuit()

	// Simulation
	AdvanceTick() (*TickResult, error)
	ResolveTick(dir Vector) (*TickResult, error)

	// Observation
	Snapshot() *Snapshot
	State() State
	IsQuit() bool
	Rules() Rules
	LevelCount() int

	// Inventory
	SetCapacity(n int) error

	// Persistence
	Save() *SavedGame
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// mutation; callers serialise ticks. Snapshot, Save, State and IsQuit read
// the committed world and may be called from any goroutine.
type GameEngine struct {
	source LevelSource
	rules  Rules
	// current is the committed world. It is never mutated once stored.
	current atomic.Pointer[world]

	direction      Vector
	resetRequested bool
	quitRequested  bool

	snapshot atomic.Pointer[Snapshot]
}

// New starts a game on the first level of source. A source with no levels
// starts already cleared.
func New(source LevelSource, rules Rules) (*GameEngine, error) {
	if source == nil {
		return nil, ErrNoLevelSource
	}
	rules = rules.WithDefaults()
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}

	e := &GameEngine{source: source, rules: rules}
	w := &world{
		grid:      NewGrid(0, 0),
		inventory: stack.New[Item](rules.Capacity),
	}
	if err := e.load(w, 0, nil); err != nil {
		return nil, err
	}
	if w.state == Playing {
		w.say(rules.Messages.Welcome)
	}
	e.commit(w)
	return e, nil
}

// SubmitDirection stores the held direction used by AdvanceTick. The vector
// is clamped to unit length.
func (e *GameEngine) SubmitDirection(dir Vector) {
	e.direction = dir.Clamp()
}

// Direction returns the held direction.
func (e *GameEngine) Direction() Vector {
	return e.direction
}

// RequestReset asks for the current level to be reloaded at the start of the
// next tick.
func (e *GameEngine) RequestReset() {
	e.resetRequested = true
}

// RequestQuit asks for the game to stop at the start of the next tick. Quit
// wins over a reset requested for the same tick.
func (e *GameEngine) RequestQuit() {
	e.quitRequested = true
}

// AdvanceTick resolves one tick using the held direction.
func (e *GameEngine) AdvanceTick() (*TickResult, error) {
	return e.ResolveTick(e.direction)
}

// ResolveTick resolves one tick of input dir. The tick is atomic: it is
// computed on a private copy of the world and committed only on success, so
// a failed level load leaves the last published snapshot in place.
//
// Pending reset and quit requests are consumed even when the tick fails.
func (e *GameEngine) ResolveTick(dir Vector) (*TickResult, error) {
	w := e.current.Load().clone()
	w.tick++
	res := &TickResult{}

	reset, quit := e.resetRequested, e.quitRequested
	e.resetRequested, e.quitRequested = false, false

	switch {
	case quit:
		if !w.quit {
			w.quit = true
			res.emit(Event{Kind: EventQuit, Cell: w.player.Cell()})
		}
	case reset && !w.quit:
		if err := e.restart(w, res); err != nil {
			return nil, err
		}
	}

	if !w.quit && w.state == Playing && !dir.IsZero() {
		res.Transition = resolveMovement(w, &e.rules, dir, res)
		if err := e.apply(w, res.Transition, res); err != nil {
			return nil, err
		}
	}

	res.Tick = w.tick
	res.Position = w.player
	res.State = w.state
	e.commit(w)
	return res, nil
}

// SetCapacity changes the inventory capacity of the running game. It fails
// with stack.ErrInvalidCapacity when the inventory holds more than n items.
func (e *GameEngine) SetCapacity(n int) error {
	w := e.current.Load().clone()
	if err := w.inventory.SetCapacity(n); err != nil {
		return fmt.Errorf("set capacity %d: %w", n, err)
	}
	e.commit(w)
	return nil
}

// Snapshot returns the last committed state. The returned value is never
// mutated.
func (e *GameEngine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

func (e *GameEngine) State() State { return e.current.Load().state }

func (e *GameEngine) IsQuit() bool { return e.current.Load().quit }

func (e *GameEngine) Rules() Rules { return e.rules }

func (e *GameEngine) LevelCount() int { return e.source.Count() }

func (e *GameEngine) commit(w *world) {
	e.current.Store(w)
	e.snapshot.Store(w.snapshot(e.source.Count(), e.rules.HalfSize))
}
