package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wricardo/stackquest/game/stack"
)

// State is the game's coarse lifecycle state.
type State uint8

const (
	Playing State = iota
	Dead
	Cleared
)

var stateNames = [...]string{
	Playing: "playing",
	Dead:    "dead",
	Cleared: "cleared",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", s)
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for i, n := range stateNames {
		if n == name {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown game state %q", text)
}

// Transition is a state change requested while resolving a tick.
type Transition uint8

const (
	NoTransition Transition = iota
	RequestDeath
	RequestAdvance
)

func (t Transition) String() string {
	switch t {
	case RequestDeath:
		return "death"
	case RequestAdvance:
		return "advance"
	default:
		return "none"
	}
}

func (t Transition) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// EventKind names something that happened during a tick.
type EventKind string

const (
	EventPickup        EventKind = "pickup"
	EventInventoryFull EventKind = "inventory_full"
	EventDoorOpened    EventKind = "door_opened"
	EventDoorLocked    EventKind = "door_locked"
	EventMonsterSlain  EventKind = "monster_slain"
	EventFireDoused    EventKind = "fire_doused"
	EventDeath         EventKind = "death"
	EventLevelLoaded   EventKind = "level_loaded"
	EventCleared       EventKind = "cleared"
	EventReset         EventKind = "reset"
	EventQuit          EventKind = "quit"
)

// Event records one gameplay effect.
type Event struct {
	Kind    EventKind `json:"kind"`
	Tile    Tile      `json:"tile,omitempty"`
	Item    Item      `json:"item,omitempty"`
	Cell    Cell      `json:"cell"`
	Message string    `json:"message,omitempty"`
}

// TickResult describes the outcome of one resolved tick.
type TickResult struct {
	Tick uint64 `json:"tick"`
	// Moved reports whether any axis actually moved.
	Moved      bool       `json:"moved"`
	Position   Vector     `json:"position"`
	Events     []Event    `json:"events,omitempty"`
	Transition Transition `json:"transition"`
	State      State      `json:"state"`
}

func (r *TickResult) emit(ev Event) {
	if r != nil {
		r.Events = append(r.Events, ev)
	}
}

// world is the complete mutable game context. Ticks work on a clone and the
// engine swaps it in only once the tick has fully resolved.
type world struct {
	tick       uint64
	levelIndex int
	levelName  string
	grid       *Grid
	player     Vector
	spawn      Cell
	inventory  *stack.Stack[Item]
	state      State
	message    string
	quit       bool
}

func (w *world) clone() *world {
	c := *w
	c.grid = w.grid.Clone()
	c.inventory = w.inventory.Clone()
	return &c
}

// say sets the status message and reports whether it changed.
func (w *world) say(msg string) bool {
	changed := w.message != msg
	w.message = msg
	return changed
}

// apply carries out a transition requested by movement or interaction.
func (e *GameEngine) apply(w *world, tr Transition, res *TickResult) error {
	switch tr {
	case RequestDeath:
		w.state = Dead
	case RequestAdvance:
		return e.load(w, w.levelIndex+1, res)
	}
	return nil
}

// restart handles a reset request: the current level is reloaded, or the
// whole sequence when it has already been cleared.
func (e *GameEngine) restart(w *world, res *TickResult) error {
	index := w.levelIndex
	if w.state == Cleared {
		index = 0
	}
	if err := e.load(w, index, res); err != nil {
		return err
	}
	w.say(e.rules.Messages.Reset)
	res.emit(Event{Kind: EventReset, Cell: w.spawn, Message: w.message})
	return nil
}

// load installs level index into w. Running past the last level clears the
// game instead of failing.
func (e *GameEngine) load(w *world, index int, res *TickResult) error {
	count := e.source.Count()
	if index >= count {
		w.levelIndex = count
		w.state = Cleared
		w.say(e.rules.Messages.Cleared)
		res.emit(Event{Kind: EventCleared, Cell: w.player.Cell(), Message: w.message})
		return nil
	}

	level, err := e.source.Load(index)
	if err != nil {
		var mle *MapLoadError
		if !errors.As(err, &mle) {
			err = &MapLoadError{Index: index, Err: err}
		}
		return err
	}

	if level.HasSpawn {
		w.spawn = level.Spawn
	}
	w.levelIndex = index
	w.levelName = level.Name
	w.grid = level.Grid.Clone()
	w.player = CellCenter(w.spawn)
	w.inventory.Clear()
	w.state = Playing
	w.say(fmt.Sprintf(e.rules.Messages.LevelStart, index+1, count))
	res.emit(Event{Kind: EventLevelLoaded, Cell: w.spawn, Message: w.message})
	return nil
}
