package engine

import (
	"fmt"

	"github.com/wricardo/stackquest/game/stack"
)

// SavedGame is the persistable form of a running game.
type SavedGame struct {
	Tick       uint64   `json:"tick"`
	LevelIndex int      `json:"level_index"`
	LevelName  string   `json:"level_name"`
	Grid       []string `json:"grid"`
	Player     Vector   `json:"player"`
	Spawn      Cell     `json:"spawn"`
	Inventory  []Item   `json:"inventory"` // bottom first
	Capacity   int      `json:"capacity"`
	State      State    `json:"state"`
	Message    string   `json:"message"`
	Quit       bool     `json:"quit"`
}

// Save captures the committed world.
func (e *GameEngine) Save() *SavedGame {
	w := e.current.Load()
	top := w.inventory.Items()
	bottom := make([]Item, len(top))
	for i, it := range top {
		bottom[len(top)-1-i] = it
	}
	return &SavedGame{
		Tick:       w.tick,
		LevelIndex: w.levelIndex,
		LevelName:  w.levelName,
		Grid:       w.grid.Rows(),
		Player:     w.player,
		Spawn:      w.spawn,
		Inventory:  bottom,
		Capacity:   w.inventory.Capacity(),
		State:      w.state,
		Message:    w.message,
		Quit:       w.quit,
	}
}

// Restore resumes a saved game against source. The saved grid is used as is;
// levels are only read again on advance or reset.
func Restore(source LevelSource, rules Rules, saved *SavedGame) (*GameEngine, error) {
	if source == nil {
		return nil, ErrNoLevelSource
	}
	if saved == nil {
		return nil, fmt.Errorf("restore: saved game is nil")
	}
	rules = rules.WithDefaults()
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}
	if saved.LevelIndex < 0 || saved.LevelIndex > source.Count() {
		return nil, fmt.Errorf("restore: level index %d out of range [0, %d]", saved.LevelIndex, source.Count())
	}

	capacity := saved.Capacity
	if capacity == 0 {
		capacity = rules.Capacity
	}
	inv, err := stack.FromBottom(capacity, saved.Inventory)
	if err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	grid, _ := GridFromRows(saved.Grid)

	e := &GameEngine{source: source, rules: rules}
	e.commit(&world{
		tick:       saved.Tick,
		levelIndex: saved.LevelIndex,
		levelName:  saved.LevelName,
		grid:       grid,
		player:     saved.Player,
		spawn:      saved.Spawn,
		inventory:  inv,
		state:      saved.State,
		message:    saved.Message,
		quit:       saved.Quit,
	})
	return e, nil
}
