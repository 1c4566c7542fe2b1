// Package engine provides the core game logic for Stack Quest.
//
// The engine package implements the game mechanics including:
//   - Continuous movement of a square player box over a tile grid
//   - Per-axis collision resolution with wall sliding
//   - A bounded LIFO inventory where only the top item counts
//   - Monsters, fire and locked doors consumed by the right top item
//   - Level sequencing, death and reset
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. A GameEngine reads levels from a LevelSource,
// usually a Sequence bound to a Pack loaded from a pack.yaml manifest.
// Every committed tick publishes an immutable Snapshot for renderers.
//
// Usage:
//
//	pack, err := engine.LoadPack(os.DirFS("packs"), "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game, err := pack.NewEngine()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Hold right for one tick
//	result, err := game.ResolveTick(engine.Vector{X: 1})
//	snap := game.Snapshot()
//
// Game Rules:
//
// Walking over water, a sword or a key pushes it onto the backpack. A
// monster needs a sword on top, fire needs water on top, and a door needs a
// key on top; the matching item is popped and the tile cleared. Meeting a
// monster or fire without it is fatal. Opening the door advances to the next
// level, and opening the last one clears the game.
package engine
