// Package config provides level pack management for Stack Quest.
//
// The config package handles:
//   - Loading level packs from the builtin set and a packs directory
//   - Pack validation through the engine's manifest rules
//   - Default pack selection
//   - Pack discovery and listing
//
// Pack Format:
//
// A pack is a directory holding a pack.yaml manifest and the level files it
// lists in play order:
//
//	name: Classic
//	description: The original dungeon.
//	capacity: 3
//	speed: 0.1
//	levels:
//	  - 01-dungeon.txt
//	  - 02-cellar.txt
//	messages:
//	  wall: "Ouch! It's a wall."
//
// Level files are plain text, one character per tile: '#' wall, '.' floor,
// ' ' void, 'W' water, 'S' sword, 'K' key, 'F' fire, 'M' monster, 'D' door
// and 'P' the spawn.
//
// Available Packs:
//
//   - classic: the original dungeon and a ragged cellar
//   - tutorial: three corridors, one rule each
//
// Usage:
//
//	manager, err := config.NewManager("packs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	pack, err := manager.LoadPack("tutorial")
//	packs, err := manager.ListPacks()
package config
