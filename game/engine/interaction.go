package engine

import "fmt"

// interact applies the tile at c to the world. Tiles consumed by the player
// become Empty. A failed Overcome kills the player.
func interact(w *world, rules *Rules, c Cell, res *TickResult) Transition {
	tile := w.grid.At(c.X, c.Y)
	in := InteractionFor(tile)

	switch in.Kind {
	case Collect:
		if err := w.inventory.Push(in.Item); err != nil {
			if w.say(rules.Messages.InventoryFull) {
				res.emit(Event{Kind: EventInventoryFull, Tile: tile, Item: in.Item, Cell: c, Message: w.message})
			}
			return NoTransition
		}
		w.grid.Set(c.X, c.Y, Empty)
		w.say(fmt.Sprintf(rules.Messages.PickedUp, in.Item.Title()))
		res.emit(Event{Kind: EventPickup, Tile: tile, Item: in.Item, Cell: c, Message: w.message})

	case Overcome:
		if top, ok := w.inventory.Top(); ok && top == in.Item {
			w.inventory.Pop()
			w.grid.Set(c.X, c.Y, Empty)
			kind, msg := EventMonsterSlain, rules.Messages.MonsterSlain
			if tile == Fire {
				kind, msg = EventFireDoused, rules.Messages.FireDoused
			}
			w.say(msg)
			res.emit(Event{Kind: kind, Tile: tile, Item: in.Item, Cell: c, Message: w.message})
			return NoTransition
		}
		msg := rules.Messages.KilledByMonster
		if tile == Fire {
			msg = rules.Messages.Burned
		}
		w.say(msg)
		res.emit(Event{Kind: EventDeath, Tile: tile, Cell: c, Message: w.message})
		return RequestDeath
	}
	return NoTransition
}

// openGate tries to open the gate at c with the item on top of the
// inventory. An opened gate becomes Empty and requests the next level.
func openGate(w *world, rules *Rules, c Cell, res *TickResult) Transition {
	tile := w.grid.At(c.X, c.Y)
	need := InteractionFor(tile).Item

	if top, ok := w.inventory.Top(); ok && top == need {
		w.inventory.Pop()
		w.grid.Set(c.X, c.Y, Empty)
		w.say(rules.Messages.DoorOpened)
		res.emit(Event{Kind: EventDoorOpened, Tile: tile, Item: need, Cell: c, Message: w.message})
		return RequestAdvance
	}

	if w.say(rules.Messages.NeedKey) {
		res.emit(Event{Kind: EventDoorLocked, Tile: tile, Item: need, Cell: c, Message: w.message})
	}
	return NoTransition
}
