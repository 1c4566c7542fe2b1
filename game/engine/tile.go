package engine

// Blocking classifies how a tile affects movement along an axis.
type Blocking uint8

const (
	// Passable tiles never veto movement.
	Passable Blocking = iota
	// Solid tiles veto movement unconditionally.
	Solid
	// Gated tiles veto movement; the gate may open if the player carries the
	// required item on top of the inventory.
	Gated
)

// BlockingOf reports the blocking behaviour of t.
func BlockingOf(t Tile) Blocking {
	switch t {
	case Wall, Void:
		return Solid
	case Door:
		return Gated
	default:
		return Passable
	}
}

// InteractionKind enumerates the gameplay effects a tile can have.
type InteractionKind uint8

const (
	NoInteraction InteractionKind = iota
	// Collect pushes Item onto the inventory and clears the tile.
	Collect
	// Overcome consumes Item from the top of the inventory to clear the tile.
	// Without it the player dies.
	Overcome
	// Unlock consumes Item from the top of the inventory to open a gate.
	Unlock
)

// Interaction is the effect of stepping on a tile.
type Interaction struct {
	Kind InteractionKind
	Item Item
}

// InteractionFor reports the gameplay effect of t.
func InteractionFor(t Tile) Interaction {
	switch t {
	case Water:
		return Interaction{Kind: Collect, Item: ItemWater}
	case Sword:
		return Interaction{Kind: Collect, Item: ItemSword}
	case Key:
		return Interaction{Kind: Collect, Item: ItemKey}
	case Monster:
		return Interaction{Kind: Overcome, Item: ItemSword}
	case Fire:
		return Interaction{Kind: Overcome, Item: ItemWater}
	case Door:
		return Interaction{Kind: Unlock, Item: ItemKey}
	default:
		return Interaction{}
	}
}

// IsSpecial reports whether t is consumed by some interaction.
func IsSpecial(t Tile) bool {
	return InteractionFor(t).Kind != NoInteraction
}
