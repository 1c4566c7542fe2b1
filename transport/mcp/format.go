package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/stackquest/game/engine"
	"github.com/wricardo/stackquest/game/service"
)

const instructions = `STACK QUEST - GAME INSTRUCTIONS

OBJECTIVE:
Reach the door (D) of every level. Opening the door of the last level clears the game.

MOVEMENT:
- The player is a small square moving continuously over the grid
- Hold a direction for a number of ticks; each tick moves by the pack's speed
- Diagonal input is normalised, so diagonals are not faster
- Walls (#) and void (space) block movement; you slide along them

THE BACKPACK:
- Walking over water (W), a sword (S) or a key (K) pushes it onto your backpack
- The backpack is a stack: only the TOP item counts
- When the backpack is full, new items are left on the floor

HAZARDS AND GATES:
- Monster (M): needs a sword on top. The sword is used up and the monster vanishes
- Fire (F): needs water on top. The water is used up and the fire goes out
- Door (D): needs a key on top. The key is used up and you go to the next level
- Touching a monster or fire without the right top item kills you

GRID SYMBOLS:
- @ : You
- # : Wall
- . : Floor
- W : Water
- S : Sword
- K : Key
- F : Fire
- M : Monster
- D : Door
- (space) : Void

STRATEGY TIPS:
- Plan the order you pick items up: the last item collected is the one you use first
- Use describe_cell to check what a cell does before walking into it
- Use reset_game after dying to reload the level`

func describeState(snap *engine.Snapshot) string {
	if snap.Quit {
		return "quit"
	}
	return snap.GameState.String()
}

func formatInventory(snap *engine.Snapshot) string {
	if len(snap.InventoryItems) == 0 {
		return fmt.Sprintf("empty (0/%d)", snap.InventoryCapacity)
	}
	names := make([]string, len(snap.InventoryItems))
	for i, item := range snap.InventoryItems {
		names[i] = item.String()
	}
	return fmt.Sprintf("%s (%d/%d, top first)", strings.Join(names, ", "), len(names), snap.InventoryCapacity)
}

func formatSnapshot(snap *engine.Snapshot) string {
	if snap == nil {
		return "No state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Level %d/%d", snap.LevelIndex+1, snap.LevelCount)
	if snap.LevelName != "" {
		fmt.Fprintf(&b, " (%s)", snap.LevelName)
	}
	fmt.Fprintf(&b, " | Tick %d | State: %s\n", snap.Tick, describeState(snap))
	fmt.Fprintf(&b, "Position: (%.2f, %.2f), cell (%d, %d)\n",
		snap.PlayerPosition.X, snap.PlayerPosition.Y, snap.PlayerCell.X, snap.PlayerCell.Y)
	fmt.Fprintf(&b, "Backpack: %s\n", formatInventory(snap))
	if snap.StatusMessage != "" {
		fmt.Fprintf(&b, "Message: %s\n", snap.StatusMessage)
	}

	b.WriteString("\n")
	for _, row := range snap.Render() {
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

func formatSessionInfo(s *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", s.ID)
	fmt.Fprintf(&b, "Pack: %s", s.PackID)
	if s.PackName != "" {
		fmt.Fprintf(&b, " (%s)", s.PackName)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Created: %s\n", s.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Last used: %s\n", s.LastAccessedAt.Format("2006-01-02 15:04:05"))
	if s.Snapshot != nil {
		b.WriteString("\n")
		b.WriteString(formatSnapshot(s.Snapshot))
	}
	return b.String()
}

func formatEvent(ev service.GameEvent) string {
	line := fmt.Sprintf("[tick %d] %s at (%d, %d)", ev.Tick, ev.Kind, ev.Cell.X, ev.Cell.Y)
	if ev.Item != engine.NoItem {
		line += " item=" + ev.Item.String()
	}
	if ev.Message != "" {
		line += ": " + ev.Message
	}
	return line
}

func formatMoveResult(r *service.MoveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticks: %d/%d", r.TicksExecuted, r.TicksRequested)
	if r.Truncated {
		fmt.Fprintf(&b, " (capped at %d)", r.Limit)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Moved: (%.2f, %.2f) -> (%.2f, %.2f)\n",
		r.StartPosition.X, r.StartPosition.Y, r.EndPosition.X, r.EndPosition.Y)
	if r.StopReasonCode != "" && r.StopReasonCode != service.StopCompleted {
		fmt.Fprintf(&b, "Stopped: %s", r.StopReasonCode)
		if r.StoppedReason != "" {
			fmt.Fprintf(&b, " - %s", r.StoppedReason)
		}
		b.WriteString("\n")
	}
	if len(r.Events) > 0 {
		b.WriteString("Events:\n")
		for _, ev := range r.Events {
			fmt.Fprintf(&b, "  %s\n", formatEvent(ev))
		}
	}
	b.WriteString("\n")
	b.WriteString(formatSnapshot(r.Snapshot))
	return b.String()
}

func formatHistory(h *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event History (page %d/%d, %d events", h.Page, h.TotalPages, h.TotalEvents)
	if h.Dropped > 0 {
		fmt.Fprintf(&b, ", %d older events dropped", h.Dropped)
	}
	b.WriteString("):\n\n")
	if len(h.Events) == 0 {
		b.WriteString("No events recorded.\n")
	}
	for _, ev := range h.Events {
		b.WriteString(formatEvent(ev))
		b.WriteString("\n")
	}
	if h.HasNext {
		b.WriteString("\nMore events on the next page.\n")
	}
	return b.String()
}

func describeCell(snap *engine.Snapshot, x, y int) string {
	tile := snap.TileAt(x, y)

	var b strings.Builder
	fmt.Fprintf(&b, "Cell (%d, %d): '%c' %s\n", x, y, tile.Char(), tile)

	switch engine.BlockingOf(tile) {
	case engine.Solid:
		b.WriteString("Movement: blocked\n")
	case engine.Gated:
		b.WriteString("Movement: blocked until opened\n")
	default:
		b.WriteString("Movement: passable\n")
	}

	in := engine.InteractionFor(tile)
	switch in.Kind {
	case engine.Collect:
		fmt.Fprintf(&b, "Effect: %s is picked up onto the backpack\n", in.Item)
	case engine.Overcome, engine.Unlock:
		if in.Kind == engine.Overcome {
			fmt.Fprintf(&b, "Effect: needs %s on top of the backpack, touching it without is fatal\n", in.Item)
		} else {
			fmt.Fprintf(&b, "Effect: opens with %s on top of the backpack and leads on\n", in.Item)
		}
		top, ok := snap.TopItem()
		switch {
		case ok && top == in.Item:
			fmt.Fprintf(&b, "You can pass: %s is on top of your backpack\n", top)
		case ok:
			fmt.Fprintf(&b, "You cannot pass yet: %s is on top of your backpack\n", top)
		default:
			b.WriteString("You cannot pass yet: your backpack is empty\n")
		}
	}

	if snap.PlayerCell.X == x && snap.PlayerCell.Y == y {
		b.WriteString("You are here\n")
	}
	return b.String()
}
