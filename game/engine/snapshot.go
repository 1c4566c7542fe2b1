package engine

// Snapshot is an immutable, render-ready copy of the game after a committed
// tick.
type Snapshot struct {
	Tick              uint64   `json:"tick"`
	Grid              []string `json:"grid"`
	Width             int      `json:"width"`
	Height            int      `json:"height"`
	PlayerPosition    Vector   `json:"player_position"`
	PlayerCell        Cell     `json:"player_cell"`
	PlayerHalfSize    float64  `json:"player_half_size"`
	StatusMessage     string   `json:"status_message"`
	InventoryItems    []Item   `json:"inventory_items"` // top first
	InventoryCapacity int      `json:"inventory_capacity"`
	GameState         State    `json:"game_state"`
	LevelIndex        int      `json:"level_index"`
	LevelCount        int      `json:"level_count"`
	LevelName         string   `json:"level_name"`
	Quit              bool     `json:"quit"`
}

func (w *world) snapshot(levelCount int, halfSize float64) *Snapshot {
	return &Snapshot{
		Tick:              w.tick,
		Grid:              w.grid.Rows(),
		Width:             w.grid.Width(),
		Height:            w.grid.Height(),
		PlayerPosition:    w.player,
		PlayerCell:        w.player.Cell(),
		PlayerHalfSize:    halfSize,
		StatusMessage:     w.message,
		InventoryItems:    w.inventory.Items(),
		InventoryCapacity: w.inventory.Capacity(),
		GameState:         w.state,
		LevelIndex:        w.levelIndex,
		LevelCount:        levelCount,
		LevelName:         w.levelName,
		Quit:              w.quit,
	}
}

// TileAt returns the tile at (x, y); cells outside the grid read as Void.
func (s *Snapshot) TileAt(x, y int) Tile {
	if y < 0 || y >= len(s.Grid) {
		return Void
	}
	row := []rune(s.Grid[y])
	if x < 0 || x >= len(row) {
		return Void
	}
	t, _ := TileFromChar(row[x])
	return t
}

// TopItem returns the item on top of the inventory, if any.
func (s *Snapshot) TopItem() (Item, bool) {
	if len(s.InventoryItems) == 0 {
		return NoItem, false
	}
	return s.InventoryItems[0], true
}

// PlayerChar marks the player cell in Render output.
const PlayerChar = '@'

// Render returns the grid rows with the player cell marked.
func (s *Snapshot) Render() []string {
	rows := make([]string, len(s.Grid))
	for y, row := range s.Grid {
		if y != s.PlayerCell.Y {
			rows[y] = row
			continue
		}
		r := []rune(row)
		if x := s.PlayerCell.X; x >= 0 && x < len(r) {
			r[x] = PlayerChar
		}
		rows[y] = string(r)
	}
	return rows
}
