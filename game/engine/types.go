package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tile is the semantic kind of one grid cell.
type Tile uint8

const (
	Empty Tile = iota
	Wall
	Void
	Water
	Sword
	Key
	Fire
	Monster
	Door
)

// SpawnChar marks the player's spawn cell in a level file. The cell itself
// is Empty.
const SpawnChar = 'P'

var tileNames = [...]string{
	Empty:   "empty",
	Wall:    "wall",
	Void:    "void",
	Water:   "water",
	Sword:   "sword",
	Key:     "key",
	Fire:    "fire",
	Monster: "monster",
	Door:    "door",
}

var tileChars = [...]rune{
	Empty:   '.',
	Wall:    '#',
	Void:    ' ',
	Water:   'W',
	Sword:   'S',
	Key:     'K',
	Fire:    'F',
	Monster: 'M',
	Door:    'D',
}

func (t Tile) String() string {
	if int(t) < len(tileNames) {
		return tileNames[t]
	}
	return fmt.Sprintf("tile(%d)", t)
}

// Char returns the level-file character for t.
func (t Tile) Char() rune {
	if int(t) < len(tileChars) {
		return tileChars[t]
	}
	return ' '
}

func (t Tile) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tile) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for i, n := range tileNames {
		if n == name {
			*t = Tile(i)
			return nil
		}
	}
	return fmt.Errorf("unknown tile %q", text)
}

// TileFromChar maps a level character to its tile. Unrecognised characters
// are Void. spawn reports whether c is the spawn marker.
func TileFromChar(c rune) (tile Tile, spawn bool) {
	if c == SpawnChar {
		return Empty, true
	}
	for i, tc := range tileChars {
		if tc == c {
			return Tile(i), false
		}
	}
	return Void, false
}

// Item is something the player can carry in the inventory.
type Item uint8

const (
	NoItem Item = iota
	ItemWater
	ItemSword
	ItemKey
)

var itemNames = [...]string{
	NoItem:    "none",
	ItemWater: "water",
	ItemSword: "sword",
	ItemKey:   "key",
}

func (i Item) String() string {
	if int(i) < len(itemNames) {
		return itemNames[i]
	}
	return fmt.Sprintf("item(%d)", i)
}

// Title returns the display form used in status messages.
func (i Item) Title() string {
	s := i.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (i Item) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Item) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for idx, n := range itemNames {
		if n == name && Item(idx) != NoItem {
			*i = Item(idx)
			return nil
		}
	}
	return fmt.Errorf("unknown item %q", text)
}

// Cell is a discrete grid coordinate (column, row).
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Grid is a fixed-size row-major array of tiles. Its dimensions never change
// after construction.
type Grid struct {
	width  int
	height int
	cells  []Tile
}

// NewGrid creates a width x height grid filled with Void.
func NewGrid(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	cells := make([]Tile, width*height)
	for i := range cells {
		cells[i] = Void
	}
	return &Grid{width: width, height: height, cells: cells}
}

// GridFromRows builds a grid from level rows, right-padding short rows with
// Void. Spawn markers become Empty; their cells are returned in row-major
// order.
func GridFromRows(rows []string) (*Grid, []Cell) {
	width := 0
	runes := make([][]rune, len(rows))
	for y, row := range rows {
		runes[y] = []rune(row)
		width = max(width, len(runes[y]))
	}

	g := NewGrid(width, len(rows))
	var spawns []Cell
	for y, row := range runes {
		for x, c := range row {
			tile, spawn := TileFromChar(c)
			if spawn {
				spawns = append(spawns, Cell{X: x, Y: y})
			}
			g.cells[y*width+x] = tile
		}
	}
	return g, spawns
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (x, y) lies inside the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// At returns the tile at (x, y). Cells outside the grid read as Void.
func (g *Grid) At(x, y int) Tile {
	if !g.InBounds(x, y) {
		return Void
	}
	return g.cells[y*g.width+x]
}

// Set replaces the tile at (x, y). Out-of-bounds writes are ignored.
func (g *Grid) Set(x, y int, t Tile) {
	if g.InBounds(x, y) {
		g.cells[y*g.width+x] = t
	}
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	c := &Grid{width: g.width, height: g.height, cells: make([]Tile, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

// Count returns how many cells hold t.
func (g *Grid) Count(t Tile) int {
	n := 0
	for _, c := range g.cells {
		if c == t {
			n++
		}
	}
	return n
}

// Rows renders the grid back to level characters, one string per row.
func (g *Grid) Rows() []string {
	rows := make([]string, g.height)
	var b strings.Builder
	for y := 0; y < g.height; y++ {
		b.Reset()
		for x := 0; x < g.width; x++ {
			b.WriteRune(g.cells[y*g.width+x].Char())
		}
		rows[y] = b.String()
	}
	return rows
}

func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Rows())
}

func (g *Grid) UnmarshalJSON(data []byte) error {
	var rows []string
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	parsed, _ := GridFromRows(rows)
	*g = *parsed
	return nil
}
