package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrUnknownDirection = errors.New("unknown direction")

// overlapEpsilon keeps boxes that merely touch a cell edge from counting as
// overlapping it despite accumulated float error.
const overlapEpsilon = 1e-9

// Vector is a continuous 2D quantity in tile units. Y grows downward.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vector) IsZero() bool { return v.X == 0 && v.Y == 0 }

func (v Vector) Len() float64 { return math.Hypot(v.X, v.Y) }

func (v Vector) Scale(f float64) Vector { return Vector{X: v.X * f, Y: v.Y * f} }

func (v Vector) Add(o Vector) Vector { return Vector{X: v.X + o.X, Y: v.Y + o.Y} }

// Clamp shortens v to unit length when it is longer. Diagonal input from
// two held keys therefore moves no faster than a single key.
func (v Vector) Clamp() Vector {
	l := v.Len()
	if l <= 1 {
		return v
	}
	return v.Scale(1 / l)
}

// Cell returns the grid cell containing v.
func (v Vector) Cell() Cell {
	return Cell{X: int(math.Floor(v.X)), Y: int(math.Floor(v.Y))}
}

// CellCenter returns the continuous position of the centre of c.
func CellCenter(c Cell) Vector {
	return Vector{X: float64(c.X) + 0.5, Y: float64(c.Y) + 0.5}
}

// Box is an axis-aligned rectangle in tile units.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// BoxAround returns the square box of half-size h centred on p.
func BoxAround(p Vector, h float64) Box {
	return Box{MinX: p.X - h, MinY: p.Y - h, MaxX: p.X + h, MaxY: p.Y + h}
}

// Cells lists every grid cell the box overlaps, row-major: rows top to
// bottom, columns left to right within a row.
func (b Box) Cells() []Cell {
	x0 := int(math.Floor(b.MinX + overlapEpsilon))
	y0 := int(math.Floor(b.MinY + overlapEpsilon))
	x1 := int(math.Ceil(b.MaxX-overlapEpsilon)) - 1
	y1 := int(math.Ceil(b.MaxY-overlapEpsilon)) - 1

	cells := make([]Cell, 0, (x1-x0+1)*(y1-y0+1))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			cells = append(cells, Cell{X: x, Y: y})
		}
	}
	return cells
}

var directionVectors = map[string]Vector{
	"up":    {X: 0, Y: -1},
	"down":  {X: 0, Y: 1},
	"left":  {X: -1, Y: 0},
	"right": {X: 1, Y: 0},
	"w":     {X: 0, Y: -1},
	"s":     {X: 0, Y: 1},
	"a":     {X: -1, Y: 0},
	"d":     {X: 1, Y: 0},
}

// ParseDirection converts a direction name to a vector. Names are the four
// cardinal words, their WASD keys, or two cardinals joined by '-' or '+'
// (e.g. "up-left"). The result is not normalised.
func ParseDirection(name string) (Vector, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "none" || name == "stop" {
		return Vector{}, nil
	}
	if v, ok := directionVectors[name]; ok {
		return v, nil
	}
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '+' })
	if len(parts) != 2 {
		return Vector{}, fmt.Errorf("%w: %q", ErrUnknownDirection, name)
	}
	var sum Vector
	for _, p := range parts {
		v, ok := directionVectors[p]
		if !ok {
			return Vector{}, fmt.Errorf("%w: %q", ErrUnknownDirection, name)
		}
		sum = sum.Add(v)
	}
	return sum, nil
}

// DirectionFromKeys combines simultaneously held direction keys into one
// unit-or-shorter vector. Opposite keys cancel out.
func DirectionFromKeys(keys ...string) (Vector, error) {
	var sum Vector
	for _, k := range keys {
		v, err := ParseDirection(k)
		if err != nil {
			return Vector{}, err
		}
		sum = sum.Add(v)
	}
	return sum.Clamp(), nil
}

// ManhattanDistance returns the grid distance between two cells.
func ManhattanDistance(from, to Cell) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
