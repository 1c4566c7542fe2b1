package engine

import (
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Level is one parsed level resource.
type Level struct {
	Name string
	Grid *Grid
	// Spawn is the first spawn marker in row-major order. It is only
	// meaningful when HasSpawn is set.
	Spawn      Cell
	HasSpawn   bool
	SpawnCount int
}

// ParseLevel parses a level resource. Parsing cannot fail: unknown
// characters become Void and short rows are padded with Void.
func ParseLevel(name string, data []byte) *Level {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	rows := strings.Split(text, "\n")
	// Trailing blank lines are file endings, not rows.
	for len(rows) > 0 && strings.TrimRight(rows[len(rows)-1], "\r") == "" {
		rows = rows[:len(rows)-1]
	}
	for i, row := range rows {
		rows[i] = strings.TrimRight(row, "\r")
	}

	grid, spawns := GridFromRows(rows)
	level := &Level{
		Name:       name,
		Grid:       grid,
		SpawnCount: len(spawns),
	}
	if len(spawns) > 0 {
		level.Spawn = spawns[0]
		level.HasSpawn = true
	}
	return level
}

// LevelSource is an ordered, fixed sequence of levels.
type LevelSource interface {
	// Count is the number of levels in the sequence.
	Count() int
	// Load reads and parses the level at index. Failures are *MapLoadError.
	Load(index int) (*Level, error)
}

// MapLoadError reports a level resource that could not be read.
type MapLoadError struct {
	Index int
	Name  string
	Err   error
}

func (e *MapLoadError) Error() string {
	return fmt.Sprintf("map load: level %d (%s): resource unreadable: %v", e.Index, e.Name, e.Err)
}

func (e *MapLoadError) Unwrap() error { return e.Err }

// Sequence is a LevelSource backed by files in an fs.FS, played in the
// order given.
type Sequence struct {
	fsys  fs.FS
	names []string
}

// NewSequence binds the named files of fsys as an ordered level sequence.
func NewSequence(fsys fs.FS, names ...string) *Sequence {
	return &Sequence{fsys: fsys, names: append([]string(nil), names...)}
}

func (s *Sequence) Count() int { return len(s.names) }

// Name returns the file name of level index, or "" when out of range.
func (s *Sequence) Name(index int) string {
	if index < 0 || index >= len(s.names) {
		return ""
	}
	return s.names[index]
}

// Names returns the level file names in play order.
func (s *Sequence) Names() []string {
	return append([]string(nil), s.names...)
}

func (s *Sequence) Load(index int) (*Level, error) {
	name := s.Name(index)
	if name == "" {
		return nil, &MapLoadError{Index: index, Err: os.ErrNotExist}
	}
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, &MapLoadError{Index: index, Name: name, Err: err}
	}
	return ParseLevel(name, data), nil
}
