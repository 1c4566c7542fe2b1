// Command analyze prints quick, human-readable heuristics about level packs.
// For each level it summarizes dimensions, item and hazard counts, the
// distance from the spawn to the nearest door, and whether the door can be
// reached by walking cell to cell with the pack's backpack rules. The search
// ignores sub-cell movement, so it is a guide for level authors, not a proof.
package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/stackquest/game/config"
	"github.com/wricardo/stackquest/game/engine"
)

// maxSearchStates bounds the solver per level.
const maxSearchStates = 500_000

// LevelAnalysis is what analyze reports for one level.
type LevelAnalysis struct {
	Name          string
	Width, Height int
	Spawn         engine.Cell
	HasSpawn      bool
	Counts        map[engine.Tile]int
	DoorDistance  int // Manhattan distance to the nearest door, -1 without doors
	Solution      []string
	Searched      bool
	Solved        bool
	SearchLimited bool
	Warnings      []string
}

type step struct {
	name string
	d    engine.Cell
}

var steps = []step{
	{"up", engine.Cell{Y: -1}},
	{"down", engine.Cell{Y: 1}},
	{"left", engine.Cell{X: -1}},
	{"right", engine.Cell{X: 1}},
}

// searchState is one node of the level search: where the player stands,
// the backpack bottom to top, and which special cells are used up.
type searchState struct {
	cell     engine.Cell
	stack    string
	consumed uint64
}

type visit struct {
	prev searchState
	dir  string
}

// analyzeLevel parses one level and searches it under rules.
func analyzeLevel(name string, data []byte, rules engine.Rules) LevelAnalysis {
	level := engine.ParseLevel(name, data)
	grid := level.Grid

	a := LevelAnalysis{
		Name:         name,
		Width:        grid.Width(),
		Height:       grid.Height(),
		Spawn:        level.Spawn,
		HasSpawn:     level.HasSpawn,
		Counts:       make(map[engine.Tile]int),
		DoorDistance: -1,
	}

	special := make(map[engine.Cell]int)
	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			t := grid.At(x, y)
			a.Counts[t]++
			c := engine.Cell{X: x, Y: y}
			if engine.IsSpecial(t) {
				special[c] = len(special)
			}
			if t == engine.Door && level.HasSpawn {
				if d := engine.ManhattanDistance(level.Spawn, c); a.DoorDistance < 0 || d < a.DoorDistance {
					a.DoorDistance = d
				}
			}
		}
	}

	supply := []struct {
		need, have engine.Tile
	}{
		{engine.Monster, engine.Sword},
		{engine.Fire, engine.Water},
		{engine.Door, engine.Key},
	}
	for _, s := range supply {
		if a.Counts[s.need] > a.Counts[s.have] {
			a.Warnings = append(a.Warnings, fmt.Sprintf("%d %s but only %d %s",
				a.Counts[s.need], s.need, a.Counts[s.have], s.have))
		}
	}

	switch {
	case !level.HasSpawn:
		a.Warnings = append(a.Warnings, "no spawn")
	case a.Counts[engine.Door] == 0:
		a.Warnings = append(a.Warnings, "no door")
	case len(special) > 64:
		a.Warnings = append(a.Warnings, "too many special cells to search")
	default:
		a.Searched = true
		a.Solution, a.Solved, a.SearchLimited = solve(level, special, rules.Capacity)
	}
	return a
}

// solve runs a breadth-first search from the spawn to an opened door and
// returns the shortest sequence of cell steps.
func solve(level *engine.Level, special map[engine.Cell]int, capacity int) ([]string, bool, bool) {
	grid := level.Grid
	start := searchState{cell: level.Spawn}
	seen := map[searchState]visit{start: {}}
	queue := []searchState{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, s := range steps {
			next := cur
			next.cell = engine.Cell{X: cur.cell.X + s.d.X, Y: cur.cell.Y + s.d.Y}

			t := grid.At(next.cell.X, next.cell.Y)
			if idx, ok := special[next.cell]; ok && next.consumed&(1<<idx) != 0 {
				t = engine.Empty
			}
			if engine.BlockingOf(t) == engine.Solid {
				continue
			}

			in := engine.InteractionFor(t)
			top := engine.NoItem
			if n := len(next.stack); n > 0 {
				top = engine.Item(next.stack[n-1])
			}
			bit := uint64(1) << special[next.cell]

			switch in.Kind {
			case engine.Collect:
				if len(next.stack) < capacity {
					next.stack += string(rune(in.Item))
					next.consumed |= bit
				}
			case engine.Overcome:
				if top != in.Item {
					continue
				}
				next.stack = next.stack[:len(next.stack)-1]
				next.consumed |= bit
			case engine.Unlock:
				if top != in.Item {
					continue
				}
				return route(seen, cur, s.name), true, false
			}

			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = visit{prev: cur, dir: s.name}
			if len(seen) > maxSearchStates {
				return nil, false, true
			}
			queue = append(queue, next)
		}
	}
	return nil, false, false
}

func route(seen map[searchState]visit, last searchState, final string) []string {
	dirs := []string{final}
	for cur := last; ; {
		v := seen[cur]
		if v.dir == "" {
			break
		}
		dirs = append(dirs, v.dir)
		cur = v.prev
	}
	for i, j := 0, len(dirs)-1; i < j; i, j = i+1, j-1 {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
	return dirs
}

// compress run-length encodes a step list: right, right, up -> right x2, up.
func compress(dirs []string) string {
	var parts []string
	for i := 0; i < len(dirs); {
		j := i
		for j < len(dirs) && dirs[j] == dirs[i] {
			j++
		}
		if n := j - i; n > 1 {
			parts = append(parts, fmt.Sprintf("%s x%d", dirs[i], n))
		} else {
			parts = append(parts, dirs[i])
		}
		i = j
	}
	return strings.Join(parts, ", ")
}

// analyzePack prints the analysis of every level in fsys/id.
func analyzePack(w io.Writer, fsys fs.FS, id string) error {
	pack, err := engine.LoadPack(fsys, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n=== Analyzing %s ===\n", id)
	fmt.Fprintf(w, "Name: %s\n", pack.Manifest.Name)
	fmt.Fprintf(w, "Backpack: %d, Speed: %g cells/tick, Half size: %g\n",
		pack.Rules.Capacity, pack.Rules.Speed, pack.Rules.HalfSize)

	for _, name := range pack.Levels.Names() {
		data, err := fs.ReadFile(fsys, path.Join(id, name))
		if err != nil {
			fmt.Fprintf(w, "\n-- %s\nError reading level: %v\n", name, err)
			continue
		}
		printLevel(w, analyzeLevel(name, data, pack.Rules), pack.Rules.Speed)
	}
	return nil
}

func printLevel(w io.Writer, a LevelAnalysis, speed float64) {
	fmt.Fprintf(w, "\n-- %s\n", a.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.Width, a.Height)
	if a.HasSpawn {
		fmt.Fprintf(w, "Spawn: (%d, %d)\n", a.Spawn.X, a.Spawn.Y)
	}
	fmt.Fprintf(w, "Items: %d water, %d sword, %d key\n",
		a.Counts[engine.Water], a.Counts[engine.Sword], a.Counts[engine.Key])
	fmt.Fprintf(w, "Hazards: %d fire, %d monster, %d door\n",
		a.Counts[engine.Fire], a.Counts[engine.Monster], a.Counts[engine.Door])
	if a.DoorDistance >= 0 {
		fmt.Fprintf(w, "Nearest door: %d cells (Manhattan)\n", a.DoorDistance)
	}

	for _, warning := range a.Warnings {
		fmt.Fprintf(w, "⚠️  WARNING: %s\n", warning)
	}

	switch {
	case a.Solved:
		fmt.Fprintf(w, "✅ Solvable in %d steps (about %.0f ticks): %s\n",
			len(a.Solution), float64(len(a.Solution))/speed, compress(a.Solution))
	case a.SearchLimited:
		fmt.Fprintf(w, "⚠️  Search gave up after %d states\n", maxSearchStates)
	case a.Searched:
		fmt.Fprintf(w, "❌ No way to open a door was found\n")
	}
}

func newCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Print heuristics about Stack Quest level packs",
		ArgsUsage: "[pack-id...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Usage: "Directory containing pack directories (default: builtin packs)", Sources: cli.EnvVars("PACKS_DIR")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fsys := config.BuiltinPacks()
			if dir := cmd.String("dir"); dir != "" {
				fsys = os.DirFS(dir)
			}

			ids := cmd.Args().Slice()
			if len(ids) == 0 {
				entries, err := fs.ReadDir(fsys, ".")
				if err != nil {
					return fmt.Errorf("error listing packs: %w", err)
				}
				for _, entry := range entries {
					if entry.IsDir() {
						ids = append(ids, entry.Name())
					}
				}
			}

			for _, id := range ids {
				if err := analyzePack(stdout, fsys, id); err != nil {
					fmt.Fprintf(stdout, "\n=== %s ===\nError: %v\n", id, err)
				}
			}
			return nil
		},
	}
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
