// Command validate checks Stack Quest level packs. For every pack directory
// (a pack.yaml manifest plus the level files it lists) it checks:
//   - the manifest parses and its rules are playable
//   - every listed level file is readable
//   - levels use only known tile characters
//   - each level has exactly one spawn (P)
//   - every level but the last has a door (D)
//   - some door is reachable from the spawn, ignoring what the backpack holds
//
// It prints a per-pack report and exits with non-zero status if any pack is
// invalid.
package main

import (
	"context"
	"errors"
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

// maxReportedChars bounds the unknown-character errors listed per level.
const maxReportedChars = 5

var errInvalidPacks = errors.New("some packs have errors")

// ValidationResult captures the outcome of validating a single pack.
type ValidationResult struct {
	Pack   string
	Valid  bool
	Errors []string
	Info   []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) note(format string, args ...any) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// validatePack loads fsys/id/pack.yaml and checks each level it lists.
func validatePack(fsys fs.FS, id string) ValidationResult {
	result := ValidationResult{Pack: id, Valid: true}

	pack, err := engine.LoadPack(fsys, id)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	names := pack.Levels.Names()
	for i, name := range names {
		data, err := fs.ReadFile(fsys, path.Join(id, name))
		if err != nil {
			result.fail("Level %s: failed to read: %v", name, err)
			continue
		}
		validateLevel(&result, name, data, i == len(names)-1)
	}

	if result.Valid {
		result.note("✓ Name: %s", pack.Manifest.Name)
		result.note("✓ Levels: %d", len(names))
		result.note("✓ Backpack: %d", pack.Rules.Capacity)
		result.note("✓ Speed: %g cells/tick, half size %g", pack.Rules.Speed, pack.Rules.HalfSize)
	}
	return result
}

// validateLevel checks one level file and appends its findings to result.
func validateLevel(result *ValidationResult, name string, data []byte, last bool) {
	level := engine.ParseLevel(name, data)

	unknown := 0
	for y, row := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n") {
		for x, c := range []rune(row) {
			if knownChar(c) {
				continue
			}
			unknown++
			if unknown <= maxReportedChars {
				result.fail("Level %s: invalid character '%c' at position [%d,%d]", name, c, y+1, x+1)
			}
		}
	}
	if unknown > maxReportedChars {
		result.fail("Level %s: %d more invalid characters", name, unknown-maxReportedChars)
	}

	switch level.SpawnCount {
	case 0:
		result.fail("Level %s: no spawn (%c)", name, engine.SpawnChar)
	case 1:
	default:
		result.fail("Level %s: %d spawns (%c), expected exactly one", name, level.SpawnCount, engine.SpawnChar)
	}

	doors := level.Grid.Count(engine.Door)
	if doors == 0 && !last {
		result.fail("Level %s: no door (%c) to the next level", name, engine.Door.Char())
	}

	if level.HasSpawn && doors > 0 {
		if reachable := reachableDoors(level); reachable == 0 {
			result.fail("Level %s: no door reachable from spawn", name)
		} else {
			result.note("✓ Level %s: %dx%d, %d/%d doors reachable", name,
				level.Grid.Width(), level.Grid.Height(), reachable, doors)
		}
	}
}

func knownChar(c rune) bool {
	if c == engine.SpawnChar || c == engine.Void.Char() || c == '\r' {
		return true
	}
	t, _ := engine.TileFromChar(c)
	return t != engine.Void
}

// reachableDoors flood-fills from the spawn over every cell that is not
// solid and counts the doors it touches. Hazards count as passable: the
// backpack order needed to get past them is left to the player.
func reachableDoors(level *engine.Level) int {
	grid := level.Grid
	visited := make(map[engine.Cell]bool)
	queue := []engine.Cell{level.Spawn}
	visited[level.Spawn] = true
	doors := 0

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if grid.At(current.X, current.Y) == engine.Door {
			doors++
			// Doors end the level; nothing behind one counts.
			continue
		}

		for _, d := range []engine.Cell{{X: -1}, {X: 1}, {Y: -1}, {Y: 1}} {
			next := engine.Cell{X: current.X + d.X, Y: current.Y + d.Y}
			if visited[next] || !grid.InBounds(next.X, next.Y) {
				continue
			}
			if engine.BlockingOf(grid.At(next.X, next.Y)) == engine.Solid {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return doors
}

// discoverPacks lists the directories of fsys holding a pack manifest.
func discoverPacks(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := fs.Stat(fsys, path.Join(entry.Name(), engine.ManifestFile)); err == nil {
			ids = append(ids, entry.Name())
		}
	}
	return ids, nil
}

// report prints the results and reports whether every pack is valid.
func report(w io.Writer, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.Pack)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  "+info)
			}
			continue
		}

		allValid = false
		fmt.Fprintln(w, "❌ INVALID")
		for _, err := range result.Errors {
			fmt.Fprintln(w, "  ❌ "+err)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All packs are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some packs have errors")
	}
	return allValid
}

func newCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate Stack Quest level packs",
		ArgsUsage: "[pack-id...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "packs", Usage: "Directory containing pack directories", Sources: cli.EnvVars("PACKS_DIR")},
			&cli.BoolFlag{Name: "builtin", Usage: "Validate the packs compiled into the server instead of --dir"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var fsys fs.FS
			if cmd.Bool("builtin") {
				fsys = config.BuiltinPacks()
			} else {
				dir := cmd.String("dir")
				if _, err := os.Stat(dir); err != nil {
					return fmt.Errorf("packs directory: %w", err)
				}
				fsys = os.DirFS(dir)
			}

			ids := cmd.Args().Slice()
			if len(ids) == 0 {
				var err error
				if ids, err = discoverPacks(fsys); err != nil {
					return fmt.Errorf("error finding packs: %w", err)
				}
			}
			if len(ids) == 0 {
				return errors.New("no packs found")
			}

			results := make([]ValidationResult, 0, len(ids))
			for _, id := range ids {
				results = append(results, validatePack(fsys, id))
			}
			if !report(stdout, results) {
				return errInvalidPacks
			}
			return nil
		},
	}
}

// main validates the packs named on the command line, or every pack found.
func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		if !errors.Is(err, errInvalidPacks) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
