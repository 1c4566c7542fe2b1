package engine

import (
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

// testRules moves half a tile per tick so positions land on exact values.
func testRules() Rules {
	return Rules{Speed: 0.5}.WithDefaults()
}

func level(rows ...string) string {
	return strings.Join(rows, "\n") + "\n"
}

func levelFS(levels ...string) (fstest.MapFS, []string) {
	fsys := fstest.MapFS{}
	names := make([]string, len(levels))
	for i, l := range levels {
		names[i] = fmt.Sprintf("level%02d.txt", i+1)
		fsys[names[i]] = &fstest.MapFile{Data: []byte(l)}
	}
	return fsys, names
}

func newTestEngine(t *testing.T, rules Rules, levels ...string) *GameEngine {
	t.Helper()
	fsys, names := levelFS(levels...)
	e, err := New(NewSequence(fsys, names...), rules)
	require.NoError(t, err)
	return e
}

var right = Vector{X: 1}

// step resolves n ticks of dir and returns the last result.
func step(t *testing.T, e *GameEngine, dir Vector, n int) *TickResult {
	t.Helper()
	var res *TickResult
	for i := 0; i < n; i++ {
		var err error
		res, err = e.ResolveTick(dir)
		require.NoError(t, err)
	}
	return res
}

func eventKinds(res *TickResult) []EventKind {
	kinds := make([]EventKind, 0, len(res.Events))
	for _, ev := range res.Events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}
