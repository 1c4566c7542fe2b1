package main

import (
	"bytes"
	"context"
	"io/fs"
	"path"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/stackquest/game/config"
	"github.com/wricardo/stackquest/game/engine"
)

func rulesWithCapacity(n int) engine.Rules {
	r := engine.DefaultRules()
	r.Capacity = n
	return r
}

func TestAnalyzeLevel_Counts(t *testing.T) {
	a := analyzeLevel("room", []byte("#######\n#P.W.F#\n#.S.MD#\n#######\n"), rulesWithCapacity(3))

	assert.Equal(t, 7, a.Width)
	assert.Equal(t, 4, a.Height)
	assert.True(t, a.HasSpawn)
	assert.Equal(t, engine.Cell{X: 1, Y: 1}, a.Spawn)
	assert.Equal(t, 1, a.Counts[engine.Water])
	assert.Equal(t, 1, a.Counts[engine.Sword])
	assert.Equal(t, 1, a.Counts[engine.Fire])
	assert.Equal(t, 1, a.Counts[engine.Monster])
	assert.Equal(t, 5, a.DoorDistance)
	assert.Equal(t, []string{"1 door but only 0 key"}, a.Warnings)
	assert.True(t, a.Searched)
	assert.False(t, a.Solved)
}

func TestAnalyzeLevel_StackOrder(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		capacity int
		solved   bool
	}{
		{"key below sword", "#P.K.S.M.D#", 2, true},
		{"key on top of sword", "#P.S.K.M.D#", 2, false},
		{"no room for the sword", "#P.K.S.M.D#", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := analyzeLevel(tt.name, []byte(tt.level), rulesWithCapacity(tt.capacity))
			assert.Equal(t, tt.solved, a.Solved)
			assert.False(t, a.SearchLimited)
			if tt.solved {
				assert.Equal(t, "right x8", compress(a.Solution))
			}
		})
	}
}

func TestAnalyzeLevel_DetoursForItems(t *testing.T) {
	// The key sits in a dead end below the corridor.
	level := "#####\n#P.D#\n#.###\n#K#  \n###  \n"
	a := analyzeLevel("detour", []byte(level), rulesWithCapacity(1))

	require.True(t, a.Solved)
	assert.Equal(t, []string{"down", "down", "up", "up", "right", "right"}, a.Solution)
}

func TestAnalyzeLevel_Warnings(t *testing.T) {
	a := analyzeLevel("bare", []byte("#####\n#...#\n#####\n"), rulesWithCapacity(1))
	assert.Contains(t, a.Warnings, "no spawn")
	assert.False(t, a.Searched)

	a = analyzeLevel("last", []byte("#####\n#P..#\n#####\n"), rulesWithCapacity(1))
	assert.Contains(t, a.Warnings, "no door")
	assert.Equal(t, -1, a.DoorDistance)
}

func TestCompress(t *testing.T) {
	assert.Equal(t, "right x2, up, left x3", compress([]string{"right", "right", "up", "left", "left", "left"}))
	assert.Equal(t, "", compress(nil))
}

func TestBuiltinLevelsAreSolvable(t *testing.T) {
	fsys := config.BuiltinPacks()
	for _, id := range []string{"classic", "tutorial"} {
		pack, err := engine.LoadPack(fsys, id)
		require.NoError(t, err)

		for _, name := range pack.Levels.Names() {
			data, err := fs.ReadFile(fsys, path.Join(id, name))
			require.NoError(t, err)

			a := analyzeLevel(name, data, pack.Rules)
			assert.True(t, a.Solved, "%s/%s should be solvable", id, name)
		}
	}
}

func TestCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newCommand(&out).Run(context.Background(), []string{"analyze", "tutorial"}))

	report := out.String()
	assert.Contains(t, report, "=== Analyzing tutorial ===")
	assert.Contains(t, report, "-- 03-order.txt")
	assert.Contains(t, report, "✅ Solvable in 8 steps")
	assert.NotContains(t, report, "classic")
}

func TestCommand_Dir(t *testing.T) {
	fsys := fstest.MapFS{
		"dead/pack.yaml": {Data: []byte("name: Dead End\nlevels: [01.txt]\n")},
		"dead/01.txt":    {Data: []byte("#######\n#P.S.K.M.D#\n#######\n")},
	}

	var out bytes.Buffer
	require.NoError(t, analyzePack(&out, fsys, "dead"))
	assert.Contains(t, out.String(), "❌ No way to open a door was found")

	out.Reset()
	assert.Error(t, analyzePack(&out, fsys, "missing"))
}
