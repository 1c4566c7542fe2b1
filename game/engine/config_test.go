package engine

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesWithDefaults(t *testing.T) {
	r := Rules{Capacity: 5, Messages: Messages{Wall: "Bonk."}}.WithDefaults()

	assert.Equal(t, 5, r.Capacity)
	assert.Equal(t, DefaultSpeed, r.Speed)
	assert.Equal(t, DefaultHalfSize, r.HalfSize)
	assert.Equal(t, "Bonk.", r.Messages.Wall)
	assert.Equal(t, DefaultMessages().Welcome, r.Messages.Welcome)
	assert.NoError(t, ValidateRules(r))
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Rules)
		ok     bool
	}{
		{"defaults", func(r *Rules) {}, true},
		{"zero capacity", func(r *Rules) { r.Capacity = 0 }, false},
		{"half size too big", func(r *Rules) { r.HalfSize = 0.5 }, false},
		{"negative half size", func(r *Rules) { r.HalfSize = -0.1 }, false},
		{"speed above one tile", func(r *Rules) { r.Speed = 1.5 }, false},
		{"speed of one tile", func(r *Rules) { r.Speed = 1 }, true},
		{"picked up without verb", func(r *Rules) { r.Messages.PickedUp = "Got it" }, false},
		{"level start with one verb", func(r *Rules) { r.Messages.LevelStart = "Level %d" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRules()
			tt.mutate(&r)
			err := ValidateRules(r)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidRules)
			}
		})
	}
}

func TestLoadPack(t *testing.T) {
	fsys := fstest.MapFS{
		"packs/demo/pack.yaml": {Data: []byte(`
name: Demo
description: Two tiny rooms
capacity: 2
levels:
  - 01.txt
  - 02.txt
messages:
  wall: "Bonk."
`)},
		"packs/demo/01.txt": {Data: []byte(level("#P#"))},
		"packs/demo/02.txt": {Data: []byte(level("#.#"))},
	}

	pack, err := LoadPack(fsys, "packs/demo")
	require.NoError(t, err)

	assert.Equal(t, "demo", pack.ID)
	assert.Equal(t, "Demo", pack.Manifest.Name)
	assert.Equal(t, 2, pack.Rules.Capacity)
	assert.Equal(t, DefaultSpeed, pack.Rules.Speed)
	assert.Equal(t, "Bonk.", pack.Rules.Messages.Wall)
	assert.Equal(t, 2, pack.Levels.Count())

	lvl, err := pack.Levels.Load(1)
	require.NoError(t, err)
	assert.False(t, lvl.HasSpawn)
}

func TestLoadPackErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{"bad yaml", "name: [oops"},
		{"missing name", "levels: [a.txt]"},
		{"no levels", "name: Empty"},
		{"escaping path", "name: Bad\nlevels: [../secret.txt]"},
		{"absolute path", "name: Bad\nlevels: [/etc/passwd]"},
		{"invalid rules", "name: Bad\nspeed: 3\nlevels: [a.txt]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"p/pack.yaml": {Data: []byte(tt.manifest)}}
			_, err := LoadPack(fsys, "p")
			assert.Error(t, err)
		})
	}

	_, err := LoadPack(fstest.MapFS{}, "missing")
	assert.Error(t, err)
}
