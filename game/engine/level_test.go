package engine

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Run("crlf and trailing blank lines", func(t *testing.T) {
		lvl := ParseLevel("a", []byte("###\r\n#P#\r\n###\r\n\r\n"))
		assert.Equal(t, 3, lvl.Grid.Height())
		assert.Equal(t, 3, lvl.Grid.Width())
		assert.True(t, lvl.HasSpawn)
		assert.Equal(t, Cell{X: 1, Y: 1}, lvl.Spawn)
	})

	t.Run("first spawn wins", func(t *testing.T) {
		lvl := ParseLevel("b", []byte(level("P..", "..P")))
		assert.Equal(t, Cell{X: 0, Y: 0}, lvl.Spawn)
		assert.Equal(t, 2, lvl.SpawnCount)
		assert.Equal(t, Empty, lvl.Grid.At(2, 1))
	})

	t.Run("no spawn", func(t *testing.T) {
		lvl := ParseLevel("c", []byte(level("...")))
		assert.False(t, lvl.HasSpawn)
		assert.Equal(t, 0, lvl.SpawnCount)
	})

	t.Run("empty resource", func(t *testing.T) {
		lvl := ParseLevel("d", nil)
		assert.Equal(t, 0, lvl.Grid.Width())
		assert.Equal(t, 0, lvl.Grid.Height())
	})
}

func TestSequence(t *testing.T) {
	fsys := fstest.MapFS{
		"one.txt": {Data: []byte(level("#P#"))},
	}
	seq := NewSequence(fsys, "one.txt", "two.txt")

	assert.Equal(t, 2, seq.Count())
	assert.Equal(t, []string{"one.txt", "two.txt"}, seq.Names())
	assert.Equal(t, "", seq.Name(2))

	lvl, err := seq.Load(0)
	require.NoError(t, err)
	assert.Equal(t, "one.txt", lvl.Name)

	_, err = seq.Load(1)
	var mle *MapLoadError
	require.True(t, errors.As(err, &mle))
	assert.Equal(t, 1, mle.Index)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "resource unreadable")

	_, err = seq.Load(-1)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
