package engine

import (
	"errors"
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/stackquest/game/stack"
)

func TestNew(t *testing.T) {
	e := newTestEngine(t, testRules(), level("#####", "#P..#", "#####"))

	snap := e.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, Playing, snap.GameState)
	assert.Equal(t, Vector{X: 1.5, Y: 1.5}, snap.PlayerPosition)
	assert.Equal(t, Cell{X: 1, Y: 1}, snap.PlayerCell)
	assert.Equal(t, DefaultMessages().Welcome, snap.StatusMessage)
	assert.Equal(t, []string{"#####", "#...#", "#####"}, snap.Grid)
	assert.Empty(t, snap.InventoryItems)
	assert.Equal(t, DefaultCapacity, snap.InventoryCapacity)
	assert.Equal(t, 0, snap.LevelIndex)
	assert.Equal(t, 1, snap.LevelCount)
	assert.Equal(t, uint64(0), snap.Tick)
}

func TestNewErrors(t *testing.T) {
	t.Run("nil source", func(t *testing.T) {
		_, err := New(nil, testRules())
		assert.ErrorIs(t, err, ErrNoLevelSource)
	})

	t.Run("invalid rules", func(t *testing.T) {
		fsys, names := levelFS(level("#P#"))
		_, err := New(NewSequence(fsys, names...), Rules{Speed: 2})
		assert.ErrorIs(t, err, ErrInvalidRules)
	})

	t.Run("missing first level", func(t *testing.T) {
		_, err := New(NewSequence(fstest.MapFS{}, "nope.txt"), testRules())
		var mle *MapLoadError
		require.ErrorAs(t, err, &mle)
		assert.Equal(t, 0, mle.Index)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("no levels starts cleared", func(t *testing.T) {
		e, err := New(NewSequence(fstest.MapFS{}), testRules())
		require.NoError(t, err)
		assert.Equal(t, Cleared, e.Snapshot().GameState)
		assert.Equal(t, DefaultMessages().Cleared, e.Snapshot().StatusMessage)
	})
}

func TestMonsterWithoutSwordKills(t *testing.T) {
	e := newTestEngine(t, testRules(), level("#####", "#PM.#", "#####"))

	res := step(t, e, right, 1)
	assert.Equal(t, RequestDeath, res.Transition)
	assert.False(t, res.Moved)
	assert.Equal(t, []EventKind{EventDeath}, eventKinds(res))

	snap := e.Snapshot()
	assert.Equal(t, Dead, snap.GameState)
	assert.Equal(t, Vector{X: 1.5, Y: 1.5}, snap.PlayerPosition)
	assert.Equal(t, DefaultMessages().KilledByMonster, snap.StatusMessage)
	assert.Equal(t, Monster, snap.TileAt(2, 1))

	// Movement is ignored while dead.
	res = step(t, e, right, 3)
	assert.False(t, res.Moved)
	assert.Empty(t, res.Events)
	assert.Equal(t, Vector{X: 1.5, Y: 1.5}, e.Snapshot().PlayerPosition)

	e.RequestReset()
	res = step(t, e, Vector{}, 1)
	assert.Equal(t, []EventKind{EventLevelLoaded, EventReset}, eventKinds(res))

	snap = e.Snapshot()
	assert.Equal(t, Playing, snap.GameState)
	assert.Equal(t, 0, snap.LevelIndex)
	assert.Equal(t, Vector{X: 1.5, Y: 1.5}, snap.PlayerPosition)
	assert.Empty(t, snap.InventoryItems)
	assert.Equal(t, DefaultMessages().Reset, snap.StatusMessage)
}

func TestSwordSlaysMonster(t *testing.T) {
	e := newTestEngine(t, testRules(), level("#######", "#PS.M.#", "#######"))

	res := step(t, e, right, 1)
	assert.Equal(t, []EventKind{EventPickup}, eventKinds(res))
	assert.Equal(t, "Picked up Sword!", e.Snapshot().StatusMessage)
	assert.Equal(t, []Item{ItemSword}, e.Snapshot().InventoryItems)
	assert.Equal(t, Empty, e.Snapshot().TileAt(2, 1))

	step(t, e, right, 3)
	res = step(t, e, right, 1)
	assert.Equal(t, []EventKind{EventMonsterSlain}, eventKinds(res))
	assert.True(t, res.Moved)
	assert.InDelta(t, 4.0, res.Position.X, 1e-9)

	snap := e.Snapshot()
	assert.Equal(t, Playing, snap.GameState)
	assert.Empty(t, snap.InventoryItems)
	assert.Equal(t, Empty, snap.TileAt(4, 1))
	assert.Equal(t, DefaultMessages().MonsterSlain, snap.StatusMessage)
}

func TestSwordThenMonsterAroundCorner(t *testing.T) {
	e := newTestEngine(t, DefaultRules(), level(
		"#####",
		"#P..#",
		"#...#",
		"#S.M#",
		"#####",
	))

	step(t, e, Vector{Y: 1}, 16)
	snap := e.Snapshot()
	assert.Equal(t, []Item{ItemSword}, snap.InventoryItems)
	assert.Equal(t, Empty, snap.TileAt(1, 3))
	assert.Equal(t, Cell{X: 1, Y: 3}, snap.PlayerCell)

	step(t, e, right, 16)
	snap = e.Snapshot()
	assert.Equal(t, Playing, snap.GameState)
	assert.Empty(t, snap.InventoryItems)
	assert.Equal(t, Empty, snap.TileAt(3, 3))
	assert.Equal(t, DefaultMessages().MonsterSlain, snap.StatusMessage)
}

func TestWallStopsMovement(t *testing.T) {
	e := newTestEngine(t, testRules(), level("####", "#P.#", "####"))

	step(t, e, right, 1)
	assert.InDelta(t, 2.0, e.Snapshot().PlayerPosition.X, 1e-9)
	step(t, e, right, 1)
	assert.InDelta(t, 2.5, e.Snapshot().PlayerPosition.X, 1e-9)

	res := step(t, e, right, 1)
	assert.False(t, res.Moved)
	assert.Empty(t, res.Events)
	assert.InDelta(t, 2.5, res.Position.X, 1e-9)
	assert.Equal(t, "Ouch! It's a wall.", e.Snapshot().StatusMessage)
}

func TestOutOfBoundsIsSolid(t *testing.T) {
	// The spawn sits on the grid edge with no wall around it.
	e := newTestEngine(t, testRules(), level("P."))

	res := step(t, e, Vector{X: -1}, 1)
	assert.False(t, res.Moved)
	assert.Equal(t, Vector{X: 0.5, Y: 0.5}, res.Position)

	res = step(t, e, Vector{Y: 1}, 1)
	assert.False(t, res.Moved)
}

func TestRaggedRowsPadWithVoid(t *testing.T) {
	e := newTestEngine(t, testRules(), level("#####", "#P..", "#####"))

	step(t, e, right, 1)
	res := step(t, e, right, 4)
	assert.InDelta(t, 3.5, res.Position.X, 1e-9)
	assert.Equal(t, Void, e.Snapshot().TileAt(4, 1))
}

func TestAxisSlide(t *testing.T) {
	e := newTestEngine(t, testRules(), level("#####", "#P..#", "#...#", "#####"))

	res := step(t, e, Vector{X: 1, Y: -1}, 1)
	require.True(t, res.Moved)

	d := 0.5 / 1.4142135623730951
	assert.InDelta(t, 1.5+d, res.Position.X, 1e-9)
	assert.InDelta(t, 1.5, res.Position.Y, 1e-9)
	assert.Equal(t, DefaultMessages().Welcome, e.Snapshot().StatusMessage)
}

func TestDiagonalIsClamped(t *testing.T) {
	e := newTestEngine(t, testRules(), level("#####", "#P..#", "#...#", "#...#", "#####"))

	res := step(t, e, Vector{X: 1, Y: 1}, 1)
	moved := Vector{X: res.Position.X - 1.5, Y: res.Position.Y - 1.5}
	assert.InDelta(t, 0.5, moved.Len(), 1e-9)
}

func TestInventoryFull(t *testing.T) {
	rules := testRules()
	rules.Capacity = 1
	e := newTestEngine(t, rules, level("######", "#PSW.#", "######"))

	step(t, e, right, 2)
	res := step(t, e, right, 1)
	assert.True(t, res.Moved)
	assert.Equal(t, []EventKind{EventInventoryFull}, eventKinds(res))
	assert.Equal(t, DefaultMessages().InventoryFull, e.Snapshot().StatusMessage)
	assert.Equal(t, Water, e.Snapshot().TileAt(3, 1))

	// Still standing on the water: the message is not repeated as an event.
	res = step(t, e, right, 1)
	assert.Empty(t, res.Events)
	assert.Equal(t, []Item{ItemSword}, e.Snapshot().InventoryItems)
}

func TestFire(t *testing.T) {
	t.Run("water douses fire", func(t *testing.T) {
		e := newTestEngine(t, testRules(), level("######", "#PWF.#", "######"))

		step(t, e, right, 2)
		res := step(t, e, right, 1)
		assert.Equal(t, []EventKind{EventFireDoused}, eventKinds(res))
		assert.Equal(t, Empty, e.Snapshot().TileAt(3, 1))
		assert.Empty(t, e.Snapshot().InventoryItems)
	})

	t.Run("fire burns", func(t *testing.T) {
		e := newTestEngine(t, testRules(), level("#####", "#PF.#", "#####"))

		res := step(t, e, right, 1)
		assert.Equal(t, RequestDeath, res.Transition)
		assert.Equal(t, Dead, e.Snapshot().GameState)
		assert.Equal(t, DefaultMessages().Burned, e.Snapshot().StatusMessage)
	})

	t.Run("wrong item on top burns", func(t *testing.T) {
		// Water is buried under the sword.
		e := newTestEngine(t, testRules(), level("#######", "#PWSF.#", "#######"))

		step(t, e, right, 4)
		res := step(t, e, right, 1)
		assert.Equal(t, RequestDeath, res.Transition)
		assert.Equal(t, []Item{ItemSword, ItemWater}, e.Snapshot().InventoryItems)
	})
}

func TestDoorWithKeyClearsLastLevel(t *testing.T) {
	e := newTestEngine(t, testRules(), level("######", "#PKD.#", "######"))

	step(t, e, right, 2)
	res := step(t, e, right, 1)

	assert.Equal(t, RequestAdvance, res.Transition)
	assert.Equal(t, []EventKind{EventDoorOpened, EventCleared}, eventKinds(res))
	assert.False(t, res.Moved)

	snap := e.Snapshot()
	assert.Equal(t, Cleared, snap.GameState)
	assert.Equal(t, 1, snap.LevelIndex)
	assert.InDelta(t, 2.5, snap.PlayerPosition.X, 1e-9)
	assert.Equal(t, Empty, snap.TileAt(3, 1))
	assert.Empty(t, snap.InventoryItems)
	assert.Equal(t, DefaultMessages().Cleared, snap.StatusMessage)

	// Cleared games ignore movement.
	res = step(t, e, right, 1)
	assert.False(t, res.Moved)
}

func TestLockedDoor(t *testing.T) {
	e := newTestEngine(t, testRules(), level("######", "#PSD.#", "######"))

	step(t, e, right, 2)
	res := step(t, e, right, 1)
	assert.Equal(t, NoTransition, res.Transition)
	assert.False(t, res.Moved)
	assert.Equal(t, []EventKind{EventDoorLocked}, eventKinds(res))

	snap := e.Snapshot()
	assert.Equal(t, Door, snap.TileAt(3, 1))
	assert.Equal(t, []Item{ItemSword}, snap.InventoryItems)
	assert.Equal(t, DefaultMessages().NeedKey, snap.StatusMessage)

	res = step(t, e, right, 1)
	assert.Empty(t, res.Events)
}

func TestAdvanceReusesSpawn(t *testing.T) {
	e := newTestEngine(t, testRules(),
		level("######", "#PSKD#", "######"),
		level("#####", "#...#", "#####"),
	)

	step(t, e, right, 4)
	res := step(t, e, right, 1)
	assert.Equal(t, RequestAdvance, res.Transition)
	assert.Equal(t, []EventKind{EventDoorOpened, EventLevelLoaded}, eventKinds(res))

	snap := e.Snapshot()
	assert.Equal(t, Playing, snap.GameState)
	assert.Equal(t, 1, snap.LevelIndex)
	assert.Equal(t, "level02.txt", snap.LevelName)
	assert.Equal(t, Vector{X: 1.5, Y: 1.5}, snap.PlayerPosition)
	assert.Empty(t, snap.InventoryItems)
	assert.Equal(t, "Level 2 of 2", snap.StatusMessage)
}

func TestAdvanceLoadFailureKeepsSnapshot(t *testing.T) {
	fsys, names := levelFS(level("#####", "#PKD#", "#####"))
	e, err := New(NewSequence(fsys, append(names, "missing.txt")...), testRules())
	require.NoError(t, err)

	step(t, e, right, 2)
	before := e.Snapshot()

	res, err := e.ResolveTick(right)
	assert.Nil(t, res)
	var mle *MapLoadError
	require.ErrorAs(t, err, &mle)
	assert.Equal(t, 1, mle.Index)
	assert.Equal(t, "missing.txt", mle.Name)

	assert.Same(t, before, e.Snapshot())
	assert.Equal(t, Door, e.Snapshot().TileAt(3, 1))
	assert.Equal(t, []Item{ItemKey}, e.Snapshot().InventoryItems)
}

func TestResetFromClearedRestarts(t *testing.T) {
	e := newTestEngine(t, testRules(), level("#####", "#PKD#", "#####"))

	step(t, e, right, 3)
	require.Equal(t, Cleared, e.Snapshot().GameState)

	e.RequestReset()
	step(t, e, Vector{}, 1)

	snap := e.Snapshot()
	assert.Equal(t, Playing, snap.GameState)
	assert.Equal(t, 0, snap.LevelIndex)
	assert.Equal(t, Key, snap.TileAt(2, 1))
	assert.Equal(t, Door, snap.TileAt(3, 1))
}

func TestResetRestoresGrid(t *testing.T) {
	e := newTestEngine(t, testRules(), level("#####", "#PS.#", "#####"))

	step(t, e, right, 2)
	require.Equal(t, Empty, e.Snapshot().TileAt(2, 1))

	e.RequestReset()
	// Movement in the same tick runs on the reloaded level.
	res := step(t, e, right, 1)
	assert.Equal(t, []EventKind{EventLevelLoaded, EventReset, EventPickup}, eventKinds(res))
	assert.InDelta(t, 2.0, res.Position.X, 1e-9)
	assert.Equal(t, []Item{ItemSword}, e.Snapshot().InventoryItems)
}

func TestQuit(t *testing.T) {
	e := newTestEngine(t, testRules(), level("#####", "#P..#", "#####"))

	e.RequestReset()
	e.RequestQuit()
	res := step(t, e, right, 1)
	assert.Equal(t, []EventKind{EventQuit}, eventKinds(res))
	assert.False(t, res.Moved)
	assert.True(t, e.IsQuit())
	assert.True(t, e.Snapshot().Quit)

	e.RequestReset()
	res = step(t, e, right, 1)
	assert.Empty(t, res.Events)
	assert.False(t, res.Moved)
}

func TestAdvanceTickUsesHeldDirection(t *testing.T) {
	e := newTestEngine(t, testRules(), level("#####", "#P..#", "#####"))

	e.SubmitDirection(Vector{X: 3})
	assert.Equal(t, right, e.Direction())

	res, err := e.AdvanceTick()
	require.NoError(t, err)
	assert.InDelta(t, 2.0, res.Position.X, 1e-9)
	assert.Equal(t, uint64(1), res.Tick)

	e.SubmitDirection(Vector{})
	res, err = e.AdvanceTick()
	require.NoError(t, err)
	assert.False(t, res.Moved)
	assert.Equal(t, uint64(2), e.Snapshot().Tick)
}

func TestSnapshotIsImmutable(t *testing.T) {
	e := newTestEngine(t, testRules(), level("#####", "#PS.#", "#####"))

	before := e.Snapshot()
	step(t, e, right, 1)
	after := e.Snapshot()

	assert.NotSame(t, before, after)
	assert.Equal(t, Sword, before.TileAt(2, 1))
	assert.Empty(t, before.InventoryItems)
	assert.Equal(t, Empty, after.TileAt(2, 1))
}

func TestSetCapacity(t *testing.T) {
	e := newTestEngine(t, testRules(), level("######", "#PSW.#", "######"))
	step(t, e, right, 3)
	require.Len(t, e.Snapshot().InventoryItems, 2)

	err := e.SetCapacity(1)
	assert.ErrorIs(t, err, stack.ErrInvalidCapacity)
	assert.Equal(t, DefaultCapacity, e.Snapshot().InventoryCapacity)

	require.NoError(t, e.SetCapacity(2))
	assert.Equal(t, 2, e.Snapshot().InventoryCapacity)
}

func TestSaveRestore(t *testing.T) {
	fsys, names := levelFS(level("######", "#PSK.#", "######"), level("#####", "#P..#", "#####"))
	src := NewSequence(fsys, names...)
	e, err := New(src, testRules())
	require.NoError(t, err)
	step(t, e, right, 3)

	saved := e.Save()
	assert.Equal(t, []Item{ItemSword, ItemKey}, saved.Inventory)

	restored, err := Restore(src, testRules(), saved)
	require.NoError(t, err)
	assert.Equal(t, e.Snapshot(), restored.Snapshot())

	// The restored game keeps playing independently.
	step(t, restored, right, 1)
	assert.NotEqual(t, e.Snapshot().PlayerPosition, restored.Snapshot().PlayerPosition)
}

func TestRestoreErrors(t *testing.T) {
	fsys, names := levelFS(level("#P#"))
	src := NewSequence(fsys, names...)

	_, err := Restore(src, testRules(), nil)
	assert.Error(t, err)

	_, err = Restore(src, testRules(), &SavedGame{LevelIndex: 5})
	assert.Error(t, err)

	_, err = Restore(src, testRules(), &SavedGame{Capacity: 1, Inventory: []Item{ItemKey, ItemSword}})
	assert.True(t, errors.Is(err, stack.ErrCapacityExceeded))
}

func TestPackNewEngine(t *testing.T) {
	fsys := fstest.MapFS{
		"demo/pack.yaml":  {Data: []byte("name: Demo\nspeed: 0.5\nlevels:\n  - one.txt\n")},
		"demo/one.txt":    {Data: []byte(level("#####", "#P.M#", "#####"))},
		"demo/unused.txt": {Data: []byte("#")},
	}
	pack, err := LoadPack(fsys, "demo")
	require.NoError(t, err)

	e, err := pack.NewEngine()
	require.NoError(t, err)
	assert.Equal(t, 1, e.LevelCount())
	assert.Equal(t, 0.5, e.Rules().Speed)
	assert.Equal(t, Monster, e.Snapshot().TileAt(3, 1))
}
