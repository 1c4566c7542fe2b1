package session

import (
	"testing"

	"github.com/wricardo/stackquest/game/config"
	"github.com/wricardo/stackquest/game/engine"
)

func testPacks(t *testing.T) *config.Manager {
	t.Helper()
	packs, err := config.NewManager("")
	if err != nil {
		t.Fatalf("failed to load builtin packs: %v", err)
	}
	return packs
}

func testPack(t *testing.T, id string) *engine.Pack {
	t.Helper()
	pack, err := testPacks(t).LoadPack(id)
	if err != nil {
		t.Fatalf("failed to load pack %s: %v", id, err)
	}
	return pack
}

// walkUntilItem holds right until something lands in the backpack.
func walkUntilItem(t *testing.T, eng *engine.GameEngine) {
	t.Helper()
	for i := 0; i < 100; i++ {
		res, err := eng.ResolveTick(engine.Vector{X: 1})
		if err != nil {
			t.Fatalf("tick failed: %v", err)
		}
		if len(eng.Snapshot().InventoryItems) > 0 {
			return
		}
		if res.State != engine.Playing {
			t.Fatalf("game ended before picking anything up: %s", res.State)
		}
	}
	t.Fatal("never picked anything up")
}
