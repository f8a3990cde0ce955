package regional

import (
	"github.com/annel0/mmo-game/internal/world"
)

// World is an alias so regional-node code reads in terms of its own
// domain rather than importing world directly everywhere.
type World = world.Level

// NewWorld opens a region's local level backed by the given chunk store.
func NewWorld(store world.ChunkStore, seed int64) (*World, error) {
	return world.OpenLevel(store, seed)
}
