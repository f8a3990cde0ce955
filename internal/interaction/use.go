package interaction

import (
	"github.com/annel0/mmo-game/internal/components"
	"github.com/annel0/mmo-game/internal/ecs"
	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
)

// BlockUseSystem implements phase LateSimulation system 4: opens a
// block entity's UI (creating one if needed) or toggles an openable
// block's orientation.
type BlockUseSystem struct {
	World MutableWorld
}

// NewBlockUseSystem binds the system to a world.
func NewBlockUseSystem(world MutableWorld) *BlockUseSystem {
	return &BlockUseSystem{World: world}
}

// Tick drains the use queue and applies each use.
func (s *BlockUseSystem) Tick(r *ecs.Registry, res *BlockInteractionResource) {
	for _, ev := range res.DrainUse() {
		s.processUse(r, res, ev)
	}
}

func (s *BlockUseSystem) processUse(r *ecs.Registry, res *BlockInteractionResource, ev BlockUseEvent) {
	state := s.World.GetBlock(ev.Pos)
	if state.IsAir() {
		return
	}

	info, ok := block.Get(state.ID())
	if !ok {
		return
	}

	if info.HasBlockEntity {
		blockEntity := s.ensureBlockEntity(r, res, ev.Pos, state.ID())
		res.Open = append(res.Open, OpenBlockEntityEvent{Player: ev.Player, BlockEntity: blockEntity})
		return
	}

	if info.Openable {
		next := (state.Orientation() + 1) % 6
		s.World.SetBlock(ev.Pos, state.WithOrientation(next))
	}
}

// ensureBlockEntity returns the live ECS entity backing a block
// entity at pos, creating one with type-appropriate components (e.g.
// CFurnace+CInventory(3) for furnaces) if it doesn't exist yet.
func (s *BlockUseSystem) ensureBlockEntity(r *ecs.Registry, res *BlockInteractionResource, pos vec.WorldBlockPos, id block.BlockId) ecs.Entity {
	if existing, ok := res.BlockEntities[pos]; ok && r.Exists(existing) {
		return existing
	}

	e := r.Create()
	_ = ecs.Add(r, e, components.CBlockEntity{Pos: pos, BlockId: id})

	if id == block.FurnaceBlockId {
		_ = ecs.Add(r, e, components.CFurnace{})
		_ = ecs.Add(r, e, components.CInventory{Slots: make([]components.InventorySlot, 3)})
	}

	res.BlockEntities[pos] = e
	return e
}
