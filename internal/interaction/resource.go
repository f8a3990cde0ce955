// Package interaction implements the block interaction pipeline: the
// raycast-driven mining/placing/using flow and the furnace smelting
// state machine, wired as ECS systems over a shared per-world resource.
package interaction

import (
	"github.com/annel0/mmo-game/internal/ecs"
	"github.com/annel0/mmo-game/internal/vec"
)

// BlockHitEvent is queued each tick the local player holds the mine
// button over a targeted voxel.
type BlockHitEvent struct {
	Player ecs.Entity
	Pos    vec.WorldBlockPos
}

// BlockBreakEvent requests that a voxel actually be broken.
type BlockBreakEvent struct {
	Player ecs.Entity
	Pos    vec.WorldBlockPos
}

// BlockUseEvent requests the use/interact action on a voxel.
type BlockUseEvent struct {
	Player ecs.Entity
	Pos    vec.WorldBlockPos
}

// OpenBlockEntityEvent requests the UI collaborator open a surface for
// the given block entity.
type OpenBlockEntityEvent struct {
	Player      ecs.Entity
	BlockEntity ecs.Entity
}

// PlayerMiningState is per-player mining progress against one target
// voxel.
type PlayerMiningState struct {
	HasTarget        bool
	Target           vec.WorldBlockPos
	AccumulatedTicks int
	LastHitTick      uint64
}

// MiningGraceTicks is how long mining progress survives without a
// fresh hit before it resets ("stop-mining grace window").
const MiningGraceTicks = 7

// speedContribution is how many mining ticks one hit adds: the speed
// multiplier truncated to a whole number, never less than 1.
func speedContribution(speedMultiplier float64) int {
	contribution := int(speedMultiplier)
	if contribution < 1 {
		contribution = 1
	}
	return contribution
}

// BlockInteractionResource is the per-world state shared by all five
// interaction systems: the four event queues, per-player mining
// progress, and the live block-entity registry.
type BlockInteractionResource struct {
	Hit   []BlockHitEvent
	Break []BlockBreakEvent
	Use   []BlockUseEvent
	Open  []OpenBlockEntityEvent

	Mining        map[ecs.Entity]*PlayerMiningState
	BlockEntities map[vec.WorldBlockPos]ecs.Entity
}

// NewBlockInteractionResource returns an empty resource ready for use.
func NewBlockInteractionResource() *BlockInteractionResource {
	return &BlockInteractionResource{
		Mining:        make(map[ecs.Entity]*PlayerMiningState),
		BlockEntities: make(map[vec.WorldBlockPos]ecs.Entity),
	}
}

func (r *BlockInteractionResource) miningStateFor(player ecs.Entity) *PlayerMiningState {
	state, ok := r.Mining[player]
	if !ok {
		state = &PlayerMiningState{}
		r.Mining[player] = state
	}
	return state
}

// DrainHit clears and returns the hit queue, for a system that
// processes it once per tick.
func (r *BlockInteractionResource) DrainHit() []BlockHitEvent {
	events := r.Hit
	r.Hit = nil
	return events
}

// DrainBreak clears and returns the break queue.
func (r *BlockInteractionResource) DrainBreak() []BlockBreakEvent {
	events := r.Break
	r.Break = nil
	return events
}

// DrainUse clears and returns the use queue.
func (r *BlockInteractionResource) DrainUse() []BlockUseEvent {
	events := r.Use
	r.Use = nil
	return events
}

// DrainOpen clears and returns the open queue.
func (r *BlockInteractionResource) DrainOpen() []OpenBlockEntityEvent {
	events := r.Open
	r.Open = nil
	return events
}
