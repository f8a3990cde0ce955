package interaction

import (
	"github.com/annel0/mmo-game/internal/ecs"
	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
)

// BlockSource is the voxel query surface BlockHitSystem needs to look
// up the block a hit event targets.
type BlockSource interface {
	GetBlock(pos vec.WorldBlockPos) block.BlockState
}

// SpeedSource supplies a per-player mining speed multiplier (tool
// effectiveness, enchantments, etc.); nil means "always 1".
type SpeedSource interface {
	SpeedMultiplier(player ecs.Entity) float64
}

// BlockHitSystem accumulates mining progress per queued BlockHit
// event and emits BlockBreak once a target's breakTicks is crossed.
type BlockHitSystem struct {
	World BlockSource
	Speed SpeedSource
}

// NewBlockHitSystem binds the system to a world and an optional speed
// source (nil uses a flat 1x multiplier for every player).
func NewBlockHitSystem(world BlockSource, speed SpeedSource) *BlockHitSystem {
	return &BlockHitSystem{World: world, Speed: speed}
}

// Tick implements phase Simulation: drains the hit queue, advances
// mining progress, and applies the stop-mining grace window.
func (s *BlockHitSystem) Tick(res *BlockInteractionResource, currentTick uint64) {
	for _, ev := range res.DrainHit() {
		s.processHit(res, ev, currentTick)
	}
	s.decayStaleProgress(res, currentTick)
}

func (s *BlockHitSystem) processHit(res *BlockInteractionResource, ev BlockHitEvent, currentTick uint64) {
	state := s.World.GetBlock(ev.Pos)
	info, ok := block.Get(state.ID())
	if !ok {
		return
	}
	if info.BreakTicks == 0 {
		res.Break = append(res.Break, BlockBreakEvent{Player: ev.Player, Pos: ev.Pos})
		return
	}
	if info.BreakTicks == block.MaxBreakTicks {
		return
	}

	mining := res.miningStateFor(ev.Player)
	if !mining.HasTarget || mining.Target != ev.Pos {
		return
	}

	multiplier := 1.0
	if s.Speed != nil {
		multiplier = s.Speed.SpeedMultiplier(ev.Player)
	}
	mining.AccumulatedTicks += speedContribution(multiplier)
	mining.LastHitTick = currentTick

	if mining.AccumulatedTicks >= int(info.BreakTicks) {
		res.Break = append(res.Break, BlockBreakEvent{Player: ev.Player, Pos: ev.Pos})
		mining.AccumulatedTicks = 0
	}
}

func (s *BlockHitSystem) decayStaleProgress(res *BlockInteractionResource, currentTick uint64) {
	for _, mining := range res.Mining {
		if mining.AccumulatedTicks == 0 {
			continue
		}
		if mining.LastHitTick+MiningGraceTicks < currentTick {
			mining.AccumulatedTicks = 0
		}
	}
}
