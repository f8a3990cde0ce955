package interaction

import (
	"math"

	"github.com/annel0/mmo-game/internal/components"
	"github.com/annel0/mmo-game/internal/ecs"
	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
)

// MutableWorld is the voxel read/write surface BlockBreakSystem needs.
type MutableWorld interface {
	BlockSource
	SetBlock(pos vec.WorldBlockPos, state block.BlockState) bool
}

// RNG is the randomness source for the break impulse's polar-random
// direction, kept as an interface so tests can supply a deterministic
// sequence.
type RNG interface {
	Float64() float64 // uniform in [0,1)
}

const (
	dropHorizontalSpeedMin = 1.0
	dropHorizontalSpeedMax = 2.0
	dropUpwardSpeedMin     = 2.0
	dropUpwardSpeedMax     = 5.0
)

// BlockBreakSystem implements phase Simulation system 3: re-validates
// the target, spawns an item-drop entity with a randomized impulse,
// tears down any block entity, and writes Air to the world.
type BlockBreakSystem struct {
	World MutableWorld
	Rng   RNG
}

// NewBlockBreakSystem binds the system to a world and a randomness
// source for the drop impulse.
func NewBlockBreakSystem(world MutableWorld, rng RNG) *BlockBreakSystem {
	return &BlockBreakSystem{World: world, Rng: rng}
}

// Tick drains the break queue and applies each break.
func (s *BlockBreakSystem) Tick(r *ecs.Registry, res *BlockInteractionResource) {
	for _, ev := range res.DrainBreak() {
		s.processBreak(r, res, ev)
	}
}

func (s *BlockBreakSystem) processBreak(r *ecs.Registry, res *BlockInteractionResource, ev BlockBreakEvent) {
	state := s.World.GetBlock(ev.Pos)
	if state.IsAir() {
		return
	}

	id := state.ID()
	if info, ok := block.Get(id); ok && info.OnBroken != nil {
		info.OnBroken(ev.Pos.X, ev.Pos.Y, ev.Pos.Z)
	}

	s.spawnItemDrop(r, ev.Pos, id)

	if blockEntity, ok := res.BlockEntities[ev.Pos]; ok {
		r.Destroy(blockEntity)
		delete(res.BlockEntities, ev.Pos)
	}

	s.World.SetBlock(ev.Pos, block.Air)

	for _, mining := range res.Mining {
		if mining.HasTarget && mining.Target == ev.Pos {
			mining.HasTarget = false
			mining.AccumulatedTicks = 0
		}
	}
}

func (s *BlockBreakSystem) spawnItemDrop(r *ecs.Registry, pos vec.WorldBlockPos, id block.BlockId) {
	angle := s.Rng.Float64() * 2 * math.Pi
	horizontalSpeed := dropHorizontalSpeedMin + s.Rng.Float64()*(dropHorizontalSpeedMax-dropHorizontalSpeedMin)
	upwardSpeed := dropUpwardSpeedMin + s.Rng.Float64()*(dropUpwardSpeedMax-dropUpwardSpeedMin)

	velocity := vec.Vec3Float{
		X: math.Cos(angle) * horizontalSpeed,
		Y: upwardSpeed,
		Z: math.Sin(angle) * horizontalSpeed,
	}

	e := r.Create()
	_ = ecs.Add(r, e, components.CTransform{
		Position: vec.Vec3Float{X: float64(pos.X) + 0.5, Y: float64(pos.Y) + 0.5, Z: float64(pos.Z) + 0.5},
	})
	_ = ecs.Add(r, e, components.CVelocity{Velocity: velocity})
	_ = ecs.Add(r, e, components.CItemDrop{BlockId: id, TicksRemaining: itemDropLifetimeTicks, MaxTicks: itemDropLifetimeTicks})
	_ = ecs.Add(r, e, components.CPhysics{
		BBMin:      vec.Vec3Float{X: -0.1, Y: 0, Z: -0.1},
		BBMax:      vec.Vec3Float{X: 0.1, Y: 0.2, Z: 0.1},
		Bounciness: 0.2,
	})
	_ = ecs.Add(r, e, components.CMesh{MeshRef: uint64(id)})
}

// itemDropLifetimeTicks is how long a dropped item sits in the world
// before despawning (20 tps, so 300 ticks is 15s).
const itemDropLifetimeTicks = 300
