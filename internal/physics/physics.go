// Package physics resolves entity motion against the voxel grid with
// a per-axis swept AABB, and detects entity-vs-entity AABB overlap
// with a naive all-pairs sweep.
package physics

import (
	"math"

	"github.com/annel0/mmo-game/internal/components"
	"github.com/annel0/mmo-game/internal/ecs"
	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
)

// Tunable constants the voxel physics system must honor.
const (
	Gravity          = -32.0
	TerminalVelocity = -48.0
	JumpVelocity     = 9.0
	GroundMaxSpeed   = 4.3
	SprintModifier   = 1.3
	GroundProbe      = 0.05
	Skin             = 0.001
	nonPlayerFrictionPerSecond = 10.0
)

// PlayerBBMin and PlayerBBMax are the standard player collision box,
// in local offsets from CTransform.Position.
var (
	PlayerBBMin = vec.Vec3Float{X: -0.3, Y: 0.0, Z: -0.3}
	PlayerBBMax = vec.Vec3Float{X: 0.3, Y: 1.8, Z: 0.3}
)

// BlockSource is the voxel query surface the physics system needs
// from the world, kept as an interface so this package never imports
// internal/world directly.
type BlockSource interface {
	GetBlock(pos vec.WorldBlockPos) block.BlockState
}

func isSolidAt(src BlockSource, pos vec.WorldBlockPos) bool {
	state := src.GetBlock(pos)
	if state.IsAir() {
		return false
	}
	return block.IsSolid(state.ID())
}

// clamp01 restricts v to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// VoxelSystem resolves {CTransform, CVelocity, CPhysics} entities
// against a BlockSource each fixed tick.
type VoxelSystem struct {
	World BlockSource
}

// NewVoxelSystem builds a voxel physics system bound to a world.
func NewVoxelSystem(world BlockSource) *VoxelSystem {
	return &VoxelSystem{World: world}
}

// Tick advances every physics-bound entity by dtSeconds, applying
// gravity, friction (for non-players) and per-axis swept collision.
func (s *VoxelSystem) Tick(r *ecs.Registry, dtSeconds float64) {
	ecs.View3(r, func(e ecs.Entity, t *components.CTransform, v *components.CVelocity, p *components.CPhysics) {
		s.tickOne(r, e, t, v, p, dtSeconds)
	})
}

func (s *VoxelSystem) tickOne(r *ecs.Registry, e ecs.Entity, t *components.CTransform, v *components.CVelocity, p *components.CPhysics, dt float64) {
	grounded := s.probeGrounded(t.Position, p)
	p.OnGround = grounded

	if !grounded {
		v.Velocity.Y = math.Max(v.Velocity.Y+Gravity*dt, TerminalVelocity)
	}

	if grounded && !ecs.Has[components.CPlayerTag](r, e) {
		decay := math.Pow(0.5, dt*nonPlayerFrictionPerSecond)
		v.Velocity.X *= decay
		v.Velocity.Z *= decay
	}

	step := v.Velocity.Scale(dt)
	s.moveAndCollideAxis(t, v, p, step.Y, axisY)
	s.moveAndCollideAxis(t, v, p, step.X, axisX)
	s.moveAndCollideAxis(t, v, p, step.Z, axisZ)
}

// probeGrounded shifts the entity's AABB down by GroundProbe and
// tests whether any overlapping voxel is solid.
func (s *VoxelSystem) probeGrounded(pos vec.Vec3Float, p *components.CPhysics) bool {
	probeMin := vec.Vec3Float{X: pos.X + p.BBMin.X, Y: pos.Y + p.BBMin.Y - GroundProbe, Z: pos.Z + p.BBMin.Z}
	probeMax := vec.Vec3Float{X: pos.X + p.BBMax.X, Y: pos.Y + p.BBMax.Y - GroundProbe, Z: pos.Z + p.BBMax.Z}
	return s.anySolidInRange(probeMin, probeMax)
}

func (s *VoxelSystem) anySolidInRange(min, max vec.Vec3Float) bool {
	const eps = 1e-4
	minX, maxX := floorEps(min.X, -eps), floorEps(max.X, eps)
	minY, maxY := floorEps(min.Y, -eps), floorEps(max.Y, eps)
	minZ, maxZ := floorEps(min.Z, -eps), floorEps(max.Z, eps)

	for y := minY; y <= maxY; y++ {
		for z := minZ; z <= maxZ; z++ {
			for x := minX; x <= maxX; x++ {
				if isSolidAt(s.World, vec.WorldBlockPos{X: x, Y: y, Z: z}) {
					return true
				}
			}
		}
	}
	return false
}

func floorEps(v float64, eps float64) int {
	f := v + eps
	i := int(f)
	if f < float64(i) {
		i--
	}
	return i
}

type axis int

const (
	axisX axis = iota
	axisY
	axisZ
)

// moveAndCollideAxis applies one axis of a swept move, resolving
// against solid voxels per spec: move first, then pull back to the
// hit boundary (minus skin) if a solid voxel overlapped the new AABB.
func (s *VoxelSystem) moveAndCollideAxis(t *components.CTransform, v *components.CVelocity, p *components.CPhysics, d float64, ax axis) {
	switch ax {
	case axisX:
		t.Position.X += d
	case axisY:
		t.Position.Y += d
	case axisZ:
		t.Position.Z += d
	}
	if d == 0 {
		return
	}

	min := t.Position.Add(p.BBMin)
	max := t.Position.Add(p.BBMax)

	const eps = 1e-4
	minX, maxX := floorEps(min.X, -eps), floorEps(max.X, eps)
	minY, maxY := floorEps(min.Y, -eps), floorEps(max.Y, eps)
	minZ, maxZ := floorEps(min.Z, -eps), floorEps(max.Z, eps)

	hit, found := 0, false
	consider := func(coord int) {
		if !found {
			hit = coord
			found = true
			return
		}
		if d > 0 && coord < hit {
			hit = coord
		} else if d < 0 && coord > hit {
			hit = coord
		}
	}

	for y := minY; y <= maxY; y++ {
		for z := minZ; z <= maxZ; z++ {
			for x := minX; x <= maxX; x++ {
				if !isSolidAt(s.World, vec.WorldBlockPos{X: x, Y: y, Z: z}) {
					continue
				}
				switch ax {
				case axisX:
					consider(x)
				case axisY:
					consider(y)
				case axisZ:
					consider(z)
				}
			}
		}
	}

	if !found {
		return
	}

	bounce := -vSign(ax, v) * clamp01(p.Bounciness)
	var newVel float64
	var axisBBMax, axisBBMin float64
	switch ax {
	case axisX:
		axisBBMax, axisBBMin = p.BBMax.X, p.BBMin.X
	case axisY:
		axisBBMax, axisBBMin = p.BBMax.Y, p.BBMin.Y
	case axisZ:
		axisBBMax, axisBBMin = p.BBMax.Z, p.BBMin.Z
	}

	var resolved float64
	if d > 0 {
		resolved = float64(hit) - axisBBMax - Skin
	} else {
		resolved = float64(hit+1) - axisBBMin + Skin
	}
	setAxis(t, ax, resolved)

	newVel = bounce
	if math.Abs(newVel) < 0.01 {
		newVel = 0
	}
	setVelAxis(v, ax, newVel)

	if ax == axisY && d < 0 && p.Bounciness < 0.5 {
		p.OnGround = true
	}
}

func vSign(ax axis, v *components.CVelocity) float64 {
	switch ax {
	case axisX:
		return v.Velocity.X
	case axisY:
		return v.Velocity.Y
	default:
		return v.Velocity.Z
	}
}

func setAxis(t *components.CTransform, ax axis, val float64) {
	switch ax {
	case axisX:
		t.Position.X = val
	case axisY:
		t.Position.Y = val
	case axisZ:
		t.Position.Z = val
	}
}

func setVelAxis(v *components.CVelocity, ax axis, val float64) {
	switch ax {
	case axisX:
		v.Velocity.X = val
	case axisY:
		v.Velocity.Y = val
	case axisZ:
		v.Velocity.Z = val
	}
}
