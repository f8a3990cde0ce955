package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/mmo-game/internal/components"
	"github.com/annel0/mmo-game/internal/ecs"
	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
)

// flatWorld is solid below a fixed surface height, air above.
type flatWorld struct {
	surfaceY int
}

func (w flatWorld) GetBlock(pos vec.WorldBlockPos) block.BlockState {
	if pos.Y <= w.surfaceY {
		return block.NewBlockState(block.StoneBlockId, block.North)
	}
	return block.Air
}

func newPlayerEntity(r *ecs.Registry, pos vec.Vec3Float) ecs.Entity {
	e := r.Create()
	_ = ecs.Add(r, e, components.CTransform{Position: pos})
	_ = ecs.Add(r, e, components.CVelocity{})
	_ = ecs.Add(r, e, components.CPhysics{BBMin: PlayerBBMin, BBMax: PlayerBBMax, Bounciness: 0})
	_ = ecs.Add(r, e, components.CPlayerTag{})
	return e
}

func TestFallAndRestOnGround(t *testing.T) {
	r := ecs.NewRegistry()
	e := newPlayerEntity(r, vec.Vec3Float{X: 0, Y: 200, Z: 0})
	sys := NewVoxelSystem(flatWorld{surfaceY: 95})

	const dt = 1.0 / 20.0
	for i := 0; i < 200; i++ {
		sys.Tick(r, dt)
	}

	transform, err := ecs.Get[components.CTransform](r, e)
	require.NoError(t, err)
	phys, err := ecs.Get[components.CPhysics](r, e)
	require.NoError(t, err)

	assert.True(t, phys.OnGround)
	assert.InDelta(t, 96.0, transform.Position.Y, 0.05)
}

func TestGravityAcceleratesUntilTerminalVelocity(t *testing.T) {
	r := ecs.NewRegistry()
	e := newPlayerEntity(r, vec.Vec3Float{X: 0, Y: 1000, Z: 0})
	sys := NewVoxelSystem(flatWorld{surfaceY: -10000})

	for i := 0; i < 1000; i++ {
		sys.Tick(r, 0.05)
	}

	vel, err := ecs.Get[components.CVelocity](r, e)
	require.NoError(t, err)
	assert.InDelta(t, TerminalVelocity, vel.Velocity.Y, 0.01)
}

func TestBouncinessReflectsVelocityAndPreventsGrounding(t *testing.T) {
	r := ecs.NewRegistry()
	e := r.Create()
	_ = ecs.Add(r, e, components.CTransform{Position: vec.Vec3Float{X: 0, Y: 96.5, Z: 0}})
	_ = ecs.Add(r, e, components.CVelocity{Velocity: vec.Vec3Float{Y: -10}})
	_ = ecs.Add(r, e, components.CPhysics{BBMin: vec.Vec3Float{X: -0.1, Z: -0.1}, BBMax: vec.Vec3Float{X: 0.1, Y: 0.2, Z: 0.1}, Bounciness: 0.8})

	sys := NewVoxelSystem(flatWorld{surfaceY: 95})
	sys.Tick(r, 0.05)

	vel, _ := ecs.Get[components.CVelocity](r, e)
	phys, _ := ecs.Get[components.CPhysics](r, e)
	assert.Greater(t, vel.Velocity.Y, 0.0, "a bouncy entity should reflect upward off the floor")
	assert.False(t, phys.OnGround, "bounciness >= 0.5 must not set onGround")
}

func TestOverlapSystemEmitsEnterStayExit(t *testing.T) {
	r := ecs.NewRegistry()
	a := r.Create()
	b := r.Create()
	bb := vec.Vec3Float{X: -0.5, Y: -0.5, Z: -0.5}
	bbMax := vec.Vec3Float{X: 0.5, Y: 0.5, Z: 0.5}
	_ = ecs.Add(r, a, components.CTransform{Position: vec.Vec3Float{}})
	_ = ecs.Add(r, a, components.CPhysics{BBMin: bb, BBMax: bbMax})
	_ = ecs.Add(r, b, components.CTransform{Position: vec.Vec3Float{X: 0.1}})
	_ = ecs.Add(r, b, components.CPhysics{BBMin: bb, BBMax: bbMax})

	sys := NewOverlapSystem()

	events := sys.Collect(r)
	require.Len(t, events, 1)
	assert.Equal(t, OverlapEnter, events[0].Phase)

	events = sys.Collect(r)
	require.Len(t, events, 1)
	assert.Equal(t, OverlapStay, events[0].Phase)

	tb, _ := ecs.Get[components.CTransform](r, b)
	tb.Position.X = 100

	events = sys.Collect(r)
	require.Len(t, events, 1)
	assert.Equal(t, OverlapExit, events[0].Phase)
}
