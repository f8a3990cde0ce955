package raycast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
)

type planeWorld struct {
	solidY int
}

func (w planeWorld) GetBlock(pos vec.WorldBlockPos) block.BlockState {
	if pos.Y == w.solidY {
		return block.NewBlockState(block.StoneBlockId, block.North)
	}
	return block.Air
}

func TestZeroDirectionGuardReturnsNoHit(t *testing.T) {
	w := planeWorld{solidY: 5}
	_, hit := Cast(w, Ray{Origin: vec.Vec3Float{X: 0, Y: 10, Z: 0}, Direction: vec.Vec3Float{}, MaxDistance: 100})
	assert.False(t, hit)
}

func TestSolidAtStartReturnsZeroDistanceHit(t *testing.T) {
	w := planeWorld{solidY: 10}
	res, hit := Cast(w, Ray{Origin: vec.Vec3Float{X: 0.5, Y: 10.5, Z: 0.5}, Direction: vec.Vec3Float{Y: -1}, MaxDistance: 100})
	assert.True(t, hit)
	assert.Equal(t, 0.0, res.Distance)
	assert.Equal(t, vec.WorldBlockPos{X: 0, Y: 10, Z: 0}, res.Block)
}

func TestCastDownwardHitsFloor(t *testing.T) {
	w := planeWorld{solidY: 0}
	res, hit := Cast(w, Ray{Origin: vec.Vec3Float{X: 0.5, Y: 10.5, Z: 0.5}, Direction: vec.Vec3Float{Y: -1}, MaxDistance: 100})
	assert.True(t, hit)
	assert.Equal(t, vec.WorldBlockPos{X: 0, Y: 0, Z: 0}, res.Block)
	assert.InDelta(t, 1.0, res.Normal.Y, 1e-9, "hitting a floor from above yields an upward normal")
	assert.InDelta(t, 9.5, res.Distance, 1e-9)
}

func TestCastExceedingMaxDistanceMisses(t *testing.T) {
	w := planeWorld{solidY: -1000}
	_, hit := Cast(w, Ray{Origin: vec.Vec3Float{X: 0.5, Y: 10.5, Z: 0.5}, Direction: vec.Vec3Float{Y: -1}, MaxDistance: 5})
	assert.False(t, hit)
}

func TestCastAlongXAxisHitsWall(t *testing.T) {
	w := xWall{solidX: 3}
	res, hit := Cast(w, Ray{Origin: vec.Vec3Float{X: 0.5, Y: 0.5, Z: 0.5}, Direction: vec.Vec3Float{X: 1}, MaxDistance: 100})
	assert.True(t, hit)
	assert.Equal(t, 3, res.Block.X)
	assert.InDelta(t, -1.0, res.Normal.X, 1e-9)
}

type xWall struct{ solidX int }

func (w xWall) GetBlock(pos vec.WorldBlockPos) block.BlockState {
	if pos.X == w.solidX {
		return block.NewBlockState(block.StoneBlockId, block.North)
	}
	return block.Air
}
