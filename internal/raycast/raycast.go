// Package raycast implements voxel-grid raycasting via the
// Amanatides-Woo DDA traversal, used by the block interaction
// pipeline to find the voxel a player is looking at.
package raycast

import (
	"math"

	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
)

// Ray is a cast origin, direction and maximum travel distance.
type Ray struct {
	Origin      vec.Vec3Float
	Direction   vec.Vec3Float
	MaxDistance float64
}

// Hit describes the voxel a ray struck.
type Hit struct {
	Block    vec.WorldBlockPos
	Point    vec.Vec3Float
	Normal   vec.Vec3Float
	Distance float64
}

// BlockSource is the voxel query surface the raycaster needs.
type BlockSource interface {
	GetBlock(pos vec.WorldBlockPos) block.BlockState
}

func isSolid(src BlockSource, pos vec.WorldBlockPos) bool {
	state := src.GetBlock(pos)
	if state.IsAir() {
		return false
	}
	return block.IsSolid(state.ID())
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// Cast walks src's voxel grid along r and returns the first solid
// voxel hit, or (Hit{}, false) if the ray exits without one.
func Cast(src BlockSource, r Ray) (Hit, bool) {
	dir := r.Direction
	lenSq := dir.LengthSquared()
	if lenSq < 1e-12 {
		return Hit{}, false
	}
	dir = dir.Normalized()

	start := r.Origin.Floor()
	if isSolid(src, start) {
		return Hit{
			Block:    start,
			Point:    r.Origin,
			Normal:   vec.Vec3Float{X: sign(-dir.X), Y: sign(-dir.Y), Z: sign(-dir.Z)},
			Distance: 0,
		}, true
	}

	stepX, stepY, stepZ := sign(dir.X), sign(dir.Y), sign(dir.Z)
	tDeltaX, tDeltaY, tDeltaZ := tDelta(dir.X), tDelta(dir.Y), tDelta(dir.Z)

	blockX, blockY, blockZ := start.X, start.Y, start.Z
	tMaxX := axisTMax(blockX, stepX, r.Origin.X, dir.X)
	tMaxY := axisTMax(blockY, stepY, r.Origin.Y, dir.Y)
	tMaxZ := axisTMax(blockZ, stepZ, r.Origin.Z, dir.Z)

	dist := 0.0
	entryNormal := vec.Vec3Float{X: sign(-dir.X), Y: sign(-dir.Y), Z: sign(-dir.Z)}
	for dist <= r.MaxDistance {
		pos := vec.WorldBlockPos{X: blockX, Y: blockY, Z: blockZ}
		if isSolid(src, pos) {
			point := r.Origin.Add(dir.Scale(dist))
			return Hit{Block: pos, Point: point, Normal: entryNormal, Distance: dist}, true
		}

		switch {
		case tMaxX <= tMaxY && tMaxX <= tMaxZ:
			dist = tMaxX
			tMaxX += tDeltaX
			blockX += int(stepX)
			entryNormal = vec.Vec3Float{X: -stepX}
		case tMaxY <= tMaxX && tMaxY <= tMaxZ:
			dist = tMaxY
			tMaxY += tDeltaY
			blockY += int(stepY)
			entryNormal = vec.Vec3Float{Y: -stepY}
		default:
			dist = tMaxZ
			tMaxZ += tDeltaZ
			blockZ += int(stepZ)
			entryNormal = vec.Vec3Float{Z: -stepZ}
		}
	}
	return Hit{}, false
}

func tDelta(component float64) float64 {
	if component == 0 {
		return math.Inf(1)
	}
	return math.Abs(1 / component)
}

func axisTMax(blockCoord int, step float64, origin float64, dir float64) float64 {
	if dir == 0 {
		return math.Inf(1)
	}
	boundary := float64(blockCoord)
	if step > 0 {
		boundary++
	}
	return (boundary - origin) / dir
}
