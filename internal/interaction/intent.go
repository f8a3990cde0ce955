package interaction

import (
	"math"

	"github.com/annel0/mmo-game/internal/components"
	"github.com/annel0/mmo-game/internal/ecs"
	"github.com/annel0/mmo-game/internal/raycast"
	"github.com/annel0/mmo-game/internal/vec"
)

// InputSource is the windowing/input platform collaborator: whether
// the mine/use buttons are currently held for a given local player.
// Out of scope per the engine boundary; only the interface is owned
// here.
type InputSource interface {
	LeftDown(player ecs.Entity) bool
	RightDown(player ecs.Entity) bool
}

// forwardFromEuler converts a CTransform rotation (X=pitch, Y=yaw, in
// radians) into a unit look direction.
func forwardFromEuler(rotation vec.Vec3Float) vec.Vec3Float {
	pitch := rotation.X
	yaw := rotation.Y
	return vec.Vec3Float{
		X: math.Cos(pitch) * math.Sin(yaw),
		Y: math.Sin(pitch),
		Z: math.Cos(pitch) * math.Cos(yaw),
	}
}

// BlockIntentSystem raycasts from each local player's camera each
// fixed tick and turns button state into BlockHit/BlockUse events,
// maintaining per-player mining target tracking.
type BlockIntentSystem struct {
	World  raycast.BlockSource
	Input  InputSource
}

// NewBlockIntentSystem binds the system to a world query surface and
// an input collaborator.
func NewBlockIntentSystem(world raycast.BlockSource, input InputSource) *BlockIntentSystem {
	return &BlockIntentSystem{World: world, Input: input}
}

// Tick implements phase Intent.
func (s *BlockIntentSystem) Tick(r *ecs.Registry, res *BlockInteractionResource) {
	ecs.View2(r, func(player ecs.Entity, interactor *components.CBlockInteractor, local *components.CLocalPlayerTag) {
		s.tickPlayer(r, res, player, interactor, local)
	})
}

func (s *BlockIntentSystem) tickPlayer(r *ecs.Registry, res *BlockInteractionResource, player ecs.Entity, interactor *components.CBlockInteractor, local *components.CLocalPlayerTag) {
	mining := res.miningStateFor(player)
	leftDown := s.Input.LeftDown(player)
	rightDown := s.Input.RightDown(player)

	cameraTransform, err := ecs.Get[components.CTransform](r, local.CameraEntity)
	if err != nil {
		mining.HasTarget = false
		mining.AccumulatedTicks = 0
		interactor.WasLeftDown = leftDown
		interactor.WasRightDown = rightDown
		return
	}

	dir := forwardFromEuler(cameraTransform.Rotation)
	hit, ok := raycast.Cast(s.World, raycast.Ray{
		Origin:      cameraTransform.Position,
		Direction:   dir,
		MaxDistance: interactor.Reach,
	})
	if !ok {
		mining.HasTarget = false
		mining.AccumulatedTicks = 0
		interactor.WasLeftDown = leftDown
		interactor.WasRightDown = rightDown
		return
	}

	if !mining.HasTarget || mining.Target != hit.Block {
		mining.HasTarget = true
		mining.Target = hit.Block
		mining.AccumulatedTicks = 0
	}

	if leftDown {
		res.Hit = append(res.Hit, BlockHitEvent{Player: player, Pos: hit.Block})
	}
	if rightDown && !interactor.WasRightDown {
		res.Use = append(res.Use, BlockUseEvent{Player: player, Pos: hit.Block})
	}

	interactor.WasLeftDown = leftDown
	interactor.WasRightDown = rightDown
}
