package scheduler

import (
	"github.com/annel0/mmo-game/internal/interaction"
	"github.com/annel0/mmo-game/internal/physics"
)

// The gameplay systems built in internal/physics and
// internal/interaction are deliberately scheduler-agnostic (they take
// only the arguments they need, not a *Context), so each one gets a
// thin adapter here mapping it onto a fixed phase. This keeps those
// packages free of an import back to scheduler.

// VoxelPhysicsSystem adapts physics.VoxelSystem into phase Simulation.
type VoxelPhysicsSystem struct {
	Voxel *physics.VoxelSystem
}

func (s *VoxelPhysicsSystem) Phase() Phase { return Simulation }

func (s *VoxelPhysicsSystem) FixedTick(ctx *Context) {
	s.Voxel.Tick(ctx.Registry, ctx.DeltaSeconds)
}

// OverlapBroadphaseSystem adapts physics.OverlapSystem into phase
// Simulation, running after VoxelPhysicsSystem (insertion order
// decides, so register it second).
type OverlapBroadphaseSystem struct {
	Overlap *physics.OverlapSystem
}

func (s *OverlapBroadphaseSystem) Phase() Phase { return Simulation }

func (s *OverlapBroadphaseSystem) FixedTick(ctx *Context) {
	ctx.OverlapEvents = s.Overlap.Collect(ctx.Registry)
}

// BlockIntentPhaseSystem adapts interaction.BlockIntentSystem into
// phase Intent: turns raw input + camera ray into queued events.
type BlockIntentPhaseSystem struct {
	Intent *interaction.BlockIntentSystem
}

func (s *BlockIntentPhaseSystem) Phase() Phase { return Intent }

func (s *BlockIntentPhaseSystem) FixedTick(ctx *Context) {
	s.Intent.Tick(ctx.Registry, ctx.Interactions)
}

// BlockHitPhaseSystem adapts interaction.BlockHitSystem into phase
// Simulation: accumulates mining progress against queued hits.
type BlockHitPhaseSystem struct {
	Hit *interaction.BlockHitSystem
}

func (s *BlockHitPhaseSystem) Phase() Phase { return Simulation }

func (s *BlockHitPhaseSystem) FixedTick(ctx *Context) {
	s.Hit.Tick(ctx.Interactions, ctx.CurrentTick)
}

// BlockBreakPhaseSystem adapts interaction.BlockBreakSystem into phase
// Simulation: applies completed breaks and spawns item drops.
type BlockBreakPhaseSystem struct {
	Break *interaction.BlockBreakSystem
}

func (s *BlockBreakPhaseSystem) Phase() Phase { return Simulation }

func (s *BlockBreakPhaseSystem) FixedTick(ctx *Context) {
	s.Break.Tick(ctx.Registry, ctx.Interactions)
}

// BlockUsePhaseSystem adapts interaction.BlockUseSystem into phase
// Simulation: opens/toggles blocks on right-click.
type BlockUsePhaseSystem struct {
	Use *interaction.BlockUseSystem
}

func (s *BlockUsePhaseSystem) Phase() Phase { return Simulation }

func (s *BlockUsePhaseSystem) FixedTick(ctx *Context) {
	s.Use.Tick(ctx.Registry, ctx.Interactions)
}

// FurnacePhaseSystem adapts interaction.FurnaceSystem into phase
// LateSimulation, so it observes block-entity state created by
// BlockUsePhaseSystem earlier in the same tick.
type FurnacePhaseSystem struct {
	Furnace *interaction.FurnaceSystem
}

func (s *FurnacePhaseSystem) Phase() Phase { return LateSimulation }

func (s *FurnacePhaseSystem) FixedTick(ctx *Context) {
	s.Furnace.Tick(ctx.Registry)
}

// BlockEntityUIPhaseSystem adapts interaction.BlockEntityInteractSystem
// into phase Presentation: it only dispatches to the UI collaborator,
// so it runs at frame rate rather than the fixed simulation rate.
type BlockEntityUIPhaseSystem struct {
	Interact *interaction.BlockEntityInteractSystem
}

func (s *BlockEntityUIPhaseSystem) Phase() Phase { return Presentation }

func (s *BlockEntityUIPhaseSystem) Tick(ctx *Context) {
	s.Interact.Tick(ctx.Registry, ctx.Interactions)
}
