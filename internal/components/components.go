// Package components holds the plain gameplay component structs the
// ECS registry stores. None of them carry behavior; systems in
// internal/physics, internal/interaction and internal/scheduler own
// all of the logic that reads and writes them.
package components

import (
	"github.com/annel0/mmo-game/internal/ecs"
	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
)

// CTransform is an entity's position and orientation. Prev* is
// snapshotted at the start of every fixed tick so the presentation
// phase can interpolate between ticks.
type CTransform struct {
	Position     vec.Vec3Float
	PrevPosition vec.Vec3Float
	Rotation     vec.Vec3Float // euler angles, radians
	PrevRotation vec.Vec3Float
	Scale        vec.Vec3Float
}

// CVelocity is an entity's current linear velocity in units/second.
type CVelocity struct {
	Velocity vec.Vec3Float
}

// CPhysics is the voxel-collision AABB, expressed as local offsets
// from the entity's CTransform.Position, plus the per-entity
// restitution and grounded state the physics system maintains.
type CPhysics struct {
	BBMin       vec.Vec3Float
	BBMax       vec.Vec3Float
	OnGround    bool
	Bounciness  float64 // clamped to [0, 1]
}

// CInput is the raw per-tick movement/action intent sampled from the
// input platform collaborator.
type CInput struct {
	Movement       vec.Vec2Float // x = strafe, y = forward
	JumpRequest    bool
	SprintRequest  bool
	WasJumpDown    bool
	JumpCooldown   int // ticks remaining before another jump is accepted
}

// CLookInput carries the accumulated mouse/stick delta for a tick;
// the camera rig system consumes and clears it.
type CLookInput struct {
	YawDelta   float64
	PitchDelta float64
}

// CCamera holds the renderer-facing projection state for an entity
// that owns a viewpoint. View/Projection/ViewProjection are opaque to
// the simulation core and only assembled for the rendering collaborator.
type CCamera struct {
	View           [16]float32
	Projection     [16]float32
	ViewProjection [16]float32
	Fov            float64
	AspectRatio    float64
	Near           float64
	Far            float64
	Sensitivity    float64
}

// CCameraRig attaches a camera to a target entity with a fixed offset
// and tracks accumulated follow yaw/pitch independent of the target's
// own rotation component.
type CCameraRig struct {
	TargetEntity ecs.Entity
	Offset       vec.Vec3Float
	FollowYaw    float64
	FollowPitch  float64
}

// CLocalPlayerTag marks the single entity controlled by this process
// and records which entity owns its camera.
type CLocalPlayerTag struct {
	CameraEntity ecs.Entity
}

// CPlayerTag marks any entity (local or remote) as a player avatar.
type CPlayerTag struct{}

// CMesh is an opaque reference into the rendering collaborator's mesh
// cache; the simulation core never dereferences MeshRef itself.
type CMesh struct {
	MeshRef uint64
}

// CItemDrop marks a dropped-block pickup entity. TicksRemaining counts
// down to despawn; MaxTicks is retained for fade/animation hints.
type CItemDrop struct {
	BlockId         block.BlockId
	TicksRemaining  int
	MaxTicks        int
}

// CHealth is current/maximum hit points for anything that can die.
type CHealth struct {
	HP    float64
	MaxHP float64
}

// CProjectile marks a flying damage-dealing entity.
type CProjectile struct {
	Damage        float64
	Owner         ecs.Entity
	DestroyOnHit  bool
}

// CBlockInteractor marks an entity (normally a player) able to mine,
// break and use blocks, and tracks the previous tick's button edges.
type CBlockInteractor struct {
	Reach         float64
	WasLeftDown   bool
	WasRightDown  bool
}

// CBlockEntity anchors an ECS entity to a specific world block
// position, backing a block that carries extra per-instance state
// (furnaces, chests, ...).
type CBlockEntity struct {
	Pos     vec.WorldBlockPos
	BlockId block.BlockId
}

// CFurnace is the smelting state machine's persistent state.
// BurnTicksRemaining is fuel left to burn; CookTicks counts progress
// toward the fixed smelt duration. LastInput is stored with the state
// but FurnaceSystem does not read it, so changing the input item does
// not reset cook progress.
type CFurnace struct {
	BurnTicksRemaining int
	CookTicks          int
	LastInput          block.BlockId
}

// InventorySlot is one stack slot: an item block id and a count. A
// zero Count slot is considered empty regardless of Item.
type InventorySlot struct {
	Item  block.BlockId
	Count int
}

// CInventory is a fixed-capacity slot array. Furnaces use the
// convention slot 0 = input, slot 1 = fuel, slot 2 = output.
type CInventory struct {
	Slots []InventorySlot
}

// CTick is a generic self-destructing tick counter; any system may
// attach one to schedule an entity's own removal.
type CTick struct {
	CurrentTick int
	MaxTicks    int
}
