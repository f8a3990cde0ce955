package mesher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world"
	"github.com/annel0/mmo-game/internal/world/block"
)

type noStore struct{}

func (noStore) LoadChunk(pos vec.ChunkPos) (*world.Chunk, error) { return nil, assertNotFound{} }
func (noStore) SaveChunk(c *world.Chunk) error                   { return nil }
func (noStore) LoadMeta() (world.WorldMeta, error)                { return world.WorldMeta{}, assertNotFound{} }
func (noStore) SaveMeta(meta world.WorldMeta) error                { return nil }
func (noStore) LoadPlayer() (world.PlayerSave, error)              { return world.PlayerSave{}, assertNotFound{} }
func (noStore) SavePlayer(p world.PlayerSave) error                { return nil }

type assertNotFound struct{}

func (assertNotFound) Error() string { return "not found" }

func newTestLevel(t *testing.T) *world.Level {
	t.Helper()
	lvl, err := world.OpenLevel(noStore{}, 42)
	require.NoError(t, err)
	return lvl
}

func TestSingleSolidVoxelEmitsSixFaces(t *testing.T) {
	lvl := newTestLevel(t)
	cpos := vec.ChunkPos{X: 0, Z: 0}
	c := lvl.EnsureChunk(cpos)

	// isolate one stone block surrounded by air: section 10 (y 160..175)
	// lies above the generated terrain, which tops out at y=128
	local := vec.LocalBlockPos{X: 8, Y: 168, Z: 8}
	ok := c.SetBlock(local, block.NewBlockState(block.StoneBlockId, block.North))
	require.True(t, ok)

	mesh := BuildSection(lvl, c, 10, StaticAtlas{})
	assert.Equal(t, 6*4, len(mesh.Vertices))
	assert.Equal(t, 6*6, len(mesh.Indices))
}

func TestAdjacentSolidVoxelsOccludeSharedFace(t *testing.T) {
	lvl := newTestLevel(t)
	c := lvl.EnsureChunk(vec.ChunkPos{X: 0, Z: 0})

	// section 10 (y 160..175) is above the generated terrain
	c.SetBlock(vec.LocalBlockPos{X: 5, Y: 165, Z: 5}, block.NewBlockState(block.StoneBlockId, block.North))
	c.SetBlock(vec.LocalBlockPos{X: 6, Y: 165, Z: 5}, block.NewBlockState(block.StoneBlockId, block.North))

	mesh := BuildSection(lvl, c, 10, StaticAtlas{})
	// two solid voxels sharing a face: 10 faces total instead of 6 each (12)
	assert.Equal(t, 10*4, len(mesh.Vertices))
}

func TestNeedsRebuildTracksRevisionAndDirtyBit(t *testing.T) {
	lvl := newTestLevel(t)
	c := lvl.EnsureChunk(vec.ChunkPos{X: 1, Z: 1})
	c.ClearDirty(world.DirtyMesh)

	rev := c.MeshRevision()
	assert.False(t, NeedsRebuild(c, rev))

	c.SetBlock(vec.LocalBlockPos{X: 0, Y: 0, Z: 0}, block.NewBlockState(block.StoneBlockId, block.North))
	assert.True(t, NeedsRebuild(c, rev))
}

func TestRotateFaceLeavesTopAndBottomUnrotated(t *testing.T) {
	assert.Equal(t, FaceUp, RotateFace(block.East, FaceUp))
	assert.Equal(t, FaceDown, RotateFace(block.South, FaceDown))
}

func TestRotateFaceRotatesSidesByOrientation(t *testing.T) {
	assert.Equal(t, FaceNorth, RotateFace(block.North, FaceNorth))
	assert.NotEqual(t, FaceNorth, RotateFace(block.East, FaceNorth))
}
