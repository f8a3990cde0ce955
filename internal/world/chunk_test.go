package world

import (
	"testing"

	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
)

func TestChunkCreateAndGetBlock(t *testing.T) {
	coords := vec.ChunkPos{X: 5, Z: 10}
	chunk := NewChunk(coords)

	if chunk.Coords.X != 5 || chunk.Coords.Z != 10 {
		t.Fatalf("expected coords {5,10}, got {%d,%d}", chunk.Coords.X, chunk.Coords.Z)
	}

	pos := vec.LocalBlockPos{X: 3, Y: 64, Z: 4}
	if got := chunk.GetBlock(pos); !got.IsAir() {
		t.Fatalf("expected air, got %v", got)
	}

	stone := block.NewBlockState(block.StoneBlockId, block.North)
	if !chunk.SetBlock(pos, stone) {
		t.Fatalf("expected SetBlock to report a change")
	}
	if got := chunk.GetBlock(pos); got != stone {
		t.Fatalf("expected stone, got %v", got)
	}
}

func TestChunkGetBlockOutOfRangeReturnsAir(t *testing.T) {
	chunk := NewChunk(vec.ChunkPos{})
	if got := chunk.GetBlock(vec.LocalBlockPos{X: -1, Y: 0, Z: 0}); !got.IsAir() {
		t.Fatalf("expected air for out-of-range local position, got %v", got)
	}
	if got := chunk.GetBlock(vec.LocalBlockPos{X: 0, Y: vec.ChunkHeight, Z: 0}); !got.IsAir() {
		t.Fatalf("expected air for out-of-range Y, got %v", got)
	}
}

func TestSetBlockNoopDoesNotDirtyOrBumpRevision(t *testing.T) {
	chunk := NewChunk(vec.ChunkPos{})
	pos := vec.LocalBlockPos{X: 0, Y: 0, Z: 0}

	rev0 := chunk.MeshRevision()
	if chunk.SetBlock(pos, block.Air) {
		t.Fatalf("expected no-op SetBlock(Air) over existing Air to report no change")
	}
	if chunk.MeshRevision() != rev0 {
		t.Fatalf("expected mesh revision unchanged on no-op set")
	}
	if chunk.Dirty(DirtyMesh) {
		t.Fatalf("expected chunk not dirty after no-op set")
	}
}

func TestSetBlockBumpsRevisionAndMarksDirty(t *testing.T) {
	chunk := NewChunk(vec.ChunkPos{})
	pos := vec.LocalBlockPos{X: 1, Y: 1, Z: 1}

	rev0 := chunk.MeshRevision()
	chunk.SetBlock(pos, block.NewBlockState(block.StoneBlockId, block.North))
	if chunk.MeshRevision() != rev0+1 {
		t.Fatalf("expected mesh revision to increment by 1, got delta %d", chunk.MeshRevision()-rev0)
	}
	if !chunk.Dirty(DirtyMesh) || !chunk.Dirty(DirtySave) {
		t.Fatalf("expected both Mesh and Save dirty bits set after a change")
	}
}

func TestChunkBlockMetadata(t *testing.T) {
	chunk := NewChunk(vec.ChunkPos{})
	pos := vec.LocalBlockPos{X: 5, Y: 5, Z: 5}

	if _, ok := chunk.GetBlockMetadata(pos); ok {
		t.Fatalf("expected no metadata initially")
	}

	chunk.SetBlockMetadata(pos, map[string]any{"test_key": 42})

	meta, ok := chunk.GetBlockMetadata(pos)
	if !ok {
		t.Fatalf("expected metadata to be present")
	}
	if meta["test_key"] != 42 {
		t.Fatalf("expected test_key=42, got %v", meta["test_key"])
	}
}
