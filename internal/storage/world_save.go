// Package storage implements the on-disk persistence tree for a level
// (meta/player/chunk/entity flat files) plus a badger-backed side index
// recording when each chunk file was last saved.
package storage

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world"
	"github.com/annel0/mmo-game/internal/world/block"
)

// chunkVolume is the number of BlockState slots in a full chunk column
// (16 wide, 16 deep, 256 tall).
const chunkVolume = vec.ChunkSize * vec.ChunkSize * vec.ChunkHeight

// WorldSave is the authoritative flat-file persistence layer: a
// meta.bin, a player.dat, and per-chunk/per-entity files under a root
// directory, following the pinned on-disk layout. It implements
// world.ChunkStore so Level never imports this package directly.
type WorldSave struct {
	root string

	mu     sync.Mutex
	dirty  *DirtyIndex // optional; nil-safe
}

// OpenWorldSave creates the directory tree under root (if absent) and
// returns a WorldSave ready for use. dirty may be nil to skip the
// side-index.
func OpenWorldSave(root string, dirty *DirtyIndex) (*WorldSave, error) {
	for _, sub := range []string{"chunks", "entities"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create %s dir: %w", sub, err)
		}
	}
	return &WorldSave{root: root, dirty: dirty}, nil
}

func (ws *WorldSave) metaPath() string   { return filepath.Join(ws.root, "meta.bin") }
func (ws *WorldSave) playerPath() string { return filepath.Join(ws.root, "player.dat") }

func (ws *WorldSave) chunkPath(pos vec.ChunkPos) string {
	// <cy> is always 0 in the current single-region-height design.
	return filepath.Join(ws.root, "chunks", fmt.Sprintf("chunk_%d_0_%d.bin", pos.X, pos.Z))
}

func (ws *WorldSave) entityPath(id uint64) string {
	return filepath.Join(ws.root, "entities", fmt.Sprintf("entity_%d.ent", id))
}

// writeFileAtomic writes data to a temp file in the same directory
// then renames it over path, so a crash mid-write never corrupts the
// previous version.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadMeta reads meta.bin: { u32 version, u32 seed, u64 tick }, 16 bytes.
func (ws *WorldSave) LoadMeta() (world.WorldMeta, error) {
	data, err := os.ReadFile(ws.metaPath())
	if err != nil {
		return world.WorldMeta{}, err
	}
	if len(data) != 16 {
		return world.WorldMeta{}, fmt.Errorf("meta.bin: expected 16 bytes, got %d", len(data))
	}
	return world.WorldMeta{
		Version: binary.LittleEndian.Uint32(data[0:4]),
		Seed:    binary.LittleEndian.Uint32(data[4:8]),
		Tick:    binary.LittleEndian.Uint64(data[8:16]),
	}, nil
}

// SaveMeta writes meta.bin.
func (ws *WorldSave) SaveMeta(meta world.WorldMeta) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	var buf [16]byte
	binary.LittleEndian.PutUint32(buf[0:4], meta.Version)
	binary.LittleEndian.PutUint32(buf[4:8], meta.Seed)
	binary.LittleEndian.PutUint64(buf[8:16], meta.Tick)
	return writeFileAtomic(ws.metaPath(), buf[:])
}

// LoadPlayer reads player.dat: { f32 x, f32 y, f32 z }, 12 bytes.
func (ws *WorldSave) LoadPlayer() (world.PlayerSave, error) {
	data, err := os.ReadFile(ws.playerPath())
	if err != nil {
		return world.PlayerSave{}, err
	}
	if len(data) != 12 {
		return world.PlayerSave{}, fmt.Errorf("player.dat: expected 12 bytes, got %d", len(data))
	}
	return world.PlayerSave{
		X: decodeF32(data[0:4]),
		Y: decodeF32(data[4:8]),
		Z: decodeF32(data[8:12]),
	}, nil
}

// SavePlayer writes player.dat.
func (ws *WorldSave) SavePlayer(p world.PlayerSave) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	var buf [12]byte
	encodeF32(buf[0:4], p.X)
	encodeF32(buf[4:8], p.Y)
	encodeF32(buf[8:12], p.Z)
	return writeFileAtomic(ws.playerPath(), buf[:])
}

func encodeF32(dst []byte, v float32) {
	binary.LittleEndian.PutUint32(dst, math.Float32bits(v))
}

func decodeF32(src []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(src))
}

// LoadChunk reads a chunk file and decodes it in the source's pinned
// yzx traversal order (for y { for z { for x } }), independent of the
// x+z*16+y*256 formula used for in-memory section indexing.
func (ws *WorldSave) LoadChunk(pos vec.ChunkPos) (*world.Chunk, error) {
	data, err := os.ReadFile(ws.chunkPath(pos))
	if err != nil {
		return nil, err
	}
	if len(data) != chunkVolume*2 {
		return nil, fmt.Errorf("chunk %v: expected %d bytes, got %d", pos, chunkVolume*2, len(data))
	}

	c := world.NewChunk(pos)
	i := 0
	for y := 0; y < vec.ChunkHeight; y++ {
		for z := 0; z < vec.ChunkSize; z++ {
			for x := 0; x < vec.ChunkSize; x++ {
				raw := binary.LittleEndian.Uint16(data[i*2 : i*2+2])
				i++
				state := block.FromU16(raw)
				if state.IsAir() {
					continue
				}
				c.LoadBlockRaw(vec.LocalBlockPos{X: x, Y: y, Z: z}, state)
			}
		}
	}
	c.ClearDirty(world.DirtyMesh | world.DirtySave)
	return c, nil
}

// SaveChunk encodes a chunk in the pinned yzx traversal order and
// writes it to disk, then records the flush in the dirty index.
func (ws *WorldSave) SaveChunk(c *world.Chunk) error {
	buf := make([]byte, chunkVolume*2)
	i := 0
	for y := 0; y < vec.ChunkHeight; y++ {
		for z := 0; z < vec.ChunkSize; z++ {
			for x := 0; x < vec.ChunkSize; x++ {
				state := c.GetBlock(vec.LocalBlockPos{X: x, Y: y, Z: z})
				binary.LittleEndian.PutUint16(buf[i*2:i*2+2], state.ToU16())
				i++
			}
		}
	}

	if err := writeFileAtomic(ws.chunkPath(c.Coords), buf); err != nil {
		return err
	}

	if ws.dirty != nil {
		if err := ws.dirty.MarkSaved(c.Coords); err != nil {
			// The flat file is already safely on disk; the side index
			// is an optimization, not the source of truth.
			return fmt.Errorf("chunk %v saved but dirty index update failed: %w", c.Coords, err)
		}
	}
	return nil
}

// SaveEntityBlob persists a free-form per-entity blob; the schema is
// not pinned by the format, callers (block entities, the interaction
// pipeline) decide its shape.
func (ws *WorldSave) SaveEntityBlob(id uint64, data []byte) error {
	return writeFileAtomic(ws.entityPath(id), data)
}

// LoadEntityBlob reads back a previously saved entity blob.
func (ws *WorldSave) LoadEntityBlob(id uint64) ([]byte, error) {
	return os.ReadFile(ws.entityPath(id))
}

// DeleteEntityBlob removes a persisted entity blob, e.g. when the
// entity it backed has been destroyed.
func (ws *WorldSave) DeleteEntityBlob(id uint64) error {
	err := os.Remove(ws.entityPath(id))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
