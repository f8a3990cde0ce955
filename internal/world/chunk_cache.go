package world

import (
	"encoding/binary"

	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
)

// chunkCacheVolume is the block count of a full chunk column, matching
// storage.WorldSave's on-disk chunk size.
const chunkCacheVolume = vec.ChunkSize * vec.ChunkSize * vec.ChunkHeight

// encodeChunkBlocks packs c's blocks in the same yzx/u16 layout the
// on-disk chunk format uses, so a hot-cached snapshot round-trips
// through decodeChunkBlocks identically to a disk-loaded chunk.
func encodeChunkBlocks(c *Chunk) []byte {
	buf := make([]byte, chunkCacheVolume*2)
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
	return buf
}

// decodeChunkBlocks populates c from a snapshot previously produced by
// encodeChunkBlocks, leaving c clean (non-dirty). Reports false if data
// isn't a chunk-sized snapshot, in which case c is left untouched.
func decodeChunkBlocks(c *Chunk, data []byte) bool {
	if len(data) != chunkCacheVolume*2 {
		return false
	}
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
	c.ClearDirty(DirtyMesh | DirtySave)
	return true
}
