package world

import "github.com/annel0/mmo-game/internal/vec"

// BlockChangedEvent describes a block write that changed state. Level
// does not publish this struct: SetBlock publishes an eventbus.Envelope
// with EventType "BlockChanged" and chunk_x/chunk_z metadata, after
// dirty bits have been applied to the affected chunk(s).
type BlockChangedEvent struct {
	Pos   vec.WorldBlockPos
	Chunk vec.ChunkPos
}

// ChunkLoadedEvent describes a chunk brought into memory by load or
// generation. EnsureChunk publishes an Envelope with EventType
// "ChunkLoaded" and no payload instead; the Generated flag is not sent.
type ChunkLoadedEvent struct {
	Coords    vec.ChunkPos
	Generated bool
}

// ChunkUnloadedEvent describes a chunk evicted by UpdateStreaming, which
// publishes one "ChunkUnloaded" Envelope per eviction with no payload.
type ChunkUnloadedEvent struct {
	Coords vec.ChunkPos
}
