package world

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/annel0/mmo-game/internal/cache"
	"github.com/annel0/mmo-game/internal/eventbus"
	"github.com/annel0/mmo-game/internal/logging"
	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("world")

// WorldMeta is the fixed-size persisted record of global world state.
type WorldMeta struct {
	Version uint32
	Seed    uint32
	Tick    uint64
}

// PlayerSave is the fixed-size persisted record of player state.
type PlayerSave struct {
	X, Y, Z float32
}

// ChunkStore is the persistence boundary Level depends on. storage.WorldSave
// implements it; Level itself stays free of on-disk format knowledge,
// so the two packages don't form an import cycle.
type ChunkStore interface {
	LoadChunk(pos vec.ChunkPos) (*Chunk, error)
	SaveChunk(c *Chunk) error
	LoadMeta() (WorldMeta, error)
	SaveMeta(meta WorldMeta) error
	LoadPlayer() (PlayerSave, error)
	SavePlayer(p PlayerSave) error
}

// autosaveInterval is the fixed interval Level.Update drives Save() on.
const autosaveInterval = 10 * time.Second

// Level owns the chunk map, the terrain generator, and the on-disk
// store, and is responsible for world-coordinate block access, chunk
// streaming around a moving center point, and persistence.
type Level struct {
	mu     sync.RWMutex
	chunks map[vec.ChunkPos]*Chunk

	generator *Generator
	store     ChunkStore
	seed      int64
	tick      uint64

	sinceAutosave time.Duration

	Events eventbus.EventBus // optional; nil-safe

	hotCache *cache.ChunkHotCache // optional; nil-safe regional hot cache
}

// SetHotCache attaches a regional hot cache for chunk snapshots.
// EnsureChunk consults it between a local store miss and regenerating
// terrain; Save writes resident, Save-dirty chunks through to it.
func (l *Level) SetHotCache(hc *cache.ChunkHotCache) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hotCache = hc
}

// OpenLevel opens (or creates) a level backed by store. If the store
// has existing meta, its seed is reused so a re-opened world generates
// identical terrain for any chunk not already persisted.
func OpenLevel(store ChunkStore, defaultSeed int64) (*Level, error) {
	seed := defaultSeed
	meta, err := store.LoadMeta()
	if err == nil {
		seed = int64(meta.Seed)
	}

	lvl := &Level{
		chunks:    make(map[vec.ChunkPos]*Chunk),
		generator: NewGenerator(seed),
		store:     store,
		seed:      seed,
	}
	return lvl, nil
}

// SaveMeta persists world metadata (seed/tick), independent of chunk data.
func (l *Level) SaveMeta() error {
	l.mu.RLock()
	tick := l.tick
	l.mu.RUnlock()
	return l.store.SaveMeta(WorldMeta{Version: 1, Seed: uint32(l.seed), Tick: tick})
}

// Tick returns the level's current tick counter.
func (l *Level) Tick() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tick
}

// AdvanceTick increments the level's tick counter, called once per
// fixed simulation tick.
func (l *Level) AdvanceTick() {
	l.mu.Lock()
	l.tick++
	l.mu.Unlock()
}

// Chunk returns a loaded chunk without creating or generating it.
func (l *Level) Chunk(pos vec.ChunkPos) (*Chunk, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.chunks[pos]
	return c, ok
}

// GetBlock returns the block at a world position, or Air if its chunk
// isn't loaded. It never raises.
func (l *Level) GetBlock(pos vec.WorldBlockPos) block.BlockState {
	cpos, local := pos.Split()
	l.mu.RLock()
	c, ok := l.chunks[cpos]
	l.mu.RUnlock()
	if !ok {
		return block.Air
	}
	return c.GetBlock(local)
}

// SetBlock ensures the target chunk exists, writes the block, and
// applies the XZ-boundary neighbor-dirty rule on change.
func (l *Level) SetBlock(pos vec.WorldBlockPos, state block.BlockState) bool {
	cpos, local := pos.Split()
	c := l.EnsureChunk(cpos)

	if !c.SetBlock(local, state) {
		return false
	}

	l.markBoundaryNeighborsDirty(cpos, local)

	if l.Events != nil {
		_ = l.Events.Publish(context.Background(), &eventbus.Envelope{
			Source:    "world",
			EventType: "BlockChanged",
			Metadata: map[string]string{
				"chunk_x": strconv.Itoa(cpos.X), "chunk_z": strconv.Itoa(cpos.Z),
			},
		})
	}
	return true
}

// markBoundaryNeighborsDirty marks c and, when local sits on an XZ
// chunk boundary, the specific already-loaded horizontal neighbor(s)
// whose geometry the edit may have exposed.
func (l *Level) markBoundaryNeighborsDirty(cpos vec.ChunkPos, local vec.LocalBlockPos) {
	l.mu.RLock()
	c := l.chunks[cpos]
	l.mu.RUnlock()
	if c != nil {
		c.MarkDirty(DirtyMesh | DirtySave)
	}

	var neighbors []vec.ChunkPos
	if local.X == 0 {
		neighbors = append(neighbors, cpos.Neighbor(-1, 0))
	}
	if local.X == vec.ChunkSize-1 {
		neighbors = append(neighbors, cpos.Neighbor(1, 0))
	}
	if local.Z == 0 {
		neighbors = append(neighbors, cpos.Neighbor(0, -1))
	}
	if local.Z == vec.ChunkSize-1 {
		neighbors = append(neighbors, cpos.Neighbor(0, 1))
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, n := range neighbors {
		if nc, ok := l.chunks[n]; ok {
			nc.MarkDirty(DirtyMesh)
		}
	}
}

// EnsureChunk returns the chunk at pos, loading it from disk or
// generating it if it isn't already resident. The chunk and its four
// cardinal neighbors (if loaded) are marked Mesh-dirty, since a newly
// available chunk may expose or hide faces on every side.
func (l *Level) EnsureChunk(pos vec.ChunkPos) *Chunk {
	l.mu.Lock()
	if c, ok := l.chunks[pos]; ok {
		l.mu.Unlock()
		return c
	}
	l.mu.Unlock()

	m := worldMetricsInstance()
	c := NewChunk(pos)
	generated := false
	if l.store == nil {
		l.generator.GenerateChunkData(c)
		generated = true
		m.chunksGenerated.Inc()
	} else if loaded, err := l.store.LoadChunk(pos); err == nil {
		c = loaded
		m.chunksLoaded.Inc()
	} else if cached, ok := l.tryHotCache(pos, c); ok {
		c = cached
		m.chunksLoaded.Inc()
	} else {
		l.generator.GenerateChunkData(c)
		generated = true
		m.chunksGenerated.Inc()
	}

	l.mu.Lock()
	// Another caller may have ensured the same chunk concurrently;
	// the map is authoritative.
	if existing, ok := l.chunks[pos]; ok {
		l.mu.Unlock()
		return existing
	}
	l.chunks[pos] = c
	m.chunksLoadedGauge.Set(float64(len(l.chunks)))
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			if dx == 0 && dz == 0 {
				continue
			}
			if dx != 0 && dz != 0 {
				continue // cardinal only, skip diagonals
			}
			if n, ok := l.chunks[pos.Neighbor(dx, dz)]; ok {
				n.MarkDirty(DirtyMesh)
			}
		}
	}
	l.mu.Unlock()

	if l.Events != nil {
		_ = l.Events.Publish(context.Background(), &eventbus.Envelope{
			Source: "world", EventType: "ChunkLoaded",
		})
	}
	_ = generated
	return c
}

// tryHotCache attempts to repopulate c from the hot cache, returning
// (c, true) on a hit. Used only on a local store miss, so a node that
// doesn't own a chunk's authoritative file can still skip regenerating
// terrain another regional node already computed.
func (l *Level) tryHotCache(pos vec.ChunkPos, c *Chunk) (*Chunk, bool) {
	l.mu.RLock()
	hc := l.hotCache
	l.mu.RUnlock()
	if hc == nil {
		return nil, false
	}

	data, ok, err := hc.Get(context.Background(), int32(pos.X), int32(pos.Z))
	if err != nil {
		logging.LogWarn("hot cache get failed chunk=%v: %v", pos, err)
		return nil, false
	}
	if !ok || !decodeChunkBlocks(c, data) {
		return nil, false
	}
	return c, true
}

// Explode sets every voxel within radius of center (by cell-center
// distance) to Air, then marks every touched chunk and its cardinal
// neighbors Mesh-dirty.
func (l *Level) Explode(center vec.WorldBlockPos, radius float64) {
	r := int(radius) + 1
	r2 := radius * radius

	touched := make(map[vec.ChunkPos]struct{})

	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			for dz := -r; dz <= r; dz++ {
				cx, cy, cz := float64(dx)+0.5, float64(dy)+0.5, float64(dz)+0.5
				if cx*cx+cy*cy+cz*cz > r2 {
					continue
				}
				wp := vec.WorldBlockPos{X: center.X + dx, Y: center.Y + dy, Z: center.Z + dz}
				if wp.Y < 0 || wp.Y >= vec.ChunkHeight {
					continue
				}
				if l.SetBlock(wp, block.Air) {
					cpos, _ := wp.Split()
					touched[cpos] = struct{}{}
				}
			}
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for cpos := range touched {
		if c, ok := l.chunks[cpos]; ok {
			c.MarkDirty(DirtyMesh | DirtySave)
		}
		for dx := -1; dx <= 1; dx++ {
			for dz := -1; dz <= 1; dz++ {
				if (dx == 0) == (dz == 0) {
					continue // cardinal only
				}
				if n, ok := l.chunks[cpos.Neighbor(dx, dz)]; ok {
					n.MarkDirty(DirtyMesh)
				}
			}
		}
	}
}

// UpdateStreaming ensures every chunk within viewRadius (Chebyshev) of
// playerPos is loaded, and unloads (saving if Save-dirty) chunks
// outside that square.
func (l *Level) UpdateStreaming(playerPos vec.WorldBlockPos, viewRadius int) {
	center := playerPos.Chunk()

	for dx := -viewRadius; dx <= viewRadius; dx++ {
		for dz := -viewRadius; dz <= viewRadius; dz++ {
			l.EnsureChunk(center.Neighbor(dx, dz))
		}
	}

	l.mu.Lock()
	var toEvict []vec.ChunkPos
	for cpos := range l.chunks {
		if cpos.ChebyshevDistance(center) > viewRadius {
			toEvict = append(toEvict, cpos)
		}
	}
	for _, cpos := range toEvict {
		c := l.chunks[cpos]
		delete(l.chunks, cpos)
		if c.Dirty(DirtySave) && l.store != nil {
			if err := l.store.SaveChunk(c); err != nil {
				logging.LogWarn("chunk save failed during eviction %v: %v", cpos, err)
			} else {
				c.ClearDirty(DirtySave)
				worldMetricsInstance().chunksSaved.Inc()
				if l.hotCache != nil {
					if err := l.hotCache.Put(context.Background(), int32(cpos.X), int32(cpos.Z), encodeChunkBlocks(c)); err != nil {
						logging.LogWarn("hot cache put failed during eviction %v: %v", cpos, err)
					}
				}
			}
		}
	}
	worldMetricsInstance().chunksLoadedGauge.Set(float64(len(l.chunks)))
	l.mu.Unlock()

	if l.Events != nil {
		for range toEvict {
			_ = l.Events.Publish(context.Background(), &eventbus.Envelope{
				Source: "world", EventType: "ChunkUnloaded",
			})
		}
	}
}

// Save flushes every loaded, Save-dirty chunk to the store.
func (l *Level) Save() error {
	ctx, span := tracer.Start(context.Background(), "world.Save")
	defer span.End()

	l.mu.RLock()
	var coords []vec.ChunkPos
	for cpos, c := range l.chunks {
		if c.Dirty(DirtySave) {
			coords = append(coords, cpos)
		}
	}
	l.mu.RUnlock()

	m := worldMetricsInstance()
	for region, group := range groupByRegion(coords) {
		for _, cpos := range group {
			l.mu.RLock()
			c := l.chunks[cpos]
			l.mu.RUnlock()
			if c == nil {
				continue
			}
			if err := l.store.SaveChunk(c); err != nil {
				logging.LogWarn("chunk save failed region=%v chunk=%v: %v", region, cpos, err)
				continue
			}
			c.ClearDirty(DirtySave)
			m.chunksSaved.Inc()
			l.putHotCache(cpos, c)
		}
	}
	_ = ctx
	return nil
}

// putHotCache write-behinds a freshly saved chunk into the hot cache,
// if one is attached. Best-effort: a failure here never blocks or fails
// the disk save it follows.
func (l *Level) putHotCache(cpos vec.ChunkPos, c *Chunk) {
	l.mu.RLock()
	hc := l.hotCache
	l.mu.RUnlock()
	if hc == nil {
		return
	}
	if err := hc.Put(context.Background(), int32(cpos.X), int32(cpos.Z), encodeChunkBlocks(c)); err != nil {
		logging.LogWarn("hot cache put failed chunk=%v: %v", cpos, err)
	}
}

// Update drives the autosave interval timer; call once per fixed tick
// (or per frame) with the elapsed delta.
func (l *Level) Update(dt time.Duration) {
	l.sinceAutosave += dt
	if l.sinceAutosave >= autosaveInterval {
		l.sinceAutosave = 0
		if err := l.Save(); err != nil {
			logging.LogWarn("autosave failed: %v", err)
		}
	}
}
