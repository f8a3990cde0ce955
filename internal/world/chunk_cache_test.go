package world

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/annel0/mmo-game/internal/cache"
	"github.com/annel0/mmo-game/internal/vec"
	"github.com/annel0/mmo-game/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCacheRepo is a minimal in-memory cache.CacheRepo, just enough to
// exercise Level's hot-cache wiring without a real Redis instance.
type fakeCacheRepo struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{data: make(map[string][]byte)}
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeCacheRepo) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeCacheRepo) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeCacheRepo) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok, nil
}

func (f *fakeCacheRepo) Invalidate(ctx context.Context, key string) error {
	return f.Delete(ctx, key)
}

func (f *fakeCacheRepo) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	return nil, nil
}

func (f *fakeCacheRepo) BatchSet(ctx context.Context, items map[string][]byte, ttl time.Duration) error {
	return nil
}

func (f *fakeCacheRepo) Close() error { return nil }

func (f *fakeCacheRepo) GetMetrics() *cache.CacheMetrics { return &cache.CacheMetrics{} }

func TestEncodeDecodeChunkBlocksRoundTrip(t *testing.T) {
	c := NewChunk(vec.ChunkPos{X: 2, Z: -1})
	pos := vec.LocalBlockPos{X: 5, Y: 10, Z: 3}
	c.SetBlock(pos, block.NewBlockState(block.StoneBlockId, block.North))

	data := encodeChunkBlocks(c)

	decoded := NewChunk(vec.ChunkPos{X: 2, Z: -1})
	ok := decodeChunkBlocks(decoded, data)
	require.True(t, ok)

	assert.Equal(t, block.StoneBlockId, decoded.GetBlock(pos).ID())
	assert.False(t, decoded.Dirty(DirtyMesh|DirtySave), "decoded chunk should come back clean")
}

func TestDecodeChunkBlocksRejectsWrongSize(t *testing.T) {
	c := NewChunk(vec.ChunkPos{X: 0, Z: 0})
	ok := decodeChunkBlocks(c, []byte{1, 2, 3})
	assert.False(t, ok)
}

func TestEnsureChunkFallsBackToHotCacheOnStoreMiss(t *testing.T) {
	store := newMemStore()
	lvl, err := OpenLevel(store, 1)
	require.NoError(t, err)

	hc := cache.NewChunkHotCache(newFakeCacheRepo(), cache.ChunkHotCacheConfig{})
	lvl.SetHotCache(hc)

	pos := vec.ChunkPos{X: 7, Z: 7}
	seed := NewChunk(pos)
	seed.SetBlock(vec.LocalBlockPos{X: 0, Y: 50, Z: 0}, block.NewBlockState(block.StoneBlockId, block.North))
	require.NoError(t, hc.Put(context.Background(), int32(pos.X), int32(pos.Z), encodeChunkBlocks(seed)))

	c := lvl.EnsureChunk(pos)
	assert.Equal(t, block.StoneBlockId, c.GetBlock(vec.LocalBlockPos{X: 0, Y: 50, Z: 0}).ID())
}

func TestSaveWritesThroughToHotCache(t *testing.T) {
	store := newMemStore()
	lvl, err := OpenLevel(store, 1)
	require.NoError(t, err)

	repo := newFakeCacheRepo()
	hc := cache.NewChunkHotCache(repo, cache.ChunkHotCacheConfig{})
	lvl.SetHotCache(hc)

	pos := vec.ChunkPos{X: 0, Z: 0}
	c := lvl.EnsureChunk(pos)
	// y=200 is above generated terrain, so this is a real change that
	// marks the chunk Save-dirty
	c.SetBlock(vec.LocalBlockPos{X: 1, Y: 200, Z: 1}, block.NewBlockState(block.StoneBlockId, block.North))

	require.NoError(t, lvl.Save())

	_, ok, err := hc.Get(context.Background(), int32(pos.X), int32(pos.Z))
	require.NoError(t, err)
	assert.True(t, ok, "saved chunk should be write-behind cached")
}
