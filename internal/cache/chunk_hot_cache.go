package cache

import (
	"context"
	"fmt"
	"time"
)

// ChunkHotCacheConfig controls the key prefix and TTL for cached chunk
// snapshots.
type ChunkHotCacheConfig struct {
	TTL    time.Duration
	Prefix string
}

// ChunkHotCache fronts a CacheRepo (RedisCache in production) as a
// regional hot cache for raw chunk block snapshots, keyed by chunk
// coordinate. A chunk evicted by one node's view-radius streaming can
// be picked up by a neighboring regional node through here instead of
// regenerating terrain or round-tripping through Cold Storage.
//
// ChunkHotCache deliberately knows nothing about world.Chunk or
// block.BlockState: it stores and returns opaque byte slices, so
// internal/world can depend on internal/cache without a cycle.
type ChunkHotCache struct {
	repo   CacheRepo
	ttl    time.Duration
	prefix string
}

// NewChunkHotCache wraps repo with the given TTL/prefix defaults.
func NewChunkHotCache(repo CacheRepo, cfg ChunkHotCacheConfig) *ChunkHotCache {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "chunk"
	}
	return &ChunkHotCache{repo: repo, ttl: ttl, prefix: prefix}
}

func (h *ChunkHotCache) key(x, z int32) string {
	return fmt.Sprintf("%s:%d:%d", h.prefix, x, z)
}

// Get returns the cached block bytes for (x, z). ok is false on a plain
// cache miss; err is non-nil only for an actual cache failure.
func (h *ChunkHotCache) Get(ctx context.Context, x, z int32) (data []byte, ok bool, err error) {
	data, err = h.repo.Get(ctx, h.key(x, z))
	if err != nil {
		if IsCacheMiss(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Put stores block bytes for (x, z), overwriting any previous entry.
func (h *ChunkHotCache) Put(ctx context.Context, x, z int32, data []byte) error {
	return h.repo.Set(ctx, h.key(x, z), data, h.ttl)
}

// Invalidate drops a cached chunk, e.g. after an edit a neighboring
// node shouldn't keep serving stale geometry for.
func (h *ChunkHotCache) Invalidate(ctx context.Context, x, z int32) error {
	return h.repo.Invalidate(ctx, h.key(x, z))
}

// Close releases the underlying CacheRepo connection.
func (h *ChunkHotCache) Close() error {
	return h.repo.Close()
}
