package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo is a minimal in-memory CacheRepo, just enough to exercise
// ChunkHotCache without a real Redis instance.
type fakeRepo struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{data: make(map[string][]byte)}
}

func (f *fakeRepo) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (f *fakeRepo) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeRepo) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok, nil
}

func (f *fakeRepo) Invalidate(ctx context.Context, key string) error {
	return f.Delete(ctx, key)
}

func (f *fakeRepo) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string][]byte)
	for _, k := range keys {
		if v, ok := f.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (f *fakeRepo) BatchSet(ctx context.Context, items map[string][]byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range items {
		f.data[k] = v
	}
	return nil
}

func (f *fakeRepo) Close() error { return nil }

func (f *fakeRepo) GetMetrics() *CacheMetrics { return &CacheMetrics{} }

func TestChunkHotCacheMissThenHit(t *testing.T) {
	hc := NewChunkHotCache(newFakeRepo(), ChunkHotCacheConfig{})
	ctx := context.Background()

	_, ok, err := hc.Get(ctx, 3, -4)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, hc.Put(ctx, 3, -4, []byte("snapshot-bytes")))

	data, ok, err := hc.Get(ctx, 3, -4)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("snapshot-bytes"), data)
}

func TestChunkHotCacheDistinguishesCoordinates(t *testing.T) {
	hc := NewChunkHotCache(newFakeRepo(), ChunkHotCacheConfig{Prefix: "c"})
	ctx := context.Background()

	require.NoError(t, hc.Put(ctx, 1, 2, []byte("a")))
	require.NoError(t, hc.Put(ctx, 2, 1, []byte("b")))

	got1, ok, err := hc.Get(ctx, 1, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("a"), got1)

	got2, ok, err := hc.Get(ctx, 2, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("b"), got2)
}

func TestChunkHotCacheInvalidate(t *testing.T) {
	hc := NewChunkHotCache(newFakeRepo(), ChunkHotCacheConfig{})
	ctx := context.Background()

	require.NoError(t, hc.Put(ctx, 0, 0, []byte("x")))
	require.NoError(t, hc.Invalidate(ctx, 0, 0))

	_, ok, err := hc.Get(ctx, 0, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}
