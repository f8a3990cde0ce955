package storage

import (
	"path/filepath"
	"testing"

	"github.com/annel0/mmo-game/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastSavedMissingKeyReturnsFalse(t *testing.T) {
	idx, err := OpenDirtyIndex(filepath.Join(t.TempDir(), "dirty"))
	require.NoError(t, err)
	defer idx.Close()

	_, ok, err := idx.LastSaved(vec.ChunkPos{X: 9, Z: 9})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMarkSavedThenLastSavedRoundTrips(t *testing.T) {
	idx, err := OpenDirtyIndex(filepath.Join(t.TempDir(), "dirty"))
	require.NoError(t, err)
	defer idx.Close()

	pos := vec.ChunkPos{X: 1, Z: 2}
	require.NoError(t, idx.MarkSaved(pos))

	when, ok, err := idx.LastSaved(pos)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, when.IsZero())
}

func TestCountTracksMarkedChunks(t *testing.T) {
	idx, err := OpenDirtyIndex(filepath.Join(t.TempDir(), "dirty"))
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.MarkSaved(vec.ChunkPos{X: 0, Z: 0}))
	require.NoError(t, idx.MarkSaved(vec.ChunkPos{X: 1, Z: 0}))

	count, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestOperationsAfterCloseFail(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dirty")
	idx, err := OpenDirtyIndex(dir)
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	err = idx.MarkSaved(vec.ChunkPos{X: 0, Z: 0})
	assert.Error(t, err)
}
