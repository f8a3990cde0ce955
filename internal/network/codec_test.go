package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecCompressRoundTrip(t *testing.T) {
	codec, err := NewCodec()
	require.NoError(t, err)
	defer codec.Close()

	payload := []byte("position update payload position update payload position update payload")
	compressed := codec.Compress(payload)
	assert.NotEqual(t, payload, compressed)

	got, err := codec.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestCodecCompressEmptyPayload(t *testing.T) {
	codec, err := NewCodec()
	require.NoError(t, err)
	defer codec.Close()

	compressed := codec.Compress(nil)
	got, err := codec.Decompress(compressed)
	require.NoError(t, err)
	assert.Empty(t, got)
}
