package network

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	f := Frame{
		Opcode:        OpChat,
		SourceID:      42,
		DestinationID: 7,
		Payload:       []byte("hello"),
	}
	require.NoError(t, WriteFrame(&buf, f))

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func TestWriteReadFrameWithEmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	f := Frame{Opcode: OpHeartbeat, SourceID: 1, DestinationID: 2}
	require.NoError(t, WriteFrame(&buf, f))

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, OpHeartbeat, got.Opcode)
	assert.Empty(t, got.Payload)
}

func TestReadFrameHeaderIsHeaderSizeBytes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, Frame{Opcode: OpBlockUpdate}))
	assert.Equal(t, headerSize, buf.Len())
}

func TestReadFrameFailsOnTruncatedStream(t *testing.T) {
	buf := bytes.NewBuffer([]byte{byte(OpChat), 1, 2, 3})
	_, err := ReadFrame(buf)
	assert.Error(t, err)
}

func TestReadFrameFailsOnTruncatedPayload(t *testing.T) {
	var full bytes.Buffer
	require.NoError(t, WriteFrame(&full, Frame{Opcode: OpChat, Payload: []byte("hello")}))
	truncated := bytes.NewBuffer(full.Bytes()[:headerSize+2])

	_, err := ReadFrame(truncated)
	assert.Error(t, err)
}
