package network

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerTCPRoundTrip(t *testing.T) {
	codec, err := NewCodec()
	require.NoError(t, err)
	defer codec.Close()

	var mu sync.Mutex
	var received []Frame
	handler := func(peer *Peer, f Frame) ([]Frame, error) {
		mu.Lock()
		received = append(received, f)
		mu.Unlock()
		return nil, nil
	}

	srv := NewServer(TCPTransport{}, codec, handler)
	require.NoError(t, srv.Start("127.0.0.1:0"))
	defer srv.Stop()

	addr := srv.listener.Addr().String()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, err := (TCPTransport{}).Dial(ctx, addr)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, WriteFrame(conn, Frame{Opcode: OpHandshakeInit, SourceID: 1}))
	_, err = ReadFrame(conn) // HandshakeAccept
	require.NoError(t, err)
	_, err = ReadFrame(conn) // ClientConnect
	require.NoError(t, err)

	require.NoError(t, WriteFrame(conn, Frame{Opcode: OpUDPRegister, SourceID: 1}))

	payload := codec.Compress([]byte("block-change-payload"))
	require.NoError(t, WriteFrame(conn, Frame{Opcode: OpBlockUpdate, SourceID: 1, Payload: payload}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, OpBlockUpdate, received[0].Opcode)
	assert.Equal(t, []byte("block-change-payload"), received[0].Payload)
}

func TestServerRejectsFrameBeforeHandshake(t *testing.T) {
	codec, err := NewCodec()
	require.NoError(t, err)
	defer codec.Close()

	srv := NewServer(TCPTransport{}, codec, nil)
	require.NoError(t, srv.Start("127.0.0.1:0"))
	defer srv.Stop()

	addr := srv.listener.Addr().String()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, err := (TCPTransport{}).Dial(ctx, addr)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, WriteFrame(conn, Frame{Opcode: OpChat, SourceID: 1}))

	conn.(interface{ SetReadDeadline(time.Time) error }).SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	_, err = ReadFrame(conn)
	assert.Error(t, err) // server closed the connection without replying
}
