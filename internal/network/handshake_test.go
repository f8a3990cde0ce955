package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandshakeInitTransitionsToHandshakingAndRepliesAcceptThenConnect(t *testing.T) {
	p := NewPeer(99)
	replies, err := p.HandleServerFrame(Frame{Opcode: OpHandshakeInit})
	require.NoError(t, err)

	assert.Equal(t, PeerHandshaking, p.State)
	require.Len(t, replies, 2)
	assert.Equal(t, OpHandshakeAccept, replies[0].Opcode)
	assert.Equal(t, OpClientConnect, replies[1].Opcode)
	assert.Equal(t, uint64(99), replies[0].SourceID)
}

func TestNonHandshakeFrameBeforeConnectedIsAProtocolViolation(t *testing.T) {
	p := NewPeer(1)
	_, err := p.HandleServerFrame(Frame{Opcode: OpChat})

	assert.ErrorIs(t, err, ErrProtocolViolation)
	assert.Equal(t, PeerDisconnected, p.State)
}

func TestUDPRegisterAfterHandshakingReachesConnected(t *testing.T) {
	p := NewPeer(1)
	_, err := p.HandleServerFrame(Frame{Opcode: OpHandshakeInit})
	require.NoError(t, err)

	_, err = p.HandleServerFrame(Frame{Opcode: OpUDPRegister})
	require.NoError(t, err)
	assert.Equal(t, PeerConnected, p.State)
}

func TestSourceIDIsSocketAuthoritativeRegardlessOfClaimedValue(t *testing.T) {
	p := NewPeer(7)
	_, err := p.HandleServerFrame(Frame{Opcode: OpHandshakeInit})
	require.NoError(t, err)
	_, err = p.HandleServerFrame(Frame{Opcode: OpUDPRegister})
	require.NoError(t, err)

	replies, err := p.HandleServerFrame(Frame{Opcode: OpChat, SourceID: 9999})
	require.NoError(t, err)
	assert.Empty(t, replies, "Chat has no server-generated reply in this handshake model")
	assert.Equal(t, uint64(7), p.SourceID, "peer identity never changes to match a claimed SourceID")
}

func TestClientDisconnectMarksPeerDisconnected(t *testing.T) {
	p := NewPeer(1)
	p.State = PeerConnected

	_, err := p.HandleServerFrame(Frame{Opcode: OpClientDisconnect})
	require.NoError(t, err)
	assert.Equal(t, PeerDisconnected, p.State)
}
