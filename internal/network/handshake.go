package network

import "fmt"

// PeerState tracks where a connection sits in the handshake sequence.
type PeerState int

const (
	PeerPending PeerState = iota
	PeerHandshaking
	PeerConnected
	PeerDisconnected
)

// ErrProtocolViolation is returned when a peer sends anything other
// than HandshakeInit (or, once handshaking, the UDPRegister that
// completes the handshake) before it has completed the handshake.
var ErrProtocolViolation = fmt.Errorf("message received before handshake completed")

// Peer tracks one connection's handshake progress. SourceID is
// socket-authoritative: the server overwrites a frame's claimed
// SourceID with this value before dispatch, rather than trusting
// whatever the client sent.
type Peer struct {
	SourceID uint64
	State    PeerState
}

// NewPeer returns a peer in the initial pending state, identified by
// the socket-assigned id (e.g. a connection counter or remote addr
// hash) rather than anything the client claims to be.
func NewPeer(sourceID uint64) *Peer {
	return &Peer{SourceID: sourceID, State: PeerPending}
}

// HandleServerFrame advances server-side handshake state for an
// inbound frame, returning the frames (if any) the server should send
// in response, or an error if the peer violated the pre-handshake
// protocol gate.
func (p *Peer) HandleServerFrame(f Frame) ([]Frame, error) {
	f.SourceID = p.SourceID // socket-authoritative, never trust the wire value

	if p.State != PeerConnected && f.Opcode != OpHandshakeInit &&
		!(p.State == PeerHandshaking && f.Opcode == OpUDPRegister) {
		p.State = PeerDisconnected
		return nil, ErrProtocolViolation
	}

	switch f.Opcode {
	case OpHandshakeInit:
		p.State = PeerHandshaking
		return []Frame{
			{Opcode: OpHandshakeAccept, SourceID: p.SourceID},
			{Opcode: OpClientConnect, SourceID: p.SourceID},
		}, nil
	case OpUDPRegister:
		p.State = PeerConnected
		return nil, nil
	case OpClientDisconnect:
		p.State = PeerDisconnected
		return nil, nil
	default:
		return nil, nil
	}
}
