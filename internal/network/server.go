package network

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/annel0/mmo-game/internal/logging"
)

// Handler processes one post-handshake frame from a connected peer,
// returning any frames the server should send back.
type Handler func(peer *Peer, f Frame) ([]Frame, error)

// Server accepts Frame-speaking connections over a Transport, gates
// each one through the handshake (handshake.go) before handing
// application frames to Handler, and zstd-(de)compresses payloads
// with Codec at the wire boundary.
type Server struct {
	transport Transport
	codec     *Codec
	handler   Handler

	listener net.Listener
	nextID   uint64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer wires a transport, codec and application handler together.
func NewServer(transport Transport, codec *Codec, handler Handler) *Server {
	return &Server{transport: transport, codec: codec, handler: handler}
}

// Start begins listening and accepting connections in the background.
func (s *Server) Start(addr string) error {
	listener, err := s.transport.Listen(addr)
	if err != nil {
		return fmt.Errorf("network listen %s: %w", addr, err)
	}
	s.listener = listener

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.acceptLoop(ctx)
	return nil
}

// Stop closes the listener and waits for in-flight connections to exit.
func (s *Server) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	return nil
}

func (s *Server) acceptLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				logging.Warn("network: accept error: %v", err)
				continue
			}
		}
		id := atomic.AddUint64(&s.nextID, 1)
		s.wg.Add(1)
		go s.serveConn(ctx, conn, NewPeer(id))
	}
}

func (s *Server) serveConn(ctx context.Context, conn io.ReadWriteCloser, peer *Peer) {
	defer s.wg.Done()
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		f, err := ReadFrame(conn)
		if err != nil {
			return
		}
		if len(f.Payload) > 0 {
			decompressed, err := s.codec.Decompress(f.Payload)
			if err != nil {
				logging.Warn("network: payload decompress error from peer %d: %v", peer.SourceID, err)
				continue
			}
			f.Payload = decompressed
		}

		f.SourceID = peer.SourceID // socket-authoritative, also for the handler
		replies, err := peer.HandleServerFrame(f)
		if err != nil {
			logging.Warn("network: peer %d protocol violation: %v", peer.SourceID, err)
			return
		}

		if s.handler != nil && peer.State == PeerConnected && f.Opcode != OpUDPRegister {
			handlerReplies, err := s.handler(peer, f)
			if err != nil {
				logging.Warn("network: handler error for peer %d: %v", peer.SourceID, err)
			}
			replies = append(replies, handlerReplies...)
		}

		for _, reply := range replies {
			if len(reply.Payload) > 0 {
				reply.Payload = s.codec.Compress(reply.Payload)
			}
			if err := WriteFrame(conn, reply); err != nil {
				return
			}
		}
	}
}
