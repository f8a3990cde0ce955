package network

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/xtaci/kcp-go/v5"
)

// Transport opens the wire-level connection a Frame stream rides on.
// spec.md §6 pins raw TCP as the reliable channel and KCP-over-UDP as
// the unreliable-feeling channel for high-frequency PositionUpdate
// traffic.
type Transport interface {
	Listen(addr string) (net.Listener, error)
	Dial(ctx context.Context, addr string) (io.ReadWriteCloser, error)
}

// TCPTransport is the reliable channel.
type TCPTransport struct{}

func (TCPTransport) Listen(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}

func (TCPTransport) Dial(ctx context.Context, addr string) (io.ReadWriteCloser, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tcp dial %s: %w", addr, err)
	}
	return conn, nil
}

// KCPTransport is the unreliable-feeling channel: kcp-go is still
// ARQ-based and delivers every byte, but tolerates loss/reorder on the
// underlying UDP socket far better than TCP under jitter, which is why
// spec.md routes PositionUpdate traffic here instead of the TCP
// channel.
type KCPTransport struct{}

func (KCPTransport) Listen(addr string) (net.Listener, error) {
	return kcp.ListenWithOptions(addr, nil, 0, 0)
}

func (KCPTransport) Dial(ctx context.Context, addr string) (io.ReadWriteCloser, error) {
	conn, err := kcp.DialWithOptions(addr, nil, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("kcp dial %s: %w", addr, err)
	}
	return conn, nil
}
