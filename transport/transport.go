// Package transport defines the (send, recv) contract the session core
// consumes from the network layer, and a Loopback implementation for tests.
package transport

import "context"

// Sender writes one wire frame. The core treats a frame as opaque bytes;
// length/stream framing (TCP-abridged, intermediate, WebSocket) is the
// host's responsibility.
type Sender interface {
	Send(ctx context.Context, frame []byte) error
}

// Receiver reads one wire frame.
type Receiver interface {
	Recv(ctx context.Context) ([]byte, error)
}

// Transport is the combined capability the core's handshake and session
// code is driven through.
type Transport interface {
	Sender
	Receiver
}
