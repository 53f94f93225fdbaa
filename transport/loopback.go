package transport

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrClosed is returned by Recv once the peer end has been closed with no
// frames left buffered.
var ErrClosed = errors.New("transport: loopback closed")

// pipe is a one-directional FIFO byte-slice queue used to back a Loopback
// pair. It buffers up to 64 frames; send blocks while the buffer is full.
type pipe struct {
	frames chan []byte
	closed chan struct{}
}

func newPipe() *pipe {
	return &pipe{frames: make(chan []byte, 64), closed: make(chan struct{})}
}

func (p *pipe) send(frame []byte) {
	select {
	case p.frames <- frame:
	case <-p.closed:
	}
}

func (p *pipe) recv(ctx context.Context) ([]byte, error) {
	select {
	case frame := <-p.frames:
		return frame, nil
	case <-p.closed:
		select {
		case frame := <-p.frames:
			return frame, nil
		default:
			return nil, ErrClosed
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *pipe) close() { close(p.closed) }

// Loopback is an in-memory Transport pair, used by tests (and tgtest's
// in-process fake server) to exercise real wire encoding without a socket.
type Loopback struct {
	out *pipe
	in  *pipe
}

// NewLoopbackPair returns two Loopback endpoints wired to each other: a's
// Send feeds b's Recv and vice versa.
func NewLoopbackPair() (a, b *Loopback) {
	p1, p2 := newPipe(), newPipe()
	a = &Loopback{out: p1, in: p2}
	b = &Loopback{out: p2, in: p1}
	return a, b
}

// Send implements Sender.
func (l *Loopback) Send(ctx context.Context, frame []byte) error {
	cp := append([]byte(nil), frame...)
	l.out.send(cp)
	return nil
}

// Recv implements Receiver.
func (l *Loopback) Recv(ctx context.Context) ([]byte, error) {
	return l.in.recv(ctx)
}

// Close shuts down this endpoint's outgoing pipe, causing the peer's Recv
// to eventually return ErrClosed once buffered frames are drained.
func (l *Loopback) Close() error {
	l.out.close()
	return nil
}
