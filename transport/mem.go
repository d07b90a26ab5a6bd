// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package transport

import (
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/nexuswm/compositor/protocol"
)

// MemConn is an in-process Conn used by tests to drive the compositor
// without a real socket. Pipe returns a connected pair: server-side and
// client-side. Messages sent on one side arrive, framed, on the other.
type MemConn struct {
	id     string
	mu     sync.Mutex
	closed bool
	outbox chan protocol.Message
	peer   *MemConn
}

// Pipe creates two MemConns wired together: sends on a arrive via b.Recv
// and vice versa.
func Pipe() (a, b *MemConn) {
	a = &MemConn{id: uuid.NewString(), outbox: make(chan protocol.Message, 64)}
	b = &MemConn{id: uuid.NewString(), outbox: make(chan protocol.Message, 64)}
	a.peer, b.peer = b, a
	return a, b
}

func (c *MemConn) ID() string { return c.id }

func (c *MemConn) Send(msg protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return io.ErrClosedPipe
	}
	// Round-trip through Encode/Decode so tests exercise the real codec,
	// not just Go struct identity.
	framed := msg.Encode()
	decoded, _, err := protocol.Decode(framed)
	if err != nil {
		return err
	}
	select {
	case c.peer.outbox <- decoded:
	default:
		return io.ErrShortWrite
	}
	return nil
}

func (c *MemConn) Recv() (protocol.Message, error) {
	msg, ok := <-c.outbox
	if !ok {
		return nil, io.EOF
	}
	return msg, nil
}

// Fd always reports false: an in-process MemConn has no OS file
// descriptor to give the poll-based event loop.
func (c *MemConn) Fd() (int, bool) { return 0, false }

func (c *MemConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.outbox)
	return nil
}
