// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

// Package transport provides the reliable, in-order, datagram-preserving
// local stream the core depends on. The spec treats the transport as
// opaque; this package supplies one concrete, reasonable implementation
// (a Unix domain socket) behind the same kind of minimal, OS-facing seam
// the teacher engine uses for device.Device and audio.Audio.
package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"github.com/nexuswm/compositor/protocol"
)

// Conn is one accepted client connection. Conn is safe for concurrent
// Send calls (the compositor may flush a notify from a different code
// path than the main read loop) but Recv is only ever called from the
// single-threaded event loop.
type Conn interface {
	// ID uniquely and durably identifies this connection's endpoint for
	// the lifetime of the process. It has no protocol meaning; it exists
	// because Go has no raw endpoint pointer to key sessions by.
	ID() string

	// Send best-effort writes a single framed message. Errors are
	// expected for a dead peer and are non-fatal to the caller -- see
	// the error handling design: a failed send is swallowed and the
	// client reaped when the transport reports endpoint closure.
	Send(msg protocol.Message) error

	// Recv blocks until one complete framed message has arrived, the
	// connection is closed (io.EOF), or framing fails (a short read
	// mid-message, which is a protocol error per §4.5 and is fatal).
	Recv() (protocol.Message, error)

	Close() error

	// Fd returns the underlying file descriptor for use in a
	// unix.Poll-based multi-source wait, and false if this Conn has no
	// such descriptor (e.g. an in-memory test transport).
	Fd() (int, bool)
}

// Listener accepts new client connections.
type Listener interface {
	Accept() (Conn, error)
	Close() error
	Addr() string

	// Fd returns the listening socket's file descriptor for use in a
	// unix.Poll-based accept-or-read wait, and false if unavailable.
	Fd() (int, bool)
}

// Listen opens a Unix domain socket at path, removing any stale socket
// file left behind by a previous, uncleanly terminated server.
func Listen(path string) (Listener, error) {
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("transport: listen %s: %w", path, err)
	}
	return &unixListener{ln: ln, path: path}, nil
}

type unixListener struct {
	ln   net.Listener
	path string
}

func (l *unixListener) Accept() (Conn, error) {
	c, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	return newConn(c), nil
}

func (l *unixListener) Close() error {
	err := l.ln.Close()
	_ = os.Remove(l.path)
	return err
}

func (l *unixListener) Addr() string { return l.path }

func (l *unixListener) Fd() (int, bool) {
	sc, ok := l.ln.(interface {
		SyscallConn() (syscall.RawConn, error)
	})
	if !ok {
		return 0, false
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return 0, false
	}
	var fd int
	if err := rc.Control(func(f uintptr) { fd = int(f) }); err != nil {
		return 0, false
	}
	return fd, true
}

// Dial connects to a Unix domain socket at path, the client side of the
// same transport Listen serves -- used both by real client libraries and
// by the nested backend, which is itself an ordinary client of another
// compositor instance.
func Dial(path string) (Conn, error) {
	raw, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", path, err)
	}
	return newConn(raw), nil
}

// conn implements Conn over a net.Conn stream.
type conn struct {
	id   string
	raw  net.Conn
	mu   sync.Mutex // guards writes from concurrent Send calls.
}

func newConn(raw net.Conn) *conn {
	return &conn{id: uuid.NewString(), raw: raw}
}

func (c *conn) ID() string { return c.id }

func (c *conn) Send(msg protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.raw.Write(msg.Encode())
	return err
}

func (c *conn) Recv() (protocol.Message, error) {
	var header [protocol.HeaderSize]byte
	if _, err := io.ReadFull(c.raw, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF // clean disconnect between messages.
		}
		return nil, &protocol.ProtocolError{Reason: "short read in header: " + err.Error()}
	}
	h, err := protocol.DecodeHeader(header[:])
	if err != nil {
		return nil, err
	}
	body := make([]byte, h.Size)
	copy(body, header[:])
	if _, err := io.ReadFull(c.raw, body[protocol.HeaderSize:]); err != nil {
		// A read that fails after a valid header has been seen is a
		// truncated message body: always a protocol error, never a
		// clean disconnect.
		return nil, &protocol.ProtocolError{Reason: "short read in body: " + err.Error()}
	}
	msg, _, err := protocol.Decode(body)
	return msg, err
}

func (c *conn) Close() error { return c.raw.Close() }

// Fd exposes the socket's file descriptor so the compositor's event loop
// can multiplex it with unix.Poll alongside input devices.
func (c *conn) Fd() (int, bool) {
	sc, ok := c.raw.(interface {
		SyscallConn() (syscall.RawConn, error)
	})
	if !ok {
		return 0, false
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return 0, false
	}
	var fd int
	if err := rc.Control(func(f uintptr) { fd = int(f) }); err != nil {
		return 0, false
	}
	return fd, true
}
