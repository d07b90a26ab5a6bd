// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package backend

import (
	"fmt"

	"github.com/nexuswm/compositor/pixel"
	"github.com/nexuswm/compositor/protocol"
	"github.com/nexuswm/compositor/transport"
)

// NestedBackend runs the compositor as an ordinary client of a parent
// compositor instance: it opens one window on the parent and renders the
// nested display into that window, exactly the handshake any other client
// performs (§4.2's window-new/window-init). Opening the server-allocated
// shared-memory buffer by name is explicitly out of scope for the shm
// package's client side (see shm package doc), so the nested backend
// keeps its own local pixel.Buffer and relies on FLIP/FLIP_REGION framing
// alone; a production nested client would additionally map the
// server-advertised bufid read-write.
type NestedBackend struct {
	conn transport.Conn
	wid  uint32
	buf  *pixel.Buffer
}

// DialNested opens a window of size w x h on the compositor listening at
// socketPath and returns a backend that renders into that window.
func DialNested(socketPath string, w, h int) (*NestedBackend, error) {
	raw, err := transport.Dial(socketPath)
	if err != nil {
		return nil, fmt.Errorf("backend: dial nested parent: %w", err)
	}
	if err := raw.Send(&protocol.HelloMsg{}); err != nil {
		raw.Close()
		return nil, err
	}
	welcome, err := recvWelcome(raw)
	if err != nil {
		raw.Close()
		return nil, err
	}
	_ = welcome

	if err := raw.Send(&protocol.WindowNewMsg{Width: int32(w), Height: int32(h)}); err != nil {
		raw.Close()
		return nil, err
	}
	init, err := recvWindowInit(raw)
	if err != nil {
		raw.Close()
		return nil, err
	}

	return &NestedBackend{
		conn: raw,
		wid:  init.Wid,
		buf:  pixel.NewBuffer(int(init.Width), int(init.Height)),
	}, nil
}

func recvWelcome(c transport.Conn) (*protocol.WelcomeMsg, error) {
	msg, err := c.Recv()
	if err != nil {
		return nil, err
	}
	w, ok := msg.(*protocol.WelcomeMsg)
	if !ok {
		return nil, fmt.Errorf("backend: expected WELCOME, got type %d", msg.Type())
	}
	return w, nil
}

func recvWindowInit(c transport.Conn) (*protocol.WindowInitMsg, error) {
	msg, err := c.Recv()
	if err != nil {
		return nil, err
	}
	w, ok := msg.(*protocol.WindowInitMsg)
	if !ok {
		return nil, fmt.Errorf("backend: expected WINDOW_INIT, got type %d", msg.Type())
	}
	return w, nil
}

func (b *NestedBackend) Width() int  { return b.buf.W }
func (b *NestedBackend) Height() int { return b.buf.H }

func (b *NestedBackend) Buffer() *pixel.Buffer { return b.buf }

// Present flips the parent-held window buffer for the damaged region,
// using FLIP_REGION when the damage doesn't cover the whole window and a
// plain FLIP otherwise (mirrors §4.2's own choice between the two).
func (b *NestedBackend) Present(damage pixel.Rect) error {
	full := pixel.Rect{X: 0, Y: 0, W: b.buf.W, H: b.buf.H}
	if damage == full {
		return b.conn.Send(&protocol.FlipMsg{Wid: b.wid})
	}
	region := damage.Intersect(full)
	if region.Empty() {
		return nil
	}
	return b.conn.Send(&protocol.FlipRegionMsg{
		Wid:    b.wid,
		X:      int32(region.X),
		Y:      int32(region.Y),
		Width:  int32(region.W),
		Height: int32(region.H),
	})
}

func (b *NestedBackend) Close() error {
	_ = b.conn.Send(&protocol.WindowCloseMsg{Wid: b.wid})
	return b.conn.Close()
}
