// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package protocol

import "encoding/binary"

// Message is implemented by every decoded wire message. Encode returns the
// full framed byte slice (header included), ready to write to a Conn.
type Message interface {
	Type() uint32
	Encode() []byte
}

// encodeFixed builds a framed message from a type tag and a pre-built body.
func encodeFixed(msgType uint32, body []byte) []byte {
	buf := make([]byte, HeaderSize+len(body))
	EncodeHeader(buf, Header{Type: msgType, Size: uint32(len(buf))})
	copy(buf[HeaderSize:], body)
	return buf
}

func putU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func putI32(buf []byte, v int32) []byte { return putU32(buf, uint32(v)) }

func getU32(buf []byte, off int) uint32 { return binary.LittleEndian.Uint32(buf[off : off+4]) }
func getI32(buf []byte, off int) int32  { return int32(getU32(buf, off)) }

// HelloMsg is sent by a client immediately after connecting.
type HelloMsg struct{}

func (m *HelloMsg) Type() uint32   { return Hello }
func (m *HelloMsg) Encode() []byte { return encodeFixed(Hello, nil) }

// WelcomeMsg announces the display dimensions, sent on connect and again
// whenever the display is reconfigured.
type WelcomeMsg struct{ DisplayW, DisplayH int32 }

func (m *WelcomeMsg) Type() uint32 { return Welcome }
func (m *WelcomeMsg) Encode() []byte {
	var b []byte
	b = putI32(b, m.DisplayW)
	b = putI32(b, m.DisplayH)
	return encodeFixed(Welcome, b)
}

// WindowNewMsg requests a new window of the given pixel size.
type WindowNewMsg struct {
	Width, Height int32
	Flags         uint32
}

func (m *WindowNewMsg) Type() uint32 { return WindowNew }
func (m *WindowNewMsg) Encode() []byte {
	var b []byte
	b = putI32(b, m.Width)
	b = putI32(b, m.Height)
	b = putU32(b, m.Flags)
	return encodeFixed(WindowNew, b)
}

// WindowInitMsg is the server's reply to WindowNewMsg.
type WindowInitMsg struct {
	Wid, Width, Height, Bufid uint32
}

func (m *WindowInitMsg) Type() uint32 { return WindowInit }
func (m *WindowInitMsg) Encode() []byte {
	var b []byte
	b = putU32(b, m.Wid)
	b = putU32(b, m.Width)
	b = putU32(b, m.Height)
	b = putU32(b, m.Bufid)
	return encodeFixed(WindowInit, b)
}

// FlipMsg marks a window's whole buffer visible and dirty.
type FlipMsg struct{ Wid uint32 }

func (m *FlipMsg) Type() uint32   { return Flip }
func (m *FlipMsg) Encode() []byte { return encodeFixed(Flip, putU32(nil, m.Wid)) }

// FlipRegionMsg marks a sub-rectangle of a window's buffer dirty.
type FlipRegionMsg struct {
	Wid                uint32
	X, Y, Width, Height int32
}

func (m *FlipRegionMsg) Type() uint32 { return FlipRegion }
func (m *FlipRegionMsg) Encode() []byte {
	var b []byte
	b = putU32(b, m.Wid)
	b = putI32(b, m.X)
	b = putI32(b, m.Y)
	b = putI32(b, m.Width)
	b = putI32(b, m.Height)
	return encodeFixed(FlipRegion, b)
}

// WindowMoveMsg repositions a window in screen space.
type WindowMoveMsg struct {
	Wid  uint32
	X, Y int32
}

func (m *WindowMoveMsg) Type() uint32 { return WindowMove }
func (m *WindowMoveMsg) Encode() []byte {
	var b []byte
	b = putU32(b, m.Wid)
	b = putI32(b, m.X)
	b = putI32(b, m.Y)
	return encodeFixed(WindowMove, b)
}

// WindowMoveRelativeMsg repositions WidToMove relative to WidBase's origin.
type WindowMoveRelativeMsg struct {
	WidToMove, WidBase uint32
	X, Y               int32
}

func (m *WindowMoveRelativeMsg) Type() uint32 { return WindowMoveRelative }
func (m *WindowMoveRelativeMsg) Encode() []byte {
	var b []byte
	b = putU32(b, m.WidToMove)
	b = putU32(b, m.WidBase)
	b = putI32(b, m.X)
	b = putI32(b, m.Y)
	return encodeFixed(WindowMoveRelative, b)
}

// WindowStackMsg requests a new z-band for a window.
type WindowStackMsg struct {
	Wid uint32
	Z   uint32
}

func (m *WindowStackMsg) Type() uint32 { return WindowStack }
func (m *WindowStackMsg) Encode() []byte {
	var b []byte
	b = putU32(b, m.Wid)
	b = putU32(b, m.Z)
	return encodeFixed(WindowStack, b)
}

// WindowCloseMsg requests (or announces) window teardown.
type WindowCloseMsg struct{ Wid uint32 }

func (m *WindowCloseMsg) Type() uint32   { return WindowClose }
func (m *WindowCloseMsg) Encode() []byte { return encodeFixed(WindowClose, putU32(nil, m.Wid)) }

// ResizeRequestMsg: client asks the server to begin a resize.
type ResizeRequestMsg struct {
	Wid           uint32
	Width, Height int32
}

func (m *ResizeRequestMsg) Type() uint32 { return ResizeRequest }
func (m *ResizeRequestMsg) Encode() []byte {
	var b []byte
	b = putU32(b, m.Wid)
	b = putI32(b, m.Width)
	b = putI32(b, m.Height)
	return encodeFixed(ResizeRequest, b)
}

// ResizeOfferMsg: server proposes new dimensions.
type ResizeOfferMsg struct {
	Wid           uint32
	Width, Height int32
	TileHint      uint32
}

func (m *ResizeOfferMsg) Type() uint32 { return ResizeOffer }
func (m *ResizeOfferMsg) Encode() []byte {
	var b []byte
	b = putU32(b, m.Wid)
	b = putI32(b, m.Width)
	b = putI32(b, m.Height)
	b = putU32(b, m.TileHint)
	return encodeFixed(ResizeOffer, b)
}

// ResizeAcceptMsg: client accepts the offered (or its requested) dimensions.
type ResizeAcceptMsg struct {
	Wid           uint32
	Width, Height int32
}

func (m *ResizeAcceptMsg) Type() uint32 { return ResizeAccept }
func (m *ResizeAcceptMsg) Encode() []byte {
	var b []byte
	b = putU32(b, m.Wid)
	b = putI32(b, m.Width)
	b = putI32(b, m.Height)
	return encodeFixed(ResizeAccept, b)
}

// ResizeBufidMsg: server hands back the new backing buffer id.
type ResizeBufidMsg struct {
	Wid           uint32
	Width, Height int32
	Bufid         uint32
}

func (m *ResizeBufidMsg) Type() uint32 { return ResizeBufid }
func (m *ResizeBufidMsg) Encode() []byte {
	var b []byte
	b = putU32(b, m.Wid)
	b = putI32(b, m.Width)
	b = putI32(b, m.Height)
	b = putU32(b, m.Bufid)
	return encodeFixed(ResizeBufid, b)
}

// ResizeDoneMsg: client finished painting the new buffer.
type ResizeDoneMsg struct {
	Wid           uint32
	Width, Height int32
}

func (m *ResizeDoneMsg) Type() uint32 { return ResizeDone }
func (m *ResizeDoneMsg) Encode() []byte {
	var b []byte
	b = putU32(b, m.Wid)
	b = putI32(b, m.Width)
	b = putI32(b, m.Height)
	return encodeFixed(ResizeDone, b)
}

// KeyEventMsg delivers a single key press/release to a window (or to
// UINT32_MAX-tagged Wid for a global key binding's owner, steal or notify).
type KeyEventMsg struct {
	Wid     uint32
	Keycode uint32
	State   uint32 // 0 = up, 1 = down, 2 = repeat.
	Mods    uint32
}

func (m *KeyEventMsg) Type() uint32 { return KeyEvent }
func (m *KeyEventMsg) Encode() []byte {
	var b []byte
	b = putU32(b, m.Wid)
	b = putU32(b, m.Keycode)
	b = putU32(b, m.State)
	b = putU32(b, m.Mods)
	return encodeFixed(KeyEvent, b)
}

// MouseEventMsg delivers a raw mouse packet plus its classified type
// (motion/button/scroll) to a window.
type MouseEventMsg struct {
	Wid       uint32
	RawPacket uint64
	EventType uint32
}

func (m *MouseEventMsg) Type() uint32 { return MouseEvent }
func (m *MouseEventMsg) Encode() []byte {
	var b []byte
	b = putU32(b, m.Wid)
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], m.RawPacket)
	b = append(b, raw[:]...)
	b = putU32(b, m.EventType)
	return encodeFixed(MouseEvent, b)
}

// WindowMouseEventMsg delivers window-local pointer state: local and
// previous local coordinates, button mask, a classified command
// (MOUSE_DOWN/DRAG/RAISE/CLICK/ENTER/LEAVE), and active modifiers.
type WindowMouseEventMsg struct {
	Wid                    uint32
	LocalX, LocalY         int32
	OldX, OldY             int32
	Buttons                uint32
	Command                uint32
	Modifiers              uint32
}

func (m *WindowMouseEventMsg) Type() uint32 { return WindowMouseEvent }
func (m *WindowMouseEventMsg) Encode() []byte {
	var b []byte
	b = putU32(b, m.Wid)
	b = putI32(b, m.LocalX)
	b = putI32(b, m.LocalY)
	b = putI32(b, m.OldX)
	b = putI32(b, m.OldY)
	b = putU32(b, m.Buttons)
	b = putU32(b, m.Command)
	b = putU32(b, m.Modifiers)
	return encodeFixed(WindowMouseEvent, b)
}

// WindowFocusChangeMsg tells a client its window gained or lost focus.
type WindowFocusChangeMsg struct {
	Wid     uint32
	Focused bool
}

func (m *WindowFocusChangeMsg) Type() uint32 { return WindowFocusChange }
func (m *WindowFocusChangeMsg) Encode() []byte {
	var b []byte
	b = putU32(b, m.Wid)
	flag := uint32(0)
	if m.Focused {
		flag = 1
	}
	b = putU32(b, flag)
	return encodeFixed(WindowFocusChange, b)
}

// SubscribeMsg / UnsubscribeMsg register or remove a change subscriber.
type SubscribeMsg struct{}

func (m *SubscribeMsg) Type() uint32   { return Subscribe }
func (m *SubscribeMsg) Encode() []byte { return encodeFixed(Subscribe, nil) }

type UnsubscribeMsg struct{}

func (m *UnsubscribeMsg) Type() uint32   { return Unsubscribe }
func (m *UnsubscribeMsg) Encode() []byte { return encodeFixed(Unsubscribe, nil) }

// NotifyMsg is the empty-body ping sent to every subscriber.
type NotifyMsg struct{}

func (m *NotifyMsg) Type() uint32   { return Notify }
func (m *NotifyMsg) Encode() []byte { return encodeFixed(Notify, nil) }

// QueryWindowsMsg asks the server to re-advertise every window.
type QueryWindowsMsg struct{}

func (m *QueryWindowsMsg) Type() uint32   { return QueryWindows }
func (m *QueryWindowsMsg) Encode() []byte { return encodeFixed(QueryWindows, nil) }

// WindowAdvertiseMsg describes one window for subscribers / query replies.
type WindowAdvertiseMsg struct {
	Wid, Flags, Icon, Bufid uint32
	Width, Height           int32
	Strings                 string // packed "name\x00identifier"-style blob.
}

func (m *WindowAdvertiseMsg) Type() uint32 { return WindowAdvertise }
func (m *WindowAdvertiseMsg) Encode() []byte {
	var b []byte
	b = putU32(b, m.Wid)
	b = putU32(b, m.Flags)
	b = putU32(b, m.Icon)
	b = putU32(b, m.Bufid)
	b = putI32(b, m.Width)
	b = putI32(b, m.Height)
	b = putString(b, m.Strings)
	return encodeFixed(WindowAdvertise, b)
}

// WindowUpdateShapeMsg sets a window's hit-test alpha threshold.
type WindowUpdateShapeMsg struct {
	Wid       uint32
	Threshold uint32
}

func (m *WindowUpdateShapeMsg) Type() uint32 { return WindowUpdateShape }
func (m *WindowUpdateShapeMsg) Encode() []byte {
	var b []byte
	b = putU32(b, m.Wid)
	b = putU32(b, m.Threshold)
	return encodeFixed(WindowUpdateShape, b)
}

// WindowShowMouseMsg sets the cursor hint for a window.
type WindowShowMouseMsg struct {
	Wid  uint32
	Mode uint32
}

func (m *WindowShowMouseMsg) Type() uint32 { return WindowShowMouse }
func (m *WindowShowMouseMsg) Encode() []byte {
	var b []byte
	b = putU32(b, m.Wid)
	b = putU32(b, m.Mode)
	return encodeFixed(WindowShowMouse, b)
}

// WindowWarpMouseMsg moves the pointer to a window-local location.
type WindowWarpMouseMsg struct {
	Wid  uint32
	X, Y int32
}

func (m *WindowWarpMouseMsg) Type() uint32 { return WindowWarpMouse }
func (m *WindowWarpMouseMsg) Encode() []byte {
	var b []byte
	b = putU32(b, m.Wid)
	b = putI32(b, m.X)
	b = putI32(b, m.Y)
	return encodeFixed(WindowWarpMouse, b)
}

// WindowDragStartMsg asks the server to enter MOVING for this window as if
// the user had pressed Alt+LMB over it.
type WindowDragStartMsg struct{ Wid uint32 }

func (m *WindowDragStartMsg) Type() uint32 { return WindowDragStart }
func (m *WindowDragStartMsg) Encode() []byte {
	return encodeFixed(WindowDragStart, putU32(nil, m.Wid))
}

// WindowResizeStartMsg asks the server to enter RESIZING in the given
// direction for this window.
type WindowResizeStartMsg struct {
	Wid       uint32
	Direction uint32
}

func (m *WindowResizeStartMsg) Type() uint32 { return WindowResizeStart }
func (m *WindowResizeStartMsg) Encode() []byte {
	var b []byte
	b = putU32(b, m.Wid)
	b = putU32(b, m.Direction)
	return encodeFixed(WindowResizeStart, b)
}

// KeyBindMsg registers a global key binding.
type KeyBindMsg struct {
	Key       uint32
	Modifiers uint32
	Response  uint32 // 0 = notify, 1 = steal.
}

func (m *KeyBindMsg) Type() uint32 { return KeyBind }
func (m *KeyBindMsg) Encode() []byte {
	var b []byte
	b = putU32(b, m.Key)
	b = putU32(b, m.Modifiers)
	b = putU32(b, m.Response)
	return encodeFixed(KeyBind, b)
}

// SpecialRequestMsg carries maximize-toggle / please-close /
// clipboard-read requests that don't warrant their own message type.
type SpecialRequestMsg struct {
	Wid     uint32
	Request uint32
}

func (m *SpecialRequestMsg) Type() uint32 { return SpecialRequest }
func (m *SpecialRequestMsg) Encode() []byte {
	var b []byte
	b = putU32(b, m.Wid)
	b = putU32(b, m.Request)
	return encodeFixed(SpecialRequest, b)
}

// ClipboardMsg: client->server stores Content, server->client returns it.
type ClipboardMsg struct {
	Size    uint32
	Content []byte
}

func (m *ClipboardMsg) Type() uint32 { return Clipboard }
func (m *ClipboardMsg) Encode() []byte {
	var b []byte
	b = putU32(b, uint32(len(m.Content)))
	b = append(b, m.Content...)
	return encodeFixed(Clipboard, b)
}

// SessionEndMsg is broadcast to every client before the server exits.
type SessionEndMsg struct{}

func (m *SessionEndMsg) Type() uint32   { return SessionEnd }
func (m *SessionEndMsg) Encode() []byte { return encodeFixed(SessionEnd, nil) }
