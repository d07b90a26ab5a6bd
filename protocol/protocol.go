// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

// Package protocol defines the wire format shared by the compositor and its
// clients: a fixed 16-byte header followed by a type-specific body, all
// fields little-endian. Package protocol is provided as part of the
// compositor window server.
package protocol

import (
	"encoding/binary"
	"fmt"
)

// Magic identifies a well-formed message header. Messages that start with
// a different value are treated as a malformed-message protocol error.
const Magic uint32 = 0x43414E56 // ASCII "CANV"

// HeaderSize is the fixed size, in bytes, of every message header.
const HeaderSize = 16

// Message types. Each constant pairs with a body layout documented on the
// corresponding Go struct below.
const (
	Hello uint32 = iota + 1
	Welcome
	WindowNew
	WindowInit
	Flip
	FlipRegion
	WindowMove
	WindowMoveRelative
	WindowStack
	WindowClose
	ResizeRequest
	ResizeOffer
	ResizeAccept
	ResizeBufid
	ResizeDone
	KeyEvent
	MouseEvent
	WindowMouseEvent
	WindowFocusChange
	Subscribe
	Unsubscribe
	Notify
	QueryWindows
	WindowAdvertise
	WindowUpdateShape
	WindowShowMouse
	WindowWarpMouse
	WindowDragStart
	WindowResizeStart
	KeyBind
	SpecialRequest
	Clipboard
	SessionEnd
)

// Header is the fixed 16-byte prologue of every message.
type Header struct {
	Magic    uint32
	Type     uint32
	Size     uint32 // total message size, header included.
	Reserved uint32
}

// ProtocolError marks a framing problem: bad magic, a truncated read, or an
// unknown message type. Per the error-handling design, these are logged and
// the offending message is dropped -- the connection is not closed except
// for a short read, which the transport layer treats as fatal.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string { return "protocol: " + e.Reason }

// DecodeHeader reads a Header from the first HeaderSize bytes of buf.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, &ProtocolError{Reason: "short header"}
	}
	h := Header{
		Magic:    binary.LittleEndian.Uint32(buf[0:4]),
		Type:     binary.LittleEndian.Uint32(buf[4:8]),
		Size:     binary.LittleEndian.Uint32(buf[8:12]),
		Reserved: binary.LittleEndian.Uint32(buf[12:16]),
	}
	if h.Magic != Magic {
		return h, &ProtocolError{Reason: fmt.Sprintf("bad magic %#x", h.Magic)}
	}
	if h.Size < HeaderSize {
		return h, &ProtocolError{Reason: "size smaller than header"}
	}
	return h, nil
}

// EncodeHeader writes a Header into the first HeaderSize bytes of buf.
// buf must be at least HeaderSize long.
func EncodeHeader(buf []byte, h Header) {
	binary.LittleEndian.PutUint32(buf[0:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Type)
	binary.LittleEndian.PutUint32(buf[8:12], h.Size)
	binary.LittleEndian.PutUint32(buf[12:16], h.Reserved)
}

// putString writes a length-prefixed (uint32 count), non-NUL-terminated
// string: the convention used by every variable length protocol field.
func putString(buf []byte, s string) []byte {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(s)))
	buf = append(buf, n[:]...)
	buf = append(buf, s...)
	return buf
}

// getString reads a length-prefixed string starting at buf[0]. It returns
// the string and the number of bytes consumed.
func getString(buf []byte) (string, int, error) {
	if len(buf) < 4 {
		return "", 0, &ProtocolError{Reason: "truncated string length"}
	}
	n := binary.LittleEndian.Uint32(buf[0:4])
	if uint32(len(buf)-4) < n {
		return "", 0, &ProtocolError{Reason: "truncated string body"}
	}
	return string(buf[4 : 4+n]), int(4 + n), nil
}
