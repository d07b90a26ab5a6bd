// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package protocol

import "fmt"

// Decode reads one framed message from the front of buf. It returns the
// message, the number of bytes consumed, and an error. A short buffer is
// reported via ErrShort so callers (the transport's reader loop) can wait
// for more bytes rather than treating it as malformed.
var ErrShort = fmt.Errorf("protocol: need more data")

func Decode(buf []byte) (Message, int, error) {
	if len(buf) < HeaderSize {
		return nil, 0, ErrShort
	}
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, 0, err
	}
	if uint32(len(buf)) < h.Size {
		return nil, 0, ErrShort
	}
	body := buf[HeaderSize:h.Size]
	msg, err := decodeBody(h.Type, body)
	return msg, int(h.Size), err
}

func decodeBody(msgType uint32, b []byte) (Message, error) {
	switch msgType {
	case Hello:
		return &HelloMsg{}, nil
	case Welcome:
		if len(b) < 8 {
			return nil, shortBody("Welcome")
		}
		return &WelcomeMsg{DisplayW: getI32(b, 0), DisplayH: getI32(b, 4)}, nil
	case WindowNew:
		if len(b) < 12 {
			return nil, shortBody("WindowNew")
		}
		return &WindowNewMsg{Width: getI32(b, 0), Height: getI32(b, 4), Flags: getU32(b, 8)}, nil
	case WindowInit:
		if len(b) < 16 {
			return nil, shortBody("WindowInit")
		}
		return &WindowInitMsg{Wid: getU32(b, 0), Width: getU32(b, 4), Height: getU32(b, 8), Bufid: getU32(b, 12)}, nil
	case Flip:
		if len(b) < 4 {
			return nil, shortBody("Flip")
		}
		return &FlipMsg{Wid: getU32(b, 0)}, nil
	case FlipRegion:
		if len(b) < 20 {
			return nil, shortBody("FlipRegion")
		}
		return &FlipRegionMsg{Wid: getU32(b, 0), X: getI32(b, 4), Y: getI32(b, 8), Width: getI32(b, 12), Height: getI32(b, 16)}, nil
	case WindowMove:
		if len(b) < 12 {
			return nil, shortBody("WindowMove")
		}
		return &WindowMoveMsg{Wid: getU32(b, 0), X: getI32(b, 4), Y: getI32(b, 8)}, nil
	case WindowMoveRelative:
		if len(b) < 16 {
			return nil, shortBody("WindowMoveRelative")
		}
		return &WindowMoveRelativeMsg{WidToMove: getU32(b, 0), WidBase: getU32(b, 4), X: getI32(b, 8), Y: getI32(b, 12)}, nil
	case WindowStack:
		if len(b) < 8 {
			return nil, shortBody("WindowStack")
		}
		return &WindowStackMsg{Wid: getU32(b, 0), Z: getU32(b, 4)}, nil
	case WindowClose:
		if len(b) < 4 {
			return nil, shortBody("WindowClose")
		}
		return &WindowCloseMsg{Wid: getU32(b, 0)}, nil
	case ResizeRequest:
		if len(b) < 12 {
			return nil, shortBody("ResizeRequest")
		}
		return &ResizeRequestMsg{Wid: getU32(b, 0), Width: getI32(b, 4), Height: getI32(b, 8)}, nil
	case ResizeOffer:
		if len(b) < 16 {
			return nil, shortBody("ResizeOffer")
		}
		return &ResizeOfferMsg{Wid: getU32(b, 0), Width: getI32(b, 4), Height: getI32(b, 8), TileHint: getU32(b, 12)}, nil
	case ResizeAccept:
		if len(b) < 12 {
			return nil, shortBody("ResizeAccept")
		}
		return &ResizeAcceptMsg{Wid: getU32(b, 0), Width: getI32(b, 4), Height: getI32(b, 8)}, nil
	case ResizeBufid:
		if len(b) < 16 {
			return nil, shortBody("ResizeBufid")
		}
		return &ResizeBufidMsg{Wid: getU32(b, 0), Width: getI32(b, 4), Height: getI32(b, 8), Bufid: getU32(b, 12)}, nil
	case ResizeDone:
		if len(b) < 12 {
			return nil, shortBody("ResizeDone")
		}
		return &ResizeDoneMsg{Wid: getU32(b, 0), Width: getI32(b, 4), Height: getI32(b, 8)}, nil
	case KeyEvent:
		if len(b) < 16 {
			return nil, shortBody("KeyEvent")
		}
		return &KeyEventMsg{Wid: getU32(b, 0), Keycode: getU32(b, 4), State: getU32(b, 8), Mods: getU32(b, 12)}, nil
	case MouseEvent:
		if len(b) < 16 {
			return nil, shortBody("MouseEvent")
		}
		raw := uint64(getU32(b, 4)) | uint64(getU32(b, 8))<<32
		return &MouseEventMsg{Wid: getU32(b, 0), RawPacket: raw, EventType: getU32(b, 12)}, nil
	case WindowMouseEvent:
		if len(b) < 32 {
			return nil, shortBody("WindowMouseEvent")
		}
		return &WindowMouseEventMsg{
			Wid: getU32(b, 0), LocalX: getI32(b, 4), LocalY: getI32(b, 8),
			OldX: getI32(b, 12), OldY: getI32(b, 16), Buttons: getU32(b, 20),
			Command: getU32(b, 24), Modifiers: getU32(b, 28),
		}, nil
	case WindowFocusChange:
		if len(b) < 8 {
			return nil, shortBody("WindowFocusChange")
		}
		return &WindowFocusChangeMsg{Wid: getU32(b, 0), Focused: getU32(b, 4) != 0}, nil
	case Subscribe:
		return &SubscribeMsg{}, nil
	case Unsubscribe:
		return &UnsubscribeMsg{}, nil
	case Notify:
		return &NotifyMsg{}, nil
	case QueryWindows:
		return &QueryWindowsMsg{}, nil
	case WindowAdvertise:
		if len(b) < 24 {
			return nil, shortBody("WindowAdvertise")
		}
		s, _, err := getString(b[24:])
		if err != nil {
			return nil, err
		}
		return &WindowAdvertiseMsg{
			Wid: getU32(b, 0), Flags: getU32(b, 4), Icon: getU32(b, 8), Bufid: getU32(b, 12),
			Width: getI32(b, 16), Height: getI32(b, 20), Strings: s,
		}, nil
	case WindowUpdateShape:
		if len(b) < 8 {
			return nil, shortBody("WindowUpdateShape")
		}
		return &WindowUpdateShapeMsg{Wid: getU32(b, 0), Threshold: getU32(b, 4)}, nil
	case WindowShowMouse:
		if len(b) < 8 {
			return nil, shortBody("WindowShowMouse")
		}
		return &WindowShowMouseMsg{Wid: getU32(b, 0), Mode: getU32(b, 4)}, nil
	case WindowWarpMouse:
		if len(b) < 12 {
			return nil, shortBody("WindowWarpMouse")
		}
		return &WindowWarpMouseMsg{Wid: getU32(b, 0), X: getI32(b, 4), Y: getI32(b, 8)}, nil
	case WindowDragStart:
		if len(b) < 4 {
			return nil, shortBody("WindowDragStart")
		}
		return &WindowDragStartMsg{Wid: getU32(b, 0)}, nil
	case WindowResizeStart:
		if len(b) < 8 {
			return nil, shortBody("WindowResizeStart")
		}
		return &WindowResizeStartMsg{Wid: getU32(b, 0), Direction: getU32(b, 4)}, nil
	case KeyBind:
		if len(b) < 12 {
			return nil, shortBody("KeyBind")
		}
		return &KeyBindMsg{Key: getU32(b, 0), Modifiers: getU32(b, 4), Response: getU32(b, 8)}, nil
	case SpecialRequest:
		if len(b) < 8 {
			return nil, shortBody("SpecialRequest")
		}
		return &SpecialRequestMsg{Wid: getU32(b, 0), Request: getU32(b, 4)}, nil
	case Clipboard:
		if len(b) < 4 {
			return nil, shortBody("Clipboard")
		}
		n := getU32(b, 0)
		if uint32(len(b)-4) < n {
			return nil, shortBody("Clipboard content")
		}
		content := make([]byte, n)
		copy(content, b[4:4+n])
		return &ClipboardMsg{Size: n, Content: content}, nil
	case SessionEnd:
		return &SessionEndMsg{}, nil
	default:
		return nil, &ProtocolError{Reason: fmt.Sprintf("unknown message type %d", msgType)}
	}
}

func shortBody(what string) error {
	return &ProtocolError{Reason: fmt.Sprintf("truncated %s body", what)}
}
