// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import (
	"math"

	"github.com/nexuswm/compositor/protocol"
)

// PointerState is the input dispatcher's drag state machine (§4.4).
type PointerState int

const (
	PointerNormal PointerState = iota
	PointerMoving
	PointerDragging
	PointerResizing
	PointerRotating
)

// Mouse button bits, matching the Buttons field carried on
// WindowMouseEventMsg.
const (
	ButtonLeft uint32 = 1 << iota
	ButtonRight
	ButtonMiddle
)

// Modifier bits for keyboard and pointer chords.
const (
	ModAlt uint32 = 1 << iota
	ModCtrl
	ModShift
	ModSuper
)

// pointerScale is the sub-pixel coordinate scale factor relative mice
// write at (§4.4): positions are kept 10x scaled internally.
const pointerScale = 10

// Outbound is one message this dispatcher wants sent to a specific
// client session, keeping the dispatcher itself free of any transport
// dependency.
type Outbound struct {
	SessionKey string
	Message    protocol.Message
}

// focusChangeOutbound turns a Registry.Focus/Create result into the
// WINDOW_FOCUS_CHANGE messages it implies: the window that lost focus
// first, then the one that gained it, per §5's ordering (old-focus-lost
// strictly before new-focus-gained). A nil FocusChange (no-op focus)
// yields no messages.
func focusChangeOutbound(fc *FocusChange) []Outbound {
	if fc == nil {
		return nil
	}
	var out []Outbound
	if fc.Lost != nil {
		out = append(out, Outbound{fc.Lost.Owner, &protocol.WindowFocusChangeMsg{Wid: uint32(fc.Lost.ID), Focused: false}})
	}
	if fc.Gained != nil {
		out = append(out, Outbound{fc.Gained.Owner, &protocol.WindowFocusChangeMsg{Wid: uint32(fc.Gained.ID), Focused: true}})
	}
	return out
}

// Dispatcher holds the pointer state machine and routes pointer/keyboard
// events against a Registry. It has no transport or rendering
// dependency: every side effect is either a Registry mutation or an
// Outbound message the caller sends.
type Dispatcher struct {
	reg   *Registry
	binds *KeyBindTable

	state PointerState

	// pointerX/Y are kept at pointerScale (10x) resolution throughout,
	// per §4.4; callers translating an absolute device's 1x coordinates
	// must pre-multiply by pointerScale.
	pointerX, pointerY int

	lastPointerX, lastPointerY int

	resizer *ResizeNegotiator

	moveOrigin struct{ clickX, clickY, winX, winY int }
	dragWid    Wid
	dragOrigin struct{ x, y int }
	dragMoved  bool

	resizeWid Wid

	rotateWid  Wid
	rotateInit float64 // initial_offset = atan2(dx,-dy) - current rotation, at gesture start.

	hoverWid Wid

	buttons uint32
}

// NewDispatcher builds a dispatcher over reg, using binds for the
// key-binding table and resizer to drive interactive resize previews.
func NewDispatcher(reg *Registry, binds *KeyBindTable, resizer *ResizeNegotiator) *Dispatcher {
	return &Dispatcher{reg: reg, binds: binds, resizer: resizer}
}

// State returns the current pointer state machine state.
func (d *Dispatcher) State() PointerState { return d.state }

// screenXY converts the dispatcher's 10x-scaled pointer position to
// unscaled screen coordinates.
func (d *Dispatcher) screenXY() (int, int) { return d.pointerX / pointerScale, d.pointerY / pointerScale }

// clampPointer bounds pointer coordinates to [0, display*10] (§8
// Boundaries).
func (d *Dispatcher) clampPointer() {
	maxX := d.reg.DisplayWidth * pointerScale
	maxY := d.reg.DisplayHeight * pointerScale
	if d.pointerX < 0 {
		d.pointerX = 0
	}
	if d.pointerX > maxX {
		d.pointerX = maxX
	}
	if d.pointerY < 0 {
		d.pointerY = 0
	}
	if d.pointerY > maxY {
		d.pointerY = maxY
	}
}

// topAtCursor returns the window under the current pointer position
// (ignoring click-through/alpha threshold details delegated to the
// caller-supplied sampler), or nil.
func (d *Dispatcher) topAtCursor(sampleAlpha func(w *Window, x, y int) (byte, bool)) *Window {
	sx, sy := d.screenXY()
	return d.reg.HitTest(sx, sy, sampleAlpha)
}

// Move handles relative pointer motion (dx, dy already at pointerScale
// resolution) or, for absolute devices, an absolute position pre-scaled
// by the caller. It returns any outbound messages the motion produces
// (ENTER/LEAVE, DRAG relays, edge-tile RESIZE_OFFERs); resize and rotate
// updates change window state and send nothing.
func (d *Dispatcher) Move(dx, dy int, sampleAlpha func(w *Window, x, y int) (byte, bool)) []Outbound {
	d.lastPointerX, d.lastPointerY = d.pointerX, d.pointerY
	d.pointerX += dx
	d.pointerY += dy
	d.clampPointer()
	sx, sy := d.screenXY()

	var out []Outbound

	switch d.state {
	case PointerMoving:
		if w, ok := d.reg.Window(d.dragWid); ok {
			nx := d.moveOrigin.winX + (sx - d.moveOrigin.clickX)
			ny := d.moveOrigin.winY + (sy - d.moveOrigin.clickY)
			d.reg.Move(w, nx, ny)
			if col, cols, tile := edgeTileDirection(sx, d.reg.DisplayWidth); tile {
				if !w.pendingTileOffer.pending || w.pendingTileOffer.col != col || w.pendingTileOffer.cols != cols {
					_, _, width, height := d.reg.tileGeometry(cols, 1, col, 0)
					w.pendingTileOffer = tileOffer{pending: true, cols: cols, rows: 1, col: col, row: 0}
					out = append(out, Outbound{w.Owner, &protocol.ResizeOfferMsg{
						Wid: uint32(w.ID), Width: int32(width), Height: int32(height),
						TileHint: tileHintFor(col, cols),
					}})
				}
			} else {
				w.pendingTileOffer = tileOffer{}
			}
		}
	case PointerDragging:
		if w, ok := d.reg.Window(d.dragWid); ok {
			d.dragMoved = true
			oldLX, oldLY := d.dragOrigin.x, d.dragOrigin.y
			lx, ly := sx-w.X, sy-w.Y
			out = append(out, Outbound{w.Owner, &protocol.WindowMouseEventMsg{
				Wid: uint32(w.ID), LocalX: int32(lx), LocalY: int32(ly),
				OldX: int32(oldLX), OldY: int32(oldLY), Buttons: d.buttons, Command: mouseCmdDrag,
			}})
			d.dragOrigin.x, d.dragOrigin.y = lx, ly
		}
	case PointerResizing:
		if w, ok := d.reg.Window(d.resizeWid); ok {
			d.resizer.UpdateInteractive(w, dx/pointerScale, dy/pointerScale)
		}
	case PointerRotating:
		if w, ok := d.reg.Window(d.rotateWid); ok {
			angle := math.Atan2(float64(dx), -float64(dy))
			w.RotationDeg = (d.rotateInit+angle)*180/math.Pi
		}
	default:
		if w := d.topAtCursor(sampleAlpha); w != nil {
			if w.ID != d.hoverWid {
				if d.hoverWid != 0 {
					if prev, ok := d.reg.Window(d.hoverWid); ok {
						out = append(out, Outbound{prev.Owner, &protocol.WindowMouseEventMsg{
							Wid: uint32(prev.ID), Command: mouseCmdLeave,
						}})
					}
				}
				out = append(out, Outbound{w.Owner, &protocol.WindowMouseEventMsg{
					Wid: uint32(w.ID), LocalX: int32(sx - w.X), LocalY: int32(sy - w.Y), Command: mouseCmdEnter,
				}})
				d.hoverWid = w.ID
			}
		} else if d.hoverWid != 0 {
			if prev, ok := d.reg.Window(d.hoverWid); ok {
				out = append(out, Outbound{prev.Owner, &protocol.WindowMouseEventMsg{
					Wid: uint32(prev.ID), Command: mouseCmdLeave,
				}})
			}
			d.hoverWid = 0
		}
	}
	return out
}

// Mouse command codes carried in WindowMouseEventMsg.Command, local to
// this implementation (the spec treats these as opaque ints).
const (
	mouseCmdDown uint32 = iota
	mouseCmdDrag
	mouseCmdClick
	mouseCmdRaise
	mouseCmdEnter
	mouseCmdLeave
)

// ButtonDown handles a pointer button press, with modifiers indicating
// which of ALT/CTRL/SHIFT/SUPER were held, per the §4.4 transition table.
func (d *Dispatcher) ButtonDown(button, modifiers uint32, nowMs int64, sampleAlpha func(w *Window, x, y int) (byte, bool)) []Outbound {
	d.buttons |= button
	if d.state != PointerNormal {
		return nil
	}
	sx, sy := d.screenXY()
	w := d.topAtCursor(sampleAlpha)

	switch {
	case button == ButtonLeft && modifiers&ModAlt != 0 && w != nil && !w.HasFlag(FlagDisallowDrag) && w.band != BandBottom && w.band != BandTop:
		fc := d.reg.Focus(w.ID, nowMs)
		d.state = PointerMoving
		d.dragWid = w.ID
		d.moveOrigin.clickX, d.moveOrigin.clickY = sx, sy
		d.moveOrigin.winX, d.moveOrigin.winY = w.X, w.Y
		return focusChangeOutbound(fc)
	case button == ButtonMiddle && modifiers&ModAlt != 0 && w != nil && !w.HasFlag(FlagDisallowResize) && w.band != BandBottom && w.band != BandTop:
		d.state = PointerResizing
		d.resizeWid = w.ID
		dir := ResolveAutoDirection(sx-w.X, sy-w.Y, w.Width, w.Height)
		d.resizer.BeginInteractive(w, dir)
	case button == ButtonRight && modifiers&ModAlt != 0 && w != nil && w.band != BandBottom && w.band != BandTop:
		d.state = PointerRotating
		d.rotateWid = w.ID
		d.rotateInit = w.RotationDeg * math.Pi / 180
	case button == ButtonLeft && w != nil:
		fc := d.reg.Focus(w.ID, nowMs)
		d.state = PointerDragging
		d.dragWid = w.ID
		d.dragMoved = false
		d.dragOrigin.x, d.dragOrigin.y = sx-w.X, sy-w.Y
		out := focusChangeOutbound(fc)
		return append(out, Outbound{w.Owner, &protocol.WindowMouseEventMsg{
			Wid: uint32(w.ID), LocalX: int32(d.dragOrigin.x), LocalY: int32(d.dragOrigin.y),
			Buttons: d.buttons, Command: mouseCmdDown,
		}})
	}
	return nil
}

// ButtonUp handles a pointer button release, completing whichever drag
// state was in progress.
func (d *Dispatcher) ButtonUp(button uint32) []Outbound {
	d.buttons &^= button
	var out []Outbound
	switch d.state {
	case PointerMoving:
		if w, ok := d.reg.Window(d.dragWid); ok {
			if w.Tiled() {
				sx, _ := d.screenXY()
				threshold := w.Width / 4
				if abs(sx-w.X) > threshold {
					d.reg.Untile(w)
				}
			}
			w.pendingTileOffer = tileOffer{}
		}
		d.state = PointerNormal
	case PointerDragging:
		if w, ok := d.reg.Window(d.dragWid); ok {
			cmd := mouseCmdClick
			if d.dragMoved {
				cmd = mouseCmdRaise
			}
			out = append(out, Outbound{w.Owner, &protocol.WindowMouseEventMsg{
				Wid: uint32(w.ID), LocalX: int32(d.dragOrigin.x), LocalY: int32(d.dragOrigin.y),
				Buttons: d.buttons, Command: cmd,
			}})
		}
		d.state = PointerNormal
	case PointerResizing:
		d.state = PointerNormal
	case PointerRotating:
		d.state = PointerNormal
	}
	return out
}

// Wheel handles a wheel tick while ALT is held: adjusts the focused
// window's opacity by ±8, clamped to [0,255] (§4.4).
func (d *Dispatcher) Wheel(delta int, modifiers uint32) {
	if modifiers&ModAlt == 0 {
		return
	}
	w := d.reg.Focused()
	if w == nil {
		return
	}
	step := 8
	if delta < 0 {
		step = -8
	}
	v := int(w.Opacity) + step
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	w.Opacity = byte(v)
}

// CancelMoving handles Escape pressed during MOVING: cancels without
// committing, restoring the window to its origin (§4.4).
func (d *Dispatcher) CancelMoving() {
	if d.state != PointerMoving {
		return
	}
	if w, ok := d.reg.Window(d.dragWid); ok {
		d.reg.Move(w, d.moveOrigin.winX, d.moveOrigin.winY)
		w.pendingTileOffer = tileOffer{}
	}
	d.state = PointerNormal
}

// CurrentCursor resolves the cursor sprite per §4.4's priority: active
// resize direction > MOVING state > hovered window's cursor hint >
// default.
func (d *Dispatcher) CurrentCursor() CursorHint {
	switch d.state {
	case PointerResizing:
		if w, ok := d.reg.Window(d.resizeWid); ok {
			return resizeCursorFor(w.resize.direction)
		}
	case PointerMoving:
		return CursorDrag
	}
	if d.hoverWid != 0 {
		if w, ok := d.reg.Window(d.hoverWid); ok {
			return w.Cursor
		}
	}
	return CursorDefault
}

func resizeCursorFor(dir ResizeDirection) CursorHint {
	switch dir {
	case ResizeUp, ResizeDown:
		return CursorResizeV
	case ResizeLeft, ResizeRight:
		return CursorResizeH
	case ResizeUpLeft, ResizeDownRight:
		return CursorResizeULDR
	case ResizeUpRight, ResizeDownLeft:
		return CursorResizeDLUR
	default:
		return CursorDefault
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
