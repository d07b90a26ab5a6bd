// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import "github.com/nexuswm/compositor/protocol"

// globalWid is the Wid value used to tag a KEY_EVENT delivered to a
// key-binding owner rather than to a specific window (§8 scenario 5:
// "server sends KEY_EVENT(wid=UINT32_MAX, ...)").
const globalWid = 0xFFFFFFFF

// Chord identifies a handful of keycodes the compositor itself consumes
// without client delivery (§4.4). Keycodes are treated as opaque
// implementation-defined values the same way the wire protocol does;
// these constants are this implementation's concrete numbering.
const (
	KeycodeF4          = 0x3E
	KeycodeF10         = 0x44
	KeycodeEscape      = 0x1B
	KeycodePrintScreen = 0x9F
	KeycodeZ           = 'z'
	KeycodeX           = 'x'
	KeycodeC           = 'c'
	KeycodeV           = 'v'
	KeycodeArrowUp     = 0x80
	KeycodeArrowDown   = 0x81
	KeycodeArrowLeft   = 0x82
	KeycodeArrowRight  = 0x83
)

// ScreenshotRequest describes a pending screenshot, returned from
// HandleKey so the render loop can service it at the right point in the
// frame (§4.1 step 8).
type ScreenshotRequest struct {
	FullScreen bool
	Wid        Wid // only meaningful when FullScreen is false.
}

// KeyResult bundles everything HandleKey produced: outbound KEY_EVENT
// messages, and any compositor-consumed side effects the caller (the
// event loop) needs to act on directly.
type KeyResult struct {
	Outbound   []Outbound
	Screenshot *ScreenshotRequest
	Close      Wid // non-zero if Alt-F4 should close the focused window.
}

// HandleKey implements §4.4's keyboard routing: key-binding table first
// (steal suppresses further routing; notify continues to focused), then
// the focused client. A key-down matching one of the compositor's own
// chords is consumed: its action runs and the focused client does not
// receive it.
func (d *Dispatcher) HandleKey(keycode, state, modifiers uint32, nowMs int64) KeyResult {
	var res KeyResult

	if owner, response, ok := d.binds.Lookup(modifiers, keycode); ok {
		res.Outbound = append(res.Outbound, Outbound{owner, &protocol.KeyEventMsg{
			Wid: globalWid, Keycode: keycode, State: state, Mods: modifiers,
		}})
		if response == ResponseSteal {
			return res
		}
	}

	delivered := false
	if focused := d.reg.Focused(); focused != nil {
		res.Outbound = append(res.Outbound, Outbound{focused.Owner, &protocol.KeyEventMsg{
			Wid: uint32(focused.ID), Keycode: keycode, State: state, Mods: modifiers,
		}})
		delivered = true
	}

	if state != 1 { // compositor-consumed chords trigger on key-down only.
		return res
	}

	consumed := true
	switch {
	case keycode == KeycodeEscape && d.state == PointerMoving:
		d.CancelMoving()
	case keycode == KeycodeF4 && modifiers&ModAlt != 0:
		if focused := d.reg.Focused(); focused != nil {
			res.Close = focused.ID
		}
	case keycode == KeycodeF10 && modifiers&ModAlt != 0:
		if focused := d.reg.Focused(); focused != nil {
			if focused.Tiled() {
				d.reg.Untile(focused)
			} else {
				d.reg.Tile(focused, 1, 1, 0, 0)
			}
		}
	case keycode == KeycodePrintScreen && modifiers&ModShift != 0:
		if focused := d.reg.Focused(); focused != nil {
			res.Screenshot = &ScreenshotRequest{FullScreen: false, Wid: focused.ID}
		}
	case keycode == KeycodePrintScreen:
		res.Screenshot = &ScreenshotRequest{FullScreen: true}
	case modifiers&ModSuper != 0 && isArrowKeycode(keycode):
		if focused := d.reg.Focused(); focused != nil {
			tileSuperArrow(d.reg, focused, keycode)
		}
	case modifiers&ModSuper != 0 && modifiers&ModShift != 0 && isDebugKeycode(keycode):
		if focused := d.reg.Focused(); focused != nil {
			debugChord(focused, keycode)
		}
	default:
		consumed = false
	}
	if consumed && delivered {
		// Withdraw the focused client's copy of a consumed chord.
		res.Outbound = res.Outbound[:len(res.Outbound)-1]
	}
	return res
}

// isDebugKeycode reports whether keycode is one of the Super-Shift debug
// chord letters (z/x/c/v).
func isDebugKeycode(keycode uint32) bool {
	switch keycode {
	case KeycodeZ, KeycodeX, KeycodeC, KeycodeV:
		return true
	}
	return false
}

// debugChord implements the Super-Shift-{z,x,c,v} debug rotate/blur
// family on the focused window: z/x nudge rotation, c toggles
// blur-behind, v resets rotation to zero.
func debugChord(w *Window, keycode uint32) {
	const debugRotateStepDeg = 5
	switch keycode {
	case KeycodeZ:
		w.RotationDeg -= debugRotateStepDeg
	case KeycodeX:
		w.RotationDeg += debugRotateStepDeg
	case KeycodeC:
		w.flags ^= FlagBlurBehind
	case KeycodeV:
		w.RotationDeg = 0
	}
}

func isArrowKeycode(keycode uint32) bool {
	switch keycode {
	case KeycodeArrowUp, KeycodeArrowDown, KeycodeArrowLeft, KeycodeArrowRight:
		return true
	}
	return false
}

// tileSuperArrow implements the Super-Arrow family: left/right tile to a
// half, up maximizes (1x1), down restores/minimizes-to-restore (§4.4).
func tileSuperArrow(reg *Registry, w *Window, keycode uint32) {
	switch keycode {
	case KeycodeArrowLeft:
		reg.Tile(w, 2, 1, 0, 0)
	case KeycodeArrowRight:
		reg.Tile(w, 2, 1, 1, 0)
	case KeycodeArrowUp:
		reg.Tile(w, 1, 1, 0, 0)
	case KeycodeArrowDown:
		reg.Untile(w)
	}
}
