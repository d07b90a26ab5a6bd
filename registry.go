// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import (
	"github.com/nexuswm/compositor/pixel"
)

// defaultCloseDurationMs is the closing-animation duration StartClose
// uses unless the window declares NoAnimation. defaultOpenDurationMs is
// not referenced: windows are created without an opening animation. The
// teacher has no analogue; these are a concrete implementation decision
// for the "fixed known durations" §3 requires.
const (
	defaultOpenDurationMs  = 120
	defaultCloseDurationMs = 160
)

// Registry owns every live window by id, the five z-bands, and the
// focused window. It is the "hashmap<wid, window>" the teacher's design
// note recommends re-modeling raw pointers around: callers hold wids, not
// *Window pointers, across calls that might mutate the registry.
type Registry struct {
	windows map[Wid]*Window
	nextWid Wid

	bottom Wid // 0 if none.
	top    Wid // 0 if none.
	mid    []Wid
	overlay []Wid
	menu    []Wid

	focused Wid // 0 if none (falls back to bottom per §4.2).

	DisplayWidth, DisplayHeight int
}

// NewRegistry creates an empty registry sized to the given display.
func NewRegistry(displayW, displayH int) *Registry {
	return &Registry{
		windows:      make(map[Wid]*Window),
		DisplayWidth: displayW,
		DisplayHeight: displayH,
	}
}

// Window looks up a window by id.
func (r *Registry) Window(id Wid) (*Window, bool) {
	w, ok := r.windows[id]
	return w, ok
}

// Windows returns every live window, in no particular order. Callers
// needing paint order should use WindowsInPaintOrder instead.
func (r *Registry) Windows() []*Window {
	out := make([]*Window, 0, len(r.windows))
	for _, w := range r.windows {
		out = append(out, w)
	}
	return out
}

// Create registers a new window owned by owner, with the given geometry
// and client-declared flags, and places it into MID with top-of-band
// placement as the default band per §4.2 (a newly advertised window; the
// client may re-stack with WINDOW_STACK afterward). It also returns the
// FocusChange the creation's implicit focus steal produced (nil if the
// window declared FlagNoStealFocus or the steal was a no-op), so the
// caller can turn it into the WINDOW_FOCUS_CHANGE messages §4.2 requires.
func (r *Registry) Create(owner string, width, height int, flags Flags) (*Window, *FocusChange) {
	r.nextWid++
	w := &Window{
		ID:      r.nextWid,
		Owner:   owner,
		Width:   width,
		Height:  height,
		Opacity: 255,
		flags:   flags,
	}
	r.windows[w.ID] = w
	r.SetZ(w, BandMid)
	var fc *FocusChange
	if !w.HasFlag(FlagNoStealFocus) {
		fc = r.Focus(w.ID, 0)
	}
	return w, fc
}

// bandList returns a pointer to the ordered slice backing a mid-band
// (BandMid/BandOverlay/BandMenu); BandBottom/BandTop/BandUnbanded have no
// slice and return nil.
func (r *Registry) bandList(b Band) *[]Wid {
	switch b {
	case BandMid:
		return &r.mid
	case BandOverlay:
		return &r.overlay
	case BandMenu:
		return &r.menu
	}
	return nil
}

// removeFromBand removes id from whichever band structure currently
// holds it, leaving it BandUnbanded until the caller re-places it.
func (r *Registry) removeFromBand(w *Window) {
	switch w.band {
	case BandBottom:
		if r.bottom == w.ID {
			r.bottom = 0
		}
	case BandTop:
		if r.top == w.ID {
			r.top = 0
		}
	case BandMid, BandOverlay, BandMenu:
		list := r.bandList(w.band)
		for i, id := range *list {
			if id == w.ID {
				*list = append((*list)[:i], (*list)[i+1:]...)
				break
			}
		}
	}
	w.band = BandUnbanded
}

// SetZ moves w into band b. BandBottom and BandTop are singletons: any
// previous occupant is evicted to BandUnbanded (§4.2).
func (r *Registry) SetZ(w *Window, b Band) {
	r.removeFromBand(w)
	switch b {
	case BandBottom:
		if r.bottom != 0 && r.bottom != w.ID {
			if prev, ok := r.windows[r.bottom]; ok {
				prev.band = BandUnbanded
			}
		}
		r.bottom = w.ID
	case BandTop:
		if r.top != 0 && r.top != w.ID {
			if prev, ok := r.windows[r.top]; ok {
				prev.band = BandUnbanded
			}
		}
		r.top = w.ID
	case BandMid, BandOverlay, BandMenu:
		list := r.bandList(b)
		*list = append(*list, w.ID)
	}
	w.band = b
}

// RaiseWithinBand moves w to the topmost position of its current band's
// ordered list (a no-op for BandBottom/BandTop/BandUnbanded, which have no
// internal order).
func (r *Registry) RaiseWithinBand(w *Window) {
	if w.band != BandMid && w.band != BandOverlay && w.band != BandMenu {
		return
	}
	list := r.bandList(w.band)
	for i, id := range *list {
		if id == w.ID {
			*list = append((*list)[:i], (*list)[i+1:]...)
			break
		}
	}
	*list = append(*list, w.ID)
}

// WindowsInPaintOrder returns every live, non-hidden window in strict
// back-to-front paint order: BOTTOM, MID, OVERLAY, MENU, TOP, each mid
// band oldest-to-newest (§4.1 step 4).
func (r *Registry) WindowsInPaintOrder() []*Window {
	out := make([]*Window, 0, len(r.windows))
	appendID := func(id Wid) {
		if id == 0 {
			return
		}
		if w, ok := r.windows[id]; ok && !w.Hidden() {
			out = append(out, w)
		}
	}
	appendID(r.bottom)
	for _, id := range r.mid {
		appendID(id)
	}
	for _, id := range r.overlay {
		appendID(id)
	}
	for _, id := range r.menu {
		appendID(id)
	}
	appendID(r.top)
	return out
}

// hitTestOrder returns band traversal order for HitTest: top-to-bottom,
// i.e. the reverse of paint order, with each mid-band's internal list
// also reversed (§4.2: "Walk bands top->bottom ... reverse").
func (r *Registry) hitTestOrder() []Wid {
	var out []Wid
	if r.top != 0 {
		out = append(out, r.top)
	}
	for i := len(r.menu) - 1; i >= 0; i-- {
		out = append(out, r.menu[i])
	}
	for i := len(r.overlay) - 1; i >= 0; i-- {
		out = append(out, r.overlay[i])
	}
	for i := len(r.mid) - 1; i >= 0; i-- {
		out = append(out, r.mid[i])
	}
	if r.bottom != 0 {
		out = append(out, r.bottom)
	}
	return out
}

// HitTest walks windows top to bottom and returns the first whose pixel
// at (screenX, screenY) has alpha >= its hit-test threshold (§4.2).
// sampleAlpha is provided by the caller (the compositor, which owns
// pixel.Mat3 inversion for rotated windows) because Registry has no
// dependency on rotation math itself.
func (r *Registry) HitTest(screenX, screenY int, sampleAlpha func(w *Window, screenX, screenY int) (alpha byte, inBounds bool)) *Window {
	for _, id := range r.hitTestOrder() {
		w := r.windows[id]
		if w == nil || w.Hidden() || !w.flipped {
			continue
		}
		alpha, inBounds := sampleAlpha(w, screenX, screenY)
		if !inBounds {
			continue
		}
		if w.ClickThrough() {
			continue
		}
		if int(alpha) >= w.HitThreshold {
			return w
		}
	}
	return nil
}

// Focused returns the currently focused window, falling back to the
// BOTTOM window if none is explicitly focused (§4.2's "never leaves
// nothing focused"), or nil if there is no BOTTOM window either.
func (r *Registry) Focused() *Window {
	id := r.focused
	if id == 0 {
		id = r.bottom
	}
	if id == 0 {
		return nil
	}
	return r.windows[id]
}

// FocusChange describes the side effects Focus produced, so the caller
// (the compositor event loop) can send the right protocol messages and
// damage in the right order (§5: old-focus-loses strictly before
// new-focus-gains, both before the subscriber NOTIFY).
type FocusChange struct {
	Lost, Gained *Window
}

// Focus sets the focused window (§4.2). Focusing the already-focused
// window is a no-op. Focusing null (id == 0) falls back to BOTTOM.
func (r *Registry) Focus(id Wid, nowMs int64) *FocusChange {
	effectiveCurrent := r.focused
	if effectiveCurrent == 0 {
		effectiveCurrent = r.bottom
	}
	target := id
	if target == 0 {
		target = r.bottom
	}
	if target == effectiveCurrent {
		return nil
	}

	var lost, gained *Window
	if effectiveCurrent != 0 {
		lost = r.windows[effectiveCurrent]
	}
	if target != 0 {
		gained = r.windows[target]
	}
	r.focused = id
	if gained != nil {
		r.RaiseWithinBand(gained)
	}
	return &FocusChange{Lost: lost, Gained: gained}
}

// StartClose begins the closing path for a window: it is marked closing
// and given a closing animation (respecting NoAnimation/DialogAnimation)
// rather than removed immediately (§4.2 Close path, §3 invariant "a
// window marked closing is still rendered until the animation expires").
// It does not remove the window from the registry or release its buffer
// -- call ReapClosed once its animation has finished.
func (r *Registry) StartClose(w *Window, nowMs int64) {
	if w.closing {
		return
	}
	w.closing = true
	kind := AnimFade
	dur := int64(defaultCloseDurationMs)
	switch {
	case w.HasFlag(FlagNoAnimation):
		kind = AnimNone
		dur = 0
	case w.HasFlag(FlagDialogAnimation):
		kind = AnimSqueeze
	}
	w.anim = animState{kind: kind, dir: animClosing, startMs: nowMs, durationMs: dur}
}

// ReapClosed removes every window whose closing animation has finished
// and returns them, so the caller can release their buffers and fire one
// subscriber NOTIFY. If the reaped set contained the focused window,
// focus is reassigned per §4.2: topmost MENU, else topmost MID, else
// null (which itself falls back to BOTTOM via Focused()).
func (r *Registry) ReapClosed(nowMs int64) []*Window {
	var reaped []*Window
	for id, w := range r.windows {
		if w.closing && w.anim.done(nowMs) {
			reaped = append(reaped, w)
			delete(r.windows, id)
			r.removeFromBandRaw(w)
		}
	}
	if len(reaped) == 0 {
		return nil
	}
	if containsWid(reaped, r.focused) {
		r.focused = r.nextFocusAfterClose()
	}
	return reaped
}

// removeFromBandRaw is like removeFromBand but tolerates a window already
// absent from the registry map (used during Reap, after delete).
func (r *Registry) removeFromBandRaw(w *Window) {
	switch w.band {
	case BandBottom:
		if r.bottom == w.ID {
			r.bottom = 0
		}
	case BandTop:
		if r.top == w.ID {
			r.top = 0
		}
	case BandMid, BandOverlay, BandMenu:
		list := r.bandList(w.band)
		for i, id := range *list {
			if id == w.ID {
				*list = append((*list)[:i], (*list)[i+1:]...)
				break
			}
		}
	}
}

func containsWid(ws []*Window, id Wid) bool {
	for _, w := range ws {
		if w.ID == id {
			return true
		}
	}
	return false
}

// nextFocusAfterClose implements §4.2's close-path reassignment: topmost
// MENU, else topmost MID, else null.
func (r *Registry) nextFocusAfterClose() Wid {
	if n := len(r.menu); n > 0 {
		return r.menu[n-1]
	}
	if n := len(r.mid); n > 0 {
		return r.mid[n-1]
	}
	return 0
}

// Move repositions w in screen space. An out-of-range move (more than one
// display away, per §7's error table) is refused.
func (r *Registry) Move(w *Window, x, y int) bool {
	if x < -r.DisplayWidth || x > 2*r.DisplayWidth || y < -r.DisplayHeight || y > 2*r.DisplayHeight {
		return false
	}
	w.X, w.Y = x, y
	return true
}

// damageRectFor returns the full footprint a window needs re-rendered
// for, expanding for rotation per §4.7.
func damageRectFor(w *Window) pixel.Rect {
	if w.RotationDeg == 0 {
		return w.Rect()
	}
	m := pixel.AboutCenter(pixel.RotateDegrees(w.RotationDeg), float64(w.Width)/2, float64(w.Height)/2)
	bb := m.BoundingBox(float64(w.Width), float64(w.Height))
	return pixel.Rect{X: bb.X + w.X, Y: bb.Y + w.Y, W: bb.W, H: bb.H}
}
