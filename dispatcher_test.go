// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import (
	"testing"

	"github.com/nexuswm/compositor/protocol"
	"github.com/nexuswm/compositor/shm"
)

func newTestDispatcher(displayW, displayH int) (*Dispatcher, *Registry) {
	reg := NewRegistry(displayW, displayH)
	binds := NewKeyBindTable()
	resizer := NewResizeNegotiator(DefaultIdentity, shm.NewMemAllocator(), 0)
	return NewDispatcher(reg, binds, resizer), reg
}

// opaqueWindowSampler treats every point inside a window's rect as fully
// opaque, matching sampleAlpha's contract without needing a real buffer.
func opaqueWindowSampler(w *Window, x, y int) (byte, bool) {
	if x < w.X || y < w.Y || x >= w.X+w.Width || y >= w.Y+w.Height {
		return 0, false
	}
	return 255, true
}

func TestDispatcherButtonDownDragStartsDragging(t *testing.T) {
	d, reg := newTestDispatcher(800, 600)
	w, _ := reg.Create("clientA", 100, 100, 0)
	w.X, w.Y = 0, 0
	w.flipped = true

	d.ButtonDown(ButtonLeft, 0, 1000, opaqueWindowSampler)
	if d.State() != PointerDragging {
		t.Fatalf("expected PointerDragging after a plain left click on a window, got %v", d.State())
	}
	if reg.Focused() != w {
		t.Fatal("a left click should focus the clicked window")
	}
}

func TestDispatcherAltDragStartsMoving(t *testing.T) {
	d, reg := newTestDispatcher(800, 600)
	w, _ := reg.Create("clientA", 100, 100, 0)
	w.X, w.Y = 10, 10
	w.flipped = true

	d.pointerX, d.pointerY = 50*pointerScale, 50*pointerScale
	out := d.ButtonDown(ButtonLeft, ModAlt, 1000, opaqueWindowSampler)
	if d.State() != PointerMoving {
		t.Fatalf("expected PointerMoving after alt-left-drag, got %v", d.State())
	}
	if out != nil {
		t.Fatalf("MOVING transition should not emit an outbound message, got %v", out)
	}
}

func TestDispatcherMovingFollowsPointerThenButtonUpSettles(t *testing.T) {
	d, reg := newTestDispatcher(800, 600)
	w, _ := reg.Create("clientA", 100, 100, 0)
	w.X, w.Y = 10, 10
	w.flipped = true

	d.pointerX, d.pointerY = 50*pointerScale, 50*pointerScale
	d.ButtonDown(ButtonLeft, ModAlt, 1000, opaqueWindowSampler)
	d.Move(20*pointerScale, 0, opaqueWindowSampler)
	if w.X != 30 {
		t.Fatalf("expected window to follow a 20px rightward drag, got X=%d", w.X)
	}
	d.ButtonUp(ButtonLeft)
	if d.State() != PointerNormal {
		t.Fatalf("expected PointerNormal after button release, got %v", d.State())
	}
}

func TestDispatcherDisallowDragFlagBlocksMoving(t *testing.T) {
	d, reg := newTestDispatcher(800, 600)
	w, _ := reg.Create("clientA", 100, 100, FlagDisallowDrag)
	w.X, w.Y = 10, 10
	w.flipped = true

	d.pointerX, d.pointerY = 50*pointerScale, 50*pointerScale
	d.ButtonDown(ButtonLeft, ModAlt, 1000, opaqueWindowSampler)
	if d.State() == PointerMoving {
		t.Fatal("FlagDisallowDrag should prevent entering PointerMoving")
	}
}

func TestDispatcherMiddleAltStartsResizing(t *testing.T) {
	d, reg := newTestDispatcher(800, 600)
	w, _ := reg.Create("clientA", 200, 200, 0)
	w.X, w.Y = 0, 0
	w.flipped = true

	d.pointerX, d.pointerY = 195*pointerScale, 195*pointerScale
	d.ButtonDown(ButtonMiddle, ModAlt, 1000, opaqueWindowSampler)
	if d.State() != PointerResizing {
		t.Fatalf("expected PointerResizing, got %v", d.State())
	}
}

func TestDispatcherRightAltStartsRotating(t *testing.T) {
	d, reg := newTestDispatcher(800, 600)
	w, _ := reg.Create("clientA", 100, 100, 0)
	w.X, w.Y = 0, 0
	w.flipped = true

	d.pointerX, d.pointerY = 50*pointerScale, 50*pointerScale
	d.ButtonDown(ButtonRight, ModAlt, 1000, opaqueWindowSampler)
	if d.State() != PointerRotating {
		t.Fatalf("expected PointerRotating, got %v", d.State())
	}
}

func TestDispatcherWheelAdjustsOpacityOnlyWithAlt(t *testing.T) {
	d, reg := newTestDispatcher(800, 600)
	w, _ := reg.Create("clientA", 100, 100, 0)
	w.Opacity = 100

	d.Wheel(1, 0)
	if w.Opacity != 100 {
		t.Fatal("wheel without ALT should not change opacity")
	}
	d.Wheel(1, ModAlt)
	if w.Opacity != 108 {
		t.Fatalf("expected opacity incremented by 8, got %d", w.Opacity)
	}
	d.Wheel(-1, ModAlt)
	if w.Opacity != 100 {
		t.Fatalf("expected opacity decremented back to 100, got %d", w.Opacity)
	}
}

func TestDispatcherWheelClampsOpacity(t *testing.T) {
	d, reg := newTestDispatcher(800, 600)
	w, _ := reg.Create("clientA", 100, 100, 0)
	w.Opacity = 2
	d.Wheel(-1, ModAlt)
	if w.Opacity != 0 {
		t.Fatalf("expected opacity clamped at 0, got %d", w.Opacity)
	}
}

func TestDispatcherCancelMovingRestoresOrigin(t *testing.T) {
	d, reg := newTestDispatcher(800, 600)
	w, _ := reg.Create("clientA", 100, 100, 0)
	w.X, w.Y = 10, 10
	w.flipped = true

	d.pointerX, d.pointerY = 50*pointerScale, 50*pointerScale
	d.ButtonDown(ButtonLeft, ModAlt, 1000, opaqueWindowSampler)
	d.Move(100*pointerScale, 0, opaqueWindowSampler)
	d.CancelMoving()
	if w.X != 10 || w.Y != 10 {
		t.Fatalf("expected window restored to its origin (10,10), got (%d,%d)", w.X, w.Y)
	}
	if d.State() != PointerNormal {
		t.Fatal("expected PointerNormal after cancel")
	}
}

func TestDispatcherEnterLeaveEvents(t *testing.T) {
	d, reg := newTestDispatcher(800, 600)
	w, _ := reg.Create("clientA", 100, 100, 0)
	w.X, w.Y = 0, 0
	w.flipped = true

	out := d.Move(50*pointerScale, 50*pointerScale, opaqueWindowSampler)
	if len(out) != 1 {
		t.Fatalf("expected one ENTER event, got %d", len(out))
	}
	if ev, ok := out[0].Message.(*protocol.WindowMouseEventMsg); !ok || ev.Wid != uint32(w.ID) {
		t.Fatalf("expected an ENTER for window %d, got %+v", w.ID, out[0].Message)
	}

	out = d.Move(1000*pointerScale, 0, opaqueWindowSampler) // moves off the window entirely.
	if len(out) != 1 {
		t.Fatalf("expected one LEAVE event, got %d", len(out))
	}
}

func TestDispatcherClampPointerToDisplay(t *testing.T) {
	d, _ := newTestDispatcher(100, 100)
	d.Move(-1000*pointerScale, -1000*pointerScale, opaqueWindowSampler)
	sx, sy := d.screenXY()
	if sx != 0 || sy != 0 {
		t.Fatalf("expected pointer clamped to (0,0), got (%d,%d)", sx, sy)
	}
	d.Move(10000*pointerScale, 10000*pointerScale, opaqueWindowSampler)
	sx, sy = d.screenXY()
	if sx != 100 || sy != 100 {
		t.Fatalf("expected pointer clamped to display bounds (100,100), got (%d,%d)", sx, sy)
	}
}

func TestDispatcherCurrentCursorPriority(t *testing.T) {
	d, reg := newTestDispatcher(800, 600)
	w, _ := reg.Create("clientA", 200, 200, 0)
	w.X, w.Y = 0, 0
	w.flipped = true
	w.Cursor = CursorIBeam

	d.Move(50*pointerScale, 50*pointerScale, opaqueWindowSampler)
	if got := d.CurrentCursor(); got != CursorIBeam {
		t.Fatalf("expected hovered window's cursor hint, got %v", got)
	}

	d.pointerX, d.pointerY = 195*pointerScale, 195*pointerScale
	d.ButtonDown(ButtonMiddle, ModAlt, 1000, opaqueWindowSampler)
	if got := d.CurrentCursor(); got == CursorIBeam {
		t.Fatal("an active resize should override the hover cursor hint")
	}
}
