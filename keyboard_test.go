// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import (
	"testing"

	"github.com/nexuswm/compositor/protocol"
)

func TestHandleKeyRoutesToFocusedWindow(t *testing.T) {
	d, reg := newTestDispatcher(800, 600)
	w, _ := reg.Create("clientA", 100, 100, 0)

	res := d.HandleKey('q', 1, 0, 1000)
	if len(res.Outbound) != 1 {
		t.Fatalf("expected one routed KEY_EVENT, got %d", len(res.Outbound))
	}
	if res.Outbound[0].SessionKey != w.Owner {
		t.Fatalf("expected the event routed to the focused window's owner, got %q", res.Outbound[0].SessionKey)
	}
	ev := res.Outbound[0].Message.(*protocol.KeyEventMsg)
	if ev.Wid != uint32(w.ID) {
		t.Fatalf("expected wid=%d, got %d", w.ID, ev.Wid)
	}
}

func TestHandleKeyStealSuppressesFocusedRouting(t *testing.T) {
	d, reg := newTestDispatcher(800, 600)
	reg.Create("clientA", 100, 100, 0)
	d.binds.Bind(ModSuper, 'k', "clientB", ResponseSteal)

	res := d.HandleKey('k', 1, ModSuper, 1000)
	if len(res.Outbound) != 1 {
		t.Fatalf("expected only the bound client's event when stolen, got %d", len(res.Outbound))
	}
	if res.Outbound[0].SessionKey != "clientB" {
		t.Fatalf("expected the event delivered to the binding owner, got %q", res.Outbound[0].SessionKey)
	}
	ev := res.Outbound[0].Message.(*protocol.KeyEventMsg)
	if ev.Wid != globalWid {
		t.Fatalf("expected the steal delivery tagged wid=globalWid, got %d", ev.Wid)
	}
}

func TestHandleKeyNotifyStillRoutesToFocused(t *testing.T) {
	d, reg := newTestDispatcher(800, 600)
	w, _ := reg.Create("clientA", 100, 100, 0)
	d.binds.Bind(ModSuper, 'k', "clientB", ResponseNotify)

	res := d.HandleKey('k', 1, ModSuper, 1000)
	if len(res.Outbound) != 2 {
		t.Fatalf("expected both the bind notify and the focused routing, got %d", len(res.Outbound))
	}
	if res.Outbound[0].SessionKey != "clientB" {
		t.Fatal("expected the bind notification delivered first")
	}
	if res.Outbound[1].SessionKey != w.Owner {
		t.Fatal("expected the focused window to still receive the event")
	}
}

func TestHandleKeyAltF4ClosesFocused(t *testing.T) {
	d, reg := newTestDispatcher(800, 600)
	w, _ := reg.Create("clientA", 100, 100, 0)

	res := d.HandleKey(KeycodeF4, 1, ModAlt, 1000)
	if res.Close != w.ID {
		t.Fatalf("expected Alt-F4 to request closing window %d, got %d", w.ID, res.Close)
	}
}

func TestHandleKeyEscapeCancelsMoving(t *testing.T) {
	d, reg := newTestDispatcher(800, 600)
	w, _ := reg.Create("clientA", 100, 100, 0)
	w.X, w.Y = 10, 10
	w.flipped = true

	d.pointerX, d.pointerY = 50*pointerScale, 50*pointerScale
	d.ButtonDown(ButtonLeft, ModAlt, 1000, opaqueWindowSampler)
	d.Move(100*pointerScale, 0, opaqueWindowSampler)

	d.HandleKey(KeycodeEscape, 1, 0, 1000)
	if w.X != 10 {
		t.Fatalf("expected Escape to cancel the move back to X=10, got %d", w.X)
	}
	if d.State() != PointerNormal {
		t.Fatal("expected PointerNormal after Escape cancels a move")
	}
}

func TestHandleKeyPrintScreenRequestsScreenshot(t *testing.T) {
	d, reg := newTestDispatcher(800, 600)
	w, _ := reg.Create("clientA", 100, 100, 0)

	res := d.HandleKey(KeycodePrintScreen, 1, ModShift, 1000)
	if res.Screenshot == nil || res.Screenshot.FullScreen {
		t.Fatal("expected a window screenshot request for Shift-PrintScreen")
	}
	if res.Screenshot.Wid != w.ID {
		t.Fatalf("expected the screenshot targeted at the focused window %d, got %d", w.ID, res.Screenshot.Wid)
	}

	res = d.HandleKey(KeycodePrintScreen, 1, 0, 1000)
	if res.Screenshot == nil || !res.Screenshot.FullScreen {
		t.Fatal("expected a full-screen screenshot request for bare PrintScreen")
	}
}

func TestHandleKeySuperArrowTiles(t *testing.T) {
	d, reg := newTestDispatcher(800, 600)
	w, _ := reg.Create("clientA", 100, 100, 0)

	d.HandleKey(KeycodeArrowLeft, 1, ModSuper, 1000)
	if !w.Tiled() {
		t.Fatal("expected Super-Left to tile the focused window")
	}
	d.HandleKey(KeycodeArrowDown, 1, ModSuper, 1000)
	if w.Tiled() {
		t.Fatal("expected Super-Down to untile the focused window")
	}
}

func TestHandleKeyDebugChordRotatesAndTogglesBlur(t *testing.T) {
	d, reg := newTestDispatcher(800, 600)
	w, _ := reg.Create("clientA", 100, 100, 0)

	d.HandleKey(KeycodeZ, 1, ModSuper|ModShift, 1000)
	if w.RotationDeg != -5 {
		t.Fatalf("expected 'z' to nudge rotation to -5, got %v", w.RotationDeg)
	}
	d.HandleKey(KeycodeX, 1, ModSuper|ModShift, 1000)
	if w.RotationDeg != 0 {
		t.Fatalf("expected 'x' to nudge rotation back to 0, got %v", w.RotationDeg)
	}
	d.HandleKey(KeycodeC, 1, ModSuper|ModShift, 1000)
	if !w.HasFlag(FlagBlurBehind) {
		t.Fatal("expected 'c' to toggle blur-behind on")
	}
	d.HandleKey(KeycodeV, 1, ModSuper|ModShift, 1000)
	d.HandleKey(KeycodeX, 1, ModSuper|ModShift, 1000) // verify v reset then x still works relative to 0.
	if w.RotationDeg != 5 {
		t.Fatalf("expected rotation reset by 'v' then nudged to 5 by 'x', got %v", w.RotationDeg)
	}
}

func TestHandleKeyIgnoresKeyUp(t *testing.T) {
	d, reg := newTestDispatcher(800, 600)
	reg.Create("clientA", 100, 100, 0)

	res := d.HandleKey(KeycodeF4, 0, ModAlt, 1000) // state=0 (up), not key-down.
	if res.Close != 0 {
		t.Fatal("compositor-consumed chords should only trigger on key-down")
	}
}
