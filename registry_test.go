// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import "testing"

func alwaysOpaqueSampler(w *Window, x, y int) (byte, bool) {
	if x < w.X || y < w.Y || x >= w.X+w.Width || y >= w.Y+w.Height {
		return 0, false
	}
	return 255, true
}

func TestRegistryCreatePlacesMidAndFocuses(t *testing.T) {
	r := NewRegistry(800, 600)
	w, _ := r.Create("clientA", 100, 100, 0)
	if w.band != BandMid {
		t.Fatalf("expected new window in BandMid, got %v", w.band)
	}
	if r.Focused() != w {
		t.Fatal("new window should steal focus by default")
	}
}

func TestRegistryNoStealFocusFlag(t *testing.T) {
	r := NewRegistry(800, 600)
	first, _ := r.Create("clientA", 10, 10, 0)
	second, _ := r.Create("clientB", 10, 10, FlagNoStealFocus)
	if r.Focused() != first {
		t.Fatalf("NoStealFocus window should not take focus, focused=%v", r.Focused().ID)
	}
	_ = second
}

func TestRegistryBottomAndTopAreSingletons(t *testing.T) {
	r := NewRegistry(800, 600)
	a, _ := r.Create("clientA", 10, 10, 0)
	b, _ := r.Create("clientB", 10, 10, 0)

	r.SetZ(a, BandBottom)
	r.SetZ(b, BandBottom)
	if a.band != BandUnbanded {
		t.Fatalf("first BOTTOM occupant should be evicted, got band=%v", a.band)
	}
	if b.band != BandBottom {
		t.Fatalf("expected b in BandBottom, got %v", b.band)
	}

	c, _ := r.Create("clientC", 10, 10, 0)
	r.SetZ(b, BandTop)
	r.SetZ(c, BandTop)
	if b.band != BandUnbanded {
		t.Fatalf("first TOP occupant should be evicted, got band=%v", b.band)
	}
	if c.band != BandTop {
		t.Fatalf("expected c in BandTop, got %v", c.band)
	}
}

func TestRegistryPaintOrder(t *testing.T) {
	r := NewRegistry(800, 600)
	bottom, _ := r.Create("a", 10, 10, 0)
	r.SetZ(bottom, BandBottom)
	mid1, _ := r.Create("b", 10, 10, 0)
	mid2, _ := r.Create("c", 10, 10, 0)
	overlay, _ := r.Create("d", 10, 10, 0)
	r.SetZ(overlay, BandOverlay)
	top, _ := r.Create("e", 10, 10, 0)
	r.SetZ(top, BandTop)

	order := r.WindowsInPaintOrder()
	want := []Wid{bottom.ID, mid1.ID, mid2.ID, overlay.ID, top.ID}
	if len(order) != len(want) {
		t.Fatalf("expected %d windows in paint order, got %d", len(want), len(order))
	}
	for i, w := range order {
		if w.ID != want[i] {
			t.Fatalf("paint order[%d] = %d, want %d", i, w.ID, want[i])
		}
	}
}

func TestRegistryHitTestOrderIsReverseOfPaint(t *testing.T) {
	r := NewRegistry(800, 600)
	bottom, _ := r.Create("a", 100, 100, 0)
	r.SetZ(bottom, BandBottom)
	bottom.flipped = true
	bottom.X, bottom.Y = 0, 0

	mid, _ := r.Create("b", 100, 100, 0)
	mid.flipped = true
	mid.X, mid.Y = 0, 0

	// Both windows cover (10,10); top-most in paint order (mid) should
	// win the hit test.
	hit := r.HitTest(10, 10, alwaysOpaqueSampler)
	if hit == nil || hit.ID != mid.ID {
		t.Fatalf("expected hit test to favor topmost window %d, got %v", mid.ID, hit)
	}
}

func TestRegistryHitTestSkipsUnflippedAndHidden(t *testing.T) {
	r := NewRegistry(800, 600)
	w, _ := r.Create("a", 100, 100, 0)
	w.X, w.Y = 0, 0
	if hit := r.HitTest(10, 10, alwaysOpaqueSampler); hit != nil {
		t.Fatal("an unflipped window should never hit-test")
	}
	w.flipped = true
	if hit := r.HitTest(10, 10, alwaysOpaqueSampler); hit == nil {
		t.Fatal("expected a flipped window to hit-test")
	}
	w.server |= serverHidden
	if hit := r.HitTest(10, 10, alwaysOpaqueSampler); hit != nil {
		t.Fatal("a hidden window should never hit-test")
	}
}

func TestRegistryHitTestRespectsClickThrough(t *testing.T) {
	r := NewRegistry(800, 600)
	w, _ := r.Create("a", 100, 100, 0)
	w.X, w.Y = 0, 0
	w.flipped = true
	w.HitThreshold = 256
	if hit := r.HitTest(10, 10, alwaysOpaqueSampler); hit != nil {
		t.Fatal("a fully click-through window should never hit-test")
	}
}

func TestRegistryFocusFallsBackToBottom(t *testing.T) {
	r := NewRegistry(800, 600)
	bottom, _ := r.Create("a", 10, 10, 0)
	r.SetZ(bottom, BandBottom)
	mid, _ := r.Create("b", 10, 10, 0)

	r.Focus(0, 0)
	if r.Focused() != bottom {
		t.Fatalf("explicit Focus(0,...) should fall back to BOTTOM, got %v", r.Focused())
	}

	// Reaping the mid window (only live one holding focus) should fall
	// back to BOTTOM.
	r.Focus(mid.ID, 0)
	mid.closing = true
	mid.anim = animState{kind: AnimNone}
	r.ReapClosed(0)
	if r.Focused() != bottom {
		t.Fatalf("expected focus fallback to BOTTOM after reap, got %v", r.Focused())
	}
}

func TestRegistryCloseReapLifecycle(t *testing.T) {
	r := NewRegistry(800, 600)
	w, _ := r.Create("a", 10, 10, FlagNoAnimation)
	r.StartClose(w, 1000)
	if !w.closing {
		t.Fatal("StartClose should mark the window closing")
	}
	if w.anim.kind != AnimNone {
		t.Fatalf("NoAnimation flag should skip the closing animation, got kind=%v", w.anim.kind)
	}
	reaped := r.ReapClosed(1000)
	if len(reaped) != 1 || reaped[0].ID != w.ID {
		t.Fatalf("expected window reaped immediately (zero duration), got %v", reaped)
	}
	if _, ok := r.Window(w.ID); ok {
		t.Fatal("reaped window should no longer be in the registry")
	}
}

func TestRegistryStartCloseIsIdempotent(t *testing.T) {
	r := NewRegistry(800, 600)
	w, _ := r.Create("a", 10, 10, 0)
	r.StartClose(w, 1000)
	firstAnim := w.anim
	r.StartClose(w, 2000)
	if w.anim != firstAnim {
		t.Fatal("a second StartClose should not restart the closing animation")
	}
}

func TestRegistryMoveRefusesOutOfRange(t *testing.T) {
	r := NewRegistry(800, 600)
	w, _ := r.Create("a", 10, 10, 0)
	if ok := r.Move(w, 100, 100); !ok {
		t.Fatal("an in-range move should succeed")
	}
	if w.X != 100 || w.Y != 100 {
		t.Fatalf("expected window moved to (100,100), got (%d,%d)", w.X, w.Y)
	}
	if ok := r.Move(w, 10*r.DisplayWidth, 0); ok {
		t.Fatal("a wildly out-of-range move should be refused")
	}
	if w.X != 100 {
		t.Fatal("a refused move should not mutate window position")
	}
}
