// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import "testing"

func TestWindowClickThrough(t *testing.T) {
	w := &Window{HitThreshold: 256}
	if !w.ClickThrough() {
		t.Fatal("threshold >= 256 should be click-through")
	}
	w.HitThreshold = 255
	if w.ClickThrough() {
		t.Fatal("threshold 255 should still accept input")
	}
}

func TestWindowHasFlag(t *testing.T) {
	w := &Window{flags: FlagDisallowDrag | FlagBlurBehind}
	if !w.HasFlag(FlagDisallowDrag) {
		t.Fatal("expected FlagDisallowDrag set")
	}
	if w.HasFlag(FlagDisallowResize) {
		t.Fatal("did not expect FlagDisallowResize set")
	}
}

func TestWindowHiddenAndTiled(t *testing.T) {
	w := &Window{}
	if w.Hidden() || w.Tiled() {
		t.Fatal("fresh window should be neither hidden nor tiled")
	}
	w.server |= serverHidden
	if !w.Hidden() {
		t.Fatal("expected Hidden after setting serverHidden")
	}
	w.server |= serverTiled
	if !w.Tiled() {
		t.Fatal("expected Tiled after setting serverTiled")
	}
}

func TestWindowRect(t *testing.T) {
	w := &Window{X: 5, Y: 10, Width: 100, Height: 50}
	r := w.Rect()
	if r.X != 5 || r.Y != 10 || r.W != 100 || r.H != 50 {
		t.Fatalf("unexpected rect %+v", r)
	}
}

func TestAnimStateElapsedAndDone(t *testing.T) {
	a := animState{kind: AnimFade, startMs: 1000, durationMs: 200}
	if a.elapsed(1000) != 0 {
		t.Fatalf("expected 0 elapsed at start, got %d", a.elapsed(1000))
	}
	if a.elapsed(900) != 0 {
		t.Fatalf("expected elapsed clamped to 0 before start, got %d", a.elapsed(900))
	}
	if a.done(1100) {
		t.Fatal("should not be done halfway through")
	}
	if !a.done(1200) {
		t.Fatal("should be done once elapsed reaches duration")
	}

	none := animState{kind: AnimNone, durationMs: 50}
	if !none.done(0) {
		t.Fatal("AnimNone should always report done")
	}
}
