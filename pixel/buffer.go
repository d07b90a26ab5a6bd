// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

// Package pixel implements the compositor's pixel primitives: alpha blit,
// matrix-transform blit, box blur, and line draw. The spec names these by
// contract only; this package is the concrete (CPU, software) backend, with
// a fast straight-blit path for the common untransformed case and an
// x/image/draw-backed path for rotation, scaling, and animation transforms.
package pixel

// Buffer is a 32-bit BGRA, premultiplied-alpha pixel surface -- the same
// layout as a window's shared-memory buffer (§3).
type Buffer struct {
	W, H int
	Pix  []byte // len == W*H*4, row-major, BGRA per pixel.
}

// NewBuffer allocates a zeroed buffer of the given size.
func NewBuffer(w, h int) *Buffer {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &Buffer{W: w, H: h, Pix: make([]byte, w*h*4)}
}

// Wrap adapts an existing byte slice (e.g. a shared-memory region) as a
// Buffer without copying.
func Wrap(pix []byte, w, h int) *Buffer { return &Buffer{W: w, H: h, Pix: pix} }

// At returns the BGRA bytes at (x, y), or false if out of bounds.
func (b *Buffer) At(x, y int) (bb, g, r, a byte, ok bool) {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return 0, 0, 0, 0, false
	}
	i := (y*b.W + x) * 4
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3], true
}

// Set writes the BGRA bytes at (x, y). Out of bounds writes are ignored.
func (b *Buffer) Set(x, y int, bb, g, r, a byte) {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return
	}
	i := (y*b.W + x) * 4
	b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3] = bb, g, r, a
}

// Rect is a screen-space or buffer-space rectangle with exclusive
// right/bottom edges, as used throughout the damage and clip systems.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Intersect returns the overlap of r and o.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.X+r.W, o.X+o.W), min(r.Y+r.H, o.Y+o.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Union returns the smallest rectangle containing both r and o. If either
// is empty, the other is returned unchanged.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1, y1 := max(r.X+r.W, o.X+o.W), max(r.Y+r.H, o.Y+o.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Pad grows the rectangle by n pixels in every direction.
func (r Rect) Pad(n int) Rect {
	return Rect{X: r.X - n, Y: r.Y - n, W: r.W + 2*n, H: r.H + 2*n}
}
