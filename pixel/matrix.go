// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package pixel

import "math"

// Mat3 is a 2x3 affine transform: x' = A*x + B*y + E, y' = C*x + D*y + F.
type Mat3 struct {
	A, B, C, D, E, F float64
}

// Identity returns the no-op transform.
func Identity() Mat3 { return Mat3{A: 1, D: 1} }

// Translate returns a pure translation transform.
func Translate(dx, dy float64) Mat3 { return Mat3{A: 1, D: 1, E: dx, F: dy} }

// Scale returns a pure scale transform. Both factors are clamped away from
// zero (1e-5) per §4.7 so a degenerate resize preview never divides by
// zero or inverts.
func Scale(sx, sy float64) Mat3 {
	if sx < 1e-5 {
		sx = 1e-5
	}
	if sy < 1e-5 {
		sy = 1e-5
	}
	return Mat3{A: sx, D: sy}
}

// RotateDegrees returns a rotation by deg degrees about the origin.
func RotateDegrees(deg float64) Mat3 {
	rad := deg * math.Pi / 180
	s, c := math.Sin(rad), math.Cos(rad)
	return Mat3{A: c, B: -s, C: s, D: c}
}

// Mul composes two transforms: the result applies b first, then a
// (matches the usual "translate to origin, rotate, translate back" chains
// used throughout §4.7).
func Mul(a, b Mat3) Mat3 {
	return Mat3{
		A: a.A*b.A + a.B*b.C,
		B: a.A*b.B + a.B*b.D,
		C: a.C*b.A + a.D*b.C,
		D: a.C*b.B + a.D*b.D,
		E: a.A*b.E + a.B*b.F + a.E,
		F: a.C*b.E + a.D*b.F + a.F,
	}
}

// AboutCenter builds the classic translate-to-origin / transform /
// translate-back chain §4.7 describes for rotation and scale around a
// window's center point (cx, cy).
func AboutCenter(m Mat3, cx, cy float64) Mat3 {
	return Mul(Translate(cx, cy), Mul(m, Translate(-cx, -cy)))
}

// IsIdentity reports whether m is (within floating point noise) the
// identity transform, letting the blitter take its fast straight-copy
// path instead of the general matrix path. See design note: "Matrix blit
// vs. fast paths" -- preserve the teacher's identity-detection
// optimization rather than regressing to a full matrix blit always.
func (m Mat3) IsIdentity() bool {
	const eps = 1e-9
	return approx(m.A, 1, eps) && approx(m.B, 0, eps) &&
		approx(m.C, 0, eps) && approx(m.D, 1, eps) &&
		approx(m.E, 0, eps) && approx(m.F, 0, eps)
}

func approx(v, want, eps float64) bool {
	d := v - want
	if d < 0 {
		d = -d
	}
	return d <= eps
}

// Apply transforms a point by m.
func (m Mat3) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.B*y + m.E, m.C*x + m.D*y + m.F
}

// Invert returns the inverse transform. Used to map screen-space points
// into a window's local frame for hit testing (§4.2) under rotation.
func (m Mat3) Invert() Mat3 {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return Identity()
	}
	inv := 1 / det
	a, b, c, d := m.D*inv, -m.B*inv, -m.C*inv, m.A*inv
	e := -(a*m.E + b*m.F)
	f := -(c*m.E + d*m.F)
	return Mat3{A: a, B: b, C: c, D: d, E: e, F: f}
}

// BoundingBox returns the axis-aligned bounding box of a w x h rectangle
// after applying m, padded by 1px as §4.7 requires for rotated-window
// damage.
func (m Mat3) BoundingBox(w, h float64) Rect {
	corners := [4][2]float64{{0, 0}, {w, 0}, {0, h}, {w, h}}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		x, y := m.Apply(c[0], c[1])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return Rect{
		X: int(math.Floor(minX)) - 1,
		Y: int(math.Floor(minY)) - 1,
		W: int(math.Ceil(maxX)) - int(math.Floor(minX)) + 2,
		H: int(math.Ceil(maxY)) - int(math.Floor(minY)) + 2,
	}
}
