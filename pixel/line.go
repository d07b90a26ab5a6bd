// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package pixel

// DrawLine draws a single-pixel-wide opaque line from (x0, y0) to (x1, y1)
// using Bresenham's algorithm. Used for the compositor's cursor crosshair
// rather than window content, which always arrives pre-rendered from the
// client.
func DrawLine(dst *Buffer, x0, y0, x1, y1 int, b, g, r, a byte) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy
	x, y := x0, y0
	for {
		dst.Set(x, y, b, g, r, a)
		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
