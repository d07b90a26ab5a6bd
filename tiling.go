// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

// panelHeight is the height in px of the top panel strip excluded from
// the tileable area when one occupies BandTop; the teacher's spec
// source has no analogue for a desktop panel (it's a 3D engine), so
// this is sized to a plausible value for a single fixed top bar per
// §4.4's "usable area (display minus the top panel's occupied strip)".
const panelHeight = 28

// tileGeometry computes the screen rectangle cell (col, row) of a
// cols x rows partition of the usable area would occupy, without
// mutating w. The usable area excludes the top panelHeight strip only
// when a window currently occupies BandTop; borders are assigned by
// exact integer division so adjacent cells abut without overlap or
// gap, and cell sizes differ by at most one pixel. Tile
// and the edge-drag RESIZE_OFFER path both build on this.
func (r *Registry) tileGeometry(cols, rows, col, row int) (x, y, width, height int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	usableY := 0
	usableH := r.DisplayHeight
	if r.top != 0 {
		usableY = panelHeight
		usableH = r.DisplayHeight - panelHeight
	}

	x = col * r.DisplayWidth / cols
	width = (col+1)*r.DisplayWidth/cols - x
	rowY := row * usableH / rows
	height = (row+1)*usableH/rows - rowY
	y = usableY + rowY
	return x, y, width, height
}

// Tile partitions the usable area (display minus the top panel's
// occupied strip, when one is present) into a cols x rows grid and fits
// w into cell (col, row) (§4.4).
func (r *Registry) Tile(w *Window, cols, rows, col, row int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if !w.Tiled() {
		w.tileRestoreX, w.tileRestoreY = w.X, w.Y
		w.tileRestoreW, w.tileRestoreH = w.Width, w.Height
	}
	x, y, width, height := r.tileGeometry(cols, rows, col, row)
	w.X, w.Y = x, y
	w.Width, w.Height = clampGeometry(width, height)
	w.tileCols, w.tileRows, w.tileCol, w.tileRow = cols, rows, col, row
	w.server |= serverTiled
}

// Untile restores a tiled window to its pre-tile geometry and clears the
// tiled bit.
func (r *Registry) Untile(w *Window) {
	if !w.Tiled() {
		return
	}
	w.X, w.Y = w.tileRestoreX, w.tileRestoreY
	w.Width, w.Height = w.tileRestoreW, w.tileRestoreH
	w.server &^= serverTiled
}

// edgeTileDirection reports which edge-tile (if any) a MOVING drag near
// the given screen x coordinate should trigger, per §4.4's "drag near
// screen edge (<=10px)" transition. Only the left/right edges are
// evaluated here; a top-edge maximize is left to the Super-Arrow chord
// path in the keyboard dispatcher.
func edgeTileDirection(screenX, displayWidth int) (col, cols int, tile bool) {
	const edgeZone = 10
	switch {
	case screenX <= edgeZone:
		return 0, 2, true
	case screenX >= displayWidth-edgeZone:
		return 1, 2, true
	default:
		return 0, 0, false
	}
}

// Tile-hint codes carried in ResizeOfferMsg.TileHint for an edge-drag
// snap offer; the wire protocol treats this value as opaque to the
// client beyond distinguishing "no tile" from "some tile".
const (
	tileHintNone uint32 = iota
	tileHintLeftEdge
	tileHintRightEdge
)

// tileHintFor maps an edge-tile target cell to its wire hint.
func tileHintFor(col, cols int) uint32 {
	if cols != 2 {
		return tileHintNone
	}
	if col == 0 {
		return tileHintLeftEdge
	}
	return tileHintRightEdge
}
