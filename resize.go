// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import (
	"log"

	"github.com/nexuswm/compositor/pixel"
	"github.com/nexuswm/compositor/shm"
)

// interactiveResizeGraceMs is the grace period after pointer release
// before an unfinished interactive resize preview is discarded (§5
// Cancellation & timeouts).
const interactiveResizeGraceMs = 500

// ResizeNegotiator drives the three-way buffer hand-off handshake
// (§4.3) against a Registry, using alloc to create and release the
// shared-memory regions window buffers live in.
type ResizeNegotiator struct {
	identity Identity
	alloc    shm.Allocator
	nextBufid uint32
}

// NewResizeNegotiator builds a negotiator seeded with the bufid the
// window's initial WINDOW_INIT buffer already consumed, so subsequent
// bufids never collide with it.
func NewResizeNegotiator(id Identity, alloc shm.Allocator, firstFreeBufid uint32) *ResizeNegotiator {
	return &ResizeNegotiator{identity: id, alloc: alloc, nextBufid: firstFreeBufid}
}

// AllocateInitial creates the first shared buffer for a freshly created
// window and assigns it a bufid, mirroring WINDOW_NEW's WINDOW_INIT
// reply.
func (n *ResizeNegotiator) AllocateInitial(w *Window) error {
	n.nextBufid++
	bufid := n.nextBufid
	region, err := n.alloc.Create(n.identity.BufferName(bufid), w.Width*w.Height*4)
	if err != nil {
		return err
	}
	w.Bufid = bufid
	w.Buffer = pixel.Wrap(region.Data, w.Width, w.Height)
	return nil
}

// clampGeometry enforces the §4.3 geometry policy: minimum width/height
// of 1 after clamping.
func clampGeometry(w, h int) (int, int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Offer begins (or, for a client-initiated RESIZE_REQUEST, echoes) a
// resize offer for w at the given size. It does not mutate window state
// yet -- only Accept does, once the client agrees.
func (n *ResizeNegotiator) Offer(w *Window, width, height int, nowMs int64) (int, int) {
	width, height = clampGeometry(width, height)
	return width, height
}

// Accept processes a client's RESIZE_ACCEPT: allocates a new shared
// buffer and mints a new bufid, unless a negotiation is already pending,
// in which case the existing pending bufid is returned unchanged (§4.3:
// "idempotent on the server side").
func (n *ResizeNegotiator) Accept(w *Window, width, height int) (bufid uint32, err error) {
	width, height = clampGeometry(width, height)
	if w.resize.pending {
		return w.resize.newBufid, nil
	}
	n.nextBufid++
	bufid = n.nextBufid
	region, err := n.alloc.Create(n.identity.BufferName(bufid), width*height*4)
	if err != nil {
		n.nextBufid--
		return 0, err
	}
	w.resize = resizeState{
		pending:   true,
		newBufid:  bufid,
		newBuffer: pixel.Wrap(region.Data, width, height),
		newWidth:  width,
		newHeight: height,
	}
	return bufid, nil
}

// Done processes a client's RESIZE_DONE: swaps the new buffer in,
// releases the old shared region exactly once, and clears the pending
// state. It returns the old bufid so the caller can log/damage as it
// sees fit; the release itself happens here, since resize.go is the one
// place allocation policy lives and Done is the only moment the old
// buffer's bytes are still reachable before being overwritten.
func (n *ResizeNegotiator) Done(w *Window, width, height int) (oldBufid uint32, ok bool) {
	if !w.resize.pending {
		return 0, false
	}
	width, height = clampGeometry(width, height)
	if width != w.resize.newWidth || height != w.resize.newHeight {
		// Client finished painting a size that doesn't match what it
		// accepted; trust the accepted size rather than the done size,
		// per the server remaining the source of truth for geometry.
		width, height = w.resize.newWidth, w.resize.newHeight
	}
	oldBufid = w.Bufid
	oldPix := w.Buffer
	w.Bufid = w.resize.newBufid
	w.Buffer = w.resize.newBuffer
	w.Width, w.Height = width, height
	w.resize = resizeState{}
	if oldBufid != 0 && oldPix != nil {
		if err := n.ReleaseBuffer(oldBufid, oldPix.Pix); err != nil {
			log.Printf("compositor: release old resize buffer bufid=%d: %v", oldBufid, err)
		}
	}
	return oldBufid, true
}

// ReleaseBuffer releases the shared-memory region backing bufid. Callers
// pass the bufid and its mapped bytes; the region name is rebuilt here as
// identity.BufferName(bufid). Kept as a thin wrapper so every release
// path goes through one function.
func (n *ResizeNegotiator) ReleaseBuffer(bufid uint32, data []byte) error {
	return n.alloc.Release(&shm.Region{Name: n.identity.BufferName(bufid), Data: data})
}

// BeginInteractive starts an interactive (pointer-driven) resize preview
// in direction dir, used while the user drags a corner/edge before the
// client has even been sent a RESIZE_OFFER (§4.3's "in-progress
// rectangle").
func (n *ResizeNegotiator) BeginInteractive(w *Window, dir ResizeDirection) {
	w.resize.interactive = true
	w.resize.direction = dir
	w.resize.resizingW, w.resize.resizingH = w.Width, w.Height
}

// UpdateInteractive adjusts the in-progress preview rectangle as the
// pointer moves, honoring the resize direction (only the relevant axes
// move) and the §4.3 minimum-size clamp.
func (n *ResizeNegotiator) UpdateInteractive(w *Window, dx, dy int) {
	if !w.resize.interactive {
		return
	}
	width, height := w.resize.resizingW, w.resize.resizingH
	offX, offY := w.resize.resizingOffX, w.resize.resizingOffY
	switch w.resize.direction {
	case ResizeRight, ResizeUpRight, ResizeDownRight:
		width += dx
	case ResizeLeft, ResizeUpLeft, ResizeDownLeft:
		width -= dx
		offX += dx
	}
	switch w.resize.direction {
	case ResizeDown, ResizeDownLeft, ResizeDownRight:
		height += dy
	case ResizeUp, ResizeUpLeft, ResizeUpRight:
		height -= dy
		offY += dy
	}
	width, height = clampGeometry(width, height)
	w.resize.resizingW, w.resize.resizingH = width, height
	w.resize.resizingOffX, w.resize.resizingOffY = offX, offY
}

// PreviewTransform returns the affine transform that scales the window's
// OLD buffer to fill the in-progress resize rectangle, for use by the
// render loop's matrix blit path while waiting on the handshake.
func (w *Window) PreviewTransform() pixel.Mat3 {
	if !w.resize.interactive || w.Width == 0 || w.Height == 0 {
		return pixel.Identity()
	}
	sx := float64(w.resize.resizingW) / float64(w.Width)
	sy := float64(w.resize.resizingH) / float64(w.Height)
	return pixel.Mul(pixel.Translate(float64(w.resize.resizingOffX), float64(w.resize.resizingOffY)), pixel.Scale(sx, sy))
}

// EndInteractive records the pointer-release time and leaves the preview
// state in place until either RESIZE_DONE arrives or the grace period
// elapses (checked by ExpireInteractive on each frame, §4.1 step 2).
func (n *ResizeNegotiator) EndInteractive(w *Window, nowMs int64) {
	w.resize.releasedAtMs = nowMs
}

// ExpireInteractive clears an interactive preview that has been idle past
// the grace period without a RESIZE_DONE (§4.1 step 2, §5).
func (n *ResizeNegotiator) ExpireInteractive(w *Window, nowMs int64) {
	if !w.resize.interactive || w.resize.releasedAtMs == 0 {
		return
	}
	if nowMs-w.resize.releasedAtMs >= interactiveResizeGraceMs {
		w.resize.interactive = false
		w.resize.direction = ResizeAuto
	}
}

// ResolveAutoDirection maps a click point in a window's local frame to one
// of the eight concrete resize directions, falling back to DOWN_RIGHT
// when the click is central, per §4.3.
func ResolveAutoDirection(localX, localY, width, height int) ResizeDirection {
	const edge = 24 // px from each edge considered a "grab" zone.
	left := localX < edge
	right := localX > width-edge
	top := localY < edge
	bottom := localY > height-edge
	switch {
	case top && left:
		return ResizeUpLeft
	case top && right:
		return ResizeUpRight
	case bottom && left:
		return ResizeDownLeft
	case bottom && right:
		return ResizeDownRight
	case top:
		return ResizeUp
	case bottom:
		return ResizeDown
	case left:
		return ResizeLeft
	case right:
		return ResizeRight
	default:
		return ResizeDownRight
	}
}
