// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

// Package compositor implements the canvas window compositor's core data
// model and algorithms: the window registry and z-stacks, the resize
// handoff protocol, damage and clipping, client sessions and the
// subscriber set, the key-binding table, the clipboard, the pointer/
// keyboard input dispatcher, and the render loop that ties them
// together. It is laid out flat at the package root the way the teacher
// keeps its own core data model (Pov, Model, Camera, Scene) flat rather
// than splitting one cohesive subsystem across packages; only concerns
// with their own OS-facing seam (protocol, transport, shm, pixel,
// backend, config) get a subpackage.
package compositor

import "github.com/nexuswm/compositor/pixel"

// Wid identifies a window. Zero is never a valid wid.
type Wid uint32

// Band is one of the five z-layer classes.
type Band int

const (
	BandUnbanded Band = iota // not currently placed in any band (e.g. evicted singleton).
	BandBottom
	BandMid
	BandOverlay
	BandMenu
	BandTop
)

// Flags are client-declared window behavior bits, set at creation time
// and (for most of them) immutable thereafter.
type Flags uint32

const (
	FlagNoStealFocus Flags = 1 << iota
	FlagDisallowDrag
	FlagDisallowResize
	FlagAltAnimation
	FlagDialogAnimation
	FlagNoAnimation
	FlagBlurBehind
)

// serverFlags are tracked by the server rather than declared by the
// client; kept as a distinct bitset so a client's advertised Flags never
// accidentally imply hidden/tiled state.
type serverFlags uint32

const (
	serverHidden serverFlags = 1 << iota
	serverTiled
)

// AnimKind classifies a window's in-flight animation, each with a fixed,
// known duration (§4.7).
type AnimKind int

const (
	AnimNone AnimKind = iota
	AnimFade
	AnimDialog
	AnimSqueeze
	AnimDisappear
)

// animDirection distinguishes an opening animation (playing forward, the
// window becomes more visible) from a closing one (playing forward toward
// removal from the registry).
type animDirection int

const (
	animOpening animDirection = iota
	animClosing
)

// CursorHint is the mouse cursor sprite a window requests while the
// pointer hovers over it, used when no drag/resize state overrides it.
type CursorHint int

const (
	CursorDefault CursorHint = iota
	CursorPoint
	CursorIBeam
	CursorDrag
	CursorResizeV
	CursorResizeH
	CursorResizeULDR
	CursorResizeDLUR
)

// ResizeDirection names one of the nine resize-grab cells.
type ResizeDirection int

const (
	ResizeAuto ResizeDirection = iota
	ResizeUp
	ResizeDown
	ResizeLeft
	ResizeRight
	ResizeUpLeft
	ResizeUpRight
	ResizeDownLeft
	ResizeDownRight
)

// resizeState tracks the three-way buffer hand-off handshake (§4.3) for a
// single window. A zero value means no resize is in progress.
type resizeState struct {
	pending    bool
	newBufid   uint32
	newBuffer  *pixel.Buffer
	newWidth   int
	newHeight  int
	offeredAt  int64 // ms, for logging only; grace timeout is tracked via interactive below.

	// interactive resize preview (user-driven corner drag), tracked
	// separately from the client handshake above: the server shows a
	// scaled preview of the OLD buffer while waiting for the client to
	// actually finish the §4.3 handshake.
	interactive   bool
	direction     ResizeDirection
	resizingW     int
	resizingH     int
	resizingOffX  int
	resizingOffY  int
	releasedAtMs  int64 // pointer-release time, for the 500ms grace window.
}

// tileOffer tracks an edge-drag tile RESIZE_OFFER already sent to the
// client but not yet committed: the server only applies the tiled
// geometry and bookkeeping once the client completes the standard
// three-way resize handshake with a matching RESIZE_DONE.
type tileOffer struct {
	pending           bool
	cols, rows, col, row int
}

// animState tracks a window's current animation, if any.
type animState struct {
	kind      AnimKind
	dir       animDirection
	startMs   int64
	durationMs int64
}

// elapsed reports how many ms have played since the animation started,
// given the current wall-clock time in ms.
func (a animState) elapsed(nowMs int64) int64 {
	if a.kind == AnimNone {
		return a.durationMs
	}
	e := nowMs - a.startMs
	if e < 0 {
		return 0
	}
	return e
}

// done reports whether the animation has played to completion.
func (a animState) done(nowMs int64) bool {
	return a.kind == AnimNone || a.elapsed(nowMs) >= a.durationMs
}

// Window is the server-side record for one client window (§3).
type Window struct {
	ID    Wid
	Owner string // client session key, transport.Conn.ID().

	X, Y          int
	Width, Height int
	RotationDeg   float64

	Bufid  uint32
	Buffer *pixel.Buffer
	Opacity byte // 0-255.

	resize resizeState

	band     Band
	flags    Flags
	server   serverFlags

	tileRestoreX, tileRestoreY, tileRestoreW, tileRestoreH int
	tileCols, tileRows, tileCol, tileRow                   int
	pendingTileOffer                                       tileOffer

	anim animState

	// HitThreshold is the minimum alpha (0-255) a pixel must have to
	// accept input; >= 256 means fully click-through.
	HitThreshold int

	Icon    uint32
	MetaFlags byte
	Name    string
	Strings []string

	Cursor CursorHint

	// flipped is true once the client has sent at least one FLIP for
	// this window's current buffer; the server never renders a window
	// that has not flipped at least once.
	flipped bool

	// closing is true once WINDOW_CLOSE has been processed; the window
	// keeps rendering (per its closing animation) until anim.done.
	closing bool
}

// Hidden reports the server-tracked hidden bit.
func (w *Window) Hidden() bool { return w.server&serverHidden != 0 }

// Tiled reports the server-tracked tiled bit.
func (w *Window) Tiled() bool { return w.server&serverTiled != 0 }

// HasFlag reports whether a client-declared flag is set.
func (w *Window) HasFlag(f Flags) bool { return w.flags&f != 0 }

// Rect returns the window's current screen-space bounding rectangle
// (untransformed; callers needing the rotated bounding box should use
// pixel.Mat3.BoundingBox instead).
func (w *Window) Rect() pixel.Rect {
	return pixel.Rect{X: w.X, Y: w.Y, W: w.Width, H: w.Height}
}

// ClickThrough reports whether this window's hit-test threshold makes it
// fully non-interactive (§3: threshold >= 256).
func (w *Window) ClickThrough() bool { return w.HitThreshold >= 256 }
