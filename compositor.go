// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import (
	"log"

	"github.com/nexuswm/compositor/backend"
	"github.com/nexuswm/compositor/pixel"
	"github.com/nexuswm/compositor/protocol"
	"github.com/nexuswm/compositor/shm"
)

// blurKernelRadius is the box blur radius used for BLUR_BEHIND windows
// (§4.7). The teacher has no analogue (no blur path in a 3D engine's
// 2D HUD), so this is a concrete implementation choice sized for a
// visible-but-cheap blur.
const blurKernelRadius = 6

// Compositor is the top-level server: it owns every subsystem and
// implements the render loop's algorithm (§4.1) plus client message
// handling (§4.5/§4.6). It corresponds to the teacher's own top-level
// Engine type (eng.go) in spirit -- the one struct everything is threaded
// through -- but the state threaded through it is window/session/
// protocol state instead of a 3D scene graph.
type Compositor struct {
	Identity Identity

	Reg         *Registry
	Sessions    *Sessions
	Subscribers *Subscribers
	Binds       *KeyBindTable
	Clipboard   *Clipboard
	Resizer     *ResizeNegotiator
	Dispatcher  *Dispatcher
	Toasts      *Toasts
	Damage      *DamageList
	Fonts       *FontSet

	Backend     backend.Backend
	blurScratch *pixel.Buffer

	pendingScreenshot *ScreenshotRequest
	sawMidClient      bool // set once any non-background client has connected.
}

// NewCompositor wires every subsystem together against a single
// identity, shared-memory allocator, and render backend.
func NewCompositor(id Identity, alloc shm.Allocator, back backend.Backend) *Compositor {
	reg := NewRegistry(back.Width(), back.Height())
	binds := NewKeyBindTable()
	resizer := NewResizeNegotiator(id, alloc, 0)
	c := &Compositor{
		Identity:    id,
		Reg:         reg,
		Sessions:    NewSessions(),
		Subscribers: NewSubscribers(),
		Binds:       binds,
		Clipboard:   NewClipboard(id, alloc),
		Resizer:     resizer,
		Dispatcher:  NewDispatcher(reg, binds, resizer),
		Toasts:      &Toasts{},
		Damage:      &DamageList{},
		Fonts:       NewFontSet(id, alloc),
		Backend:     back,
		blurScratch: pixel.NewBuffer(back.Width(), back.Height()),
	}
	c.Damage.Add(pixel.Rect{X: 0, Y: 0, W: back.Width(), H: back.Height()})
	return c
}

// HandleMessage implements §4.5/§4.6's client message handling. It
// returns any outbound messages the caller should send, each addressed by
// session key (most go back to sess, but a focus-lost notice goes to the
// previously focused window's owner). Subscriber NOTIFYs are not
// returned: Subscribers.NotifyAll sends them directly.
func (c *Compositor) HandleMessage(sess *Session, msg protocol.Message, nowMs int64) []Outbound {
	var out []Outbound
	switch m := msg.(type) {

	case *protocol.HelloMsg:
		out = append(out, Outbound{sess.Key, &protocol.WelcomeMsg{
			DisplayW: int32(c.Reg.DisplayWidth), DisplayH: int32(c.Reg.DisplayHeight),
		}})

	case *protocol.WindowNewMsg:
		w, fc := c.Reg.Create(sess.Key, int(m.Width), int(m.Height), Flags(m.Flags))
		sess.Own(w.ID)
		if err := c.Resizer.AllocateInitial(w); err != nil {
			log.Printf("compositor: allocate buffer for wid=%d: %v", w.ID, err)
			break
		}
		out = append(out, Outbound{sess.Key, &protocol.WindowInitMsg{
			Wid: uint32(w.ID), Width: uint32(w.Width), Height: uint32(w.Height), Bufid: w.Bufid,
		}})
		out = append(out, focusChangeOutbound(fc)...)
		c.Subscribers.NotifyAll(c.Sessions)

	case *protocol.FlipMsg:
		if w := c.ownedWindow(sess, Wid(m.Wid)); w != nil {
			w.flipped = true
			c.Damage.Add(damageRectFor(w))
		}

	case *protocol.FlipRegionMsg:
		if w := c.ownedWindow(sess, Wid(m.Wid)); w != nil {
			w.flipped = true
			c.Damage.Add(pixel.Rect{X: w.X + int(m.X), Y: w.Y + int(m.Y), W: int(m.Width), H: int(m.Height)})
		}

	case *protocol.WindowMoveMsg:
		if w := c.ownedWindow(sess, Wid(m.Wid)); w != nil {
			c.Damage.Add(damageRectFor(w))
			if c.Reg.Move(w, int(m.X), int(m.Y)) {
				c.Damage.Add(damageRectFor(w))
			} else {
				log.Printf("compositor: refused out-of-range move for wid=%d", w.ID)
			}
		}

	case *protocol.WindowMoveRelativeMsg:
		if w := c.ownedWindow(sess, Wid(m.WidToMove)); w != nil {
			if base, ok := c.Reg.Window(Wid(m.WidBase)); ok {
				c.Damage.Add(damageRectFor(w))
				c.Reg.Move(w, base.X+int(m.X), base.Y+int(m.Y))
				c.Damage.Add(damageRectFor(w))
			}
		}

	case *protocol.WindowStackMsg:
		if w := c.ownedWindow(sess, Wid(m.Wid)); w != nil {
			c.Reg.SetZ(w, Band(m.Z))
			c.Damage.Add(damageRectFor(w))
		}

	case *protocol.WindowCloseMsg:
		if w := c.ownedWindow(sess, Wid(m.Wid)); w != nil {
			c.Reg.StartClose(w, nowMs)
		}

	case *protocol.ResizeRequestMsg:
		if w := c.ownedWindow(sess, Wid(m.Wid)); w != nil {
			width, height := c.Resizer.Offer(w, int(m.Width), int(m.Height), nowMs)
			out = append(out, Outbound{sess.Key, &protocol.ResizeOfferMsg{
				Wid: m.Wid, Width: int32(width), Height: int32(height),
			}})
		}

	case *protocol.ResizeAcceptMsg:
		if w := c.ownedWindow(sess, Wid(m.Wid)); w != nil {
			bufid, err := c.Resizer.Accept(w, int(m.Width), int(m.Height))
			if err != nil {
				log.Printf("compositor: resize accept for wid=%d: %v", w.ID, err)
				break
			}
			out = append(out, Outbound{sess.Key, &protocol.ResizeBufidMsg{
				Wid: m.Wid, Width: int32(w.resize.newWidth), Height: int32(w.resize.newHeight), Bufid: bufid,
			}})
		}

	case *protocol.ResizeDoneMsg:
		if w := c.ownedWindow(sess, Wid(m.Wid)); w != nil {
			if _, ok := c.Resizer.Done(w, int(m.Width), int(m.Height)); ok {
				if t := w.pendingTileOffer; t.pending {
					w.pendingTileOffer = tileOffer{}
					c.Reg.Tile(w, t.cols, t.rows, t.col, t.row)
				}
				c.Damage.Add(damageRectFor(w))
				c.Subscribers.NotifyAll(c.Sessions)
			}
		}

	case *protocol.WindowDragStartMsg:
		if w := c.ownedWindow(sess, Wid(m.Wid)); w != nil && !w.HasFlag(FlagDisallowDrag) {
			c.Dispatcher.state = PointerMoving
			c.Dispatcher.dragWid = w.ID
			c.Dispatcher.moveOrigin.clickX, c.Dispatcher.moveOrigin.clickY = c.Dispatcher.screenXY()
			c.Dispatcher.moveOrigin.winX, c.Dispatcher.moveOrigin.winY = w.X, w.Y
		}

	case *protocol.WindowResizeStartMsg:
		if w := c.ownedWindow(sess, Wid(m.Wid)); w != nil && !w.HasFlag(FlagDisallowResize) {
			c.Dispatcher.state = PointerResizing
			c.Dispatcher.resizeWid = w.ID
			c.Resizer.BeginInteractive(w, ResizeDirection(m.Direction))
		}

	case *protocol.WindowUpdateShapeMsg:
		if w := c.ownedWindow(sess, Wid(m.Wid)); w != nil {
			w.HitThreshold = int(m.Threshold)
		}

	case *protocol.WindowShowMouseMsg:
		if w := c.ownedWindow(sess, Wid(m.Wid)); w != nil {
			w.Cursor = CursorHint(m.Mode)
		}

	case *protocol.WindowWarpMouseMsg:
		if c.ownedWindow(sess, Wid(m.Wid)) != nil {
			c.Dispatcher.pointerX = int(m.X) * pointerScale
			c.Dispatcher.pointerY = int(m.Y) * pointerScale
		}

	case *protocol.SubscribeMsg:
		c.Subscribers.Add(sess.Conn)

	case *protocol.UnsubscribeMsg:
		c.Subscribers.Remove(sess.Key)

	case *protocol.QueryWindowsMsg:
		for _, w := range c.Reg.Windows() {
			out = append(out, Outbound{sess.Key, &protocol.WindowAdvertiseMsg{
				Wid: uint32(w.ID), Flags: uint32(w.flags), Icon: w.Icon,
				Bufid: w.Bufid, Width: int32(w.Width), Height: int32(w.Height),
				Strings: packWindowStrings(w.Name, w.Strings),
			}})
		}

	case *protocol.WindowAdvertiseMsg:
		if w := c.ownedWindow(sess, Wid(m.Wid)); w != nil {
			w.Icon = m.Icon
			w.MetaFlags = byte(m.Flags)
			if name, rest := unpackWindowStrings(m.Strings); name != "" {
				w.Name, w.Strings = name, rest
			}
			c.Subscribers.NotifyAll(c.Sessions)
		}

	case *protocol.KeyBindMsg:
		response := ResponseNotify
		if m.Response == uint32(ResponseSteal) {
			response = ResponseSteal
		}
		c.Binds.Bind(m.Modifiers, m.Key, sess.Key, response)

	case *protocol.SpecialRequestMsg:
		out = append(out, c.handleSpecialRequest(sess, Wid(m.Wid), m.Request)...)

	case *protocol.ClipboardMsg:
		// §4.5: CLIPBOARD is client->server store only; a client fetches
		// via SPECIAL_REQUEST(clipboard-read) instead (handleSpecialRequest
		// below), so there is no content-less "fetch" variant of this
		// message to distinguish here.
		if err := c.Clipboard.Store(m.Content); err != nil {
			log.Printf("compositor: store clipboard: %v", err)
		}
	}
	return out
}

// specialRequest codes, local numbering for SpecialRequestMsg.Request
// (the spec leaves these opaque: "maximize toggle, please-close,
// clipboard-read").
const (
	SpecialMaximizeToggle uint32 = iota
	SpecialPleaseClose
	SpecialClipboardRead
)

func (c *Compositor) handleSpecialRequest(sess *Session, wid Wid, request uint32) []Outbound {
	w := c.ownedWindow(sess, wid)
	switch request {
	case SpecialMaximizeToggle:
		if w == nil {
			return nil
		}
		if w.Tiled() {
			c.Reg.Untile(w)
		} else {
			c.Reg.Tile(w, 1, 1, 0, 0)
		}
	case SpecialPleaseClose:
		if w == nil {
			return nil
		}
		c.Reg.StartClose(w, 0)
	case SpecialClipboardRead:
		return []Outbound{{sess.Key, &protocol.ClipboardMsg{Content: c.Clipboard.Fetch()}}}
	}
	return nil
}

// packWindowStrings joins a window's name and extra advertised strings
// into WindowAdvertiseMsg's single NUL-delimited blob.
func packWindowStrings(name string, rest []string) string {
	parts := append([]string{name}, rest...)
	out := parts[0]
	for _, p := range parts[1:] {
		out += "\x00" + p
	}
	return out
}

// unpackWindowStrings splits a NUL-delimited advertise blob back into a
// name and the remaining strings.
func unpackWindowStrings(blob string) (name string, rest []string) {
	if blob == "" {
		return "", nil
	}
	parts := splitNUL(blob)
	return parts[0], parts[1:]
}

func splitNUL(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// ownedWindow looks up wid and returns it only if sess owns it, per
// §4.6's owner-check ("verifies the window's owner matches the sender's
// endpoint and ignores the message otherwise"). A nonexistent wid is
// likewise ignored (§7).
func (c *Compositor) ownedWindow(sess *Session, wid Wid) *Window {
	w, ok := c.Reg.Window(wid)
	if !ok || w.Owner != sess.Key {
		return nil
	}
	return w
}

// Disconnect processes a client's transport closure (§4.6): every owned
// window enters the closing path, and if this was the last session the
// caller should broadcast SESSION_END and exit (§7).
func (c *Compositor) Disconnect(key string, nowMs int64) {
	for _, id := range c.Sessions.Close(key) {
		if w, ok := c.Reg.Window(id); ok {
			c.Reg.StartClose(w, nowMs)
		}
	}
	c.Binds.UnbindClient(key)
	c.Subscribers.Remove(key)
}

// noteMidClient records that a client holding a non-BOTTOM window has
// ever connected, so ShouldExit doesn't fire before one ever has (§7: a
// bare-background instance with no mid-layer client yet is not "the last
// mid-layer client disconnected", it's "none has connected yet").
func (c *Compositor) noteMidClient() {
	for _, w := range c.Reg.Windows() {
		if w.band != BandBottom {
			c.sawMidClient = true
			return
		}
	}
}

// ShouldExit reports whether the server should shut down: it has seen at
// least one mid-layer (non-background) client, and none remain with a
// live window outside BandBottom (§7: "after the last mid-layer client
// disconnects, the server exits" -- a BOTTOM-only background client,
// e.g. a wallpaper, never by itself triggers shutdown).
func (c *Compositor) ShouldExit() bool {
	c.noteMidClient()
	if !c.sawMidClient {
		return false
	}
	for _, w := range c.Reg.Windows() {
		if w.band != BandBottom {
			return false
		}
	}
	return true
}

// sampleAlpha maps a screen-space point into a window's local buffer,
// inverting the window's rotation if any, and reports the pixel's alpha
// (§4.2/§4.7: hit-testing and rendering both need this same mapping).
func sampleAlpha(w *Window, screenX, screenY int) (byte, bool) {
	lx, ly := float64(screenX-w.X), float64(screenY-w.Y)
	if w.RotationDeg != 0 {
		m := pixel.AboutCenter(pixel.RotateDegrees(w.RotationDeg), float64(w.Width)/2, float64(w.Height)/2)
		lx, ly = m.Invert().Apply(lx, ly)
	}
	x, y := int(lx), int(ly)
	if x < 0 || y < 0 || x >= w.Width || y >= w.Height || w.Buffer == nil {
		return 0, false
	}
	_, _, _, a, ok := w.Buffer.At(x, y)
	return a, ok
}

// HandlePointerMotion feeds relative device motion through the pointer
// state machine (§4.4) and folds in any resulting damage.
func (c *Compositor) HandlePointerMotion(dx, dy int) []Outbound {
	out := c.Dispatcher.Move(dx*pointerScale, dy*pointerScale, sampleAlpha)
	for _, w := range c.Reg.Windows() {
		c.Damage.Add(damageRectFor(w))
	}
	return out
}

// HandlePointerButton feeds a device button edge through the dispatcher.
func (c *Compositor) HandlePointerButton(button uint32, down bool, modifiers uint32, nowMs int64) []Outbound {
	var out []Outbound
	if down {
		out = c.Dispatcher.ButtonDown(button, modifiers, nowMs, sampleAlpha)
	} else {
		out = c.Dispatcher.ButtonUp(button)
	}
	for _, o := range out {
		if _, ok := o.Message.(*protocol.WindowFocusChangeMsg); ok {
			c.Subscribers.NotifyAll(c.Sessions)
			break
		}
	}
	for _, w := range c.Reg.Windows() {
		c.Damage.Add(damageRectFor(w))
	}
	return out
}

// HandlePointerWheel feeds a device scroll tick through the dispatcher.
func (c *Compositor) HandlePointerWheel(delta int, modifiers uint32) {
	c.Dispatcher.Wheel(delta, modifiers)
	if w := c.Reg.Focused(); w != nil {
		c.Damage.Add(damageRectFor(w))
	}
}

// HandleKeyInput feeds a device key edge through the keyboard router,
// translating its KeyResult into outbound messages plus any direct
// side effects (close, screenshot) the caller should act on.
func (c *Compositor) HandleKeyInput(keycode, state, modifiers uint32, nowMs int64) KeyResult {
	res := c.Dispatcher.HandleKey(keycode, state, modifiers, nowMs)
	if res.Close != 0 {
		if w, ok := c.Reg.Window(res.Close); ok {
			c.Reg.StartClose(w, nowMs)
		}
	}
	if res.Screenshot != nil {
		c.pendingScreenshot = res.Screenshot
	}
	for _, w := range c.Reg.Windows() {
		c.Damage.Add(damageRectFor(w))
	}
	return res
}

// RenderFrame implements the render loop's per-frame algorithm: expire
// idle interactive resizes, composite every flipped window back-to-front
// with blur-behind support, draw any toasts and the cursor, present the
// damage recorded since the last frame, reap finished closing animations
// (releasing their buffers), and service a pending screenshot request.
// Toasts and the cursor add no damage of their own. It returns the
// windows reaped this frame.
func (c *Compositor) RenderFrame(nowMs int64, now timestamp) []*Window {
	for _, w := range c.Reg.Windows() {
		c.Resizer.ExpireInteractive(w, nowMs)
	}

	dst := c.Backend.Buffer()
	for _, w := range c.Reg.WindowsInPaintOrder() {
		if !w.flipped || w.Buffer == nil {
			continue
		}
		if w.HasFlag(FlagBlurBehind) {
			c.compositeBlurBehind(dst, w)
		}
		c.compositeWindow(dst, w)
	}

	c.Toasts.Prune(nowMs)
	if !c.Toasts.Empty() {
		c.Toasts.Draw(dst)
	}
	c.drawCursor(dst)

	clip := c.Damage.Clip()
	if !clip.Empty() {
		_ = c.Backend.Present(clip)
	}
	c.Damage.Reset()

	reaped := c.Reg.ReapClosed(nowMs)
	for _, w := range reaped {
		if w.Bufid != 0 && w.Buffer != nil {
			_ = c.Resizer.ReleaseBuffer(w.Bufid, w.Buffer.Pix)
		}
	}
	if len(reaped) > 0 {
		c.Subscribers.NotifyAll(c.Sessions)
	}

	if req := c.pendingScreenshot; req != nil {
		c.pendingScreenshot = nil
		c.serviceScreenshot(req, now, nowMs)
	}
	return reaped
}

// compositeWindow blits one window into dst, honoring opacity, rotation
// and an in-progress interactive resize preview (both routed through
// MatrixBlit), falling back to the cheaper AlphaBlit path for the common
// case of an upright, non-previewing window.
func (c *Compositor) compositeWindow(dst *pixel.Buffer, w *Window) {
	clip := w.Rect()
	if w.RotationDeg != 0 {
		m := pixel.AboutCenter(pixel.RotateDegrees(w.RotationDeg), float64(w.Width)/2, float64(w.Height)/2)
		clip = m.BoundingBox(float64(w.Width), float64(w.Height))
		clip.X += w.X
		clip.Y += w.Y
		m = pixel.Mul(pixel.Translate(float64(w.X), float64(w.Y)), m)
		pixel.MatrixBlit(dst, w.Buffer, m, w.Opacity, clip)
		return
	}
	if w.resize.interactive {
		m := pixel.Mul(pixel.Translate(float64(w.X), float64(w.Y)), w.PreviewTransform())
		clip = pixel.Rect{X: w.X + w.resize.resizingOffX, Y: w.Y + w.resize.resizingOffY, W: w.resize.resizingW, H: w.resize.resizingH}
		pixel.MatrixBlit(dst, w.Buffer, m, w.Opacity, clip)
		return
	}
	pixel.AlphaBlit(dst, w.Buffer, w.X, w.Y, w.Opacity, clip)
}

// serviceScreenshot writes the requested capture to /tmp per §6. now
// supplies the calendar breakdown for the filename; the caller (Run)
// is the only place that touches the wall clock.
func (c *Compositor) serviceScreenshot(req *ScreenshotRequest, now timestamp, nowMs int64) {
	path := ScreenshotPath(now)
	if req.FullScreen {
		_ = WriteFullScreenshot(path, c.Backend.Buffer())
		c.Toasts.Post("Screenshot saved to "+path, nowMs)
		return
	}
	if w, ok := c.Reg.Window(req.Wid); ok && w.Buffer != nil {
		_ = WriteWindowScreenshot(path, w.Buffer)
		c.Toasts.Post("Screenshot saved to "+path, nowMs)
	}
}

// drawCursor paints the pointer sprite as a small filled crosshair at the
// dispatcher's current screen position. The same white crosshair is drawn
// whatever CurrentCursor reports. The compositor ships no cursor theme/icon set (out of scope,
// see DESIGN.md), so the sprite is a minimal line marker rather than a
// themed bitmap.
func (c *Compositor) drawCursor(dst *pixel.Buffer) {
	sx, sy := c.Dispatcher.screenXY()
	pixel.DrawLine(dst, sx-4, sy, sx+4, sy, 255, 255, 255, 255)
	pixel.DrawLine(dst, sx, sy-4, sx, sy+4, 255, 255, 255, 255)
}

// compositeBlurBehind blurs the region of dst a BLUR_BEHIND window
// overlaps, into the scratch buffer, then blits the blurred result back
// underneath the window itself (§4.7 NEW).
func (c *Compositor) compositeBlurBehind(dst *pixel.Buffer, w *Window) {
	r := w.Rect().Pad(blurKernelRadius)
	r = r.Intersect(pixel.Rect{X: 0, Y: 0, W: dst.W, H: dst.H})
	if r.Empty() {
		return
	}
	pixel.BoxBlur(c.blurScratch, dst, blurKernelRadius)
	pixel.AlphaBlit(dst, c.blurScratch, 0, 0, 255, r)
}
