// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/nexuswm/compositor/pixel"
)

// toastDurationMs is how long a toast stays on screen before it is
// dropped from the active list.
const toastDurationMs = 2000

// toast is a short-lived on-screen notification line (§3 NEW), used by
// the screenshot flow (§4.1 step 8: "emit a toast notification").
// original_source's compositor.c has a yutani_post_message-driven
// notification path this models in spirit, not in wire format -- toasts
// never leave the server, they're composited directly.
type toast struct {
	text      string
	expiresMs int64
}

// Toasts holds the currently active toast notifications.
type Toasts struct {
	active []toast
}

// Post adds a new toast, visible for toastDurationMs from now.
func (t *Toasts) Post(text string, nowMs int64) {
	t.active = append(t.active, toast{text: text, expiresMs: nowMs + toastDurationMs})
}

// Prune drops expired toasts.
func (t *Toasts) Prune(nowMs int64) {
	live := t.active[:0]
	for _, to := range t.active {
		if to.expiresMs > nowMs {
			live = append(live, to)
		}
	}
	t.active = live
}

// Empty reports whether there are no active toasts.
func (t *Toasts) Empty() bool { return len(t.active) == 0 }

// Draw renders every active toast as a line of text near the bottom of
// the buffer, stacked upward, using the bundled basicfont face so the
// compositor never depends on client-visible font shared-memory regions
// for its own UI.
func (t *Toasts) Draw(dst *pixel.Buffer) {
	img := toastTarget{buf: dst}
	face := basicfont.Face7x13
	baseY := dst.H - 16
	for i := len(t.active) - 1; i >= 0; i-- {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.White),
			Face: face,
			Dot:  fixed.P(8, baseY-i*16),
		}
		d.DrawString(t.active[i].text)
	}
}

// toastTarget adapts a pixel.Buffer to draw.Image for font.Drawer,
// compositing each glyph pixel over the existing contents at full
// opacity -- toasts are drawn as the very last compositing step, over
// the fully-rendered frame, so a straight overwrite (rather than the
// general AlphaBlit path) is correct and cheap.
type toastTarget struct {
	buf *pixel.Buffer
}

func (t toastTarget) ColorModel() color.Model { return color.RGBAModel }
func (t toastTarget) Bounds() image.Rectangle { return image.Rect(0, 0, t.buf.W, t.buf.H) }
func (t toastTarget) At(x, y int) color.Color {
	b, g, r, a, ok := t.buf.At(x, y)
	if !ok {
		return color.RGBA{}
	}
	return color.RGBA{R: r, G: g, B: b, A: a}
}
func (t toastTarget) Set(x, y int, c color.Color) {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	if rgba.A == 0 {
		return
	}
	t.buf.Set(x, y, rgba.B, rgba.G, rgba.R, 255)
}
