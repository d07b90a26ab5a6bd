// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package pixel

import (
	"image"
	"image/color"
)

// bgraImage adapts a Buffer (BGRA, premultiplied) to the standard
// image.Image / draw.Image interfaces so the matrix-transform path can
// reuse golang.org/x/image/draw's affine transformer instead of a
// hand-rolled sampler.
type bgraImage struct {
	buf *Buffer
}

func (im *bgraImage) ColorModel() color.Model { return color.RGBAModel }
func (im *bgraImage) Bounds() image.Rectangle { return image.Rect(0, 0, im.buf.W, im.buf.H) }

func (im *bgraImage) At(x, y int) color.Color {
	b, g, r, a, ok := im.buf.At(x, y)
	if !ok {
		return color.RGBA{}
	}
	return color.RGBA{R: r, G: g, B: b, A: a}
}

func (im *bgraImage) Set(x, y int, c color.Color) {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	im.buf.Set(x, y, rgba.B, rgba.G, rgba.R, rgba.A)
}

// asImage wraps a Buffer as a read-only image.Image.
func asImage(b *Buffer) image.Image { return &bgraImage{buf: b} }

// asDrawImage wraps a Buffer as a mutable draw.Image.
func asDrawImage(b *Buffer) *bgraImage { return &bgraImage{buf: b} }
