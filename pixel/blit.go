// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package pixel

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// AlphaBlit performs a straight (untransformed) "over" composite of src
// onto dst at (x, y), scaling src's alpha by opacity/255, clipped to
// clip. This is the fast path the compositor uses whenever a window has
// no rotation and no interactive resize preview -- see design
// note "Matrix blit vs. fast paths": the common case must stay a tight
// per-pixel loop, not a call into the general affine path below.
func AlphaBlit(dst, src *Buffer, x, y int, opacity uint8, clip Rect) {
	region := Rect{X: x, Y: y, W: src.W, H: src.H}.Intersect(clip).Intersect(Rect{X: 0, Y: 0, W: dst.W, H: dst.H})
	if region.Empty() {
		return
	}
	for sy := region.Y; sy < region.Y+region.H; sy++ {
		srow := (sy - y) * src.W * 4
		drow := sy * dst.W * 4
		for sx := region.X; sx < region.X+region.W; sx++ {
			si := srow + (sx-x)*4
			di := drow + sx*4
			blendOver(dst.Pix[di:di+4], src.Pix[si:si+4], opacity)
		}
	}
}

// blendOver composites one premultiplied BGRA source pixel over a
// premultiplied BGRA destination pixel, with an additional opacity
// multiplier applied to the source's alpha (and, proportionally, to its
// premultiplied channels).
func blendOver(dst, src []byte, opacity uint8) {
	if opacity == 0 {
		return
	}
	sa := uint32(src[3])
	if opacity != 255 {
		sa = sa * uint32(opacity) / 255
	}
	if sa == 255 && opacity == 255 {
		dst[0], dst[1], dst[2], dst[3] = src[0], src[1], src[2], src[3]
		return
	}
	if sa == 0 {
		return
	}
	scale := func(c byte) byte {
		if opacity == 255 {
			return c
		}
		return byte(uint32(c) * uint32(opacity) / 255)
	}
	sb, sg, sr := scale(src[0]), scale(src[1]), scale(src[2])
	inv := 255 - sa
	dst[0] = byte((uint32(sb) + uint32(dst[0])*inv/255))
	dst[1] = byte((uint32(sg) + uint32(dst[1])*inv/255))
	dst[2] = byte((uint32(sr) + uint32(dst[2])*inv/255))
	dst[3] = byte(sa + uint32(dst[3])*inv/255)
}

// MatrixBlit composites src onto dst through the affine transform m,
// clipped to clip, with the given opacity. It is used whenever a window
// is rotated or being scaled as part of an interactive resize preview
// (§4.7). The transform is carried out by
// golang.org/x/image/draw's NearestNeighbor affine transformer so the
// sampling matches the library every other non-fast rendering path in
// this codebase (fonts, toasts) is built on.
func MatrixBlit(dst, src *Buffer, m Mat3, opacity uint8, clip Rect) {
	if m.IsIdentity() && opacity == 255 {
		AlphaBlit(dst, src, 0, 0, opacity, clip)
		return
	}
	srcImg := asImage(src)
	dstImg := asDrawImage(dst)
	sr := image.Rect(0, 0, src.W, src.H)

	if opacity != 255 {
		srcImg = &opacityImage{img: srcImg, opacity: opacity}
	}

	affine := f64.Aff3{m.A, m.B, m.E, m.C, m.D, m.F}
	cr := image.Rect(clip.X, clip.Y, clip.X+clip.W, clip.Y+clip.H).Intersect(dstImg.Bounds())
	if cr.Empty() {
		return
	}
	clipped := &clipDrawImage{img: dstImg, clip: cr}
	draw.NearestNeighbor.Transform(clipped, affine, srcImg, sr, draw.Over, nil)
}

// opacityImage multiplies every sampled pixel's alpha (and premultiplied
// channels) by a constant factor before the transformer composites it.
type opacityImage struct {
	img     image.Image
	opacity uint8
}

func (o *opacityImage) ColorModel() color.Model { return color.RGBAModel }
func (o *opacityImage) Bounds() image.Rectangle { return o.img.Bounds() }
func (o *opacityImage) At(x, y int) color.Color {
	rgba := color.RGBAModel.Convert(o.img.At(x, y)).(color.RGBA)
	scale := func(c byte) byte { return byte(uint32(c) * uint32(o.opacity) / 255) }
	return color.RGBA{R: scale(rgba.R), G: scale(rgba.G), B: scale(rgba.B), A: scale(rgba.A)}
}

// clipDrawImage restricts Set calls to a clip rectangle so the NearestNeighbor
// transformer -- which otherwise writes over the whole destination bounds --
// respects the compositor's per-frame damage clip region (§4.7).
type clipDrawImage struct {
	img  draw.Image
	clip image.Rectangle
}

func (c *clipDrawImage) ColorModel() color.Model { return c.img.ColorModel() }
func (c *clipDrawImage) Bounds() image.Rectangle { return c.img.Bounds() }
func (c *clipDrawImage) At(x, y int) color.Color { return c.img.At(x, y) }
func (c *clipDrawImage) Set(x, y int, col color.Color) {
	if (image.Point{X: x, Y: y}).In(c.clip) {
		c.img.Set(x, y, col)
	}
}
