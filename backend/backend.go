// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

// Package backend seams the compositor away from any single display
// target, the same way the teacher's device package seams its engine away
// from any single windowing/graphics library. A Backend hands the
// compositor a pixel.Buffer to render into and a way to publish a
// finished frame; what happens underneath -- a real linear framebuffer, a
// nested window on top of another compositor instance, or nothing at all
// in tests -- is the implementation's business.
package backend

import "github.com/nexuswm/compositor/pixel"

// Backend is the compositor's render target. Width/Height report the
// current display geometry (which may change underneath a nested backend
// if the parent window is resized); Buffer returns the surface the
// compositor's render pass writes into; Present publishes the buffer's
// current contents, and Close releases any OS resources.
type Backend interface {
	Width() int
	Height() int
	Buffer() *pixel.Buffer
	Present(damage pixel.Rect) error
	Close() error
}

// Config carries the parameters common to every backend implementation.
type Config struct {
	Nested     bool
	Geometry   string // "WxH" of the nested window; only meaningful when Nested is true.
	DevicePath string // linear framebuffer device path, default "/dev/fb0".
}
