// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import (
	"fmt"
	"os"

	"github.com/nexuswm/compositor/pixel"
)

// ScreenshotPath builds the timestamped path §6 requires:
// /tmp/screenshot_YYYY-MM-DD_HH_MM_SS.tga. now is passed in (rather than
// computed here) since this implementation avoids calling time.Now
// directly from deep inside the render path, keeping screenshot naming
// testable against a fixed instant.
func ScreenshotPath(now timestamp) string {
	return fmt.Sprintf("/tmp/screenshot_%04d-%02d-%02d_%02d_%02d_%02d.tga",
		now.Year, now.Month, now.Day, now.Hour, now.Minute, now.Second)
}

// timestamp is a plain calendar/clock breakdown, decoupled from
// time.Time so tests can construct one without touching the wall clock.
type timestamp struct {
	Year, Month, Day, Hour, Minute, Second int
}

// tgaHeader18 is the fixed 18-byte TGA header for an uncompressed,
// origin-top-left true-color image.
func tgaHeader18(width, height int, bpp byte) []byte {
	h := make([]byte, 18)
	h[2] = 2 // uncompressed true-color.
	h[12] = byte(width)
	h[13] = byte(width >> 8)
	h[14] = byte(height)
	h[15] = byte(height >> 8)
	h[16] = bpp
	h[17] = 0x20 // top-left origin bit set so rows are written top-to-bottom.
	return h
}

// WriteFullScreenshot writes buf as a 24bpp uncompressed TGA (no alpha
// channel, per §6: "24 bpp full-screen") to path.
func WriteFullScreenshot(path string, buf *pixel.Buffer) error {
	data := make([]byte, 0, 18+buf.W*buf.H*3)
	data = append(data, tgaHeader18(buf.W, buf.H, 24)...)
	for y := 0; y < buf.H; y++ {
		for x := 0; x < buf.W; x++ {
			b, g, r, _, _ := buf.At(x, y)
			data = append(data, b, g, r)
		}
	}
	return os.WriteFile(path, data, 0644)
}

// WriteWindowScreenshot writes buf as a 32bpp uncompressed TGA with
// alpha preserved, per §6: "32 bpp for window capture (with alpha
// channel preserved from the window buffer)".
func WriteWindowScreenshot(path string, buf *pixel.Buffer) error {
	data := make([]byte, 0, 18+buf.W*buf.H*4)
	data = append(data, tgaHeader18(buf.W, buf.H, 32)...)
	data = append(data, buf.Pix...) // already BGRA, matching TGA's native channel order.
	return os.WriteFile(path, data, 0644)
}
