// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import (
	"os"
	"testing"

	"github.com/nexuswm/compositor/pixel"
)

func TestScreenshotPathFormat(t *testing.T) {
	now := timestamp{Year: 2026, Month: 7, Day: 30, Hour: 9, Minute: 5, Second: 3}
	got := ScreenshotPath(now)
	want := "/tmp/screenshot_2026-07-30_09_05_03.tga"
	if got != want {
		t.Fatalf("ScreenshotPath = %q, want %q", got, want)
	}
}

func TestWriteFullScreenshotHeaderAndSize(t *testing.T) {
	buf := pixel.NewBuffer(4, 2)
	for i := range buf.Pix {
		buf.Pix[i] = byte(i % 256)
	}
	path := t.TempDir() + "/full.tga"
	if err := WriteFullScreenshot(path, buf); err != nil {
		t.Fatalf("WriteFullScreenshot: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	wantLen := 18 + 4*2*3
	if len(data) != wantLen {
		t.Fatalf("expected %d bytes (18-byte header + 24bpp pixels), got %d", wantLen, len(data))
	}
	if data[2] != 2 {
		t.Fatalf("expected uncompressed true-color image type 2, got %d", data[2])
	}
	if data[16] != 24 {
		t.Fatalf("expected 24 bits per pixel, got %d", data[16])
	}
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	if width != 4 || height != 2 {
		t.Fatalf("expected header dimensions (4,2), got (%d,%d)", width, height)
	}
}

func TestWriteWindowScreenshotPreservesAlpha(t *testing.T) {
	buf := pixel.NewBuffer(2, 2)
	buf.Set(0, 0, 10, 20, 30, 128)
	path := t.TempDir() + "/window.tga"
	if err := WriteWindowScreenshot(path, buf); err != nil {
		t.Fatalf("WriteWindowScreenshot: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	wantLen := 18 + 2*2*4
	if len(data) != wantLen {
		t.Fatalf("expected %d bytes (18-byte header + 32bpp pixels), got %d", wantLen, len(data))
	}
	if data[16] != 32 {
		t.Fatalf("expected 32 bits per pixel, got %d", data[16])
	}
	// First pixel's BGRA bytes immediately follow the header.
	if data[18] != 10 || data[19] != 20 || data[20] != 30 || data[21] != 128 {
		t.Fatalf("expected first pixel BGRA bytes preserved, got %v", data[18:22])
	}
}
