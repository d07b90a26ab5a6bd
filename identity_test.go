// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import (
	"os"
	"testing"

	"github.com/nexuswm/compositor/shm"
)

func TestNestedIdentityFormat(t *testing.T) {
	id := NestedIdentity(4242)
	if id != "compositor-nest-4242" {
		t.Fatalf("unexpected nested identity %q", id)
	}
}

func TestIdentityBufferName(t *testing.T) {
	id := Identity("compositor")
	if got := id.BufferName(7); got != "compositor.buf.7" {
		t.Fatalf("unexpected buffer name %q", got)
	}
}

func TestIdentityPublishSetsDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")
	id := Identity("compositor-test")
	if err := id.Publish(); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := os.Getenv("DISPLAY"); got != "compositor-test" {
		t.Fatalf("expected DISPLAY=compositor-test, got %q", got)
	}
}

func TestFontSetLoadAndClose(t *testing.T) {
	alloc := shm.NewMemAllocator()
	fs := NewFontSet(DefaultIdentity, alloc)
	data := []byte("fake ttf bytes")
	if err := fs.Load("sans", data); err != nil {
		t.Fatalf("Load: %v", err)
	}
	name := fs.fontRegionName("sans")
	if !alloc.Live(name) {
		t.Fatal("expected the font region to exist after Load")
	}
	fs.Close()
	if alloc.Live(name) {
		t.Fatal("expected the font region released after Close")
	}
}
