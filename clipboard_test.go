// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/nexuswm/compositor/shm"
)

func TestClipboardInlineRoundTrip(t *testing.T) {
	c := NewClipboard(DefaultIdentity, shm.NewMemAllocator())
	if err := c.Store([]byte("hello")); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if c.IsStaged() {
		t.Fatal("small content should stay inline")
	}
	if got := c.Fetch(); !bytes.Equal(got, []byte("hello")) {
		t.Fatalf("expected inline fetch to echo content, got %q", got)
	}
}

func TestClipboardExactlyAtInlineCap(t *testing.T) {
	c := NewClipboard(DefaultIdentity, shm.NewMemAllocator())
	content := bytes.Repeat([]byte("a"), clipboardInlineCap)
	if err := c.Store(content); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if c.IsStaged() {
		t.Fatal("content exactly at the inline cap should still be inline")
	}
	if got := c.Fetch(); !bytes.Equal(got, content) {
		t.Fatal("expected the full inline content echoed back")
	}
}

func TestClipboardOverCapUsesSentinel(t *testing.T) {
	c := NewClipboard(DefaultIdentity, shm.NewMemAllocator())
	content := bytes.Repeat([]byte("a"), clipboardInlineCap+1)
	if err := c.Store(content); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !c.IsStaged() {
		t.Fatal("content one byte over the inline cap should be staged")
	}
	want := []byte(fmt.Sprintf("%s%d", clipboardSentinelPrefix, len(content)))
	if got := c.Fetch(); !bytes.Equal(got, want) {
		t.Fatalf("expected sentinel %q, got %q", want, got)
	}
}

func TestClipboardStoreReplacesPreviousStagedRegion(t *testing.T) {
	alloc := shm.NewMemAllocator()
	c := NewClipboard(DefaultIdentity, alloc)
	big := bytes.Repeat([]byte("a"), clipboardInlineCap+10)
	if err := c.Store(big); err != nil {
		t.Fatalf("Store big: %v", err)
	}
	if !alloc.Live(clipboardRegionName(DefaultIdentity)) {
		t.Fatal("expected the staged region to exist in the allocator")
	}
	if err := c.Store([]byte("small")); err != nil {
		t.Fatalf("Store small: %v", err)
	}
	if c.IsStaged() {
		t.Fatal("expected the clipboard to fall back to inline storage")
	}
	if alloc.Live(clipboardRegionName(DefaultIdentity)) {
		t.Fatal("expected the old staged region released once replaced")
	}
}

func TestClipboardClose(t *testing.T) {
	alloc := shm.NewMemAllocator()
	c := NewClipboard(DefaultIdentity, alloc)
	big := bytes.Repeat([]byte("a"), clipboardInlineCap+10)
	if err := c.Store(big); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if alloc.Live(clipboardRegionName(DefaultIdentity)) {
		t.Fatal("expected Close to release the staged region")
	}
}
