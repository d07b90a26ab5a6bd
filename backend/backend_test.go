// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package backend

import (
	"testing"

	"github.com/nexuswm/compositor/pixel"
)

func TestSoftwareBackendTracksPresents(t *testing.T) {
	b := NewSoftwareBackend(64, 48)
	if b.Width() != 64 || b.Height() != 48 {
		t.Fatalf("unexpected size %dx%d", b.Width(), b.Height())
	}
	if b.PresentCount() != 0 {
		t.Fatalf("expected zero presents before any call")
	}
	damage := pixel.Rect{X: 1, Y: 2, W: 3, H: 4}
	if err := b.Present(damage); err != nil {
		t.Fatalf("Present returned error: %v", err)
	}
	if b.PresentCount() != 1 {
		t.Fatalf("expected one present, got %d", b.PresentCount())
	}
	if b.LastDamage() != damage {
		t.Fatalf("LastDamage mismatch: got %+v want %+v", b.LastDamage(), damage)
	}
}

func TestSoftwareBackendClose(t *testing.T) {
	b := NewSoftwareBackend(4, 4)
	if b.Closed() {
		t.Fatal("backend should not start closed")
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if !b.Closed() {
		t.Fatal("expected Closed() true after Close")
	}
}

func TestSoftwareBackendSatisfiesInterface(t *testing.T) {
	var _ Backend = NewSoftwareBackend(1, 1)
}
