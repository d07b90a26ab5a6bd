// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package backend

import "github.com/nexuswm/compositor/pixel"

// SoftwareBackend is an in-memory render target with no OS dependency,
// used by tests. Present just
// records the most recently published damage rect so tests can assert on
// what the compositor believed it flushed.
type SoftwareBackend struct {
	buf         *pixel.Buffer
	lastDamage  pixel.Rect
	presentedN  int
	closed      bool
}

// NewSoftwareBackend returns a SoftwareBackend of the given size.
func NewSoftwareBackend(w, h int) *SoftwareBackend {
	return &SoftwareBackend{buf: pixel.NewBuffer(w, h)}
}

func (b *SoftwareBackend) Width() int  { return b.buf.W }
func (b *SoftwareBackend) Height() int { return b.buf.H }

func (b *SoftwareBackend) Buffer() *pixel.Buffer { return b.buf }

func (b *SoftwareBackend) Present(damage pixel.Rect) error {
	b.lastDamage = damage
	b.presentedN++
	return nil
}

func (b *SoftwareBackend) Close() error {
	b.closed = true
	return nil
}

// LastDamage returns the damage rect passed to the most recent Present
// call, for test assertions.
func (b *SoftwareBackend) LastDamage() pixel.Rect { return b.lastDamage }

// PresentCount reports how many times Present has been called.
func (b *SoftwareBackend) PresentCount() int { return b.presentedN }

// Closed reports whether Close has been called.
func (b *SoftwareBackend) Closed() bool { return b.closed }
