// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import (
	"fmt"
	"os"

	"github.com/nexuswm/compositor/shm"
)

// Identity is the server's published name (§6): it seeds the
// shared-memory buffer naming convention "<server-ident>.buf.<bufid>"
// and the DISPLAY environment variable children inherit.
type Identity string

// DefaultIdentity is used for a top-level (non-nested) instance.
const DefaultIdentity Identity = "compositor"

// NestedIdentity builds the nested-mode identity string, "compositor-
// nest-<pid>", so multiple nested instances under the same parent don't
// collide on shared-memory names.
func NestedIdentity(pid int) Identity {
	return Identity(fmt.Sprintf("compositor-nest-%d", pid))
}

// Publish sets the DISPLAY environment variable to this identity, so
// children spawned by this process (or by clients it starts) inherit it.
func (id Identity) Publish() error {
	return os.Setenv("DISPLAY", string(id))
}

// BufferName returns the shared-memory region name for a given bufid,
// following the "<server-ident>.buf.<bufid>" convention from §6.
func (id Identity) BufferName(bufid uint32) string {
	return fmt.Sprintf("%s.buf.%d", id, bufid)
}

// FontSet is the fixed collection of font files the server loads at
// start-up into well-known named shared-memory regions (§6 Font
// provisioning) so clients can map them read-only by a conventional name.
type FontSet struct {
	identity Identity
	alloc    shm.Allocator
	regions  map[string]*shm.Region
}

// NewFontSet prepares an empty font set; call Load for each bundled font.
func NewFontSet(id Identity, alloc shm.Allocator) *FontSet {
	return &FontSet{identity: id, alloc: alloc, regions: make(map[string]*shm.Region)}
}

// fontRegionName is the conventional name a client maps a given face by:
// "<server-ident>.font.<face>".
func (fs *FontSet) fontRegionName(face string) string {
	return fmt.Sprintf("%s.font.%s", fs.identity, face)
}

// Load reads a font file from disk and publishes its bytes into a named
// shared-memory region under the given face name.
func (fs *FontSet) Load(face string, data []byte) error {
	name := fs.fontRegionName(face)
	region, err := fs.alloc.Create(name, len(data))
	if err != nil {
		return fmt.Errorf("compositor: load font %q: %w", face, err)
	}
	copy(region.Data, data)
	fs.regions[face] = region
	return nil
}

// Close releases every font region this set owns.
func (fs *FontSet) Close() {
	for face, r := range fs.regions {
		_ = fs.alloc.Release(r)
		delete(fs.regions, face)
	}
}
