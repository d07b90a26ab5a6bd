// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import (
	"fmt"

	"github.com/nexuswm/compositor/shm"
)

// clipboardInlineCap is the inline content cap from §3/§6: 511 bytes.
const clipboardInlineCap = 511

// clipboardSentinelPrefix is this implementation's fixed choice for the
// §9 open question ("the exact sentinel format is implementation-
// defined"): the literal ASCII marker "BIG:" followed by the ASCII
// decimal length of the full value, per §6's own hint text.
const clipboardSentinelPrefix = "BIG:"

// clipboardRegionName is the well-known shared-memory name large
// clipboard content is staged into, per §6's "pre-staged into a
// well-known shared region".
func clipboardRegionName(id Identity) string { return string(id) + ".clipboard" }

// Clipboard is the single byte buffer §3 describes, capped inline with a
// sentinel fallback for larger content.
type Clipboard struct {
	identity Identity
	alloc    shm.Allocator

	inline []byte
	region *shm.Region // non-nil only while content exceeds the inline cap.
}

// NewClipboard returns an empty clipboard.
func NewClipboard(id Identity, alloc shm.Allocator) *Clipboard {
	return &Clipboard{identity: id, alloc: alloc}
}

// Store saves content as the new clipboard value. Content at or under
// the inline cap is kept directly; larger content is staged into the
// well-known shared region and only its sentinel is returned by Fetch.
func (c *Clipboard) Store(content []byte) error {
	if c.region != nil {
		_ = c.alloc.Release(c.region)
		c.region = nil
	}
	if len(content) <= clipboardInlineCap {
		c.inline = append([]byte(nil), content...)
		return nil
	}
	region, err := c.alloc.Create(clipboardRegionName(c.identity), len(content))
	if err != nil {
		return fmt.Errorf("compositor: stage clipboard: %w", err)
	}
	copy(region.Data, content)
	c.region = region
	c.inline = nil
	return nil
}

// Fetch returns the bytes a CLIPBOARD reply should carry: either the
// inline content itself, or the "BIG:<decimal length>" sentinel if the
// stored content exceeded the inline cap.
func (c *Clipboard) Fetch() []byte {
	if c.region != nil {
		return []byte(fmt.Sprintf("%s%d", clipboardSentinelPrefix, c.region.Size))
	}
	return append([]byte(nil), c.inline...)
}

// IsStaged reports whether the current clipboard value is large-content
// (backed by the shared region) rather than returned inline.
func (c *Clipboard) IsStaged() bool { return c.region != nil }

// Close releases the shared region, if any.
func (c *Clipboard) Close() error {
	if c.region == nil {
		return nil
	}
	err := c.alloc.Release(c.region)
	c.region = nil
	return err
}
