// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package shm

import "fmt"

// MemAllocator is an in-process Allocator used by tests. It hands out
// plain Go byte slices instead of
// POSIX shared memory, keyed by name so Release can be observed.
type MemAllocator struct {
	regions map[string]*Region
}

// NewMemAllocator returns an Allocator that never touches the filesystem.
func NewMemAllocator() *MemAllocator {
	return &MemAllocator{regions: map[string]*Region{}}
}

func (a *MemAllocator) Create(name string, size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("shm: invalid size %d for %q", size, name)
	}
	if _, exists := a.regions[name]; exists {
		return nil, fmt.Errorf("shm: region %q already exists", name)
	}
	r := &Region{Name: name, Size: size, Data: make([]byte, size)}
	a.regions[name] = r
	return r, nil
}

func (a *MemAllocator) Release(r *Region) error {
	if r == nil {
		return nil
	}
	delete(a.regions, r.Name)
	r.Data = nil
	return nil
}

// Live reports whether a named region is still allocated. Used by tests to
// assert exactly-once release.
func (a *MemAllocator) Live(name string) bool {
	_, ok := a.regions[name]
	return ok
}
