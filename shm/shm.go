// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

// Package shm provides the named shared-memory region allocator the
// compositor uses for window pixel buffers and bundled font data. A region
// is POSIX shared memory (/dev/shm on Linux) sized once at creation and
// mutably mapped into this process; the client-side counterpart maps the
// same name read-write and is out of scope (per the spec, shared-memory
// provisioning is specified only by the contract below).
package shm

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Region is one mapped shared-memory segment.
type Region struct {
	Name string // "<server-ident>.buf.<bufid>" by convention; see compositor.Identity.
	Size int
	Data []byte // mmap'd bytes, length == Size.

	fd int
}

// Allocator creates and releases named shared-memory regions. New provides
// the default POSIX-backed implementation; tests use NewMemAllocator to
// avoid touching /dev/shm.
type Allocator interface {
	Create(name string, size int) (*Region, error)
	Release(r *Region) error
}

// New returns the default Allocator, backed by POSIX shared memory.
func New() Allocator { return &posixAllocator{} }

type posixAllocator struct{}

// shmPath namespaces names under /dev/shm, as shm_open does. The name is
// appended as given; path separators in it are not stripped.
func shmPath(name string) string {
	return "/dev/shm/" + name
}

func (posixAllocator) Create(name string, size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("shm: invalid size %d for %q", size, name)
	}
	path := shmPath(name)
	fd, err := unix.Open(path, unix.O_CREAT|unix.O_RDWR|unix.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("shm: open %s: %w", path, err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("shm: ftruncate %s: %w", path, err)
	}
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("shm: mmap %s: %w", path, err)
	}
	return &Region{Name: name, Size: size, Data: data, fd: fd}, nil
}

func (posixAllocator) Release(r *Region) error {
	if r == nil {
		return nil
	}
	var err error
	if r.Data != nil {
		err = unix.Munmap(r.Data)
		r.Data = nil
	}
	if r.fd != 0 {
		unix.Close(r.fd)
	}
	_ = unix.Unlink(shmPath(r.Name))
	return err
}
