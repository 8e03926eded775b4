// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"errors"
	"unsafe"
)

// ErrOutOfRegion is returned on accesses beyond a bounded Region.
var ErrOutOfRegion = errors.New("access outside of memory region")

// Region represents a physical memory area, a zero Size leaves the area
// unbounded.
type Region struct {
	Start uint
	Size  uint
}

func (r *Region) check(off int64, n int) error {
	if off < 0 {
		return errors.New("invalid offset")
	}

	if r.Size != 0 && uint(off)+uint(n) > r.Size {
		return ErrOutOfRegion
	}

	return nil
}

// WriteAt stores buf at the given offset from the region start, one byte at
// a time and in order.
func (r *Region) WriteAt(buf []byte, off int64) (n int, err error) {
	if err = r.check(off, len(buf)); err != nil {
		return
	}

	addr := r.Start + uint(off)

	for i, b := range buf {
		*(*byte)(unsafe.Pointer(uintptr(addr + uint(i)))) = b
	}

	return len(buf), nil
}

// ReadAt loads len(buf) bytes from the given offset from the region start.
func (r *Region) ReadAt(buf []byte, off int64) (n int, err error) {
	if err = r.check(off, len(buf)); err != nil {
		return
	}

	addr := r.Start + uint(off)

	for i := range buf {
		buf[i] = *(*byte)(unsafe.Pointer(uintptr(addr + uint(i))))
	}

	return len(buf), nil
}

// Entry returns the region start as an execution entry point.
func (r *Region) Entry() uint {
	return r.Start
}
