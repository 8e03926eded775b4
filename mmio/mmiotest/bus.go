// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package mmiotest provides a recording register bus for testing drivers
// without hardware.
package mmiotest

import (
	"sync"
)

// Access is a single recorded register load or store.
type Access struct {
	Store bool
	Addr  uint
	Val   uint32
}

// Bus is an mmio.Accessor backed by a sparse register file, all accesses
// are recorded in order. Unwritten registers read as zero.
type Bus struct {
	sync.Mutex

	regs map[uint]uint32
	log  []Access
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{
		regs: make(map[uint]uint32),
	}
}

func (b *Bus) Load32(addr uint) uint32 {
	b.Lock()
	defer b.Unlock()

	val := b.regs[addr]
	b.log = append(b.log, Access{Addr: addr, Val: val})

	return val
}

func (b *Bus) Store32(addr uint, val uint32) {
	b.Lock()
	defer b.Unlock()

	b.regs[addr] = val
	b.log = append(b.log, Access{Store: true, Addr: addr, Val: val})
}

// Peek returns a register value without recording the access.
func (b *Bus) Peek(addr uint) uint32 {
	b.Lock()
	defer b.Unlock()

	return b.regs[addr]
}

// Poke sets a register value without recording the access.
func (b *Bus) Poke(addr uint, val uint32) {
	b.Lock()
	defer b.Unlock()

	b.regs[addr] = val
}

// Log returns a copy of the recorded accesses.
func (b *Bus) Log() []Access {
	b.Lock()
	defer b.Unlock()

	return append([]Access(nil), b.log...)
}

// Stores returns the recorded stores only.
func (b *Bus) Stores() (s []Access) {
	for _, a := range b.Log() {
		if a.Store {
			s = append(s, a)
		}
	}

	return
}

// Reset clears the access log, register values are kept.
func (b *Bus) Reset() {
	b.Lock()
	defer b.Unlock()

	b.log = nil
}
