// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package mmio provides typed access to memory mapped peripheral register
// blocks.
//
// A View binds a register Layout to a fixed base address, every access goes
// through an Accessor which, for real hardware, issues each 32-bit load and
// store exactly once and in program order.
package mmio

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/usbarmory/tamago/bits"

	"github.com/usbarmory/miniload/cpu"
)

// Accessor performs 32-bit register loads and stores.
type Accessor interface {
	Load32(addr uint) uint32
	Store32(addr uint, val uint32)
}

type memory struct{}

// Memory is the Accessor for physical memory.
var Memory Accessor = memory{}

func (memory) Load32(addr uint) uint32 {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(uintptr(addr))))
}

func (memory) Store32(addr uint, val uint32) {
	atomic.StoreUint32((*uint32)(unsafe.Pointer(uintptr(addr))), val)
}

// Layout describes the byte range of a peripheral register block.
type Layout struct {
	// Name is the peripheral name, used in diagnostics
	Name string
	// Size is the register block size in bytes
	Size uint
}

// Register describes a 32-bit register within a Layout.
type Register struct {
	Name   string
	Offset uint
}

// Field describes a bit field within a Register, Mask is applied after
// shifting the register value right by Pos.
type Field struct {
	Pos  int
	Mask int
}

// Encode returns val placed in the field position, other bits are zero.
func (f Field) Encode(val uint32) uint32 {
	var w uint32
	bits.SetN(&w, f.Pos, f.Mask, val&uint32(f.Mask))
	return w
}

// View represents a register block mapped at a fixed base address.
type View struct {
	base   uint
	layout *Layout
	acc    Accessor
}

// New returns a View of layout at the given base address. The caller
// guarantees that the address range is mapped, valid and exclusively owned
// by the returned View for its entire lifetime. A nil Accessor selects
// Memory.
func New(base uint, layout *Layout, acc Accessor) *View {
	if layout == nil {
		panic("mmio: nil layout")
	}

	if acc == nil {
		acc = Memory
	}

	return &View{
		base:   base,
		layout: layout,
		acc:    acc,
	}
}

// Base returns the View base address.
func (v *View) Base() uint {
	return v.base
}

// Layout returns the View register layout.
func (v *View) Layout() *Layout {
	return v.layout
}

func (v *View) addr(r Register) uint {
	if r.Offset%4 != 0 || r.Offset+4 > v.layout.Size {
		panic(fmt.Sprintf("mmio: register %s (%#x) outside of %s layout (%#x)", r.Name, r.Offset, v.layout.Name, v.layout.Size))
	}

	return v.base + r.Offset
}

// Read returns the register value.
func (v *View) Read(r Register) uint32 {
	return v.acc.Load32(v.addr(r))
}

// Write sets the register value.
func (v *View) Write(r Register, val uint32) {
	v.acc.Store32(v.addr(r), val)
}

// Get returns the value of a register field.
func (v *View) Get(r Register, f Field) uint32 {
	val := v.Read(r)
	return bits.Get(&val, f.Pos, f.Mask)
}

// Set performs a read-modify-write of a register field.
func (v *View) Set(r Register, f Field, val uint32) {
	reg := v.Read(r)
	bits.SetN(&reg, f.Pos, f.Mask, val&uint32(f.Mask))
	v.Write(r, reg)
}

// IsSet returns whether the register bit at pos is set.
func (v *View) IsSet(r Register, pos int) bool {
	val := v.Read(r)
	return bits.Get(&val, pos, 1) == 1
}

// Wait polls the register until the bit at pos matches set. There is no
// timeout, absent hardware stalls the caller forever.
func (v *View) Wait(r Register, pos int, set bool) {
	for v.IsSet(r, pos) != set {
		cpu.Nop()
	}
}
