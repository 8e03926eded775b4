// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mmio

import (
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/usbarmory/miniload/mmio/mmiotest"
)

var testLayout = &Layout{
	Name: "test",
	Size: 0x10,
}

var (
	reg0 = Register{"REG0", 0x00}
	reg1 = Register{"REG1", 0x04}
	reg2 = Register{"REG2", 0x08}
	reg3 = Register{"REG3", 0x0c}
)

const guard = 0xa5a5a5a5

func TestMemoryAccessStaysWithinLayout(t *testing.T) {
	// 2 guard words on each side of the 4 register block
	buf := make([]uint32, 8)

	for i := range buf {
		buf[i] = guard
	}

	base := uint(uintptr(unsafe.Pointer(&buf[2])))
	v := New(base, testLayout, nil)

	for _, r := range []Register{reg0, reg1, reg2, reg3} {
		v.Write(r, 0xffffffff)
		v.Set(r, Field{Pos: 4, Mask: 0xf}, 0)
		require.Equal(t, uint32(0xffffff0f), v.Read(r))
		require.Equal(t, uint32(0), v.Get(r, Field{Pos: 4, Mask: 0xf}))
	}

	require.Equal(t, []uint32{guard, guard}, buf[0:2])
	require.Equal(t, []uint32{guard, guard}, buf[6:8])

	runtime.KeepAlive(buf)
}

func TestUndeclaredOffsetPanics(t *testing.T) {
	v := New(0x1000, testLayout, mmiotest.NewBus())

	for _, r := range []Register{
		{"END", 0x10},
		{"BEYOND", 0x100},
		{"UNALIGNED", 0x02},
		{"STRADDLE", 0x0e},
	} {
		require.Panics(t, func() { v.Read(r) }, r.Name)
		require.Panics(t, func() { v.Write(r, 0) }, r.Name)
	}
}

func TestViewAddressing(t *testing.T) {
	bus := mmiotest.NewBus()
	v := New(0x3f201000, testLayout, bus)

	require.Equal(t, uint(0x3f201000), v.Base())
	require.Equal(t, testLayout, v.Layout())

	v.Write(reg3, 0x12345678)
	require.Equal(t, uint32(0x12345678), bus.Peek(0x3f20100c))

	bus.Poke(0x3f201004, 1<<5)
	require.True(t, v.IsSet(reg1, 5))
	require.False(t, v.IsSet(reg1, 4))
}

func TestIsSetSingleBit(t *testing.T) {
	bus := mmiotest.NewBus()
	v := New(0, testLayout, bus)

	bus.Poke(0x00, 1<<31|1)

	require.True(t, v.IsSet(reg0, 0))
	require.True(t, v.IsSet(reg0, 31))
	require.False(t, v.IsSet(reg0, 1))
	require.False(t, v.IsSet(reg0, 30))
}

func TestSetPreservesOtherFields(t *testing.T) {
	bus := mmiotest.NewBus()
	v := New(0, testLayout, bus)

	v.Write(reg0, 0x00000fff)
	v.Set(reg0, Field{Pos: 12, Mask: 0b111}, 0b100)

	require.Equal(t, uint32(0x00004fff), v.Read(reg0))
	require.Equal(t, uint32(0b100), v.Get(reg0, Field{Pos: 12, Mask: 0b111}))
}

func TestFieldEncode(t *testing.T) {
	require.Equal(t, uint32(0b100<<12), Field{Pos: 12, Mask: 0b111}.Encode(0b100))
	require.Equal(t, uint32(0x3<<5), Field{Pos: 5, Mask: 0x3}.Encode(0xff))
}

func TestWaitReturnsOnceConditionHolds(t *testing.T) {
	bus := mmiotest.NewBus()
	v := New(0, testLayout, bus)

	bus.Poke(0x08, 1<<3)
	v.Wait(reg2, 3, true)
	v.Wait(reg2, 4, false)
}

func TestNewRejectsNilLayout(t *testing.T) {
	require.Panics(t, func() { New(0, nil, nil) })
}
