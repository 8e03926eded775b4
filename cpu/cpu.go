// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package cpu provides the processor primitives used by the firmware: busy
// waiting, halting and transferring control to a loaded image.
package cpu

// SpinForCycles busy waits for at least n processor cycles.
func SpinForCycles(n int) {
	for i := 0; i < n; i++ {
		Nop()
	}
}

// Jump transfers control to the no-argument entry point at the given
// address, it never returns on real hardware.
func Jump(entry uint) {
	jump(entry)
}

func ticksToNanos(ticks uint64, freq uint64) int64 {
	if freq == 0 {
		return 0
	}

	sec := ticks / freq
	rem := ticks % freq

	return int64(sec*1e9 + rem*1e9/freq)
}

// Nanotime returns the generic timer value in nanoseconds.
func Nanotime() int64 {
	return ticksToNanos(Counter(), CounterFreq())
}
