// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpinForCyclesReturns(t *testing.T) {
	SpinForCycles(0)
	SpinForCycles(2000)
}

func TestTicksToNanos(t *testing.T) {
	// 19.2MHz, Raspberry Pi 3 generic timer
	const freq = 19200000

	require.Equal(t, int64(0), ticksToNanos(0, freq))
	require.Equal(t, int64(3500000000), ticksToNanos(3*freq+freq/2, freq))
	// ticks*1e9 would overflow uint64
	require.Equal(t, int64(1<<20)*1e9, ticksToNanos(1<<40, 1<<20))
	require.Equal(t, int64(0), ticksToNanos(42, 0))
}

func TestNanotimeMonotonic(t *testing.T) {
	a := Nanotime()
	SpinForCycles(1000)
	require.GreaterOrEqual(t, Nanotime(), a)
}
