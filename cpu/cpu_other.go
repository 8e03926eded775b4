// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build !arm64
// +build !arm64

package cpu

import (
	"fmt"
	"runtime"
	"time"
)

var start = time.Now()

func Nop() {}

// WaitForever parks the calling goroutine, hosted builds have no wait for
// event instruction.
func WaitForever() {
	for {
		runtime.Gosched()
	}
}

func jump(entry uint) {
	panic(fmt.Sprintf("cpu: cannot jump to %#x on %s", entry, runtime.GOARCH))
}

// Counter returns nanoseconds since process start, hosted builds have no
// generic timer.
func Counter() uint64 {
	return uint64(time.Since(start))
}

func CounterFreq() uint64 {
	return uint64(time.Second)
}
