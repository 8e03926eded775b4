// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cpu

// defined in cpu_arm64.s
func Nop()
func WaitForever()
func jump(entry uint)
func Counter() uint64
func CounterFreq() uint64
