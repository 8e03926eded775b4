// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build !rpi4
// +build !rpi4

package mem

// BCM2837 peripherals
const MMIOBase = 0x3f000000

const BoardName = "Raspberry Pi 3"
