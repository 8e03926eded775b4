// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build rpi4
// +build rpi4

package mem

// BCM2711 peripherals (low peripheral mode)
const MMIOBase = 0xfe000000

const BoardName = "Raspberry Pi 4"
