// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package bcm implements drivers for the Broadcom BCM2837 (Raspberry Pi 3)
// and BCM2711 (Raspberry Pi 4) PL011 UART and GPIO controllers.
//
// The BCM2711 GPIO pull-up/down sequence is selected with the `rpi4` build
// tag, BCM2837 is the default.
package bcm
