// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build rpi4
// +build rpi4

package bcm

// setPullUpDown selects the pin 14 and 15 resistors directly, the BCM2711
// has no clocked pull-up/down sequence.
func (g *gpio) setPullUpDown() {
	g.regs.Write(GPIO_PUP_PDN_CNTRL_REG0, GPIO_PUP_PDN_CNTRL14.Encode(GPIO_PUP_PDN_PULLUP)|GPIO_PUP_PDN_CNTRL15.Encode(GPIO_PUP_PDN_PULLUP))
}
