// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build !rpi4
// +build !rpi4

package bcm

import (
	"github.com/usbarmory/miniload/cpu"
)

// PullUpDownDelay is the number of cycles required by the BCM2837 to set up
// the pull-up/down control signal and to hold its clock (p101, BCM2835 ARM
// Peripherals).
const PullUpDownDelay = 2000

// setPullUpDown removes the pin 14 and 15 bias through the GPPUD control
// line, latched by a GPPUDCLK0 clock pulse.
func (g *gpio) setPullUpDown() {
	g.regs.Write(GPPUD, GPPUD_PUD.Encode(GPPUD_OFF))
	cpu.SpinForCycles(PullUpDownDelay)

	g.regs.Write(GPPUDCLK0, 1<<GPPUDCLK0_PUDCLK14|1<<GPPUDCLK0_PUDCLK15)
	cpu.SpinForCycles(PullUpDownDelay)

	g.regs.Write(GPPUD, GPPUD_PUD.Encode(GPPUD_OFF))
	g.regs.Write(GPPUDCLK0, 0)
}
