// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package bcm

import (
	"github.com/usbarmory/miniload/lock"
	"github.com/usbarmory/miniload/mmio"
)

// GPIO registers
var (
	GPFSEL1   = mmio.Register{Name: "GPFSEL1", Offset: 0x04}
	GPPUD     = mmio.Register{Name: "GPPUD", Offset: 0x94}
	GPPUDCLK0 = mmio.Register{Name: "GPPUDCLK0", Offset: 0x98}

	GPIO_PUP_PDN_CNTRL_REG0 = mmio.Register{Name: "GPIO_PUP_PDN_CNTRL_REG0", Offset: 0xe4}
)

// GPIO register fields
var (
	GPFSEL1_FSEL14 = mmio.Field{Pos: 12, Mask: 0b111}
	GPFSEL1_FSEL15 = mmio.Field{Pos: 15, Mask: 0b111}

	GPPUD_PUD = mmio.Field{Pos: 0, Mask: 0b11}

	GPIO_PUP_PDN_CNTRL14 = mmio.Field{Pos: 28, Mask: 0b11}
	GPIO_PUP_PDN_CNTRL15 = mmio.Field{Pos: 30, Mask: 0b11}
)

const (
	GPIO_FUNC_ALT0 = 0b100

	GPPUD_OFF = 0b00

	GPPUDCLK0_PUDCLK14 = 14
	GPPUDCLK0_PUDCLK15 = 15

	GPIO_PUP_PDN_PULLUP = 0b01
)

// GPIOCompatible is the GPIO driver name.
const GPIOCompatible = "BCM GPIO"

var gpioLayout = &mmio.Layout{
	Name: "GPIO",
	Size: 0xe8,
}

type gpio struct {
	regs *mmio.View
}

// GPIO represents the GPIO controller instance.
type GPIO struct {
	inner lock.Mutex[gpio]
}

// NewGPIO returns a GPIO driver for the controller at the given base
// address, a nil Accessor selects mmio.Memory.
func NewGPIO(base uint, acc mmio.Accessor) *GPIO {
	return &GPIO{
		inner: lock.New(gpio{
			regs: mmio.New(base, gpioLayout, acc),
		}),
	}
}

// Compatible returns the driver name.
func (hw *GPIO) Compatible() string {
	return GPIOCompatible
}

// Init has nothing to configure, pins are muxed on demand.
func (hw *GPIO) Init() error {
	return nil
}

// MapPL011UART routes the PL011 UART to pins 14 (TXD0) and 15 (RXD0) and
// configures their pull-up/down resistors, BCM2837 pins are left floating
// while BCM2711 ones are pulled up.
func (hw *GPIO) MapPL011UART() {
	hw.inner.Lock(func(g *gpio) {
		g.regs.Write(GPFSEL1, GPFSEL1_FSEL14.Encode(GPIO_FUNC_ALT0)|GPFSEL1_FSEL15.Encode(GPIO_FUNC_ALT0))
		g.setPullUpDown()
	})
}
