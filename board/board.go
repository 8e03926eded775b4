// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package board provides the Raspberry Pi 3 and 4 driver bring-up.
package board

import (
	"errors"
	"sync/atomic"

	"github.com/usbarmory/miniload/bcm"
	"github.com/usbarmory/miniload/console"
	"github.com/usbarmory/miniload/driver"
	"github.com/usbarmory/miniload/mem"
)

// ErrAlreadyDone is returned on repeated board initialization.
var ErrAlreadyDone = errors.New("init already done")

// Board represents the board peripherals used by the firmware.
type Board struct {
	UART *bcm.PL011
	GPIO *bcm.GPIO

	done atomic.Bool
}

// Default is the board instance at the mem package physical addresses.
var Default = New(
	bcm.NewPL011(mem.UARTBase, nil),
	bcm.NewGPIO(mem.GPIOBase, nil),
)

// New returns a Board for the given drivers.
func New(uart *bcm.PL011, gpio *bcm.GPIO) *Board {
	return &Board{
		UART: uart,
		GPIO: gpio,
	}
}

// Init registers the board drivers with the driver Manager, the UART post
// initialization makes it the active console of the console Registry, the
// GPIO one routes the UART pins.
//
// Init runs at most once, later invocations return ErrAlreadyDone and leave
// the Manager untouched, even when the first one failed.
func (b *Board) Init(m *driver.Manager, r *console.Registry) (err error) {
	if !b.done.CompareAndSwap(false, true) {
		return ErrAlreadyDone
	}

	uart := driver.NewDescriptor(b.UART, func() error {
		r.Register(b.UART)
		return nil
	})

	if err = m.Register(uart); err != nil {
		return
	}

	gpio := driver.NewDescriptor(b.GPIO, func() error {
		b.GPIO.MapPL011UART()
		return nil
	})

	return m.Register(gpio)
}

// Init initializes the Default board against the default driver Manager and
// console Registry.
func Init() error {
	return Default.Init(driver.Default, console.Default)
}

// Name returns the board model name.
func Name() string {
	return mem.BoardName
}
