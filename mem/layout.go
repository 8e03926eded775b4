// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package mem defines the board physical memory map.
package mem

const (
	GPIOOffset = 0x00200000
	UARTOffset = 0x00201000

	// GPIO controller
	GPIOBase = MMIOBase + GPIOOffset

	// PL011 UART
	UARTBase = MMIOBase + UARTOffset
)

const (
	// LoadAddress is the default kernel load address, received images are
	// written and executed from here.
	LoadAddress = 0x00080000

	// LoadMaxSize bounds received images, 0 places no limit and trusts
	// the sender.
	LoadMaxSize = 0
)

const (
	// FirmwareStart is the loader runtime memory start, away from
	// LoadAddress so that received images do not overwrite it.
	FirmwareStart = 0x02000000
	FirmwareSize  = 0x01000000
)

// LoadRegion is the received image destination, it is unbounded unless
// LoadMaxSize is set.
var LoadRegion = &Region{
	Start: LoadAddress,
	Size:  LoadMaxSize,
}
