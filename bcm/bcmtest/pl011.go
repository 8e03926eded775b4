// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package bcmtest provides a simulated PL011 UART register block for testing
// code which drives the UART without hardware.
package bcmtest

import (
	"sync"

	"github.com/usbarmory/miniload/mmio/mmiotest"
)

// PL011 register offsets and flags, as seen by the device side.
const (
	dr = 0x00
	fr = 0x18

	frBusy = 1 << 3
	frRXFE = 1 << 4
	frTXFF = 1 << 5
	frTXFE = 1 << 7
)

// PL011 is an mmio.Accessor simulating a PL011 UART with unbounded FIFOs.
// Registers other than DR and FR behave as plain storage and are recorded
// by the embedded Bus.
type PL011 struct {
	*mmiotest.Bus

	// Base is the simulated register block base address
	Base uint
	// Loopback routes transmitted characters to the receive FIFO
	Loopback bool
	// OnTransmit, when set, is invoked for each transmitted character, it
	// can Feed() a response to simulate a peer.
	OnTransmit func(c byte)
	// BusyPolls is the number of FR reads which report the UART busy
	BusyPolls int
	// FullPolls is the number of FR reads which report the transmit FIFO
	// full
	FullPolls int

	mu sync.Mutex
	rx []byte
	tx []byte
}

// NewPL011 returns an idle simulated UART at the given base address.
func NewPL011(base uint) *PL011 {
	return &PL011{
		Bus:  mmiotest.NewBus(),
		Base: base,
	}
}

// Feed appends characters to the receive FIFO.
func (u *PL011) Feed(c ...byte) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.rx = append(u.rx, c...)
}

// Pending returns the number of characters in the receive FIFO.
func (u *PL011) Pending() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	return len(u.rx)
}

// Transmitted returns a copy of all transmitted characters.
func (u *PL011) Transmitted() []byte {
	u.mu.Lock()
	defer u.mu.Unlock()

	return append([]byte(nil), u.tx...)
}

func (u *PL011) flags() (val uint32) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.rx) == 0 {
		val |= frRXFE
	}

	if u.BusyPolls > 0 {
		u.BusyPolls--
		val |= frBusy
	}

	if u.FullPolls > 0 {
		u.FullPolls--
		val |= frTXFF
	} else {
		val |= frTXFE
	}

	return
}

func (u *PL011) receive() (c byte) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.rx) == 0 {
		return
	}

	c = u.rx[0]
	u.rx = u.rx[1:]

	return
}

func (u *PL011) transmit(c byte) {
	u.mu.Lock()
	u.tx = append(u.tx, c)

	if u.Loopback {
		u.rx = append(u.rx, c)
	}
	u.mu.Unlock()

	if u.OnTransmit != nil {
		u.OnTransmit(c)
	}
}

func (u *PL011) Load32(addr uint) uint32 {
	switch addr - u.Base {
	case fr:
		return u.flags()
	case dr:
		return uint32(u.receive())
	}

	return u.Bus.Load32(addr)
}

func (u *PL011) Store32(addr uint, val uint32) {
	u.Bus.Store32(addr, val)

	if addr-u.Base == dr {
		u.transmit(byte(val))
	}
}
