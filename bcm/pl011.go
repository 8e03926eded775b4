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

// PL011 UART registers
var (
	UART_DR   = mmio.Register{Name: "DR", Offset: 0x00}
	UART_FR   = mmio.Register{Name: "FR", Offset: 0x18}
	UART_IBRD = mmio.Register{Name: "IBRD", Offset: 0x24}
	UART_FBRD = mmio.Register{Name: "FBRD", Offset: 0x28}
	UART_LCRH = mmio.Register{Name: "LCR_H", Offset: 0x2c}
	UART_CR   = mmio.Register{Name: "CR", Offset: 0x30}
	UART_ICR  = mmio.Register{Name: "ICR", Offset: 0x44}
)

// PL011 register fields
const (
	FR_TXFE = 7
	FR_TXFF = 5
	FR_RXFE = 4
	FR_BUSY = 3

	LCRH_FEN       = 4
	LCRH_WLEN_8BIT = 0b11

	CR_RXE    = 9
	CR_TXE    = 8
	CR_UARTEN = 0

	ICR_ALL = 0x7ff
)

var (
	LCRH_WLEN = mmio.Field{Pos: 5, Mask: 0b11}
	IBRD_DIV  = mmio.Field{Pos: 0, Mask: 0xffff}
	FBRD_DIV  = mmio.Field{Pos: 0, Mask: 0x3f}
)

// 921600 baud with a 48MHz UART reference clock:
//
//	48000000 / (16 * 921600) = 3.2552
//	integer: 3, fractional: int((0.2552 * 64) + 0.5) = 16
const (
	BaudDivInt  = 3
	BaudDivFrac = 16
)

// PL011Compatible is the PL011 UART driver name.
const PL011Compatible = "BCM PL011 UART"

var pl011Layout = &mmio.Layout{
	Name: "PL011",
	Size: 0x48,
}

type pl011 struct {
	regs *mmio.View

	written int
	read    int
}

// PL011 represents a PL011 UART instance, it implements both
// driver.DeviceDriver and console.All.
type PL011 struct {
	inner lock.Mutex[pl011]
}

// NewPL011 returns a PL011 driver for the controller at the given base
// address, a nil Accessor selects mmio.Memory.
func NewPL011(base uint, acc mmio.Accessor) *PL011 {
	return &PL011{
		inner: lock.New(pl011{
			regs: mmio.New(base, pl011Layout, acc),
		}),
	}
}

func (hw *pl011) init() {
	hw.flush()

	hw.regs.Write(UART_CR, 0)
	hw.regs.Write(UART_ICR, ICR_ALL)

	hw.regs.Write(UART_IBRD, IBRD_DIV.Encode(BaudDivInt))
	hw.regs.Write(UART_FBRD, FBRD_DIV.Encode(BaudDivFrac))

	hw.regs.Write(UART_LCRH, LCRH_WLEN.Encode(LCRH_WLEN_8BIT)|1<<LCRH_FEN)
	hw.regs.Write(UART_CR, 1<<CR_RXE|1<<CR_TXE|1<<CR_UARTEN)
}

func (hw *pl011) flush() {
	hw.regs.Wait(UART_FR, FR_BUSY, false)
}

func (hw *pl011) writeChar(c byte) {
	hw.regs.Wait(UART_FR, FR_TXFF, false)
	hw.regs.Write(UART_DR, uint32(c))
	hw.written++
}

func (hw *pl011) readChar(block bool) (c byte, ok bool) {
	if hw.regs.IsSet(UART_FR, FR_RXFE) {
		if !block {
			return
		}

		hw.regs.Wait(UART_FR, FR_RXFE, false)
	}

	c = byte(hw.regs.Read(UART_DR))
	hw.read++

	return c, true
}

// Compatible returns the driver name.
func (hw *PL011) Compatible() string {
	return PL011Compatible
}

// Init drains any transmission in progress, then configures the UART for
// 921600 baud, 8 bit words with FIFOs enabled, transmit and receive.
func (hw *PL011) Init() error {
	hw.inner.Lock(func(u *pl011) {
		u.init()
	})

	return nil
}

// WriteChar transmits one character, waiting for transmit FIFO space.
func (hw *PL011) WriteChar(c byte) {
	hw.inner.Lock(func(u *pl011) {
		u.writeChar(c)
	})
}

// Write transmits buf.
func (hw *PL011) Write(buf []byte) (int, error) {
	hw.inner.Lock(func(u *pl011) {
		for _, c := range buf {
			u.writeChar(c)
		}
	})

	return len(buf), nil
}

// Flush waits until the UART completed all pending transmissions.
func (hw *PL011) Flush() {
	hw.inner.Lock(func(u *pl011) {
		u.flush()
	})
}

// ReadChar waits for and returns one received character.
func (hw *PL011) ReadChar() (c byte, err error) {
	hw.inner.Lock(func(u *pl011) {
		c, _ = u.readChar(true)
	})

	return
}

// TryReadChar returns one received character, if available, without
// waiting.
func (hw *PL011) TryReadChar() (c byte, ok bool) {
	hw.inner.Lock(func(u *pl011) {
		c, ok = u.readChar(false)
	})

	return
}

// ClearRx discards all received characters.
func (hw *PL011) ClearRx() {
	for {
		if _, ok := hw.TryReadChar(); !ok {
			return
		}
	}
}

// CharsWritten returns the number of transmitted characters.
func (hw *PL011) CharsWritten() int {
	return lock.With(hw.inner, func(u *pl011) int {
		return u.written
	})
}

// CharsRead returns the number of received characters.
func (hw *PL011) CharsRead() int {
	return lock.With(hw.inner, func(u *pl011) int {
		return u.read
	})
}
