// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package board

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/usbarmory/miniload/bcm"
	"github.com/usbarmory/miniload/bcm/bcmtest"
	"github.com/usbarmory/miniload/console"
	"github.com/usbarmory/miniload/driver"
	"github.com/usbarmory/miniload/mem"
	"github.com/usbarmory/miniload/mmio/mmiotest"
)

func testBoard() (*Board, *bcmtest.PL011, *mmiotest.Bus) {
	uart := bcmtest.NewPL011(mem.UARTBase)
	gpio := mmiotest.NewBus()

	return New(bcm.NewPL011(mem.UARTBase, uart), bcm.NewGPIO(mem.GPIOBase, gpio)), uart, gpio
}

func TestInitOnce(t *testing.T) {
	b, _, _ := testBoard()
	m := driver.NewManager()
	r := console.NewRegistry()

	require.NoError(t, b.Init(m, r))
	require.Equal(t, 2, m.Len())

	err := b.Init(m, r)
	require.ErrorIs(t, err, ErrAlreadyDone)
	require.EqualError(t, err, "init already done")
	require.Equal(t, 2, m.Len())
}

func TestInitRegistrationOrder(t *testing.T) {
	b, _, _ := testBoard()
	m := driver.NewManager()

	require.NoError(t, b.Init(m, console.NewRegistry()))
	require.Equal(t, []string{bcm.PL011Compatible, bcm.GPIOCompatible}, m.Drivers())
}

func TestBringUp(t *testing.T) {
	b, uart, gpio := testBoard()
	m := driver.NewManager()
	r := console.NewRegistry()

	require.NoError(t, b.Init(m, r))

	// nothing is touched before the driver lifecycle runs
	require.Equal(t, console.Null, r.Console())
	require.Empty(t, uart.Stores())
	require.Empty(t, gpio.Stores())

	require.NoError(t, m.InitDrivers())

	require.Same(t, b.UART, r.Console())
	require.NotEmpty(t, uart.Stores())
	require.Equal(t, uint(mem.GPIOBase+0x04), gpio.Stores()[0].Addr)

	r.Console().WriteChar('!')
	require.Equal(t, []byte("!"), uart.Transmitted())
}

func TestInitFullRegistry(t *testing.T) {
	b, _, _ := testBoard()
	m := driver.NewManager()

	for i := 0; i < driver.NumDrivers-1; i++ {
		require.NoError(t, m.Register(driver.NewDescriptor(bcm.NewGPIO(0, mmiotest.NewBus()), nil)))
	}

	require.ErrorIs(t, b.Init(m, console.NewRegistry()), driver.ErrRegistryFull)
	require.Equal(t, driver.NumDrivers, m.Len())

	// a failed bring-up is not retried
	require.ErrorIs(t, b.Init(driver.NewManager(), console.NewRegistry()), ErrAlreadyDone)
}

func TestInitConcurrent(t *testing.T) {
	b, _, _ := testBoard()
	m := driver.NewManager()
	r := console.NewRegistry()

	var wg sync.WaitGroup
	var done atomic.Int32

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if b.Init(m, r) == nil {
				done.Add(1)
			}
		}()
	}

	wg.Wait()

	require.Equal(t, int32(1), done.Load())
	require.Equal(t, 2, m.Len())
}

func TestName(t *testing.T) {
	require.Equal(t, mem.BoardName, Name())
}
