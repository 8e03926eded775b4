// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package internal

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/usbarmory/miniload/board"
	"github.com/usbarmory/miniload/console"
	"github.com/usbarmory/miniload/cpu"
	"github.com/usbarmory/miniload/driver"
	"github.com/usbarmory/miniload/loader"
)

// Kernel represents the loader firmware.
type Kernel struct {
	Board    *board.Board
	Drivers  *driver.Manager
	Consoles *console.Registry
	Loader   loader.Config
	Log      *zap.SugaredLogger

	// Halt stops execution, it defaults to cpu.WaitForever
	Halt func()
}

// Init brings up the board drivers, once complete the UART is the active
// console.
func (k *Kernel) Init() (err error) {
	if err = k.Board.Init(k.Drivers, k.Consoles); err != nil {
		return fmt.Errorf("could not initialize board, %w", err)
	}

	if err = k.Drivers.InitDrivers(); err != nil {
		return
	}

	k.Log.Infow("drivers loaded", "count", k.Drivers.Len())
	k.Log.Sync()

	k.Drivers.Enumerate(k.Consoles.Console())

	return
}

// Run executes the loader protocol on the active console, on success it
// does not return.
func (k *Kernel) Run() error {
	s := loader.NewSession(k.Loader)
	return s.Run(k.Consoles.Console())
}

// Boot initializes the board and runs the loader, any failure is reported
// on the active console before halting.
func (k *Kernel) Boot() {
	err := k.Init()

	if err == nil {
		err = k.Run()
	}

	if err != nil {
		c := k.Consoles.Console()
		fmt.Fprintf(c, "\n[ML] fatal error, %v\n", err)
		c.Flush()
	}

	if k.Halt != nil {
		k.Halt()
	} else {
		cpu.WaitForever()
	}
}
