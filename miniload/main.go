// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm64
// +build tamago,arm64

package main

import (
	_ "unsafe"

	"github.com/usbarmory/miniload/board"
	"github.com/usbarmory/miniload/console"
	"github.com/usbarmory/miniload/cpu"
	"github.com/usbarmory/miniload/driver"
	"github.com/usbarmory/miniload/loader"
	"github.com/usbarmory/miniload/mem"
	"github.com/usbarmory/miniload/miniload/internal"
	"github.com/usbarmory/miniload/util"
)

//go:linkname ramStart runtime.ramStart
var ramStart uint64 = mem.FirmwareStart

//go:linkname ramSize runtime.ramSize
var ramSize uint64 = mem.FirmwareSize

//go:linkname printk runtime.printk
func printk(c byte) {
	console.Current().WriteChar(c)
}

//go:linkname hwinit runtime.hwinit
func hwinit() {}

//go:linkname nanotime1 runtime.nanotime1
func nanotime1() int64 {
	return cpu.Nanotime()
}

func main() {
	log := util.Logger(console.Output)

	k := &internal.Kernel{
		Board:    board.Default,
		Drivers:  driver.Default,
		Consoles: console.Default,
		Loader: loader.Config{
			BoardName: board.Name(),
			Memory:    mem.LoadRegion,
			Entry:     mem.LoadRegion.Entry(),
			MaxSize:   mem.LoadMaxSize,
			Jump:      cpu.Jump,
			Log:       log,
		},
		Log: log,
	}

	// never returns
	k.Boot()
}
