// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build linux
// +build linux

package internal

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

var baudRates = map[int]uint32{
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	921600:  unix.B921600,
	1000000: unix.B1000000,
	2000000: unix.B2000000,
}

func configure(fd int, rate uint32) (err error) {
	if _, err = term.MakeRaw(fd); err != nil {
		return
	}

	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)

	if err != nil {
		return
	}

	// 8N1, no flow control
	t.Cflag &^= unix.CBAUD | unix.CSIZE | unix.CSTOPB | unix.PARENB | unix.CRTSCTS
	t.Cflag |= rate | unix.CS8 | unix.CLOCAL | unix.CREAD
	t.Ispeed = rate
	t.Ospeed = rate

	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0

	return unix.IoctlSetTermios(fd, unix.TCSETS, t)
}

// OpenSerial opens the serial device in raw 8N1 mode at the given baud
// rate.
func OpenSerial(device string, baud int) (f *os.File, err error) {
	rate, ok := baudRates[baud]

	if !ok {
		return nil, fmt.Errorf("%w (%d)", ErrUnsupportedBaud, baud)
	}

	if f, err = os.OpenFile(device, os.O_RDWR|unix.O_NOCTTY, 0); err != nil {
		return
	}

	conn, err := f.SyscallConn()

	if err != nil {
		f.Close()
		return nil, err
	}

	// Control keeps the descriptor non blocking, so that Close interrupts
	// pending reads
	ctrlErr := conn.Control(func(fd uintptr) {
		err = configure(int(fd), rate)
	})

	if ctrlErr != nil {
		err = ctrlErr
	}

	if err != nil {
		f.Close()
		return nil, fmt.Errorf("could not configure %s, %v", device, err)
	}

	return
}
