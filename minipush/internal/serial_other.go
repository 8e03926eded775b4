// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build !linux
// +build !linux

package internal

import (
	"errors"
	"os"
	"runtime"
)

// OpenSerial is only supported on Linux.
func OpenSerial(device string, baud int) (*os.File, error) {
	return nil, errors.New("serial devices are not supported on " + runtime.GOOS)
}
