// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package internal

import (
	"context"
	"errors"
	"os"
	"time"
)

// DefaultBaud matches the loader UART configuration.
const DefaultBaud = 921600

// ErrUnsupportedBaud is returned for baud rates without a termios setting.
var ErrUnsupportedBaud = errors.New("unsupported baud rate")

// WaitDevice polls for the existence of the device path until it appears or
// ctx is done.
func WaitDevice(ctx context.Context, path string, interval time.Duration) error {
	for {
		if _, err := os.Stat(path); err == nil {
			return nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
