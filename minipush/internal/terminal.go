// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package internal

import (
	"bytes"
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"
)

// QuitChar terminates the interactive terminal (Ctrl-C in raw mode).
const QuitChar = 0x03

// ErrQuit is returned by the input forwarder on QuitChar.
var ErrQuit = errors.New("quit")

func forward(port io.Writer, in io.Reader) error {
	buf := make([]byte, 256)

	for {
		n, err := in.Read(buf)

		if i := bytes.IndexByte(buf[:n], QuitChar); i >= 0 {
			if i > 0 {
				if _, err := port.Write(buf[:i]); err != nil {
					return err
				}
			}

			return ErrQuit
		}

		if n > 0 {
			if _, err := port.Write(buf[:n]); err != nil {
				return err
			}
		}

		if err != nil {
			return err
		}
	}
}

// Terminal bridges in to port and port to out, until QuitChar is read from
// in, either side is closed or ctx is done. The port is closed on return.
func Terminal(ctx context.Context, port io.ReadWriteCloser, in io.Reader, out io.Writer) (err error) {
	var inErr error

	// reads from in cannot be interrupted, the forwarder is not waited for
	input := make(chan error, 1)

	go func() {
		input <- forward(port, in)
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, err := io.Copy(out, port)

		if err == nil {
			err = io.EOF
		}

		return err
	})

	g.Go(func() error {
		select {
		case inErr = <-input:
		case <-gctx.Done():
		}

		port.Close()

		return nil
	})

	err = g.Wait()

	switch {
	case errors.Is(inErr, ErrQuit), errors.Is(inErr, io.EOF):
		return nil
	case inErr != nil:
		return inErr
	case ctx.Err() != nil, errors.Is(err, io.EOF):
		return nil
	}

	return
}
