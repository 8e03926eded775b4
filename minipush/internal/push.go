// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package internal implements the minipush image sender and terminal.
package internal

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

const (
	ready      = 0x03
	readyCount = 3
	ack        = "OK"

	// DefaultChunkSize is the default image transmission unit.
	DefaultChunkSize = 4096
)

var (
	// ErrNoAck is returned when the loader does not acknowledge the size.
	ErrNoAck = errors.New("size not acknowledged")
	// ErrImageTooLarge is returned for images not representable on the
	// wire.
	ErrImageTooLarge = errors.New("image too large")
)

// Pusher sends an image to a waiting loader.
type Pusher struct {
	// Port is the serial line connected to the loader
	Port io.ReadWriter
	// Echo, when set, receives output seen before the loader requests
	// the image
	Echo io.Writer
	// Log receives progress information
	Log *zap.SugaredLogger
	// ChunkSize is the transmission unit, DefaultChunkSize when zero
	ChunkSize int
}

func (p *Pusher) echo(buf []byte) {
	if p.Echo != nil && len(buf) > 0 {
		p.Echo.Write(buf)
	}
}

// WaitReady reads from the Port until three consecutive ready bytes are
// received, anything else is echoed.
func (p *Pusher) WaitReady() (err error) {
	var b [1]byte
	n := 0

	for n < readyCount {
		if _, err = io.ReadFull(p.Port, b[:]); err != nil {
			return fmt.Errorf("could not read ready request, %w", err)
		}

		if b[0] == ready {
			n++
			continue
		}

		// an interrupted sequence was regular output
		p.echo(append(bytes.Repeat([]byte{ready}, n), b[0]))
		n = 0
	}

	return
}

// SendSize sends the little endian image size and waits for its
// acknowledgement.
func (p *Pusher) SendSize(size uint32) (err error) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], size)

	if _, err = p.Port.Write(buf[:]); err != nil {
		return fmt.Errorf("could not send size, %w", err)
	}

	res := make([]byte, len(ack))

	if _, err = io.ReadFull(p.Port, res); err != nil {
		return fmt.Errorf("could not read acknowledgement, %w", err)
	}

	if string(res) != ack {
		return fmt.Errorf("%w (%q)", ErrNoAck, res)
	}

	return
}

// SendImage streams the image and returns its BLAKE2b-256 digest.
func (p *Pusher) SendImage(image []byte) (digest []byte, err error) {
	h, err := blake2b.New256(nil)

	if err != nil {
		return
	}

	chunk := p.ChunkSize

	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	for off := 0; off < len(image); off += chunk {
		end := off + chunk

		if end > len(image) {
			end = len(image)
		}

		if _, err = p.Port.Write(image[off:end]); err != nil {
			return nil, fmt.Errorf("could not send image at offset %d, %w", off, err)
		}

		h.Write(image[off:end])

		if p.Log != nil {
			p.Log.Debugw("sending", "sent", end, "total", len(image), "progress", fmt.Sprintf("%d%%", end*100/len(image)))
		}
	}

	return h.Sum(nil), nil
}

// Push waits for the loader request, then sends the image size and
// contents.
func (p *Pusher) Push(image []byte) (digest []byte, err error) {
	if uint64(len(image)) > math.MaxUint32 {
		return nil, ErrImageTooLarge
	}

	if p.Log != nil {
		p.Log.Infow("waiting for loader request")
	}

	if err = p.WaitReady(); err != nil {
		return
	}

	if err = p.SendSize(uint32(len(image))); err != nil {
		return
	}

	if digest, err = p.SendImage(image); err != nil {
		return
	}

	if p.Log != nil {
		p.Log.Infow("image sent", "size", len(image), "blake2b", fmt.Sprintf("%x", digest))
	}

	return
}
