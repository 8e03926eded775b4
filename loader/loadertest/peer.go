// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package loadertest provides a scripted image sender for testing the loader
// against a simulated UART.
package loadertest

import (
	"bytes"
	"encoding/binary"

	"github.com/usbarmory/miniload/bcm/bcmtest"
)

const (
	ready      = 0x03
	readyCount = 3
	ack        = "OK"
)

// Peer sends Size once three consecutive ready bytes are transmitted by the
// loader, then Image once the size is acknowledged.
type Peer struct {
	Size  []byte
	Image []byte

	sim   *bcmtest.PL011
	ready int
	acked bool
}

// NewPeer returns a Peer announcing the length of image as little endian
// size.
func NewPeer(image []byte) *Peer {
	size := make([]byte, 4)
	binary.LittleEndian.PutUint32(size, uint32(len(image)))

	return &Peer{
		Size:  size,
		Image: image,
	}
}

// Attach connects the Peer to the simulated UART.
func (p *Peer) Attach(sim *bcmtest.PL011) {
	p.sim = sim
	sim.OnTransmit = p.transmit
}

// Acked returns whether the size was acknowledged.
func (p *Peer) Acked() bool {
	return p.acked
}

func (p *Peer) transmit(c byte) {
	if p.ready < readyCount {
		if c == ready {
			p.ready++
		} else {
			p.ready = 0
		}

		if p.ready == readyCount {
			p.sim.Feed(p.Size...)
		}

		return
	}

	if !p.acked && bytes.HasSuffix(p.sim.Transmitted(), []byte(ack)) {
		p.acked = true
		p.sim.Feed(p.Image...)
	}
}
