// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package loader implements the serial chainloading protocol.
//
// The loader announces itself on the console, signals readiness to the peer
// sender with three 0x03 bytes, receives a 4 byte little endian image size,
// acknowledges it with "OK", then receives the image and jumps to it:
//
//	loader -> peer: 0x03 0x03 0x03
//	peer -> loader: size (uint32, little endian)
//	loader -> peer: 'O' 'K'
//	peer -> loader: image (size bytes)
//
// There is no checksum, no retransmission and, unless MaxSize is configured,
// no bound on the image size: the peer is trusted.
package loader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/usbarmory/miniload/console"
)

const (
	// Ready is the byte sent to the peer to request an image.
	Ready = 0x03
	// ReadyCount is the number of Ready bytes sent.
	ReadyCount = 3
	// Ack acknowledges the image size.
	Ack = "OK"
)

// Logo is the loader banner.
const Logo = `
 __  __ _      _ _                 _
|  \/  (_)_ _ (_) |   ___  __ _ __| |
| |\/| | | ' \| | |__/ _ \/ _` + "`" + ` / _` + "`" + ` |
|_|  |_|_|_||_|_|____\___/\__,_\__,_|
`

const logoWidth = 37

// ErrTooLarge is returned when the announced image size exceeds MaxSize.
var ErrTooLarge = errors.New("image exceeds maximum size")

// State represents a protocol step.
type State int

const (
	Announce State = iota
	Handshake
	AwaitSize
	ReceivePayload
	Execute
)

func (s State) String() string {
	switch s {
	case Announce:
		return "announce"
	case Handshake:
		return "handshake"
	case AwaitSize:
		return "await size"
	case ReceivePayload:
		return "receive payload"
	case Execute:
		return "execute"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config represents the loader configuration.
type Config struct {
	// BoardName is printed in the banner
	BoardName string
	// Memory is the image destination, the image is written byte by byte
	// from offset 0
	Memory io.WriterAt
	// Entry is the image entry point address
	Entry uint
	// MaxSize, when not zero, bounds the accepted image size
	MaxSize uint32
	// Jump transfers control to the entry point
	Jump func(entry uint)
	// Log, when set, receives diagnostics once the image is loaded
	Log *zap.SugaredLogger
}

// Session represents a single protocol run.
type Session struct {
	Config

	state  State
	size   uint32
	digest []byte
}

// NewSession returns a protocol session for the given configuration.
func NewSession(cfg Config) *Session {
	return &Session{
		Config: cfg,
	}
}

// State returns the current, or last reached, protocol step.
func (s *Session) State() State {
	return s.state
}

// Size returns the received image size.
func (s *Session) Size() uint32 {
	return s.size
}

// Digest returns the BLAKE2b-256 digest of the received image.
func (s *Session) Digest() []byte {
	return s.digest
}

// Run executes the protocol over the given console. On success control is
// transferred to the received image and Run never returns, unless the
// configured Jump does.
func (s *Session) Run(c console.All) (err error) {
	if s.Memory == nil || s.Jump == nil {
		return errors.New("invalid configuration")
	}

	steps := []struct {
		state State
		fn    func(console.All) error
	}{
		{Announce, s.announce},
		{Handshake, s.handshake},
		{AwaitSize, s.awaitSize},
		{ReceivePayload, s.receivePayload},
		{Execute, s.execute},
	}

	for _, step := range steps {
		s.state = step.state

		if err = step.fn(c); err != nil {
			return fmt.Errorf("%s failed, %w", s.state, err)
		}
	}

	return
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}

	pad := width - len(s)

	return strings.Repeat(" ", pad/2) + s + strings.Repeat(" ", pad-pad/2)
}

func (s *Session) announce(c console.All) error {
	fmt.Fprint(c, Logo+"\n")
	fmt.Fprintln(c, center(s.BoardName, logoWidth))
	fmt.Fprintln(c)
	fmt.Fprintln(c, "[ML] Requesting binary")
	c.Flush()

	return nil
}

func (s *Session) handshake(c console.All) error {
	// discard anything received before the peer could know we are ready
	c.ClearRx()

	for i := 0; i < ReadyCount; i++ {
		c.WriteChar(Ready)
	}

	return nil
}

func (s *Session) awaitSize(c console.All) (err error) {
	var buf [4]byte

	for i := range buf {
		if buf[i], err = c.ReadChar(); err != nil {
			return
		}
	}

	s.size = binary.LittleEndian.Uint32(buf[:])

	if s.MaxSize != 0 && s.size > s.MaxSize {
		return fmt.Errorf("%w (%d > %d)", ErrTooLarge, s.size, s.MaxSize)
	}

	for i := 0; i < len(Ack); i++ {
		c.WriteChar(Ack[i])
	}

	return
}

func (s *Session) receivePayload(c console.All) (err error) {
	h, err := blake2b.New256(nil)

	if err != nil {
		return
	}

	var b [1]byte

	for i := uint32(0); i < s.size; i++ {
		if b[0], err = c.ReadChar(); err != nil {
			return
		}

		if _, err = s.Memory.WriteAt(b[:], int64(i)); err != nil {
			return fmt.Errorf("could not store byte %d, %v", i, err)
		}

		h.Write(b[:])
	}

	s.digest = h.Sum(nil)

	return
}

func (s *Session) execute(c console.All) error {
	if s.Log != nil {
		s.Log.Infow("[ML] payload loaded", "size", s.size, "blake2b", fmt.Sprintf("%x", s.digest), "entry", fmt.Sprintf("%#x", s.Entry))
		s.Log.Sync()
	}

	fmt.Fprintln(c, "[ML] Loaded! Executing the payload now")
	fmt.Fprintln(c)
	c.Flush()

	s.Jump(s.Entry)

	return nil
}
