// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package internal

import (
	"bytes"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"github.com/usbarmory/miniload/loader"
)

type port struct {
	io.Reader
	bytes.Buffer
}

func (p *port) Read(b []byte) (int, error) {
	return p.Reader.Read(b)
}

func (p *port) Write(b []byte) (int, error) {
	return p.Buffer.Write(b)
}

func newPort(in string) *port {
	return &port{Reader: strings.NewReader(in)}
}

func TestWaitReady(t *testing.T) {
	var echo bytes.Buffer

	p := &Pusher{
		Port: newPort("ab\x03\x03c\x03\x03\x03rest"),
		Echo: &echo,
	}

	require.NoError(t, p.WaitReady())
	require.Equal(t, "ab\x03\x03c", echo.String())
}

func TestWaitReadyEOF(t *testing.T) {
	p := &Pusher{
		Port: newPort("\x03\x03"),
	}

	require.ErrorIs(t, p.WaitReady(), io.EOF)
}

func TestSendSize(t *testing.T) {
	port := newPort("OK")
	p := &Pusher{Port: port}

	require.NoError(t, p.SendSize(0x01020304))
	require.Equal(t, []byte{4, 3, 2, 1}, port.Bytes())
}

func TestSendSizeNoAck(t *testing.T) {
	p := &Pusher{Port: newPort("NO")}

	err := p.SendSize(4)
	require.ErrorIs(t, err, ErrNoAck)
	require.EqualError(t, err, `size not acknowledged ("NO")`)
}

func TestSendImage(t *testing.T) {
	image := []byte("0123456789")
	port := newPort("")

	p := &Pusher{
		Port:      port,
		ChunkSize: 3,
	}

	digest, err := p.SendImage(image)
	require.NoError(t, err)
	require.Equal(t, image, port.Bytes())

	sum := blake2b.Sum256(image)
	require.Equal(t, sum[:], digest)
}

type memory struct {
	buf []byte
}

func (m *memory) WriteAt(p []byte, off int64) (int, error) {
	if end := int(off) + len(p); end > len(m.buf) {
		m.buf = append(m.buf, make([]byte, end-len(m.buf))...)
	}

	return copy(m.buf[off:], p), nil
}

// connConsole is a console over a stream connection.
type connConsole struct {
	net.Conn

	written int
	read    int
}

func (c *connConsole) Write(p []byte) (n int, err error) {
	n, err = c.Conn.Write(p)
	c.written += n
	return
}

func (c *connConsole) WriteChar(b byte) {
	c.Write([]byte{b})
}

func (c *connConsole) Flush() {}

func (c *connConsole) ReadChar() (byte, error) {
	var b [1]byte

	if _, err := io.ReadFull(c.Conn, b[:]); err != nil {
		return 0, err
	}

	c.read++

	return b[0], nil
}

func (c *connConsole) ClearRx() {}

func (c *connConsole) CharsWritten() int {
	return c.written
}

func (c *connConsole) CharsRead() int {
	return c.read
}

func TestPushToLoader(t *testing.T) {
	image := bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, 1000)

	target, host := net.Pipe()
	defer host.Close()

	mem := &memory{}
	jumps := make(chan uint, 1)
	done := make(chan error, 1)

	s := loader.NewSession(loader.Config{
		BoardName: "Raspberry Pi 3",
		Memory:    mem,
		Entry:     0x80000,
		Jump:      func(e uint) { jumps <- e },
	})

	go func() {
		done <- s.Run(&connConsole{Conn: target})
		target.Close()
	}()

	var echo bytes.Buffer

	p := &Pusher{
		Port:      host,
		Echo:      &echo,
		ChunkSize: 512,
	}

	digest, err := p.Push(image)
	require.NoError(t, err)

	rest, err := io.ReadAll(host)
	require.NoError(t, err)

	require.NoError(t, <-done)
	require.Equal(t, uint(0x80000), <-jumps)

	require.Equal(t, image, mem.buf)
	require.Equal(t, s.Digest(), digest)
	require.Equal(t, uint32(len(image)), s.Size())

	require.Contains(t, echo.String(), loader.Logo)
	require.True(t, strings.HasSuffix(echo.String(), "[ML] Requesting binary\n"))
	require.Equal(t, "[ML] Loaded! Executing the payload now\n\n", string(rest))
}
