// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package console implements the firmware console abstraction.
//
// A console is made of three capabilities (Writer, Reader, Statistics), the
// process wide Registry holds the active console implementing All of them.
// Until a driver registers itself the Null console is active, so that early
// output never faults.
package console

import (
	"errors"
	"io"

	"github.com/usbarmory/miniload/lock"
)

// ErrNoData is returned by consoles which have no character available.
var ErrNoData = errors.New("no data available")

// Writer is the console output capability.
type Writer interface {
	io.Writer

	// WriteChar emits a single character.
	WriteChar(c byte)
	// Flush blocks until all emitted characters left the hardware.
	Flush()
}

// Reader is the console input capability.
type Reader interface {
	// ReadChar blocks until a character is received.
	ReadChar() (byte, error)
	// ClearRx discards all pending received characters.
	ClearRx()
}

// Statistics is the console accounting capability, counters are monotonic.
type Statistics interface {
	CharsWritten() int
	CharsRead() int
}

// All represents a console implementing all capabilities.
type All interface {
	Writer
	Reader
	Statistics
}

// Registry holds the active console.
type Registry struct {
	cur lock.Mutex[All]
}

// Default is the process wide console Registry.
var Default = NewRegistry()

// NewRegistry returns a Registry with the Null console active.
func NewRegistry() *Registry {
	return &Registry{
		cur: lock.New[All](Null),
	}
}

// Register replaces the active console, nil values are ignored.
func (r *Registry) Register(c All) {
	if c == nil {
		return
	}

	r.cur.Lock(func(cur *All) {
		*cur = c
	})
}

// Console returns the active console.
func (r *Registry) Console() All {
	return lock.With(r.cur, func(cur *All) All {
		return *cur
	})
}

// Register replaces the active console of the Default registry.
func Register(c All) {
	Default.Register(c)
}

// Current returns the active console of the Default registry.
func Current() All {
	return Default.Console()
}
