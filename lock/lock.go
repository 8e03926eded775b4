// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package lock provides scoped exclusive access to shared firmware state.
//
// Call sites only depend on the Mutex interface, the backend is selected at
// build time: NullLock for single core execution (default) and SpinLock when
// building with the `smp` tag.
//
// Re-entering a Mutex from within its own critical section is a programming
// error: NullLock panics, SpinLock deadlocks.
package lock

import (
	"sync"
)

// Mutex grants exclusive access to the data it wraps for the duration of
// the function passed to Lock.
type Mutex[T any] interface {
	Lock(f func(data *T))
}

// With runs f under the Mutex exclusion and returns its result.
func With[T any, R any](m Mutex[T], f func(data *T) R) (res R) {
	m.Lock(func(data *T) {
		res = f(data)
	})

	return
}

// NullLock is the single core Mutex backend, it performs no locking and
// assumes that no preemption happens within a critical section.
type NullLock[T any] struct {
	data T
	held bool
}

// NewNullLock returns a NullLock wrapping v.
func NewNullLock[T any](v T) *NullLock[T] {
	return &NullLock[T]{data: v}
}

func (l *NullLock[T]) Lock(f func(data *T)) {
	if l.held {
		panic("lock: critical section re-entered")
	}

	l.held = true
	defer func() { l.held = false }()

	f(&l.data)
}

// SpinLock is the Mutex backend for concurrent execution contexts.
type SpinLock[T any] struct {
	mu   sync.Mutex
	data T
}

// NewSpinLock returns a SpinLock wrapping v.
func NewSpinLock[T any](v T) *SpinLock[T] {
	return &SpinLock[T]{data: v}
}

func (l *SpinLock[T]) Lock(f func(data *T)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f(&l.data)
}
