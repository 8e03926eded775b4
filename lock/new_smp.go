// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build smp
// +build smp

package lock

// New returns the build selected Mutex backend wrapping v.
func New[T any](v T) Mutex[T] {
	return NewSpinLock(v)
}
