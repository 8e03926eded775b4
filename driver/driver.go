// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package driver implements the device driver lifecycle: drivers are
// registered once at boot and then initialized, in registration order, by
// the Manager.
package driver

import (
	"errors"
	"fmt"
	"io"

	"github.com/usbarmory/miniload/lock"
)

// NumDrivers is the Manager registry capacity.
const NumDrivers = 5

// ErrRegistryFull is returned when registering past NumDrivers.
var ErrRegistryFull = errors.New("driver registry full")

// DeviceDriver represents a peripheral driver.
type DeviceDriver interface {
	// Compatible returns the driver name.
	Compatible() string
	// Init performs the driver hardware initialization.
	Init() error
}

// PostInitCallback is run right after the successful initialization of the
// driver it is registered with, it is used to sequence dependencies between
// drivers.
type PostInitCallback func() error

// Descriptor represents a registered driver.
type Descriptor struct {
	Driver   DeviceDriver
	PostInit PostInitCallback
}

// NewDescriptor returns a Descriptor for the driver and its optional post
// initialization callback.
func NewDescriptor(d DeviceDriver, postInit PostInitCallback) Descriptor {
	return Descriptor{
		Driver:   d,
		PostInit: postInit,
	}
}

type registry struct {
	next        int
	descriptors [NumDrivers]Descriptor
}

// Manager holds a fixed capacity, append only, driver registry.
type Manager struct {
	inner lock.Mutex[registry]
}

// Default is the process wide driver Manager.
var Default = NewManager()

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{
		inner: lock.New(registry{}),
	}
}

// Register appends a driver descriptor to the registry.
func (m *Manager) Register(d Descriptor) (err error) {
	if d.Driver == nil {
		return errors.New("invalid driver")
	}

	m.inner.Lock(func(r *registry) {
		if r.next >= NumDrivers {
			err = fmt.Errorf("could not register %s, %w", d.Driver.Compatible(), ErrRegistryFull)
			return
		}

		r.descriptors[r.next] = d
		r.next++
	})

	return
}

// Len returns the number of registered drivers.
func (m *Manager) Len() int {
	return lock.With(m.inner, func(r *registry) int {
		return r.next
	})
}

// descriptors returns a copy of the registered descriptors, the registry is
// not held while the caller iterates over them so that drivers and callbacks
// may use other guarded state.
func (m *Manager) descriptors() []Descriptor {
	return lock.With(m.inner, func(r *registry) []Descriptor {
		return append([]Descriptor(nil), r.descriptors[:r.next]...)
	})
}

// InitDrivers initializes all registered drivers in registration order,
// each post initialization callback is run immediately after its own driver
// initialization. The first failure is returned and must be treated as
// fatal.
func (m *Manager) InitDrivers() error {
	for _, d := range m.descriptors() {
		if err := d.Driver.Init(); err != nil {
			return fmt.Errorf("error initializing driver: %s: %v", d.Driver.Compatible(), err)
		}

		if d.PostInit == nil {
			continue
		}

		if err := d.PostInit(); err != nil {
			return fmt.Errorf("error during driver post-init callback: %s: %v", d.Driver.Compatible(), err)
		}
	}

	return nil
}

// Drivers returns the names of registered drivers in registration order.
func (m *Manager) Drivers() (names []string) {
	for _, d := range m.descriptors() {
		names = append(names, d.Driver.Compatible())
	}

	return
}

// Enumerate writes a 1-indexed listing of registered drivers.
func (m *Manager) Enumerate(w io.Writer) {
	for i, name := range m.Drivers() {
		fmt.Fprintf(w, "      %d. %s\n", i+1, name)
	}
}
