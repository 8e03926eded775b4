// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package util provides logging and image helpers shared by the firmware
// and host tools.
package util

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
)

// IsELF returns whether buf starts with the ELF magic.
func IsELF(buf []byte) bool {
	return bytes.HasPrefix(buf, []byte(elf.ELFMAG))
}

// Flatten converts an ELF executable to the raw memory image of its
// loadable segments, as it must appear at base. Non ELF input is returned
// unmodified with zero base and entry.
func Flatten(buf []byte) (image []byte, base uint64, entry uint64, err error) {
	if !IsELF(buf) {
		return buf, 0, 0, nil
	}

	exe, err := elf.NewFile(bytes.NewReader(buf))

	if err != nil {
		return
	}

	var end uint64
	var progs []*elf.Prog

	for _, prg := range exe.Progs {
		if prg.Type != elf.PT_LOAD || prg.Filesz == 0 {
			continue
		}

		if len(progs) == 0 || prg.Paddr < base {
			base = prg.Paddr
		}

		if prg.Paddr+prg.Filesz > end {
			end = prg.Paddr + prg.Filesz
		}

		progs = append(progs, prg)
	}

	if len(progs) == 0 {
		return nil, 0, 0, errors.New("no loadable segments")
	}

	image = make([]byte, end-base)

	for _, prg := range progs {
		off := prg.Paddr - base

		if _, err = prg.ReadAt(image[off:off+prg.Filesz], 0); err != nil {
			return nil, 0, 0, fmt.Errorf("could not read segment at %#x, %v", prg.Paddr, err)
		}
	}

	return image, base, exe.Entry, nil
}
