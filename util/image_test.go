// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

type segment struct {
	addr uint64
	data []byte
	bss  uint64
}

// buildELF returns a minimal AArch64 executable with one PT_LOAD program
// header per segment and no section headers.
func buildELF(t *testing.T, entry uint64, segs ...segment) []byte {
	t.Helper()

	const ehsize = 64
	const phentsize = 56

	var buf bytes.Buffer

	hdr := elf.Header64{
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_AARCH64),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     entry,
		Phoff:     ehsize,
		Ehsize:    ehsize,
		Phentsize: phentsize,
		Phnum:     uint16(len(segs)),
	}

	copy(hdr.Ident[:], elf.ELFMAG)
	hdr.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	hdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	hdr.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	require.NoError(t, binary.Write(&buf, binary.LittleEndian, hdr))

	off := uint64(ehsize + phentsize*len(segs))

	for _, s := range segs {
		prg := elf.Prog64{
			Type:   uint32(elf.PT_LOAD),
			Flags:  uint32(elf.PF_R | elf.PF_X),
			Off:    off,
			Vaddr:  s.addr,
			Paddr:  s.addr,
			Filesz: uint64(len(s.data)),
			Memsz:  uint64(len(s.data)) + s.bss,
			Align:  1,
		}

		require.NoError(t, binary.Write(&buf, binary.LittleEndian, prg))
		off += uint64(len(s.data))
	}

	for _, s := range segs {
		buf.Write(s.data)
	}

	return buf.Bytes()
}

func TestFlattenRawImage(t *testing.T) {
	raw := []byte{0xde, 0xad, 0xbe, 0xef}

	img, base, entry, err := Flatten(raw)

	require.NoError(t, err)
	require.Equal(t, raw, img)
	require.Zero(t, base)
	require.Zero(t, entry)
}

func TestFlattenELF(t *testing.T) {
	exe := buildELF(t, 0x80000,
		segment{addr: 0x80000, data: []byte{1, 2, 3, 4}},
		segment{addr: 0x80008, data: []byte{5, 6}, bss: 0x100},
	)

	require.True(t, IsELF(exe))

	img, base, entry, err := Flatten(exe)

	require.NoError(t, err)
	require.Equal(t, uint64(0x80000), base)
	require.Equal(t, uint64(0x80000), entry)
	require.Equal(t, []byte{1, 2, 3, 4, 0, 0, 0, 0, 5, 6}, img)
}

func TestFlattenELFWithoutSegments(t *testing.T) {
	_, _, _, err := Flatten(buildELF(t, 0x80000))
	require.Error(t, err)
}
