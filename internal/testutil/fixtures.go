// Package testutil builds binary fixtures shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/joshuapare/bymlkit/internal/buf"
	"github.com/joshuapare/bymlkit/internal/format"
	"github.com/joshuapare/bymlkit/pkg/types"
)

// File is one archive member.
type File struct {
	Name string
	Data []byte
}

// SARCHash is the archive name hash with the default multiplier.
func SARCHash(name string) uint32 {
	var h uint32
	for i := 0; i < len(name); i++ {
		h = h*format.SARCDefaultHashKey + uint32(int32(int8(name[i])))
	}
	return h
}

// SARC builds an archive holding files, sorted by name hash as shipped
// archives are. Member data is 4-aligned.
func SARC(t testing.TB, endian types.Endian, files ...File) []byte {
	t.Helper()
	order := buf.For(endian)
	files = slices.Clone(files)
	slices.SortFunc(files, func(a, b File) int {
		ha, hb := SARCHash(a.Name), SARCHash(b.Name)
		switch {
		case ha < hb:
			return -1
		case ha > hb:
			return 1
		}
		return 0
	})

	var names []byte
	nameOffs := make([]int, len(files))
	for i, f := range files {
		nameOffs[i] = len(names)
		names = append(names, f.Name...)
		names = append(names, 0)
		for len(names)%4 != 0 {
			names = append(names, 0)
		}
	}
	sfat := format.SARCHeaderSize
	sfnt := sfat + format.SFATHeaderSize + len(files)*format.SFATNodeSize
	dataStart := format.Align4(sfnt + format.SFNTHeaderSize + len(names))

	var data []byte
	starts := make([]int, len(files))
	for i, f := range files {
		for len(data)%4 != 0 {
			data = append(data, 0)
		}
		starts[i] = len(data)
		data = append(data, f.Data...)
	}

	out := make([]byte, dataStart, dataStart+len(data))
	copy(out, format.SARCMagic)
	order.PutUint16(out[4:], format.SARCHeaderSize)
	order.PutUint16(out[format.SARCBOMOffset:], 0xFEFF)
	order.PutUint32(out[format.SARCDataOffset:], uint32(dataStart))
	order.PutUint16(out[format.SARCVersionOffset:], 0x0100)

	copy(out[sfat:], format.SFATMagic)
	order.PutUint16(out[sfat+4:], format.SFATHeaderSize)
	order.PutUint16(out[sfat+6:], uint16(len(files)))
	order.PutUint32(out[sfat+8:], format.SARCDefaultHashKey)
	for i, f := range files {
		node := out[sfat+format.SFATHeaderSize+i*format.SFATNodeSize:]
		order.PutUint32(node, SARCHash(f.Name))
		order.PutUint32(node[4:], format.SFATNameFlag|uint32(nameOffs[i]/4))
		order.PutUint32(node[8:], uint32(starts[i]))
		order.PutUint32(node[12:], uint32(starts[i]+len(f.Data)))
	}

	copy(out[sfnt:], format.SFNTMagic)
	order.PutUint16(out[sfnt+4:], format.SFNTHeaderSize)
	copy(out[sfnt+format.SFNTHeaderSize:], names)

	out = append(out, data...)
	order.PutUint32(out[format.SARCFileSizeOffset:], uint32(len(out)))
	return out
}

// Yaz0Stored wraps data in a valid Yaz0 stream made only of literals.
func Yaz0Stored(data []byte) []byte {
	out := make([]byte, format.Yaz0HeaderSize, format.Yaz0HeaderSize+len(data)+len(data)/8+1)
	copy(out, format.Yaz0Magic)
	buf.BE.PutUint32(out[format.Yaz0SizeOffset:], uint32(len(data)))
	for i := 0; i < len(data); i += 8 {
		out = append(out, 0xFF)
		out = append(out, data[i:min(i+8, len(data))]...)
	}
	return out
}

// WriteFile writes data to name under dir, creating parent directories,
// and returns the full path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}
