// Package buf contains bounds-checked slicing helpers and the byte-order
// strategy shared by the codecs.
package buf

import (
	"encoding/binary"

	"github.com/joshuapare/bymlkit/pkg/types"
)

// ByteOrder combines the decoding and appending halves of encoding/binary.
type ByteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Order bundles a ByteOrder with the 24-bit accessors BYML container headers
// need. Pick one per document and thread it through every read and write.
type Order struct {
	ByteOrder
	big bool
}

var (
	// LE is the little-endian strategy ("YB" documents).
	LE = Order{ByteOrder: binary.LittleEndian}
	// BE is the big-endian strategy ("BY" documents).
	BE = Order{ByteOrder: binary.BigEndian, big: true}
)

// For returns the strategy for e.
func For(e types.Endian) Order {
	if e == types.BigEndian {
		return BE
	}
	return LE
}

// Endian reports which document byte order o implements.
func (o Order) Endian() types.Endian {
	if o.big {
		return types.BigEndian
	}
	return types.LittleEndian
}

// Uint24 decodes a 3-byte unsigned integer. b must hold at least 3 bytes.
func (o Order) Uint24(b []byte) uint32 {
	_ = b[2]
	if o.big {
		return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

// PutUint24 encodes the low 24 bits of v into b[0:3].
func (o Order) PutUint24(b []byte, v uint32) {
	_ = b[2]
	if o.big {
		b[0], b[1], b[2] = byte(v>>16), byte(v>>8), byte(v)
		return
	}
	b[0], b[1], b[2] = byte(v), byte(v>>8), byte(v>>16)
}

// U32At reads a uint32 at off. Returns 0, false when b is too short.
func (o Order) U32At(b []byte, off int) (uint32, bool) {
	s, ok := Slice(b, off, 4)
	if !ok {
		return 0, false
	}
	return o.Uint32(s), true
}

// U64At reads a uint64 at off. Returns 0, false when b is too short.
func (o Order) U64At(b []byte, off int) (uint64, bool) {
	s, ok := Slice(b, off, 8)
	if !ok {
		return 0, false
	}
	return o.Uint64(s), true
}
