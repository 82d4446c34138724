package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/bymlkit/internal/buf"
	"github.com/joshuapare/bymlkit/pkg/types"
)

// Header is the decoded BYML document header.
type Header struct {
	Version            uint16
	HashKeyTableOffset uint32
	StringTableOffset  uint32
	RootOffset         uint32
}

// DetectOrder inspects the magic and returns the byte order it announces.
func DetectOrder(b []byte) (buf.Order, error) {
	if len(b) < len(BYMLMagicLE) {
		return buf.Order{}, fmt.Errorf("byml header: %w", ErrTruncated)
	}
	switch {
	case bytes.Equal(b[:2], BYMLMagicLE):
		return buf.LE, nil
	case bytes.Equal(b[:2], BYMLMagicBE):
		return buf.BE, nil
	}
	return buf.Order{}, fmt.Errorf("byml header: %w", ErrSignatureMismatch)
}

// ParseHeader validates the magic against order and extracts the header
// fields. Version and offsets are returned raw; callers validate them.
func ParseHeader(b []byte, order buf.Order) (Header, error) {
	if len(b) < BYMLHeaderSize {
		return Header{}, fmt.Errorf("byml header: %w", ErrTruncated)
	}
	want, other := BYMLMagicLE, BYMLMagicBE
	if order.Endian() == types.BigEndian {
		want, other = other, want
	}
	if !bytes.Equal(b[:2], want) {
		if bytes.Equal(b[:2], other) {
			return Header{}, fmt.Errorf("byml header: %w", ErrByteOrder)
		}
		return Header{}, fmt.Errorf("byml header: %w", ErrSignatureMismatch)
	}
	return Header{
		Version:            order.Uint16(b[BYMLVersionOffset:]),
		HashKeyTableOffset: order.Uint32(b[BYMLHashKeyTableOffset:]),
		StringTableOffset:  order.Uint32(b[BYMLStringTableOffset:]),
		RootOffset:         order.Uint32(b[BYMLRootOffset:]),
	}, nil
}

// PutHeader encodes h into b[0:BYMLHeaderSize].
func PutHeader(b []byte, order buf.Order, h Header) {
	_ = b[BYMLHeaderSize-1]
	if order.Endian() == types.BigEndian {
		copy(b, BYMLMagicBE)
	} else {
		copy(b, BYMLMagicLE)
	}
	order.PutUint16(b[BYMLVersionOffset:], h.Version)
	order.PutUint32(b[BYMLHashKeyTableOffset:], h.HashKeyTableOffset)
	order.PutUint32(b[BYMLStringTableOffset:], h.StringTableOffset)
	order.PutUint32(b[BYMLRootOffset:], h.RootOffset)
}

// ContainerHeader is the 4-byte prefix shared by arrays, dictionaries and
// string tables: a type tag followed by a 24-bit entry count.
type ContainerHeader struct {
	Type  types.DataType
	Count uint32
}

// ParseContainerHeader decodes the container header at off. The tag is
// returned as stored; callers decide which tags are acceptable.
func ParseContainerHeader(b []byte, off int, order buf.Order) (ContainerHeader, error) {
	h, ok := buf.Slice(b, off, ContainerHeaderSize)
	if !ok {
		return ContainerHeader{}, fmt.Errorf("container header at 0x%x: %w", off, ErrTruncated)
	}
	return ContainerHeader{Type: types.DataType(h[0]), Count: order.Uint24(h[1:])}, nil
}

// PutContainerHeader encodes a container header into b[0:4].
func PutContainerHeader(b []byte, order buf.Order, h ContainerHeader) {
	b[0] = byte(h.Type)
	order.PutUint24(b[1:], h.Count)
}

// DictEntry is one 8-byte dictionary entry.
type DictEntry struct {
	KeyIndex uint32
	Type     types.DataType
	Value    uint32
}

// ParseDictEntry decodes an entry from b[0:8]. b must hold DictEntrySize bytes.
func ParseDictEntry(b []byte, order buf.Order) DictEntry {
	_ = b[DictEntrySize-1]
	return DictEntry{
		KeyIndex: order.Uint24(b),
		Type:     types.DataType(b[3]),
		Value:    order.Uint32(b[4:]),
	}
}

// PutDictEntry encodes e into b[0:8].
func PutDictEntry(b []byte, order buf.Order, e DictEntry) {
	_ = b[DictEntrySize-1]
	order.PutUint24(b, e.KeyIndex)
	b[3] = byte(e.Type)
	order.PutUint32(b[4:], e.Value)
}
