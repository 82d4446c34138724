package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/bymlkit/internal/buf"
)

// SARCHeader is the decoded archive header.
type SARCHeader struct {
	Order      buf.Order
	HeaderSize uint16
	FileSize   uint32
	DataOffset uint32
	Version    uint16
}

// ParseSARCHeader validates the magic and byte order mark.
func ParseSARCHeader(b []byte) (SARCHeader, error) {
	if len(b) < SARCHeaderSize {
		return SARCHeader{}, fmt.Errorf("sarc header: %w", ErrTruncated)
	}
	if !bytes.Equal(b[:4], SARCMagic) {
		return SARCHeader{}, fmt.Errorf("sarc header: %w", ErrSignatureMismatch)
	}
	var order buf.Order
	switch {
	case b[SARCBOMOffset] == 0xFE && b[SARCBOMOffset+1] == 0xFF:
		order = buf.BE
	case b[SARCBOMOffset] == 0xFF && b[SARCBOMOffset+1] == 0xFE:
		order = buf.LE
	default:
		return SARCHeader{}, fmt.Errorf("sarc byte order mark: %w", ErrByteOrder)
	}
	h := SARCHeader{
		Order:      order,
		HeaderSize: order.Uint16(b[4:]),
		FileSize:   order.Uint32(b[SARCFileSizeOffset:]),
		DataOffset: order.Uint32(b[SARCDataOffset:]),
		Version:    order.Uint16(b[SARCVersionOffset:]),
	}
	if h.HeaderSize != SARCHeaderSize {
		return SARCHeader{}, fmt.Errorf("sarc header size 0x%x: %w", h.HeaderSize, ErrUnsupported)
	}
	return h, nil
}

// SFATHeader is the decoded file allocation table header.
type SFATHeader struct {
	NodeCount uint16
	HashKey   uint32
}

// ParseSFATHeader decodes the SFAT header at off.
func ParseSFATHeader(b []byte, off int, order buf.Order) (SFATHeader, error) {
	h, ok := buf.Slice(b, off, SFATHeaderSize)
	if !ok {
		return SFATHeader{}, fmt.Errorf("sfat header: %w", ErrTruncated)
	}
	if !bytes.Equal(h[:4], SFATMagic) {
		return SFATHeader{}, fmt.Errorf("sfat header: %w", ErrSignatureMismatch)
	}
	if size := order.Uint16(h[4:]); size != SFATHeaderSize {
		return SFATHeader{}, fmt.Errorf("sfat header size 0x%x: %w", size, ErrUnsupported)
	}
	return SFATHeader{NodeCount: order.Uint16(h[6:]), HashKey: order.Uint32(h[8:])}, nil
}

// SFATNode is one file allocation table entry.
type SFATNode struct {
	NameHash   uint32
	Attributes uint32
	DataStart  uint32
	DataEnd    uint32
}

// HasName reports whether the node's name is stored in the SFNT table.
func (n SFATNode) HasName() bool {
	return n.Attributes&0xFF000000 == SFATNameFlag
}

// NameOffset returns the byte offset of the name relative to the SFNT payload.
func (n SFATNode) NameOffset() int {
	return int(n.Attributes&0xFFFF) * 4
}

// ParseSFATNode decodes a node from b[0:16].
func ParseSFATNode(b []byte, order buf.Order) SFATNode {
	_ = b[SFATNodeSize-1]
	return SFATNode{
		NameHash:   order.Uint32(b),
		Attributes: order.Uint32(b[4:]),
		DataStart:  order.Uint32(b[8:]),
		DataEnd:    order.Uint32(b[12:]),
	}
}

// ParseSFNTHeader validates the name table header at off.
func ParseSFNTHeader(b []byte, off int, order buf.Order) error {
	h, ok := buf.Slice(b, off, SFNTHeaderSize)
	if !ok {
		return fmt.Errorf("sfnt header: %w", ErrTruncated)
	}
	if !bytes.Equal(h[:4], SFNTMagic) {
		return fmt.Errorf("sfnt header: %w", ErrSignatureMismatch)
	}
	if size := order.Uint16(h[4:]); size != SFNTHeaderSize {
		return fmt.Errorf("sfnt header size 0x%x: %w", size, ErrUnsupported)
	}
	return nil
}
