package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Yaz0Header is the decoded 16-byte Yaz0 header.
type Yaz0Header struct {
	Size     uint32
	Reserved [8]byte
}

// Alignment returns the data alignment recorded by newer encoders, or 0.
func (h Yaz0Header) Alignment() uint32 {
	return binary.BigEndian.Uint32(h.Reserved[4:])
}

// ParseYaz0Header validates the magic and extracts the declared size.
func ParseYaz0Header(b []byte) (Yaz0Header, error) {
	if len(b) < Yaz0HeaderSize {
		return Yaz0Header{}, fmt.Errorf("yaz0 header: %w", ErrTruncated)
	}
	if !bytes.Equal(b[:4], Yaz0Magic) {
		return Yaz0Header{}, fmt.Errorf("yaz0 header: %w", ErrSignatureMismatch)
	}
	var h Yaz0Header
	h.Size = binary.BigEndian.Uint32(b[Yaz0SizeOffset:])
	copy(h.Reserved[:], b[Yaz0ReservedOffset:Yaz0HeaderSize])
	return h, nil
}
