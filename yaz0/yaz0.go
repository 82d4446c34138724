// Package yaz0 decompresses Yaz0 streams, the LZ77-style compression used by
// Nintendo for .szs archives and other assets.
//
// A stream is a 16-byte big-endian header followed by groups: one flag byte,
// read most significant bit first, then eight chunks. A set bit is a literal
// byte. A clear bit is a back-reference of two bytes (length 3..17) or three
// bytes (length 18..273) copying from up to 4096 bytes back; copies run byte
// by byte so an overlapping reference repeats its pattern.
package yaz0

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/joshuapare/bymlkit/internal/format"
	"github.com/joshuapare/bymlkit/pkg/types"
)

// Header is the decoded stream header.
type Header = format.Yaz0Header

// initialCap bounds the up-front allocation so a forged size cannot force a
// huge allocation before any data is decoded.
const initialCap = 16 << 20

// Options controls decompression.
type Options struct {
	// MaxSize rejects streams declaring a larger output. 0 means no limit.
	MaxSize uint32
}

// DefaultOptions returns options with no size limit.
func DefaultOptions() Options {
	return Options{}
}

// IsCompressed reports whether b starts with the Yaz0 magic.
func IsCompressed(b []byte) bool {
	return bytes.HasPrefix(b, format.Yaz0Magic)
}

// ReadHeader reads and validates the 16-byte header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var raw [format.Yaz0HeaderSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return Header{}, types.IOError("read yaz0 header", eofToUnexpected(err))
	}
	h, err := format.ParseYaz0Header(raw[:])
	if err != nil {
		return Header{}, &types.Error{Kind: types.ErrKindFormat, Msg: err.Error(), Err: types.ErrBadMagic}
	}
	return h, nil
}

// Decompress reads a complete Yaz0 stream from r and returns exactly the
// declared number of bytes. Input after the last needed chunk is not read.
func Decompress(r io.Reader) ([]byte, error) {
	return DecompressWithOptions(r, DefaultOptions())
}

// DecompressBytes decompresses an in-memory stream.
func DecompressBytes(src []byte) ([]byte, error) {
	return Decompress(bytes.NewReader(src))
}

// DecompressWithOptions is Decompress with explicit options.
func DecompressWithOptions(r io.Reader, opts Options) ([]byte, error) {
	br := asByteReader(r)
	h, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}
	if opts.MaxSize != 0 && h.Size > opts.MaxSize {
		return nil, types.Wrap(types.ErrOverflow, "declared size %d exceeds limit %d", h.Size, opts.MaxSize)
	}
	return decode(br, int(h.Size))
}

type byteReader interface {
	io.Reader
	io.ByteReader
}

func asByteReader(r io.Reader) byteReader {
	if br, ok := r.(byteReader); ok {
		return br
	}
	return bufio.NewReader(r)
}

func decode(r io.ByteReader, size int) ([]byte, error) {
	out := make([]byte, 0, min(size, initialCap))
	for len(out) < size {
		group, err := r.ReadByte()
		if err != nil {
			return nil, readErr("group header", len(out), err)
		}
		for bit := 7; bit >= 0 && len(out) < size; bit-- {
			if group&(1<<bit) != 0 {
				b, err := r.ReadByte()
				if err != nil {
					return nil, readErr("literal", len(out), err)
				}
				out = append(out, b)
				continue
			}

			b0, err := r.ReadByte()
			if err != nil {
				return nil, readErr("back-reference", len(out), err)
			}
			b1, err := r.ReadByte()
			if err != nil {
				return nil, readErr("back-reference", len(out), err)
			}
			dist := (int(b0&0x0F)<<8 | int(b1)) + 1
			n := int(b0 >> 4)
			if n == 0 {
				b2, err := r.ReadByte()
				if err != nil {
					return nil, readErr("back-reference length", len(out), err)
				}
				n = int(b2) + 0x12
			} else {
				n += 2
			}

			if dist > len(out) {
				return nil, types.Wrap(types.ErrCopyBeforeStart,
					"distance %d at output offset %d", dist, len(out))
			}
			if len(out)+n > size {
				return nil, types.Wrap(types.ErrCopyPastEnd,
					"copy of %d bytes at output offset %d exceeds size %d", n, len(out), size)
			}
			src := len(out) - dist
			for i := 0; i < n; i++ {
				out = append(out, out[src+i])
			}
		}
	}
	return out, nil
}

func readErr(what string, at int, err error) error {
	return types.IOError(fmt.Sprintf("read %s at output offset %d", what, at), eofToUnexpected(err))
}

func eofToUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
