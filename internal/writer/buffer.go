package writer

import (
	"errors"
	"io"
)

// Buffer is an in-memory io.WriteSeeker. Seeking past the end and writing
// leaves a zero-filled gap, matching file semantics.
type Buffer struct {
	buf []byte
	pos int64
}

// NewBuffer returns a Buffer with capacity for sizeHint bytes.
func NewBuffer(sizeHint int) *Buffer {
	return &Buffer{buf: make([]byte, 0, sizeHint)}
}

func (b *Buffer) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.buf)) {
		if end > int64(cap(b.buf)) {
			grown := make([]byte, end, max(end, 2*int64(cap(b.buf))))
			copy(grown, b.buf)
			b.buf = grown
		} else {
			old := len(b.buf)
			b.buf = b.buf[:end]
			clear(b.buf[old:])
		}
	}
	copy(b.buf[b.pos:], p)
	b.pos = end
	return len(p), nil
}

// Seek implements io.Seeker.
func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.pos + offset
	case io.SeekEnd:
		abs = int64(len(b.buf)) + offset
	default:
		return 0, errors.New("writer: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("writer: negative position")
	}
	b.pos = abs
	return abs, nil
}

// Bytes returns the written contents. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte { return b.buf }

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int { return len(b.buf) }
