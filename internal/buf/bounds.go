package buf

import (
	"math"

	"github.com/joshuapare/bymlkit/pkg/types"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe multiplies two non-negative ints, returning ok = false when the
// result would overflow int or either operand is negative.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// CheckListBounds validates that count elements of elementSize bytes fit in a
// buffer of bufLen bytes starting at offset, and returns the end offset.
// Failures wrap types.ErrOverflow or types.ErrOutOfBounds, prefixed with what.
//
//	end, err := buf.CheckListBounds(len(data), off+4, int(count), 8, "dictionary entries")
//	if err != nil {
//	    return err
//	}
//	// data[off+4:end] is safe to index
func CheckListBounds(bufLen, offset, count, elementSize int, what string) (int, error) {
	if offset < 0 || count < 0 || elementSize < 0 {
		return 0, types.Wrap(types.ErrOutOfBounds, "%s: negative offset or size", what)
	}
	totalSize, ok := MulOverflowSafe(count, elementSize)
	if !ok {
		return 0, types.Wrap(types.ErrOverflow, "%s: count=%d * elemSize=%d", what, count, elementSize)
	}
	endOffset, ok := AddOverflowSafe(offset, totalSize)
	if !ok {
		return 0, types.Wrap(types.ErrOverflow, "%s: offset=%d + size=%d", what, offset, totalSize)
	}
	if endOffset > bufLen {
		return 0, types.Wrap(types.ErrOutOfBounds, "%s: end=%d > len=%d", what, endOffset, bufLen)
	}
	return endOffset, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}

// AddU32 adds sizes in the 32-bit offset space used by the on-disk formats.
func AddU32(a, b uint32) (uint32, bool) {
	s := a + b
	return s, s >= a
}

// MulU32 multiplies sizes in the 32-bit offset space.
func MulU32(a, b uint32) (uint32, bool) {
	p := uint64(a) * uint64(b)
	return uint32(p), p <= math.MaxUint32
}

// AlignU32 rounds v up to the next multiple of align (a power of two).
func AlignU32(v, align uint32) (uint32, bool) {
	s, ok := AddU32(v, align-1)
	if !ok {
		return 0, false
	}
	return s &^ (align - 1), true
}
