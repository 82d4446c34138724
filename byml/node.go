package byml

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/joshuapare/bymlkit/pkg/types"
)

// Node is a decoded BYML value: a scalar, a string borrowed from the buffer,
// or a container view. The zero Node is not a valid value.
type Node struct {
	typ  types.DataType
	bits uint64 // scalar payload as stored
	str  []byte
	arr  Array
	dict Dict
}

// Type returns the node's tag.
func (n Node) Type() types.DataType { return n.typ }

// IsNull reports whether n is the null value.
func (n Node) IsNull() bool { return n.typ == types.TypeNull }

func (n Node) expect(want types.DataType) error {
	if n.typ != want {
		return types.TypeMismatch(want, n.typ)
	}
	return nil
}

func (n Node) AsBool() (bool, error) {
	if err := n.expect(types.TypeBool); err != nil {
		return false, err
	}
	return n.bits != 0, nil
}

func (n Node) AsI32() (int32, error) {
	if err := n.expect(types.TypeI32); err != nil {
		return 0, err
	}
	return int32(uint32(n.bits)), nil
}

func (n Node) AsU32() (uint32, error) {
	if err := n.expect(types.TypeU32); err != nil {
		return 0, err
	}
	return uint32(n.bits), nil
}

func (n Node) AsF32() (float32, error) {
	if err := n.expect(types.TypeF32); err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(n.bits)), nil
}

func (n Node) AsI64() (int64, error) {
	if err := n.expect(types.TypeI64); err != nil {
		return 0, err
	}
	return int64(n.bits), nil
}

func (n Node) AsU64() (uint64, error) {
	if err := n.expect(types.TypeU64); err != nil {
		return 0, err
	}
	return n.bits, nil
}

func (n Node) AsF64() (float64, error) {
	if err := n.expect(types.TypeF64); err != nil {
		return 0, err
	}
	return math.Float64frombits(n.bits), nil
}

// AsString returns a string value, which must be valid UTF-8.
func (n Node) AsString() (string, error) {
	b, err := n.AsBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", types.Wrap(types.ErrNonUTF8, "%q", b)
	}
	return string(b), nil
}

// AsBytes returns a string value's raw bytes without validation. The slice
// borrows the document buffer.
func (n Node) AsBytes() ([]byte, error) {
	if err := n.expect(types.TypeString); err != nil {
		return nil, err
	}
	return n.str, nil
}

func (n Node) AsArray() (Array, error) {
	if err := n.expect(types.TypeArray); err != nil {
		return Array{}, err
	}
	return n.arr, nil
}

func (n Node) AsDict() (Dict, error) {
	if err := n.expect(types.TypeDict); err != nil {
		return Dict{}, err
	}
	return n.dict, nil
}

// Bits returns the stored payload of a scalar node: the 32-bit slot for
// inline types, the 8-byte value for long types, 0 or 1 for bools.
func (n Node) Bits() uint64 { return n.bits }

// String returns a short debug form such as U32(53) or Array[3].
func (n Node) String() string {
	switch n.typ {
	case types.TypeString:
		return "String(" + strconv.Quote(string(n.str)) + ")"
	case types.TypeArray:
		return fmt.Sprintf("Array[%d]", n.arr.Len())
	case types.TypeDict:
		return fmt.Sprintf("Dictionary{%d}", n.dict.Len())
	case types.TypeBool:
		return fmt.Sprintf("Bool(%t)", n.bits != 0)
	case types.TypeI32:
		return fmt.Sprintf("I32(%d)", int32(uint32(n.bits)))
	case types.TypeU32:
		return fmt.Sprintf("U32(%d)", uint32(n.bits))
	case types.TypeF32:
		return fmt.Sprintf("F32(%g)", math.Float32frombits(uint32(n.bits)))
	case types.TypeI64:
		return fmt.Sprintf("I64(%d)", int64(n.bits))
	case types.TypeU64:
		return fmt.Sprintf("U64(%d)", n.bits)
	case types.TypeF64:
		return fmt.Sprintf("F64(%g)", math.Float64frombits(n.bits))
	case types.TypeNull:
		return "Null"
	default:
		return "Invalid"
	}
}

// maxDecodeDepth bounds recursion in Decode so a cyclic document fails
// instead of exhausting the stack.
const maxDecodeDepth = 512

// Decode converts n and everything below it into plain Go values:
// []any, map[string]any, string, bool, int32, uint32, float32, int64,
// uint64, float64 or nil.
func (n Node) Decode() (any, error) {
	return n.decode(0)
}

func (n Node) decode(depth int) (any, error) {
	if depth > maxDecodeDepth {
		return nil, types.Wrap(types.ErrCorrupt, "nesting deeper than %d", maxDecodeDepth)
	}
	switch n.typ {
	case types.TypeArray:
		out := make([]any, 0, n.arr.Len())
		it := n.arr.Iter()
		for {
			child, err := it.Next()
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			if err != nil {
				return nil, err
			}
			v, err := child.decode(depth + 1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	case types.TypeDict:
		out := make(map[string]any, n.dict.Len())
		it := n.dict.Iter()
		for {
			e, err := it.Next()
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			if err != nil {
				return nil, err
			}
			v, err := e.Value.decode(depth + 1)
			if err != nil {
				return nil, err
			}
			out[string(e.Key)] = v
		}
	case types.TypeString:
		return n.AsString()
	case types.TypeBool:
		return n.bits != 0, nil
	case types.TypeI32:
		return int32(uint32(n.bits)), nil
	case types.TypeU32:
		return uint32(n.bits), nil
	case types.TypeF32:
		return math.Float32frombits(uint32(n.bits)), nil
	case types.TypeI64:
		return int64(n.bits), nil
	case types.TypeU64:
		return n.bits, nil
	case types.TypeF64:
		return math.Float64frombits(n.bits), nil
	case types.TypeNull:
		return nil, nil
	}
	return nil, types.Wrap(types.ErrInvalidType, "tag 0x%02X", uint8(n.typ))
}
