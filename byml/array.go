package byml

import (
	"fmt"

	"github.com/joshuapare/bymlkit/internal/buf"
	"github.com/joshuapare/bymlkit/internal/format"
	"github.com/joshuapare/bymlkit/pkg/types"
)

// Array is a view over an array node: count type tags followed, after
// padding to 4 bytes, by count value slots.
type Array struct {
	doc    *Document
	off    int
	tags   []byte
	values []byte
}

func (d *Document) openArray(off int, count uint32) (Array, error) {
	start := off + format.ContainerHeaderSize
	tagsEnd, err := buf.CheckListBounds(len(d.data), start, int(count), 1, "array types")
	if err != nil {
		return Array{}, err
	}
	tags := d.data[start:tagsEnd]
	for i, t := range tags {
		if !types.DataType(t).Valid() {
			return Array{}, types.Wrap(types.ErrInvalidType, "array at 0x%x element %d tag 0x%02X", off, i, t)
		}
	}
	valStart := format.Align4(tagsEnd)
	valEnd, err := buf.CheckListBounds(len(d.data), valStart, int(count), format.ValueSize, "array values")
	if err != nil {
		return Array{}, err
	}
	return Array{doc: d, off: off, tags: tags, values: d.data[valStart:valEnd]}, nil
}

// Len returns the number of elements.
func (a Array) Len() int { return len(a.tags) }

// Offset returns the absolute offset of the array's header.
func (a Array) Offset() int { return a.off }

// Type returns the tag of element i, or false when i is out of range.
func (a Array) Type(i int) (types.DataType, bool) {
	if i < 0 || i >= len(a.tags) {
		return 0, false
	}
	return types.DataType(a.tags[i]), true
}

// Get decodes element i. An index outside [0, Len) is absence, not an error.
func (a Array) Get(i int) (Node, bool, error) {
	if i < 0 || i >= len(a.tags) {
		return Node{}, false, nil
	}
	n, err := a.doc.value(types.DataType(a.tags[i]), a.doc.order.Uint32(a.values[i*4:]))
	if err != nil {
		return Node{}, false, fmt.Errorf("array element %d: %w", i, err)
	}
	return n, true, nil
}

// getTyped checks element i's tag before decoding it.
func (a Array) getTyped(i int, want types.DataType) (Node, bool, error) {
	t, ok := a.Type(i)
	if !ok {
		return Node{}, false, nil
	}
	if t != want {
		return Node{}, false, fmt.Errorf("array element %d: %w", i, types.TypeMismatch(want, t))
	}
	return a.Get(i)
}

func (a Array) GetArray(i int) (Array, bool, error) {
	n, ok, err := a.getTyped(i, types.TypeArray)
	return as(n, ok, err, Node.AsArray)
}

func (a Array) GetDict(i int) (Dict, bool, error) {
	n, ok, err := a.getTyped(i, types.TypeDict)
	return as(n, ok, err, Node.AsDict)
}

func (a Array) GetString(i int) (string, bool, error) {
	n, ok, err := a.getTyped(i, types.TypeString)
	return as(n, ok, err, Node.AsString)
}

func (a Array) GetBytes(i int) ([]byte, bool, error) {
	n, ok, err := a.getTyped(i, types.TypeString)
	return as(n, ok, err, Node.AsBytes)
}

func (a Array) GetBool(i int) (bool, bool, error) {
	n, ok, err := a.getTyped(i, types.TypeBool)
	return as(n, ok, err, Node.AsBool)
}

func (a Array) GetI32(i int) (int32, bool, error) {
	n, ok, err := a.getTyped(i, types.TypeI32)
	return as(n, ok, err, Node.AsI32)
}

func (a Array) GetU32(i int) (uint32, bool, error) {
	n, ok, err := a.getTyped(i, types.TypeU32)
	return as(n, ok, err, Node.AsU32)
}

func (a Array) GetF32(i int) (float32, bool, error) {
	n, ok, err := a.getTyped(i, types.TypeF32)
	return as(n, ok, err, Node.AsF32)
}

func (a Array) GetI64(i int) (int64, bool, error) {
	n, ok, err := a.getTyped(i, types.TypeI64)
	return as(n, ok, err, Node.AsI64)
}

func (a Array) GetU64(i int) (uint64, bool, error) {
	n, ok, err := a.getTyped(i, types.TypeU64)
	return as(n, ok, err, Node.AsU64)
}

func (a Array) GetF64(i int) (float64, bool, error) {
	n, ok, err := a.getTyped(i, types.TypeF64)
	return as(n, ok, err, Node.AsF64)
}

// as finishes a typed lookup: absence and errors pass through, a found node
// is converted with conv.
func as[T any](n Node, ok bool, err error, conv func(Node) (T, error)) (T, bool, error) {
	var zero T
	if err != nil || !ok {
		return zero, ok, err
	}
	v, err := conv(n)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}
