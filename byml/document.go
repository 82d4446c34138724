package byml

import (
	"errors"
	"fmt"

	"github.com/joshuapare/bymlkit/internal/buf"
	"github.com/joshuapare/bymlkit/internal/format"
	"github.com/joshuapare/bymlkit/pkg/types"
)

// Document is a validated, read-only view over a BYML buffer.
type Document struct {
	data    []byte
	order   buf.Order
	version uint16
	keys    *stringTable // nil when the document has no hash-key table
	strings *stringTable // nil when the document has no value string table
	root    Node
	hasRoot bool
}

// Open validates data as a BYML document in the given byte order. The buffer
// is borrowed, not copied.
func Open(data []byte, endian types.Endian) (*Document, error) {
	order := buf.For(endian)
	hdr, err := format.ParseHeader(data, order)
	if err != nil {
		return nil, wrapFormatErr(err)
	}
	if hdr.Version < format.BYMLMinVersion || hdr.Version > format.BYMLMaxVersion {
		return nil, types.Wrap(types.ErrUnsupportedVersion, "version %d (supported %d-%d)",
			hdr.Version, format.BYMLMinVersion, format.BYMLMaxVersion)
	}

	d := &Document{data: data, order: order, version: hdr.Version}
	if d.keys, err = d.openTable(hdr.HashKeyTableOffset, "hash key table"); err != nil {
		return nil, err
	}
	if d.strings, err = d.openTable(hdr.StringTableOffset, "string table"); err != nil {
		return nil, err
	}

	if hdr.RootOffset == 0 {
		return d, nil
	}
	if !format.IsAligned4(hdr.RootOffset) {
		return nil, types.Wrap(types.ErrMisaligned, "root node at 0x%x", hdr.RootOffset)
	}
	h, err := format.ParseContainerHeader(data, int(hdr.RootOffset), order)
	if err != nil {
		return nil, types.Wrap(types.ErrOutOfBounds, "root node header at 0x%x", hdr.RootOffset)
	}
	if !h.Type.Valid() {
		return nil, types.Wrap(types.ErrInvalidType, "root node tag 0x%02X", uint8(h.Type))
	}
	if !h.Type.IsContainer() {
		return nil, types.Wrap(types.ErrNonContainerRoot, "root node is %s", h.Type)
	}
	if d.root, err = d.container(hdr.RootOffset, h.Type); err != nil {
		return nil, fmt.Errorf("root node: %w", err)
	}
	d.hasRoot = true
	return d, nil
}

// OpenAuto detects the byte order from the magic and opens data.
func OpenAuto(data []byte) (*Document, error) {
	order, err := format.DetectOrder(data)
	if err != nil {
		return nil, wrapFormatErr(err)
	}
	return Open(data, order.Endian())
}

// IsBYML reports whether data starts with a BYML magic of either byte order.
func IsBYML(data []byte) bool {
	_, err := format.DetectOrder(data)
	return err == nil
}

func (d *Document) openTable(off uint32, name string) (*stringTable, error) {
	if off == 0 {
		return nil, nil
	}
	if !format.IsAligned4(off) {
		return nil, types.Wrap(types.ErrMisaligned, "%s at 0x%x", name, off)
	}
	t, err := openStringTable(d.data, off, d.order)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

// Endian returns the document's byte order.
func (d *Document) Endian() types.Endian { return d.order.Endian() }

// Version returns the header version.
func (d *Document) Version() uint16 { return d.version }

// Bytes returns the underlying buffer.
func (d *Document) Bytes() []byte { return d.data }

// IsEmpty reports whether the document has no root node.
func (d *Document) IsEmpty() bool { return !d.hasRoot }

// Root returns the root container, or false for an empty document.
func (d *Document) Root() (Node, bool) { return d.root, d.hasRoot }

// Array returns the root as an array.
func (d *Document) Array() (Array, error) {
	if !d.hasRoot {
		return Array{}, types.ErrEmptyDocument
	}
	return d.root.AsArray()
}

// Dict returns the root as a dictionary.
func (d *Document) Dict() (Dict, error) {
	if !d.hasRoot {
		return Dict{}, types.ErrEmptyDocument
	}
	return d.root.AsDict()
}

// KeyCount returns the number of entries in the hash-key table.
func (d *Document) KeyCount() int {
	if d.keys == nil {
		return 0
	}
	return d.keys.Len()
}

// StringCount returns the number of entries in the value string table.
func (d *Document) StringCount() int {
	if d.strings == nil {
		return 0
	}
	return d.strings.Len()
}

// container opens the array or dictionary header at off, which a parent
// slot declared as want.
func (d *Document) container(off uint32, want types.DataType) (Node, error) {
	if !format.IsAligned4(off) {
		return Node{}, types.Wrap(types.ErrMisaligned, "%s node at 0x%x", want, off)
	}
	h, err := format.ParseContainerHeader(d.data, int(off), d.order)
	if err != nil {
		return Node{}, types.Wrap(types.ErrOutOfBounds, "%s node header at 0x%x", want, off)
	}
	if h.Type != want {
		return Node{}, types.Wrap(types.ErrTypeMismatch, "node at 0x%x: expected %s, found %s", off, want, h.Type)
	}
	switch want {
	case types.TypeArray:
		a, err := d.openArray(int(off), h.Count)
		if err != nil {
			return Node{}, err
		}
		return Node{typ: types.TypeArray, arr: a}, nil
	default:
		dict, err := d.openDict(int(off), h.Count)
		if err != nil {
			return Node{}, err
		}
		return Node{typ: types.TypeDict, dict: dict}, nil
	}
}

// value decodes one slot according to its tag.
func (d *Document) value(typ types.DataType, raw uint32) (Node, error) {
	switch typ {
	case types.TypeString:
		if d.strings == nil {
			return Node{}, types.ErrNoStringTable
		}
		s, err := d.strings.read(raw)
		if err != nil {
			return Node{}, fmt.Errorf("string value: %w", err)
		}
		return Node{typ: typ, str: s}, nil
	case types.TypeArray, types.TypeDict:
		return d.container(raw, typ)
	case types.TypeStringTable:
		return Node{}, types.ErrStringTableElement
	case types.TypeBool:
		var b uint64
		if raw != 0 {
			b = 1
		}
		return Node{typ: typ, bits: b}, nil
	case types.TypeI32, types.TypeU32, types.TypeF32:
		return Node{typ: typ, bits: uint64(raw)}, nil
	case types.TypeI64, types.TypeU64, types.TypeF64:
		v, ok := d.order.U64At(d.data, int(raw))
		if !ok {
			return Node{}, types.Wrap(types.ErrOutOfBounds, "long value at 0x%x", raw)
		}
		return Node{typ: typ, bits: v}, nil
	case types.TypeNull:
		return Node{typ: typ}, nil
	default:
		return Node{}, types.Wrap(types.ErrInvalidType, "tag 0x%02X", uint8(typ))
	}
}

func wrapFormatErr(err error) error {
	switch {
	case errors.Is(err, format.ErrSignatureMismatch):
		return &types.Error{Kind: types.ErrKindFormat, Msg: err.Error(), Err: types.ErrBadMagic}
	case errors.Is(err, format.ErrByteOrder):
		return &types.Error{Kind: types.ErrKindFormat, Msg: err.Error(), Err: types.ErrEndianness}
	case errors.Is(err, format.ErrTruncated):
		return &types.Error{Kind: types.ErrKindBounds, Msg: err.Error(), Err: types.ErrOutOfBounds}
	case errors.Is(err, format.ErrUnsupported):
		return &types.Error{Kind: types.ErrKindUnsupported, Msg: err.Error(), Err: types.ErrUnsupportedVersion}
	default:
		return &types.Error{Kind: types.ErrKindCorrupt, Msg: err.Error(), Err: err}
	}
}
