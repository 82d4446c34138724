// Package sarc reads SARC archives: a flat table of named files, sorted by
// name hash, followed by the file data. Member data is returned as slices of
// the archive buffer.
package sarc

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/joshuapare/bymlkit/internal/buf"
	"github.com/joshuapare/bymlkit/internal/format"
	"github.com/joshuapare/bymlkit/pkg/types"
)

// File is one archive member. Data borrows the archive buffer.
type File struct {
	Name string
	Hash uint32
	Data []byte
}

// Archive is a parsed, read-only archive.
type Archive struct {
	data    []byte
	order   buf.Order
	hashKey uint32
	files   []File
}

// NameHash computes the SFAT hash of name for the given multiplier. Bytes are
// treated as signed, as the shipped tooling does.
func NameHash(name string, key uint32) uint32 {
	var h uint32
	for i := 0; i < len(name); i++ {
		h = h*key + uint32(int32(int8(name[i])))
	}
	return h
}

// Open parses the archive in data. Every member's name and data range is
// validated up front.
func Open(data []byte) (*Archive, error) {
	hdr, err := format.ParseSARCHeader(data)
	if err != nil {
		return nil, wrapFormatErr(err)
	}
	order := hdr.Order
	sfatOff := int(hdr.HeaderSize)
	sfat, err := format.ParseSFATHeader(data, sfatOff, order)
	if err != nil {
		return nil, wrapFormatErr(err)
	}
	nodesOff := sfatOff + format.SFATHeaderSize
	sfntOff, err := buf.CheckListBounds(len(data), nodesOff, int(sfat.NodeCount), format.SFATNodeSize, "sfat nodes")
	if err != nil {
		return nil, err
	}
	if err := format.ParseSFNTHeader(data, sfntOff, order); err != nil {
		return nil, wrapFormatErr(err)
	}
	namesOff := sfntOff + format.SFNTHeaderSize
	dataOff := int(hdr.DataOffset)
	if dataOff < namesOff || dataOff > len(data) {
		return nil, types.Wrap(types.ErrOutOfBounds, "data offset 0x%x", hdr.DataOffset)
	}

	a := &Archive{data: data, order: order, hashKey: sfat.HashKey, files: make([]File, sfat.NodeCount)}
	names := data[namesOff:dataOff]
	for i := range a.files {
		node := format.ParseSFATNode(data[nodesOff+i*format.SFATNodeSize:], order)
		f := File{Hash: node.NameHash}
		if node.HasName() {
			off := node.NameOffset()
			if off >= len(names) {
				return nil, types.Wrap(types.ErrOutOfBounds, "name of file %d at 0x%x", i, namesOff+off)
			}
			n := bytes.IndexByte(names[off:], 0)
			if n < 0 {
				return nil, types.Wrap(types.ErrUnterminated, "name of file %d", i)
			}
			f.Name = string(names[off : off+n])
		}
		if node.DataStart > node.DataEnd {
			return nil, types.Wrap(types.ErrCorrupt, "file %q: start 0x%x after end 0x%x", f.Name, node.DataStart, node.DataEnd)
		}
		start, ok := buf.AddOverflowSafe(dataOff, int(node.DataStart))
		if !ok {
			return nil, types.Wrap(types.ErrOverflow, "file %q start", f.Name)
		}
		body, ok := buf.Slice(data, start, int(node.DataEnd-node.DataStart))
		if !ok {
			return nil, types.Wrap(types.ErrOutOfBounds, "file %q data 0x%x..0x%x", f.Name, start, start+int(node.DataEnd-node.DataStart))
		}
		f.Data = body
		a.files[i] = f
	}
	return a, nil
}

// Len returns the number of members.
func (a *Archive) Len() int { return len(a.files) }

// Endian returns the archive's byte order.
func (a *Archive) Endian() types.Endian { return a.order.Endian() }

// Files returns every member in table order.
func (a *Archive) Files() []File { return a.files }

// Get returns the data of the member called name.
func (a *Archive) Get(name string) ([]byte, bool) {
	h := NameHash(name, a.hashKey)
	i := sort.Search(len(a.files), func(i int) bool { return a.files[i].Hash >= h })
	for ; i < len(a.files) && a.files[i].Hash == h; i++ {
		if a.files[i].Name == name {
			return a.files[i].Data, true
		}
	}
	// Fall back to a scan for tables not sorted by hash.
	for _, f := range a.files {
		if f.Name == name {
			return f.Data, true
		}
	}
	return nil, false
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
		return &types.Error{Kind: types.ErrKindUnsupported, Msg: err.Error(), Err: err}
	default:
		return &types.Error{Kind: types.ErrKindCorrupt, Msg: fmt.Sprint(err), Err: err}
	}
}
