package byml

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/bymlkit/internal/buf"
	"github.com/joshuapare/bymlkit/internal/format"
	"github.com/joshuapare/bymlkit/pkg/types"
)

// stringTable is a view over a sorted table of NUL-terminated strings. Entry i
// starts at base+offset[i]; its terminator is found on demand.
type stringTable struct {
	data    []byte
	base    int
	count   uint32
	offsets []byte // count+1 u32 entries, last one is the end sentinel
	order   buf.Order
}

func openStringTable(data []byte, off uint32, order buf.Order) (*stringTable, error) {
	base := int(off)
	hdr, err := format.ParseContainerHeader(data, base, order)
	if err != nil {
		return nil, types.Wrap(types.ErrOutOfBounds, "string table header at 0x%x", off)
	}
	if hdr.Type != types.TypeStringTable {
		return nil, types.Wrap(types.ErrInvalidType, "string table at 0x%x has tag 0x%02X", off, uint8(hdr.Type))
	}
	start := base + format.ContainerHeaderSize
	end, err := buf.CheckListBounds(len(data), start, int(hdr.Count)+1, format.ValueSize, "string table address table")
	if err != nil {
		return nil, err
	}
	return &stringTable{
		data:    data,
		base:    base,
		count:   hdr.Count,
		offsets: data[start:end],
		order:   order,
	}, nil
}

// Len returns the number of strings in the table.
func (t *stringTable) Len() int { return int(t.count) }

// read returns string i without its terminator.
func (t *stringTable) read(i uint32) ([]byte, error) {
	if i >= t.count {
		return nil, types.Wrap(types.ErrStringIndex, "index %d >= %d", i, t.count)
	}
	rel := t.order.Uint32(t.offsets[i*4:])
	start, ok := buf.AddOverflowSafe(t.base, int(rel))
	if !ok || start >= len(t.data) {
		return nil, types.Wrap(types.ErrOutOfBounds, "string data for index %d at 0x%x", i, uint64(t.base)+uint64(rel))
	}
	n := bytes.IndexByte(t.data[start:], 0)
	if n < 0 {
		return nil, types.Wrap(types.ErrUnterminated, "string %d at 0x%x", i, start)
	}
	return t.data[start : start+n], nil
}

// verify checks that every entry resolves and entries are strictly ascending.
func (t *stringTable) verify(name string) error {
	var prev []byte
	for i := uint32(0); i < t.count; i++ {
		s, err := t.read(i)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if i > 0 && bytes.Compare(prev, s) >= 0 {
			return types.Wrap(types.ErrUnsorted, "%s: entry %d %q not after %q", name, i, s, prev)
		}
		prev = s
	}
	return nil
}
