package builder

import (
	"math"
	"slices"

	"github.com/joshuapare/bymlkit/internal/buf"
	"github.com/joshuapare/bymlkit/internal/format"
	"github.com/joshuapare/bymlkit/pkg/types"
)

// plan is the complete layout of a document. Every offset and size is fixed
// here, before any byte is emitted.
//
//	header | hash key table | string table | containers (root first) | long values
type plan struct {
	order   buf.Order
	version uint16

	keys     []string
	keyIndex map[string]uint32
	strs     []string
	strIndex map[string]uint32

	keyTableOffset uint32
	strTableOffset uint32
	containers     []*container // emission order
	longOffset     uint32
	size           uint32
}

func newPlan(root *container, c *canonicalizer, opts Options) (*plan, error) {
	p := &plan{order: buf.For(opts.Endian), version: opts.Version}
	var err error
	if p.keys, p.keyIndex, err = sortedPool(c.keys, "hash keys"); err != nil {
		return nil, err
	}
	if p.strs, p.strIndex, err = sortedPool(c.strings, "strings"); err != nil {
		return nil, err
	}
	p.visit(root, make(map[*container]bool, c.distinct))

	off := uint32(format.BYMLHeaderSize)
	if len(p.keys) > 0 {
		p.keyTableOffset = off
		if off, err = addTable(off, p.keys); err != nil {
			return nil, err
		}
	}
	if len(p.strs) > 0 {
		p.strTableOffset = off
		if off, err = addTable(off, p.strs); err != nil {
			return nil, err
		}
	}
	for _, ct := range p.containers {
		ct.offset = off
		if ct.size, err = containerSize(ct); err != nil {
			return nil, err
		}
		if off, err = add(off, ct.size); err != nil {
			return nil, err
		}
	}

	p.longOffset = off
	for _, ct := range p.containers {
		for i := range ct.elems {
			e := &ct.elems[i]
			switch {
			case e.child != nil:
				e.slot = e.child.offset
			case e.typ == types.TypeString:
				e.slot = p.strIndex[e.str]
			case e.typ.IsLong():
				e.slot = off
				if off, err = add(off, format.LongValueSize); err != nil {
					return nil, err
				}
			default:
				e.slot = uint32(e.bits)
			}
		}
	}
	p.size = off
	return p, nil
}

// visit appends containers in depth-first pre-order, each distinct one once.
func (p *plan) visit(ct *container, seen map[*container]bool) {
	if seen[ct] {
		return
	}
	seen[ct] = true
	p.containers = append(p.containers, ct)
	for _, e := range ct.elems {
		if e.child != nil {
			p.visit(e.child, seen)
		}
	}
}

func sortedPool(set map[string]struct{}, what string) ([]string, map[string]uint32, error) {
	if err := checkCount(len(set), "distinct "+what); err != nil {
		return nil, nil, err
	}
	pool := make([]string, 0, len(set))
	for s := range set {
		pool = append(pool, s)
	}
	slices.Sort(pool)
	index := make(map[string]uint32, len(pool))
	for i, s := range pool {
		index[s] = uint32(i)
	}
	return pool, index, nil
}

// tableSize is header + (n+1) offsets + NUL-terminated strings, 4-aligned.
func tableSize(pool []string) (uint32, error) {
	size := uint64(format.ContainerHeaderSize) + uint64(len(pool)+1)*format.ValueSize
	for _, s := range pool {
		size += uint64(len(s)) + 1
	}
	size = (size + format.NodeAlignment - 1) &^ (format.NodeAlignment - 1)
	if size > math.MaxUint32 {
		return 0, types.Wrap(types.ErrOverflow, "string table of %d entries", len(pool))
	}
	return uint32(size), nil
}

func addTable(off uint32, pool []string) (uint32, error) {
	size, err := tableSize(pool)
	if err != nil {
		return 0, err
	}
	return add(off, size)
}

func containerSize(ct *container) (uint32, error) {
	return sizeOf(ct.typ, len(ct.elems))
}

// sizeOf is the encoded size of a container of type typ holding count items.
func sizeOf(typ types.DataType, count int) (uint32, error) {
	if err := checkCount(count, typ.String()+" items"); err != nil {
		return 0, err
	}
	n := uint32(count)
	if typ == types.TypeDict {
		body, ok := buf.MulU32(n, format.DictEntrySize)
		if !ok {
			return 0, types.Wrap(types.ErrOverflow, "dictionary of %d entries", n)
		}
		return add(format.ContainerHeaderSize, body)
	}
	tags, ok := buf.AlignU32(n, format.NodeAlignment)
	if !ok {
		return 0, types.Wrap(types.ErrOverflow, "array of %d elements", n)
	}
	vals, ok := buf.MulU32(n, format.ValueSize)
	if !ok {
		return 0, types.Wrap(types.ErrOverflow, "array of %d elements", n)
	}
	size, err := add(format.ContainerHeaderSize, tags)
	if err != nil {
		return 0, err
	}
	return add(size, vals)
}

// checkCount rejects counts that do not fit a 24-bit field.
func checkCount(n int, what string) error {
	if n < 0 || n >= format.MaxEntries {
		return types.Wrap(types.ErrOverflow, "%d %s", n, what)
	}
	return nil
}

func add(a, b uint32) (uint32, error) {
	s, ok := buf.AddU32(a, b)
	if !ok {
		return 0, types.Wrap(types.ErrOverflow, "document exceeds 4 GiB (0x%x + 0x%x)", a, b)
	}
	return s, nil
}
