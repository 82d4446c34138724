package builder

import (
	"io"
	"math"

	"github.com/joshuapare/bymlkit/internal/buf"
	"github.com/joshuapare/bymlkit/internal/format"
	"github.com/joshuapare/bymlkit/internal/writer"
	"github.com/joshuapare/bymlkit/pkg/types"
)

// Write encodes the tree rooted at root into w. The root must be an array or
// dictionary, or Null for an empty document. Identical containers are
// written once and referenced from every place they occur.
//
// Write runs in three passes: collect distinct containers and strings, plan
// every offset with overflow-checked arithmetic, then emit. Sink errors
// surface as types.ErrKindIO.
func Write(w io.WriteSeeker, root Node, opts Options) error {
	p, err := build(root, opts)
	if err != nil {
		return err
	}
	return p.emit(w)
}

// Marshal encodes the tree into a new byte slice.
func Marshal(root Node, opts Options) ([]byte, error) {
	p, err := build(root, opts)
	if err != nil {
		return nil, err
	}
	b := writer.NewBuffer(int(p.size))
	if err := p.emit(b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Layout summarizes where Write places each part of a document.
type Layout struct {
	Size            uint32
	HashKeyTable    uint32 // 0 when absent
	StringTable     uint32 // 0 when absent
	Root            uint32 // 0 for an empty document
	LongValues      uint32
	Containers      int
	DistinctKeys    int
	DistinctStrings int
}

// PlanLayout computes the layout for root without emitting anything.
func PlanLayout(root Node, opts Options) (Layout, error) {
	p, err := build(root, opts)
	if err != nil {
		return Layout{}, err
	}
	return Layout{
		Size:            p.size,
		HashKeyTable:    p.keyTableOffset,
		StringTable:     p.strTableOffset,
		Root:            p.rootOffset(),
		LongValues:      p.longOffset,
		Containers:      len(p.containers),
		DistinctKeys:    len(p.keys),
		DistinctStrings: len(p.strs),
	}, nil
}

func build(root Node, opts Options) (*plan, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	switch root.typ {
	case types.TypeNull:
		return &plan{
			order:      buf.For(opts.Endian),
			version:    opts.Version,
			longOffset: format.BYMLHeaderSize,
			size:       format.BYMLHeaderSize,
		}, nil
	case types.TypeArray, types.TypeDict:
	default:
		return nil, types.Wrap(types.ErrNonContainerRoot, "root is %s", root.typ)
	}
	c := newCanonicalizer()
	rootElem, err := c.node(root)
	if err != nil {
		return nil, err
	}
	return newPlan(rootElem.child, c, opts)
}

func (p *plan) rootOffset() uint32 {
	if len(p.containers) == 0 {
		return 0
	}
	return p.containers[0].offset
}

// emitter tracks the sink position so sequential writes skip the seek.
type emitter struct {
	w   io.WriteSeeker
	pos int64
}

func (e *emitter) writeAt(off uint32, b []byte) error {
	if e.pos != int64(off) {
		if _, err := e.w.Seek(int64(off), io.SeekStart); err != nil {
			return types.IOError("seek", err)
		}
		e.pos = int64(off)
	}
	n, err := e.w.Write(b)
	e.pos += int64(n)
	if err != nil {
		return types.IOError("write", err)
	}
	return nil
}

func (p *plan) emit(w io.WriteSeeker) error {
	e := &emitter{w: w, pos: math.MinInt64}

	hdr := make([]byte, format.BYMLHeaderSize)
	format.PutHeader(hdr, p.order, format.Header{
		Version:            p.version,
		HashKeyTableOffset: p.keyTableOffset,
		StringTableOffset:  p.strTableOffset,
		RootOffset:         p.rootOffset(),
	})
	if err := e.writeAt(0, hdr); err != nil {
		return err
	}
	if len(p.keys) > 0 {
		if err := e.writeAt(p.keyTableOffset, p.tableBytes(p.keys)); err != nil {
			return err
		}
	}
	if len(p.strs) > 0 {
		if err := e.writeAt(p.strTableOffset, p.tableBytes(p.strs)); err != nil {
			return err
		}
	}

	var long [format.LongValueSize]byte
	for _, ct := range p.containers {
		if err := e.writeAt(ct.offset, p.containerBytes(ct)); err != nil {
			return err
		}
		for _, el := range ct.elems {
			if !el.typ.IsLong() {
				continue
			}
			p.order.PutUint64(long[:], el.bits)
			if err := e.writeAt(el.slot, long[:]); err != nil {
				return err
			}
		}
	}
	return nil
}

// tableBytes encodes a sorted pool. The final offset marks the end of the
// last string, terminator included.
func (p *plan) tableBytes(pool []string) []byte {
	size, _ := tableSize(pool) // validated during planning
	b := make([]byte, format.ContainerHeaderSize, size)
	format.PutContainerHeader(b, p.order, format.ContainerHeader{Type: types.TypeStringTable, Count: uint32(len(pool))})
	off := uint32(format.ContainerHeaderSize + (len(pool)+1)*format.ValueSize)
	for _, s := range pool {
		b = p.order.AppendUint32(b, off)
		off += uint32(len(s)) + 1
	}
	b = p.order.AppendUint32(b, off)
	for _, s := range pool {
		b = append(b, s...)
		b = append(b, 0)
	}
	return b[:size]
}

func (p *plan) containerBytes(ct *container) []byte {
	b := make([]byte, ct.size)
	format.PutContainerHeader(b, p.order, format.ContainerHeader{Type: ct.typ, Count: uint32(len(ct.elems))})
	if ct.typ == types.TypeDict {
		for i, el := range ct.elems {
			format.PutDictEntry(b[format.ContainerHeaderSize+i*format.DictEntrySize:], p.order, format.DictEntry{
				KeyIndex: p.keyIndex[ct.keys[i]],
				Type:     el.typ,
				Value:    el.slot,
			})
		}
		return b
	}
	for i, el := range ct.elems {
		b[format.ContainerHeaderSize+i] = byte(el.typ)
	}
	vals := format.Align4(format.ContainerHeaderSize + len(ct.elems))
	for i, el := range ct.elems {
		p.order.PutUint32(b[vals+i*format.ValueSize:], el.slot)
	}
	return b
}
