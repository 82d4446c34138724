package byml

import (
	"github.com/joshuapare/bymlkit/internal/buf"
	"github.com/joshuapare/bymlkit/internal/format"
	"github.com/joshuapare/bymlkit/pkg/types"
)

// docAsm assembles BYML bytes by hand so tests can produce both valid and
// deliberately broken layouts.
type docAsm struct {
	order buf.Order
	b     []byte
}

func newAsm(order buf.Order) *docAsm {
	return &docAsm{order: order, b: make([]byte, format.BYMLHeaderSize)}
}

func (a *docAsm) header(version uint16, keys, strs, root uint32) []byte {
	format.PutHeader(a.b, a.order, format.Header{
		Version:            version,
		HashKeyTableOffset: keys,
		StringTableOffset:  strs,
		RootOffset:         root,
	})
	return a.b
}

func (a *docAsm) pos() uint32 { return uint32(len(a.b)) }

func (a *docAsm) align() {
	for len(a.b)%4 != 0 {
		a.b = append(a.b, 0)
	}
}

func (a *docAsm) u32(v uint32) {
	a.b = a.order.AppendUint32(a.b, v)
}

func (a *docAsm) u64(v uint64) {
	a.b = a.order.AppendUint64(a.b, v)
}

func (a *docAsm) containerHeader(t types.DataType, n uint32) {
	h := make([]byte, 4)
	format.PutContainerHeader(h, a.order, format.ContainerHeader{Type: t, Count: n})
	a.b = append(a.b, h...)
}

// stringTable writes strs in the given order (callers pass them sorted unless
// testing unsorted input) and returns the table offset.
func (a *docAsm) stringTable(strs ...string) uint32 {
	a.align()
	base := a.pos()
	a.containerHeader(types.TypeStringTable, uint32(len(strs)))
	off := uint32(4 + 4*(len(strs)+1))
	for _, s := range strs {
		a.u32(off)
		off += uint32(len(s) + 1)
	}
	a.u32(off)
	for _, s := range strs {
		a.b = append(a.b, s...)
		a.b = append(a.b, 0)
	}
	a.align()
	return base
}

func (a *docAsm) dict(entries ...format.DictEntry) uint32 {
	a.align()
	base := a.pos()
	a.containerHeader(types.TypeDict, uint32(len(entries)))
	for _, e := range entries {
		b := make([]byte, format.DictEntrySize)
		format.PutDictEntry(b, a.order, e)
		a.b = append(a.b, b...)
	}
	return base
}

func (a *docAsm) array(tags []types.DataType, vals []uint32) uint32 {
	a.align()
	base := a.pos()
	a.containerHeader(types.TypeArray, uint32(len(tags)))
	for _, t := range tags {
		a.b = append(a.b, byte(t))
	}
	a.align()
	for _, v := range vals {
		a.u32(v)
	}
	return base
}
