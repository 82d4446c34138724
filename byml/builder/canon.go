package builder

import (
	"encoding/binary"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/joshuapare/bymlkit/pkg/types"
)

// container is one distinct array or dictionary in the output. Children are
// canonical themselves, so two containers are equal exactly when their
// element lists are equal with children compared by pointer.
type container struct {
	typ   types.DataType
	keys  []string // dictionaries only, sorted
	elems []elem
	hash  uint64

	offset uint32
	size   uint32
}

type elem struct {
	typ   types.DataType
	bits  uint64
	str   string
	child *container
	slot  uint32 // value written into the 4-byte slot, set during layout
}

// canonicalizer folds a caller's tree into distinct containers and gathers
// the string pools.
type canonicalizer struct {
	byArray  map[*Array]*container
	byDict   map[*Dict]*container
	byHash   map[uint64][]*container
	visiting map[any]bool
	keys     map[string]struct{}
	strings  map[string]struct{}
	distinct int
}

func newCanonicalizer() *canonicalizer {
	return &canonicalizer{
		byArray:  make(map[*Array]*container),
		byDict:   make(map[*Dict]*container),
		byHash:   make(map[uint64][]*container),
		visiting: make(map[any]bool),
		keys:     make(map[string]struct{}),
		strings:  make(map[string]struct{}),
	}
}

func (c *canonicalizer) node(n Node) (elem, error) {
	e := elem{typ: n.typ, bits: n.bits}
	switch n.typ {
	case types.TypeString:
		if strings.IndexByte(n.str, 0) >= 0 {
			return elem{}, types.Wrap(types.ErrInvalidString, "value %q", n.str)
		}
		c.strings[n.str] = struct{}{}
		e.str = n.str
	case types.TypeArray:
		child, err := c.array(n.arr)
		if err != nil {
			return elem{}, err
		}
		e.child = child
	case types.TypeDict:
		child, err := c.dict(n.dict)
		if err != nil {
			return elem{}, err
		}
		e.child = child
	case types.TypeBool, types.TypeI32, types.TypeU32, types.TypeF32,
		types.TypeI64, types.TypeU64, types.TypeF64, types.TypeNull:
	default:
		return elem{}, types.Wrap(types.ErrInvalidType, "cannot write node with tag 0x%02X", uint8(n.typ))
	}
	return e, nil
}

func (c *canonicalizer) array(a *Array) (*container, error) {
	if got, ok := c.byArray[a]; ok {
		return got, nil
	}
	if c.visiting[a] {
		return nil, types.Wrap(types.ErrCorrupt, "array contains itself")
	}
	if err := checkCount(len(a.items), "array elements"); err != nil {
		return nil, err
	}
	c.visiting[a] = true
	defer delete(c.visiting, a)

	ct := &container{typ: types.TypeArray, elems: make([]elem, len(a.items))}
	for i, item := range a.items {
		e, err := c.node(item)
		if err != nil {
			return nil, err
		}
		ct.elems[i] = e
	}
	ct = c.intern(ct)
	c.byArray[a] = ct
	return ct, nil
}

func (c *canonicalizer) dict(d *Dict) (*container, error) {
	if got, ok := c.byDict[d]; ok {
		return got, nil
	}
	if c.visiting[d] {
		return nil, types.Wrap(types.ErrCorrupt, "dictionary contains itself")
	}
	if err := checkCount(len(d.keys), "dictionary entries"); err != nil {
		return nil, err
	}
	c.visiting[d] = true
	defer delete(c.visiting, d)

	ct := &container{typ: types.TypeDict, keys: d.keys, elems: make([]elem, len(d.vals))}
	for i, k := range d.keys {
		if strings.IndexByte(k, 0) >= 0 {
			return nil, types.Wrap(types.ErrInvalidString, "key %q", k)
		}
		c.keys[k] = struct{}{}
		e, err := c.node(d.vals[i])
		if err != nil {
			return nil, err
		}
		ct.elems[i] = e
	}
	ct = c.intern(ct)
	c.byDict[d] = ct
	return ct, nil
}

// intern returns the existing container equal to ct, or registers ct.
func (c *canonicalizer) intern(ct *container) *container {
	ct.hash = ct.contentHash()
	for _, cand := range c.byHash[ct.hash] {
		if cand.equal(ct) {
			return cand
		}
	}
	c.byHash[ct.hash] = append(c.byHash[ct.hash], ct)
	c.distinct++
	return ct
}

func (ct *container) contentHash() uint64 {
	h := xxhash.New()
	var scratch [9]byte
	scratch[0] = byte(ct.typ)
	binary.LittleEndian.PutUint64(scratch[1:], uint64(len(ct.elems)))
	_, _ = h.Write(scratch[:])
	for i, e := range ct.elems {
		if ct.keys != nil {
			binary.LittleEndian.PutUint64(scratch[1:], uint64(len(ct.keys[i])))
			_, _ = h.Write(scratch[1:])
			_, _ = h.WriteString(ct.keys[i])
		}
		scratch[0] = byte(e.typ)
		switch {
		case e.child != nil:
			binary.LittleEndian.PutUint64(scratch[1:], e.child.hash)
		case e.typ == types.TypeString:
			binary.LittleEndian.PutUint64(scratch[1:], uint64(len(e.str)))
		default:
			binary.LittleEndian.PutUint64(scratch[1:], e.bits)
		}
		_, _ = h.Write(scratch[:])
		if e.typ == types.TypeString {
			_, _ = h.WriteString(e.str)
		}
	}
	return h.Sum64()
}

func (ct *container) equal(o *container) bool {
	if ct.typ != o.typ || !slices.Equal(ct.keys, o.keys) || len(ct.elems) != len(o.elems) {
		return false
	}
	for i := range ct.elems {
		a, b := ct.elems[i], o.elems[i]
		if a.typ != b.typ || a.bits != b.bits || a.str != b.str || a.child != b.child {
			return false
		}
	}
	return true
}
