package builder

import (
	"fmt"

	"github.com/joshuapare/bymlkit/byml"
	"github.com/joshuapare/bymlkit/pkg/types"
)

// FromDocument copies a read document into an owned tree. Strings are copied
// byte for byte without UTF-8 validation, and containers shared in the input
// stay shared. An empty document yields Null.
func FromDocument(doc *byml.Document) (Node, error) {
	root, ok := doc.Root()
	if !ok {
		return Null(), nil
	}
	return FromNode(root)
}

// FromNode copies n and everything below it.
func FromNode(n byml.Node) (Node, error) {
	c := cloner{
		arrays:   make(map[int]*Array),
		dicts:    make(map[int]*Dict),
		visiting: make(map[int]bool),
	}
	return c.node(n)
}

type cloner struct {
	arrays   map[int]*Array
	dicts    map[int]*Dict
	visiting map[int]bool
}

func (c *cloner) node(n byml.Node) (Node, error) {
	switch n.Type() {
	case types.TypeArray:
		a, _ := n.AsArray()
		out, err := c.array(a)
		if err != nil {
			return Node{}, err
		}
		return ArrayNode(out), nil
	case types.TypeDict:
		d, _ := n.AsDict()
		out, err := c.dict(d)
		if err != nil {
			return Node{}, err
		}
		return DictNode(out), nil
	case types.TypeString:
		b, _ := n.AsBytes()
		return String(string(b)), nil
	case types.TypeBool, types.TypeI32, types.TypeU32, types.TypeF32,
		types.TypeI64, types.TypeU64, types.TypeF64, types.TypeNull:
		return Node{typ: n.Type(), bits: n.Bits()}, nil
	}
	return Node{}, types.Wrap(types.ErrInvalidType, "cannot clone %s", n.Type())
}

func (c *cloner) array(a byml.Array) (*Array, error) {
	if got, ok := c.arrays[a.Offset()]; ok {
		return got, nil
	}
	if c.visiting[a.Offset()] {
		return nil, types.Wrap(types.ErrCorrupt, "array at 0x%x contains itself", a.Offset())
	}
	c.visiting[a.Offset()] = true
	defer delete(c.visiting, a.Offset())

	out := &Array{items: make([]Node, 0, a.Len())}
	for i := 0; i < a.Len(); i++ {
		child, _, err := a.Get(i)
		if err != nil {
			return nil, err
		}
		v, err := c.node(child)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out.items = append(out.items, v)
	}
	c.arrays[a.Offset()] = out
	return out, nil
}

func (c *cloner) dict(d byml.Dict) (*Dict, error) {
	if got, ok := c.dicts[d.Offset()]; ok {
		return got, nil
	}
	if c.visiting[d.Offset()] {
		return nil, types.Wrap(types.ErrCorrupt, "dictionary at 0x%x contains itself", d.Offset())
	}
	c.visiting[d.Offset()] = true
	defer delete(c.visiting, d.Offset())

	out := NewDict()
	it := d.Iter()
	for i := 0; i < d.Len(); i++ {
		e, err := it.Next()
		if err != nil {
			return nil, err
		}
		v, err := c.node(e.Value)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", e.Key, err)
		}
		out.Set(string(e.Key), v)
	}
	c.dicts[d.Offset()] = out
	return out, nil
}
