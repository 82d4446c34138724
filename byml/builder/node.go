// Package builder constructs BYML documents. Callers assemble a tree of
// Array, Dict and scalar Nodes and hand its root to Write or Marshal, which
// deduplicate identical containers, lay the document out and emit it.
package builder

import (
	"math"
	"slices"
	"strings"

	"github.com/joshuapare/bymlkit/pkg/types"
)

// Node is one value in a tree under construction. Containers are held by
// pointer, so the same *Array or *Dict may appear in several places.
type Node struct {
	typ  types.DataType
	bits uint64
	str  string
	arr  *Array
	dict *Dict
}

func String(s string) Node { return Node{typ: types.TypeString, str: s} }

func Bool(v bool) Node {
	if v {
		return Node{typ: types.TypeBool, bits: 1}
	}
	return Node{typ: types.TypeBool}
}

func I32(v int32) Node { return Node{typ: types.TypeI32, bits: uint64(uint32(v))} }
func U32(v uint32) Node { return Node{typ: types.TypeU32, bits: uint64(v)} }
func F32(v float32) Node { return Node{typ: types.TypeF32, bits: uint64(math.Float32bits(v))} }
func I64(v int64) Node { return Node{typ: types.TypeI64, bits: uint64(v)} }
func U64(v uint64) Node { return Node{typ: types.TypeU64, bits: v} }
func F64(v float64) Node { return Node{typ: types.TypeF64, bits: math.Float64bits(v)} }
func Null() Node { return Node{typ: types.TypeNull} }

// ArrayNode wraps a as a Node. A nil a is treated as an empty array.
func ArrayNode(a *Array) Node {
	if a == nil {
		a = NewArray()
	}
	return Node{typ: types.TypeArray, arr: a}
}

// DictNode wraps d as a Node. A nil d is treated as an empty dictionary.
func DictNode(d *Dict) Node {
	if d == nil {
		d = NewDict()
	}
	return Node{typ: types.TypeDict, dict: d}
}

// Type returns the node's tag; the zero Node has tag 0 and cannot be written.
func (n Node) Type() types.DataType { return n.typ }

// Array returns the wrapped array, or nil.
func (n Node) Array() *Array { return n.arr }

// Dict returns the wrapped dictionary, or nil.
func (n Node) Dict() *Dict { return n.dict }

// Str returns the value of a string node.
func (n Node) Str() string { return n.str }

// Bits returns the stored payload of a scalar node.
func (n Node) Bits() uint64 { return n.bits }

// Array is an ordered list of nodes.
type Array struct {
	items []Node
}

// NewArray returns an array holding items.
func NewArray(items ...Node) *Array {
	return &Array{items: slices.Clone(items)}
}

func (a *Array) Len() int { return len(a.items) }
func (a *Array) At(i int) Node { return a.items[i] }
func (a *Array) Set(i int, n Node) { a.items[i] = n }
func (a *Array) Items() []Node { return a.items }

// Push appends nodes.
func (a *Array) Push(n ...Node) *Array {
	a.items = append(a.items, n...)
	return a
}

func (a *Array) PushString(s string) *Array { return a.Push(String(s)) }
func (a *Array) PushBool(v bool) *Array { return a.Push(Bool(v)) }
func (a *Array) PushI32(v int32) *Array { return a.Push(I32(v)) }
func (a *Array) PushU32(v uint32) *Array { return a.Push(U32(v)) }
func (a *Array) PushF32(v float32) *Array { return a.Push(F32(v)) }
func (a *Array) PushI64(v int64) *Array { return a.Push(I64(v)) }
func (a *Array) PushU64(v uint64) *Array { return a.Push(U64(v)) }
func (a *Array) PushF64(v float64) *Array { return a.Push(F64(v)) }
func (a *Array) PushNull() *Array { return a.Push(Null()) }
func (a *Array) PushArray(c *Array) *Array { return a.Push(ArrayNode(c)) }
func (a *Array) PushDict(c *Dict) *Array { return a.Push(DictNode(c)) }

// Dict maps keys to nodes. Entries are kept sorted by key bytes, which is the
// order the format requires.
type Dict struct {
	keys []string
	vals []Node
}

// NewDict returns an empty dictionary.
func NewDict() *Dict { return &Dict{} }

func (d *Dict) Len() int { return len(d.keys) }

// Keys returns the keys in sorted order. The slice must not be modified.
func (d *Dict) Keys() []string { return d.keys }

// At returns entry i in key order.
func (d *Dict) At(i int) (string, Node) { return d.keys[i], d.vals[i] }

func (d *Dict) search(key string) (int, bool) {
	return slices.BinarySearchFunc(d.keys, key, strings.Compare)
}

// Set inserts or replaces key.
func (d *Dict) Set(key string, n Node) *Dict {
	i, found := d.search(key)
	if found {
		d.vals[i] = n
		return d
	}
	d.keys = slices.Insert(d.keys, i, key)
	d.vals = slices.Insert(d.vals, i, n)
	return d
}

// Get returns the node stored under key.
func (d *Dict) Get(key string) (Node, bool) {
	i, found := d.search(key)
	if !found {
		return Node{}, false
	}
	return d.vals[i], true
}

// Delete removes key and reports whether it was present.
func (d *Dict) Delete(key string) bool {
	i, found := d.search(key)
	if !found {
		return false
	}
	d.keys = slices.Delete(d.keys, i, i+1)
	d.vals = slices.Delete(d.vals, i, i+1)
	return true
}

func (d *Dict) SetString(k, v string) *Dict { return d.Set(k, String(v)) }
func (d *Dict) SetBool(k string, v bool) *Dict { return d.Set(k, Bool(v)) }
func (d *Dict) SetI32(k string, v int32) *Dict { return d.Set(k, I32(v)) }
func (d *Dict) SetU32(k string, v uint32) *Dict { return d.Set(k, U32(v)) }
func (d *Dict) SetF32(k string, v float32) *Dict { return d.Set(k, F32(v)) }
func (d *Dict) SetI64(k string, v int64) *Dict { return d.Set(k, I64(v)) }
func (d *Dict) SetU64(k string, v uint64) *Dict { return d.Set(k, U64(v)) }
func (d *Dict) SetF64(k string, v float64) *Dict { return d.Set(k, F64(v)) }
func (d *Dict) SetNull(k string) *Dict { return d.Set(k, Null()) }
func (d *Dict) SetArray(k string, a *Array) *Dict { return d.Set(k, ArrayNode(a)) }
func (d *Dict) SetDict(k string, c *Dict) *Dict { return d.Set(k, DictNode(c)) }
