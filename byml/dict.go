package byml

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/bymlkit/internal/buf"
	"github.com/joshuapare/bymlkit/internal/format"
	"github.com/joshuapare/bymlkit/pkg/types"
)

// Dict is a view over a dictionary node: count 8-byte entries sorted by the
// bytes of the key each one references in the hash-key table.
type Dict struct {
	doc     *Document
	off     int
	entries []byte
}

// Entry is one resolved key/value pair. Key borrows the document buffer.
type Entry struct {
	Key   []byte
	Value Node
}

func (d *Document) openDict(off int, count uint32) (Dict, error) {
	if d.keys == nil && count > 0 {
		return Dict{}, types.Wrap(types.ErrNoKeyTable, "dictionary at 0x%x", off)
	}
	start := off + format.ContainerHeaderSize
	end, err := buf.CheckListBounds(len(d.data), start, int(count), format.DictEntrySize, "dictionary entries")
	if err != nil {
		return Dict{}, err
	}
	entries := d.data[start:end]
	for i := 0; i < int(count); i++ {
		if t := types.DataType(entries[i*format.DictEntrySize+3]); !t.Valid() {
			return Dict{}, types.Wrap(types.ErrInvalidType, "dictionary at 0x%x entry %d tag 0x%02X", off, i, uint8(t))
		}
	}
	return Dict{doc: d, off: off, entries: entries}, nil
}

// Len returns the number of entries.
func (d Dict) Len() int { return len(d.entries) / format.DictEntrySize }

// Offset returns the absolute offset of the dictionary's header.
func (d Dict) Offset() int { return d.off }

func (d Dict) entry(i int) format.DictEntry {
	return format.ParseDictEntry(d.entries[i*format.DictEntrySize:], d.doc.order)
}

func (d Dict) keyAt(i int) ([]byte, error) {
	k, err := d.doc.keys.read(d.entry(i).KeyIndex)
	if err != nil {
		return nil, fmt.Errorf("hash key of entry %d: %w", i, err)
	}
	return k, nil
}

// find binary-searches the entries for key and returns its position.
func (d Dict) find(key []byte) (int, bool, error) {
	n := d.Len()
	if n == 0 {
		return 0, false, nil
	}
	lo, hi := 0, n
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		k, err := d.keyAt(mid)
		if err != nil {
			return 0, false, err
		}
		switch c := bytes.Compare(key, k); {
		case c == 0:
			return mid, true, nil
		case c < 0:
			hi = mid
		default:
			lo = mid + 1
		}
	}
	return 0, false, nil
}

// Get looks up key. A missing key is absence, not an error.
func (d Dict) Get(key string) (Node, bool, error) {
	return d.GetKey([]byte(key))
}

// GetKey looks up a key given as raw bytes.
func (d Dict) GetKey(key []byte) (Node, bool, error) {
	i, ok, err := d.find(key)
	if err != nil || !ok {
		return Node{}, false, err
	}
	return d.valueAt(i, key)
}

func (d Dict) valueAt(i int, key []byte) (Node, bool, error) {
	e := d.entry(i)
	n, err := d.doc.value(e.Type, e.Value)
	if err != nil {
		return Node{}, false, fmt.Errorf("dictionary key %q: %w", key, err)
	}
	return n, true, nil
}

// Type returns the tag stored for key without decoding the value.
func (d Dict) Type(key string) (types.DataType, bool, error) {
	i, ok, err := d.find([]byte(key))
	if err != nil || !ok {
		return 0, false, err
	}
	return d.entry(i).Type, true, nil
}

// Has reports whether key is present.
func (d Dict) Has(key string) (bool, error) {
	_, ok, err := d.find([]byte(key))
	return ok, err
}

// EntryAt resolves entry i in stored (key) order.
func (d Dict) EntryAt(i int) (Entry, error) {
	if i < 0 || i >= d.Len() {
		return Entry{}, types.Wrap(types.ErrOutOfBounds, "dictionary entry %d of %d", i, d.Len())
	}
	k, err := d.keyAt(i)
	if err != nil {
		return Entry{}, err
	}
	v, _, err := d.valueAt(i, k)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Key: k, Value: v}, nil
}

// Keys returns every key in stored order.
func (d Dict) Keys() ([]string, error) {
	out := make([]string, 0, d.Len())
	for i := 0; i < d.Len(); i++ {
		k, err := d.keyAt(i)
		if err != nil {
			return nil, err
		}
		out = append(out, string(k))
	}
	return out, nil
}

func (d Dict) getTyped(key string, want types.DataType) (Node, bool, error) {
	kb := []byte(key)
	i, ok, err := d.find(kb)
	if err != nil || !ok {
		return Node{}, false, err
	}
	if t := d.entry(i).Type; t != want {
		return Node{}, false, fmt.Errorf("dictionary key %q: %w", key, types.TypeMismatch(want, t))
	}
	return d.valueAt(i, kb)
}

func (d Dict) GetArray(key string) (Array, bool, error) {
	n, ok, err := d.getTyped(key, types.TypeArray)
	return as(n, ok, err, Node.AsArray)
}

func (d Dict) GetDict(key string) (Dict, bool, error) {
	n, ok, err := d.getTyped(key, types.TypeDict)
	return as(n, ok, err, Node.AsDict)
}

func (d Dict) GetString(key string) (string, bool, error) {
	n, ok, err := d.getTyped(key, types.TypeString)
	return as(n, ok, err, Node.AsString)
}

func (d Dict) GetBytes(key string) ([]byte, bool, error) {
	n, ok, err := d.getTyped(key, types.TypeString)
	return as(n, ok, err, Node.AsBytes)
}

func (d Dict) GetBool(key string) (bool, bool, error) {
	n, ok, err := d.getTyped(key, types.TypeBool)
	return as(n, ok, err, Node.AsBool)
}

func (d Dict) GetI32(key string) (int32, bool, error) {
	n, ok, err := d.getTyped(key, types.TypeI32)
	return as(n, ok, err, Node.AsI32)
}

func (d Dict) GetU32(key string) (uint32, bool, error) {
	n, ok, err := d.getTyped(key, types.TypeU32)
	return as(n, ok, err, Node.AsU32)
}

func (d Dict) GetF32(key string) (float32, bool, error) {
	n, ok, err := d.getTyped(key, types.TypeF32)
	return as(n, ok, err, Node.AsF32)
}

func (d Dict) GetI64(key string) (int64, bool, error) {
	n, ok, err := d.getTyped(key, types.TypeI64)
	return as(n, ok, err, Node.AsI64)
}

func (d Dict) GetU64(key string) (uint64, bool, error) {
	n, ok, err := d.getTyped(key, types.TypeU64)
	return as(n, ok, err, Node.AsU64)
}

func (d Dict) GetF64(key string) (float64, bool, error) {
	n, ok, err := d.getTyped(key, types.TypeF64)
	return as(n, ok, err, Node.AsF64)
}
