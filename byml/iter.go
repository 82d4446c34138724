package byml

import "io"

// ArrayIterator walks an array's elements in order.
type ArrayIterator struct {
	a Array
	i int
}

// Iter returns an iterator positioned before the first element.
func (a Array) Iter() *ArrayIterator { return &ArrayIterator{a: a} }

// Next returns the next element, or io.EOF once all elements were returned.
func (it *ArrayIterator) Next() (Node, error) {
	if it.i >= it.a.Len() {
		return Node{}, io.EOF
	}
	n, _, err := it.a.Get(it.i)
	if err != nil {
		return Node{}, err
	}
	it.i++
	return n, nil
}

// DictIterator walks a dictionary's entries in key order. Values are resolved
// by position, so no key is searched for.
type DictIterator struct {
	d Dict
	i int
}

// Iter returns an iterator positioned before the first entry.
func (d Dict) Iter() *DictIterator { return &DictIterator{d: d} }

// Next returns the next entry, or io.EOF once all entries were returned.
func (it *DictIterator) Next() (Entry, error) {
	if it.i >= it.d.Len() {
		return Entry{}, io.EOF
	}
	e, err := it.d.EntryAt(it.i)
	if err != nil {
		return Entry{}, err
	}
	it.i++
	return e, nil
}
