package byml

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/bymlkit/pkg/types"
)

// Verify walks every node reachable from the root and checks what Open
// trusts: all references resolve, dictionary keys are strictly ascending,
// and both string tables are sorted and free of duplicates. Shared
// sub-trees are visited once. A container reachable from itself is
// reported as ErrCorrupt.
func Verify(d *Document) error {
	if d.keys != nil {
		if err := d.keys.verify("hash key table"); err != nil {
			return err
		}
	}
	if d.strings != nil {
		if err := d.strings.verify("string table"); err != nil {
			return err
		}
	}
	root, ok := d.Root()
	if !ok {
		return nil
	}
	v := verifier{seen: make(map[int]bool), onPath: make(map[int]bool)}
	return v.node(root, "$")
}

type verifier struct {
	seen   map[int]bool
	onPath map[int]bool
}

// enter reports whether the container at off still needs walking.
func (v *verifier) enter(off int, path string) (bool, error) {
	if v.onPath[off] {
		return false, types.Wrap(types.ErrCorrupt, "%s: container at 0x%x contains itself", path, off)
	}
	if v.seen[off] {
		return false, nil
	}
	v.seen[off] = true
	v.onPath[off] = true
	return true, nil
}

func (v *verifier) node(n Node, path string) error {
	switch n.typ {
	case types.TypeArray:
		walk, err := v.enter(n.arr.off, path)
		if !walk {
			return err
		}
		defer delete(v.onPath, n.arr.off)
		for i := 0; i < n.arr.Len(); i++ {
			child, _, err := n.arr.Get(i)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if err := v.node(child, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case types.TypeDict:
		walk, err := v.enter(n.dict.off, path)
		if !walk {
			return err
		}
		defer delete(v.onPath, n.dict.off)
		var prev []byte
		for i := 0; i < n.dict.Len(); i++ {
			e, err := n.dict.EntryAt(i)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if i > 0 && bytes.Compare(prev, e.Key) >= 0 {
				return types.Wrap(types.ErrUnsorted, "%s: key %q not after %q", path, e.Key, prev)
			}
			prev = e.Key
			if err := v.node(e.Value, path+"."+string(e.Key)); err != nil {
				return err
			}
		}
	}
	return nil
}
