package byml

import (
	"strconv"
	"strings"

	"github.com/joshuapare/bymlkit/pkg/types"
)

// Lookup follows a slash-separated path from n. Segments index arrays when
// the current node is an array and name keys when it is a dictionary:
//
//	Lookup(root, "Actors/3/Name")
//
// A missing key or index is absence. Descending into a scalar is a type error.
func Lookup(n Node, path string) (Node, bool, error) {
	cur := n
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg == "" {
			continue
		}
		var (
			next Node
			ok   bool
			err  error
		)
		switch cur.typ {
		case types.TypeArray:
			i, convErr := strconv.Atoi(seg)
			if convErr != nil {
				return Node{}, false, nil
			}
			next, ok, err = cur.arr.Get(i)
		case types.TypeDict:
			next, ok, err = cur.dict.Get(seg)
		default:
			return Node{}, false, types.Wrap(types.ErrTypeMismatch, "segment %q: %s is not a container", seg, cur.typ)
		}
		if err != nil || !ok {
			return Node{}, false, err
		}
		cur = next
	}
	return cur, true, nil
}
