// Package yamlconv converts BYML documents to and from a YAML text form.
//
// Scalars keep their exact BYML type through custom tags:
//
//	plain integer   i32         !u 0x10   u32
//	plain float     f32         !l 5      i64
//	true / false    bool        !ul 5     u64
//	null            null        !f64 1.5  f64
//
// Everything else is a string.
package yamlconv

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/bymlkit/byml"
	"github.com/joshuapare/bymlkit/internal/textenc"
	"github.com/joshuapare/bymlkit/pkg/types"
)

// Tags for the types YAML has no native form for.
const (
	TagU32 = "!u"
	TagI64 = "!l"
	TagU64 = "!ul"
	TagF64 = "!f64"
)

const maxDepth = 512

// flowMax is the largest all-scalar container emitted on one line.
const flowMax = 4

// ExportOptions controls Export.
type ExportOptions struct {
	// ShiftJIS decodes strings and keys as Shift-JIS instead of UTF-8.
	ShiftJIS bool
	// Indent is the number of spaces per nesting level. 0 means 2.
	Indent int
}

// Export renders doc as YAML. An empty document renders as null.
func Export(doc *byml.Document, opts ExportOptions) ([]byte, error) {
	var b bytes.Buffer
	if err := Encode(&b, doc, opts); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Encode writes doc to w as YAML.
func Encode(w io.Writer, doc *byml.Document, opts ExportOptions) error {
	var root *yaml.Node
	if n, ok := doc.Root(); ok {
		e := exporter{opts: opts, onPath: map[int]bool{}}
		var err error
		if root, err = e.node(n, 0); err != nil {
			return err
		}
	} else {
		root = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}

	enc := yaml.NewEncoder(w)
	indent := opts.Indent
	if indent <= 0 {
		indent = 2
	}
	enc.SetIndent(indent)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return types.IOError("encode yaml", err)
	}
	if err := enc.Close(); err != nil {
		return types.IOError("encode yaml", err)
	}
	return nil
}

type exporter struct {
	opts   ExportOptions
	onPath map[int]bool
}

func (e *exporter) text(b []byte) (string, error) {
	if e.opts.ShiftJIS {
		return textenc.Decode(b, textenc.ShiftJIS)
	}
	s := string(b)
	if !utf8.ValidString(s) {
		return "", types.Wrap(types.ErrNonUTF8, "%q", b)
	}
	return s, nil
}

func (e *exporter) node(n byml.Node, depth int) (*yaml.Node, error) {
	if depth > maxDepth {
		return nil, types.Wrap(types.ErrCorrupt, "nesting deeper than %d", maxDepth)
	}
	switch n.Type() {
	case types.TypeArray:
		a, _ := n.AsArray()
		return e.array(a, depth)
	case types.TypeDict:
		d, _ := n.AsDict()
		return e.dict(d, depth)
	case types.TypeString:
		raw, _ := n.AsBytes()
		s, err := e.text(raw)
		if err != nil {
			return nil, err
		}
		return scalar("!!str", s), nil
	default:
		return scalarNode(n), nil
	}
}

func (e *exporter) enter(off int) error {
	if e.onPath[off] {
		return types.Wrap(types.ErrCorrupt, "container at 0x%x contains itself", off)
	}
	e.onPath[off] = true
	return nil
}

func (e *exporter) array(a byml.Array, depth int) (*yaml.Node, error) {
	if err := e.enter(a.Offset()); err != nil {
		return nil, err
	}
	defer delete(e.onPath, a.Offset())

	out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	it := a.Iter()
	for {
		child, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		y, err := e.node(child, depth+1)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", len(out.Content), err)
		}
		out.Content = append(out.Content, y)
	}
	if compact(out.Content) {
		out.Style = yaml.FlowStyle
	}
	return out, nil
}

func (e *exporter) dict(d byml.Dict, depth int) (*yaml.Node, error) {
	if err := e.enter(d.Offset()); err != nil {
		return nil, err
	}
	defer delete(e.onPath, d.Offset())

	out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	var values []*yaml.Node
	it := d.Iter()
	for {
		entry, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		key, err := e.text(entry.Key)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", entry.Key, err)
		}
		y, err := e.node(entry.Value, depth+1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out.Content = append(out.Content, scalar("!!str", key), y)
		values = append(values, y)
	}
	if compact(values) {
		out.Style = yaml.FlowStyle
	}
	return out, nil
}

// compact reports whether a container's children are few non-string scalars.
func compact(children []*yaml.Node) bool {
	if len(children) == 0 || len(children) > flowMax {
		return false
	}
	for _, c := range children {
		if c.Kind != yaml.ScalarNode || c.Tag == "!!str" {
			return false
		}
	}
	return true
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func scalarNode(n byml.Node) *yaml.Node {
	bits := n.Bits()
	switch n.Type() {
	case types.TypeBool:
		return scalar("!!bool", strconv.FormatBool(bits != 0))
	case types.TypeI32:
		return scalar("!!int", strconv.FormatInt(int64(int32(uint32(bits))), 10))
	case types.TypeU32:
		return scalar(TagU32, "0x"+strconv.FormatUint(bits&0xFFFFFFFF, 16))
	case types.TypeF32:
		return scalar("!!float", formatFloat(float64(math.Float32frombits(uint32(bits))), 32))
	case types.TypeI64:
		return scalar(TagI64, strconv.FormatInt(int64(bits), 10))
	case types.TypeU64:
		return scalar(TagU64, strconv.FormatUint(bits, 10))
	case types.TypeF64:
		return scalar(TagF64, formatFloat(math.Float64frombits(bits), 64))
	default:
		return scalar("!!null", "null")
	}
}

// formatFloat prints the shortest text that parses back to the same value
// and still reads as a float.
func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, bitSize)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
