package yamlconv

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/bymlkit/byml/builder"
	"github.com/joshuapare/bymlkit/internal/textenc"
	"github.com/joshuapare/bymlkit/pkg/types"
)

// ImportOptions controls Import.
type ImportOptions struct {
	// ShiftJIS encodes strings and keys as Shift-JIS instead of UTF-8.
	ShiftJIS bool
}

// Import parses the YAML text form into a builder tree. Empty input and a
// bare null both yield a Null node, which builds an empty document.
//
// Plain integers outside the i32 range become i64. Every alias of an anchor
// resolves to the same node, so shared containers stay shared.
func Import(data []byte, opts ImportOptions) (builder.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return builder.Node{}, types.Wrap(types.ErrInvalidText, "parse yaml: %v", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return builder.Null(), nil
	}
	im := importer{
		opts:    opts,
		anchors: make(map[*yaml.Node]builder.Node),
		pending: make(map[*yaml.Node]bool),
	}
	return im.convert(doc.Content[0], 0)
}

// importer holds the converted node of every finished anchor, and the
// anchors still being converted.
type importer struct {
	opts    ImportOptions
	anchors map[*yaml.Node]builder.Node
	pending map[*yaml.Node]bool
}

func (im *importer) text(n *yaml.Node, s string) (string, error) {
	if !im.opts.ShiftJIS {
		return s, nil
	}
	b, err := textenc.Encode(s, textenc.ShiftJIS)
	if err != nil {
		return "", lineErr(n, "%v", err)
	}
	return string(b), nil
}

func (im *importer) convert(n *yaml.Node, depth int) (builder.Node, error) {
	if depth > maxDepth {
		return builder.Node{}, types.Wrap(types.ErrCorrupt, "yaml nesting deeper than %d", maxDepth)
	}
	if n.Kind == yaml.AliasNode {
		if v, ok := im.anchors[n.Alias]; ok {
			return v, nil
		}
		if im.pending[n.Alias] {
			return builder.Node{}, lineErr(n, "alias *%s refers to an enclosing anchor", n.Value)
		}
		return im.convert(n.Alias, depth+1)
	}
	if n.Anchor == "" {
		return im.value(n, depth)
	}
	im.pending[n] = true
	v, err := im.value(n, depth)
	delete(im.pending, n)
	if err != nil {
		return builder.Node{}, err
	}
	im.anchors[n] = v
	return v, nil
}

func (im *importer) value(n *yaml.Node, depth int) (builder.Node, error) {
	switch n.Kind {
	case yaml.SequenceNode:
		arr := builder.NewArray()
		for _, c := range n.Content {
			v, err := im.convert(c, depth+1)
			if err != nil {
				return builder.Node{}, err
			}
			arr.Push(v)
		}
		return builder.ArrayNode(arr), nil
	case yaml.MappingNode:
		d := builder.NewDict()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return builder.Node{}, lineErr(k, "dictionary keys must be scalars")
			}
			key, err := im.text(k, k.Value)
			if err != nil {
				return builder.Node{}, err
			}
			if _, dup := d.Get(key); dup {
				return builder.Node{}, lineErr(k, "duplicate key %q", k.Value)
			}
			val, err := im.convert(v, depth+1)
			if err != nil {
				return builder.Node{}, err
			}
			d.Set(key, val)
		}
		return builder.DictNode(d), nil
	case yaml.ScalarNode:
		return im.scalar(n)
	default:
		return builder.Node{}, lineErr(n, "unexpected yaml node kind %d", n.Kind)
	}
}

func (im *importer) scalar(n *yaml.Node) (builder.Node, error) {
	switch tag := n.ShortTag(); tag {
	case "!!null":
		return builder.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return builder.Node{}, lineErr(n, "bool: %v", err)
		}
		return builder.Bool(b), nil
	case "!!int":
		var v int64
		if err := n.Decode(&v); err != nil {
			return builder.Node{}, lineErr(n, "int: %v", err)
		}
		if v < math.MinInt32 || v > math.MaxInt32 {
			return builder.I64(v), nil
		}
		return builder.I32(int32(v)), nil
	case "!!float":
		f, err := parseFloat(n.Value, 32)
		if err != nil {
			return builder.Node{}, lineErr(n, "float: %v", err)
		}
		return builder.F32(float32(f)), nil
	case "!!str", "!!timestamp":
		s, err := im.text(n, n.Value)
		if err != nil {
			return builder.Node{}, err
		}
		return builder.String(s), nil
	case TagU32:
		v, err := strconv.ParseUint(n.Value, 0, 32)
		if err != nil {
			return builder.Node{}, lineErr(n, "%s: %v", tag, err)
		}
		return builder.U32(uint32(v)), nil
	case TagI64:
		v, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return builder.Node{}, lineErr(n, "%s: %v", tag, err)
		}
		return builder.I64(v), nil
	case TagU64:
		v, err := strconv.ParseUint(n.Value, 0, 64)
		if err != nil {
			return builder.Node{}, lineErr(n, "%s: %v", tag, err)
		}
		return builder.U64(v), nil
	case TagF64:
		f, err := parseFloat(n.Value, 64)
		if err != nil {
			return builder.Node{}, lineErr(n, "%s: %v", tag, err)
		}
		return builder.F64(f), nil
	default:
		return builder.Node{}, lineErr(n, "unsupported tag %s", tag)
	}
}

// parseFloat accepts the YAML spellings of infinity and NaN besides Go's.
func parseFloat(s string, bitSize int) (float64, error) {
	switch strings.ToLower(s) {
	case ".inf", "+.inf":
		return math.Inf(1), nil
	case "-.inf":
		return math.Inf(-1), nil
	case ".nan":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, bitSize)
}

func lineErr(n *yaml.Node, format string, args ...any) error {
	return types.Wrap(types.ErrInvalidText, "yaml line %d: %s", n.Line, fmt.Sprintf(format, args...))
}
