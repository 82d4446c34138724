package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/bymlkit/byml"
	"github.com/joshuapare/bymlkit/byml/yamlconv"
	"github.com/joshuapare/bymlkit/pkg/types"
)

var (
	dumpFormat   string
	dumpDepth    int
	dumpShiftJIS bool
)

func init() {
	cmd := newDumpCmd()
	cmd.Flags().StringVar(&dumpFormat, "format", "text", "Output format: text, json or yaml")
	cmd.Flags().IntVar(&dumpDepth, "depth", 0, "Maximum depth for text output (0 = unlimited)")
	cmd.Flags().BoolVar(&dumpShiftJIS, "shift-jis", false, "Decode strings as Shift-JIS (yaml output)")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the whole document tree",
		Long: `The dump command prints every node of a document.

Example:
  bymlctl dump ActorInfo.product.sbyml
  bymlctl dump ActorInfo.product.sbyml --depth 2
  bymlctl dump Actor.pack.szs --member Actor/Link.bgyml --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
	return cmd
}

func runDump(args []string) error {
	doc, err := openDocument(args[0])
	if err != nil {
		return err
	}

	format := dumpFormat
	if jsonOut {
		format = "json"
	}
	switch format {
	case "yaml":
		return yamlconv.Encode(os.Stdout, doc, yamlconv.ExportOptions{ShiftJIS: dumpShiftJIS})
	case "json":
		root, ok := doc.Root()
		if !ok {
			return printJSON(nil)
		}
		v, err := root.Decode()
		if err != nil {
			return fmt.Errorf("failed to decode document: %w", err)
		}
		return printJSON(v)
	case "text":
		root, ok := doc.Root()
		if !ok {
			printInfo("(empty document)\n")
			return nil
		}
		var sb strings.Builder
		if err := writeTree(&sb, "", root, 0); err != nil {
			return err
		}
		printInfo("%s", sb.String())
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

// treeWriter renders a document one node per line. onPath holds the offsets
// of the containers currently being printed.
type treeWriter struct {
	w      io.StringWriter
	onPath map[int]bool
}

// writeTree renders n and its children, indented by depth.
func writeTree(w io.StringWriter, label string, n byml.Node, depth int) error {
	tw := treeWriter{w: w, onPath: make(map[int]bool)}
	return tw.node(label, n, depth)
}

func (tw *treeWriter) enter(off int) error {
	if tw.onPath[off] {
		return types.Wrap(types.ErrCorrupt, "container at 0x%x contains itself", off)
	}
	tw.onPath[off] = true
	return nil
}

func (tw *treeWriter) node(label string, n byml.Node, depth int) error {
	indent := strings.Repeat("  ", depth)
	if label != "" {
		label += ": "
	}
	_, _ = tw.w.WriteString(indent + label + n.String() + "\n")

	if dumpDepth > 0 && depth+1 >= dumpDepth {
		return nil
	}
	switch n.Type() {
	case types.TypeArray:
		a, _ := n.AsArray()
		if err := tw.enter(a.Offset()); err != nil {
			return err
		}
		defer delete(tw.onPath, a.Offset())
		it := a.Iter()
		for i := 0; ; i++ {
			child, err := it.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if err := tw.node(strconv.Itoa(i), child, depth+1); err != nil {
				return err
			}
		}
	case types.TypeDict:
		d, _ := n.AsDict()
		if err := tw.enter(d.Offset()); err != nil {
			return err
		}
		defer delete(tw.onPath, d.Offset())
		it := d.Iter()
		for {
			e, err := it.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if err := tw.node(string(e.Key), e.Value, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
