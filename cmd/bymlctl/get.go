package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuapare/bymlkit/byml"
	"github.com/joshuapare/bymlkit/pkg/types"
)

var getShowType bool

func init() {
	cmd := newGetCmd()
	cmd.Flags().BoolVar(&getShowType, "show-type", false, "Show the node type")
	rootCmd.AddCommand(cmd)
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <file> <path>",
		Short: "Print the node at a slash-separated path",
		Long: `The get command resolves a path of dictionary keys and array indices
from the document root and prints the node found there.

Example:
  bymlctl get ActorInfo.product.sbyml Actors/0/name
  bymlctl get ActorInfo.product.sbyml Actors/0 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(args)
		},
	}
	return cmd
}

func runGet(args []string) error {
	doc, err := openDocument(args[0])
	if err != nil {
		return err
	}
	root, ok := doc.Root()
	if !ok {
		return fmt.Errorf("document is empty")
	}
	n, found, err := byml.Lookup(root, args[1])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[1], err)
	}
	if !found {
		return fmt.Errorf("path not found: %s", args[1])
	}

	if jsonOut {
		v, err := n.Decode()
		if err != nil {
			return err
		}
		out := map[string]any{"path": args[1], "type": n.Type().String(), "value": v}
		return printJSON(out)
	}

	text, err := scalarText(n)
	if err != nil {
		return err
	}
	if getShowType {
		printInfo("%s (%s)\n", text, n.Type())
	} else {
		printInfo("%s\n", text)
	}
	return nil
}

// scalarText renders a scalar plainly and a container as its summary.
func scalarText(n byml.Node) (string, error) {
	switch n.Type() {
	case types.TypeString:
		b, err := n.AsBytes()
		return string(b), err
	case types.TypeBool:
		v, err := n.AsBool()
		return strconv.FormatBool(v), err
	case types.TypeI32:
		v, err := n.AsI32()
		return strconv.FormatInt(int64(v), 10), err
	case types.TypeU32:
		v, err := n.AsU32()
		return strconv.FormatUint(uint64(v), 10), err
	case types.TypeF32:
		v, err := n.AsF32()
		return strconv.FormatFloat(float64(v), 'g', -1, 32), err
	case types.TypeI64:
		v, err := n.AsI64()
		return strconv.FormatInt(v, 10), err
	case types.TypeU64:
		v, err := n.AsU64()
		return strconv.FormatUint(v, 10), err
	case types.TypeF64:
		v, err := n.AsF64()
		return strconv.FormatFloat(v, 'g', -1, 64), err
	case types.TypeNull:
		return "null", nil
	default:
		return n.String(), nil
	}
}
