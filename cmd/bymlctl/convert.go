package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/joshuapare/bymlkit/byml"
	"github.com/joshuapare/bymlkit/byml/builder"
	"github.com/joshuapare/bymlkit/byml/yamlconv"
	"github.com/joshuapare/bymlkit/internal/writer"
	"github.com/joshuapare/bymlkit/pkg/types"
)

var (
	convertBigEndian bool
	convertVersion   uint16
	convertShiftJIS  bool
)

func init() {
	cmd := newConvertCmd()
	cmd.Flags().BoolVar(&convertBigEndian, "big-endian", false, "Write a big-endian document")
	cmd.Flags().Uint16Var(&convertVersion, "version", 2, "Document version to write (2 or 3)")
	cmd.Flags().BoolVar(&convertShiftJIS, "shift-jis", false, "Treat document strings as Shift-JIS")
	rootCmd.AddCommand(cmd)
}

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert between BYML and YAML",
		Long: `The convert command turns a BYML document into YAML, or YAML text into a
BYML document. The direction is chosen from the input's contents.

Example:
  bymlctl convert ActorInfo.product.sbyml ActorInfo.yml
  bymlctl convert ActorInfo.yml ActorInfo.product.byml --big-endian --version 3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args)
		},
	}
	return cmd
}

func runConvert(args []string) error {
	data, err := loadInput(args[0])
	if err != nil {
		return err
	}
	w := &writer.FileWriter{Path: args[1]}

	if byml.IsBYML(data) {
		doc, err := byml.OpenAuto(data)
		if err != nil {
			return fmt.Errorf("failed to open document: %w", err)
		}
		out, err := yamlconv.Export(doc, yamlconv.ExportOptions{ShiftJIS: convertShiftJIS})
		if err != nil {
			return fmt.Errorf("failed to export yaml: %w", err)
		}
		if err := w.WriteBytes(out); err != nil {
			return fmt.Errorf("failed to write %s: %w", args[1], err)
		}
		printVerbose("Exported %s document v%d as YAML\n", doc.Endian(), doc.Version())
		printInfo("Wrote %s (%s)\n", args[1], humanSize(len(out)))
		return nil
	}

	root, err := yamlconv.Import(data, yamlconv.ImportOptions{ShiftJIS: convertShiftJIS})
	if err != nil {
		return fmt.Errorf("failed to import yaml: %w", err)
	}
	opts := builder.DefaultOptions()
	opts.Version = convertVersion
	if convertBigEndian {
		opts.Endian = types.BigEndian
	}
	layout, err := builder.PlanLayout(root, opts)
	if err != nil {
		return fmt.Errorf("failed to build document: %w", err)
	}
	printVerbose("Layout: %d containers, %d keys, %d strings\n",
		layout.Containers, layout.DistinctKeys, layout.DistinctStrings)
	if err := w.Stream(func(f io.WriteSeeker) error { return builder.Write(f, root, opts) }); err != nil {
		return fmt.Errorf("failed to write %s: %w", args[1], err)
	}
	printInfo("Wrote %s (%s, %s v%d)\n", args[1], humanSize(int(layout.Size)), opts.Endian, opts.Version)
	return nil
}
