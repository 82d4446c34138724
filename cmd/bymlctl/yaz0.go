package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/bymlkit/internal/writer"
	"github.com/joshuapare/bymlkit/yaz0"
)

func init() {
	rootCmd.AddCommand(newYaz0Cmd())
}

func newYaz0Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yaz0 <in> <out>",
		Short: "Decompress a Yaz0 file",
		Long: `The yaz0 command decompresses a Yaz0 stream such as an .szs archive.

Example:
  bymlctl yaz0 Stage.szs Stage.sarc`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runYaz0(args)
		},
	}
	return cmd
}

func runYaz0(args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	hdr, err := yaz0.ReadHeader(f)
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	printVerbose("Declared size %d, alignment %d\n", hdr.Size, hdr.Alignment())
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	out, err := yaz0.Decompress(f)
	if err != nil {
		return fmt.Errorf("failed to decompress: %w", err)
	}

	w := &writer.FileWriter{Path: args[1]}
	if err := w.WriteBytes(out); err != nil {
		return fmt.Errorf("failed to write %s: %w", args[1], err)
	}
	if jsonOut {
		return printJSON(map[string]any{"in": args[0], "out": args[1], "size": len(out)})
	}
	printInfo("Wrote %s (%s)\n", args[1], humanSize(len(out)))
	return nil
}
