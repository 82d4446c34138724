package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joshuapare/bymlkit/asset"
	"github.com/joshuapare/bymlkit/byml"
)

var (
	// Global flags
	verbose  bool
	quiet    bool
	jsonOut  bool
	member   string
	dictPack string
)

// logger receives asset events; it discards unless --verbose is set.
var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

var rootCmd = &cobra.Command{
	Use:   "bymlctl",
	Short: "Inspect and convert BYML documents and the archives that carry them",
	Long: `bymlctl reads Nintendo BYML documents, optionally compressed with Yaz0 or
Zstandard and optionally stored inside SARC archives. It can dump, query and
verify documents, convert them to and from YAML, and unpack archives.`,
	Version:      "0.1.0",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVarP(&member, "member", "m", "", "Read this file from inside the given SARC archive")
	rootCmd.PersistentFlags().
		StringVar(&dictPack, "zsdic", "", "SARC pack of Zstandard dictionaries (e.g. ZsDic.pack.zs)")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose && !quiet {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		}
	}
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore returns an asset store able to reach path (and the dictionary
// pack, if any). It is rooted at the volume root so both resolve.
func openStore(path string) (*asset.Store, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", err
	}
	root := filepath.VolumeName(abs) + string(filepath.Separator)
	opts := asset.DefaultOptions()
	opts.Logger = logger
	store, err := asset.Open(root, opts)
	if err != nil {
		return nil, "", err
	}
	rel := func(p string) (string, error) {
		a, err := filepath.Abs(p)
		if err != nil {
			return "", err
		}
		r, err := filepath.Rel(root, a)
		if err != nil {
			return "", err
		}
		return filepath.ToSlash(r), nil
	}
	if dictPack != "" {
		packRel, err := rel(dictPack)
		if err != nil {
			store.Close()
			return nil, "", err
		}
		n, err := store.LoadDictionaries(packRel)
		if err != nil {
			store.Close()
			return nil, "", fmt.Errorf("failed to load dictionaries: %w", err)
		}
		printVerbose("Loaded %d zstd dictionaries from %s\n", n, dictPack)
	}
	r, err := rel(path)
	if err != nil {
		store.Close()
		return nil, "", err
	}
	return store, r, nil
}

// loadInput returns the decoded bytes of path, or of --member inside it.
func loadInput(path string) ([]byte, error) {
	store, rel, err := openStore(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if member != "" {
		printVerbose("Reading %s from archive %s\n", member, path)
		return store.Member(rel, member)
	}
	printVerbose("Reading %s\n", path)
	return store.Load(rel)
}

// openDocument loads and opens the BYML document named by path and --member.
func openDocument(path string) (*byml.Document, error) {
	data, err := loadInput(path)
	if err != nil {
		return nil, err
	}
	doc, err := byml.OpenAuto(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	return doc, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
