package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/bymlkit/byml"
)

func init() {
	rootCmd.AddCommand(newVerifyCmd())
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Check every node and table of a document",
		Long: `The verify command walks the whole document and checks string table
ordering, dictionary key ordering, type tags and every offset.

Example:
  bymlctl verify ActorInfo.product.sbyml
  bymlctl verify Actor.pack.szs --member Actor/Link.bgyml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args)
		},
	}
	return cmd
}

func runVerify(args []string) error {
	doc, err := openDocument(args[0])
	if err != nil {
		return err
	}
	verr := byml.Verify(doc)

	if jsonOut {
		out := map[string]any{"file": args[0], "valid": verr == nil}
		if verr != nil {
			out["error"] = verr.Error()
		}
		if err := printJSON(out); err != nil {
			return err
		}
		return verr
	}
	if verr != nil {
		return fmt.Errorf("verification failed: %w", verr)
	}
	printInfo("✓ %s is valid\n", args[0])
	return nil
}
