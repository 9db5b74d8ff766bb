package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/nodeweave/internal/cli"
	"github.com/aretw0/nodeweave/pkg/document"
	"github.com/aretw0/nodeweave/pkg/schema"
	"github.com/spf13/cobra"
)

// errInvalidGraph is returned when at least one file fails validation.
var errInvalidGraph = errors.New("validation failed")

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check graph files for consistency",
		Long: `Checks each graph file against the node registry: unknown types,
duplicate instance ids, dangling connections, unknown ports, bad manual
values and cycles. Every problem is reported, not just the first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.runtime(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				if err := validateFile(rt, path); err != nil {
					failed++
					fmt.Fprintf(out, "%s: invalid\n", path)
					if details := schema.ValidationErrors(err); details != nil {
						for _, d := range details {
							fmt.Fprintf(out, "  - %v\n", d)
						}
					} else {
						fmt.Fprintf(out, "  - %v\n", err)
					}
					continue
				}
				fmt.Fprintf(out, "%s: ok\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d files", errInvalidGraph, failed, len(args))
			}
			return nil
		},
	}
}

func validateFile(rt *cli.Runtime, path string) error {
	doc, err := cli.ReadDocument(path)
	if err != nil {
		return err
	}
	return document.Validate(doc, rt.Editor.Registry())
}
