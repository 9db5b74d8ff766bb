package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/nodeweave/internal/presentation/tui"
	"github.com/aretw0/nodeweave/pkg/schema"
	"github.com/spf13/cobra"
)

func newTypesCmd(opts *rootOptions) *cobra.Command {
	var describe bool

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the registered node types",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.runtime(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer rt.Close()

			entries := rt.Editor.Registry().Entries()
			out := cmd.OutOrStdout()

			if describe {
				render, err := tui.NewRenderer()
				if err != nil {
					return err
				}
				md, err := render(tui.TypeCatalog(entries))
				if err != nil {
					return fmt.Errorf("failed to render catalog: %w", err)
				}
				fmt.Fprint(out, md)
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tTITLE\tINPUTS\tOUTPUTS")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.TypeID, e.Title, ports(e.Signature.Inputs), ports(e.Signature.Outputs))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&describe, "describe", false, "Render a Markdown catalog of every type")
	return cmd
}

func ports(defs []schema.PortDef) string {
	if len(defs) == 0 {
		return "-"
	}
	parts := make([]string, len(defs))
	for i, d := range defs {
		parts[i] = d.Name + ":" + d.Kind.String()
	}
	return strings.Join(parts, ",")
}
