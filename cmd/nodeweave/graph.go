package main

import (
	"fmt"

	graphview "github.com/aretw0/nodeweave/internal/presentation/graph"
	"github.com/aretw0/nodeweave/pkg/registry"
	"github.com/spf13/cobra"
)

func newGraphCmd(opts *rootOptions) *cobra.Command {
	var evaluate bool

	cmd := &cobra.Command{
		Use:   "graph <graph>",
		Short: "Print a graph as a Mermaid flowchart",
		Long: `Prints a Mermaid flowchart of a graph file or stored graph.
With --evaluate every node is run first and the chart marks failed nodes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.runtime(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.Open(cmd.Context(), args[0]); err != nil {
				return err
			}

			var overlay *graphview.GraphOverlay
			if evaluate {
				failed := failedNodes(rt.Editor.EvaluateAll())
				overlay = &graphview.GraphOverlay{Failed: failed}
				isFailed := make(map[string]bool, len(failed))
				for _, id := range failed {
					isFailed[id] = true
				}
				for _, item := range rt.Editor.Snapshot().Items {
					if !isFailed[item.InstanceID] {
						overlay.Evaluated = append(overlay.Evaluated, item.InstanceID)
					}
				}
			}

			reg := rt.Editor.Registry()
			fmt.Fprint(cmd.OutOrStdout(), graphview.GenerateMermaid(rt.Editor.Snapshot(), titles(reg), overlay))
			return nil
		},
	}
	cmd.Flags().BoolVar(&evaluate, "evaluate", false, "Evaluate the graph and highlight failures")
	return cmd
}

func titles(reg *registry.Registry) graphview.TitleFunc {
	return func(typeID string) string {
		if e, ok := reg.Lookup(typeID); ok {
			return e.Title
		}
		return ""
	}
}
