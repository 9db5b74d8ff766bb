package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/nodeweave/pkg/graph"
	"github.com/spf13/cobra"
)

func newEvalCmd(opts *rootOptions) *cobra.Command {
	var (
		nodeID string
		output string
		save   string
	)

	cmd := &cobra.Command{
		Use:   "eval <graph>",
		Short: "Evaluate a graph file or stored graph",
		Long: `Loads a graph from a file (.json, .yaml) or, when no such file exists,
from the configured store, and evaluates it.

Without --node every node is evaluated once. With --node only that node and
its upstream run; --output additionally prints the pulled value as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" && nodeID == "" {
				return fmt.Errorf("--output requires --node")
			}

			rt, err := opts.runtime(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := cmd.Context()
			if err := rt.Open(ctx, args[0]); err != nil {
				return err
			}

			switch {
			case output != "":
				v, err := rt.Editor.Pull(nodeID, output)
				if err != nil {
					return err
				}
				data, err := json.Marshal(v)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			case nodeID != "":
				if err := rt.Editor.Evaluate(nodeID); err != nil {
					return err
				}
			default:
				if err := rt.Editor.EvaluateAll(); err != nil {
					for _, id := range failedNodes(err) {
						opts.logger.Warn("node failed", "node_id", id)
					}
					return err
				}
			}

			if save != "" {
				if err := rt.Editor.Save(ctx, save); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&nodeID, "node", "n", "", "Instance id of the node to evaluate")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output of --node to pull and print")
	cmd.Flags().StringVar(&save, "save", "", "Store the graph under this name after evaluating")
	return cmd
}

// failedNodes lists the instance ids of every ExecutionError in err.
func failedNodes(err error) []string {
	var ids []string
	var walk func(error)
	walk = func(err error) {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				walk(e)
			}
			return
		}
		var execErr *graph.ExecutionError
		if errors.As(err, &execErr) {
			ids = append(ids, execErr.InstanceID)
		}
	}
	walk(err)
	return ids
}
