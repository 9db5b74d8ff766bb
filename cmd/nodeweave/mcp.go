package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aretw0/nodeweave"
	"github.com/aretw0/nodeweave/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	var (
		transport string
		port      int
		load      string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Exposes the editor as an MCP Server so AI agents can list node types,
build graphs and evaluate them as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Print nodes must not write to Stdout: it carries JSON-RPC in stdio mode.
			rt, err := opts.runtime(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			if load != "" {
				if err := rt.Open(cmd.Context(), load); err != nil {
					return err
				}
			}

			srv := mcp.NewServer(rt.Editor, strings.TrimSpace(nodeweave.Version))

			switch transport {
			case "stdio":
				// Ensure logs don't corrupt JSON-RPC on Stdout
				log.SetOutput(os.Stderr)
				opts.logger.Info("Starting nodeweave MCP Server (Stdio)")
				return srv.ServeStdio()
			case "sse":
				opts.logger.Info("Starting nodeweave MCP Server (SSE)", "port", port)

				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("MCP Server execution failed: %w", err)
				}
				opts.logger.Info("MCP Server stopped gracefully")
				return nil
			default:
				return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
			}
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on (only for SSE)")
	cmd.Flags().StringVar(&load, "load", "", "Graph file or stored graph to open at startup")
	return cmd
}
