package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/nodeweave"
	"github.com/aretw0/nodeweave/internal/presentation/tui"
	httpadapter "github.com/aretw0/nodeweave/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		port int
		load string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP editor API",
		Long: `Serves the editor over HTTP: node and connection editing, evaluation,
stored graphs, an SSE event stream at /events and Prometheus metrics at /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				if err := opts.cfg.Apply(map[string]any{"http": map[string]any{"port": port}}); err != nil {
					return err
				}
			}

			rt, err := opts.runtime(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer rt.Close()

			if load != "" {
				if err := rt.Open(cmd.Context(), load); err != nil {
					return err
				}
			}

			handlerOpts := []httpadapter.Option{
				httpadapter.WithStreams(rt.Streams),
				httpadapter.WithVersion(nodeweave.Version),
			}
			if opts.cfg.HTTP.Metrics {
				handlerOpts = append(handlerOpts, httpadapter.WithMetrics(promhttp.HandlerFor(rt.Metrics, promhttp.HandlerOpts{})))
			}

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", opts.cfg.HTTP.Port),
				Handler:           httpadapter.NewHandler(rt.Editor, handlerOpts...),
				ReadHeaderTimeout: 10 * time.Second,
			}

			if tui.IsTerminal(os.Stdout) {
				tui.PrintBanner(cmd.OutOrStdout())
			}

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)
			go func() {
				opts.logger.Info("Starting nodeweave server", "address", srv.Addr, "store", opts.cfg.Store)
				serverErrors <- srv.ListenAndServe()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server error: %w", err)

			case <-ctx.Done():
				opts.logger.Info("Start shutdown")

				// Give outstanding requests a deadline for completion.
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := srv.Shutdown(shutdownCtx); err != nil {
					opts.logger.Error("Graceful shutdown did not complete", "error", err)
					if err := srv.Close(); err != nil {
						return fmt.Errorf("error killing server: %w", err)
					}
				}
				opts.logger.Info("nodeweave server stopped gracefully")
				return nil
			}
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on (overrides http.port)")
	cmd.Flags().StringVar(&load, "load", "", "Graph file or stored graph to open at startup")
	return cmd
}
