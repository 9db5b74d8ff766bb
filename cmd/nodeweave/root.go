package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/nodeweave/internal/cli"
	"github.com/aretw0/nodeweave/internal/config"
	"github.com/aretw0/nodeweave/internal/logging"
	"github.com/spf13/cobra"
)

// rootOptions carries the persistent flags and what PersistentPreRunE builds from them.
type rootOptions struct {
	configPath string
	logLevel   string

	cfg    config.Config
	logger *slog.Logger
}

// runtime builds an editor from the loaded config. Print nodes write to out.
func (o *rootOptions) runtime(out io.Writer) (*cli.Runtime, error) {
	return cli.NewRuntime(o.cfg, o.logger, out)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "nodeweave",
		Short: "nodeweave is a dataflow node graph engine",
		Long: `nodeweave builds, evaluates and stores graphs of typed nodes wired
output to input. Graphs are JSON or YAML documents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				if err := cfg.Apply(map[string]any{"log_level": opts.logLevel}); err != nil {
					return err
				}
			}
			level, err := logging.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.logger = logging.NewWithWriter(cmd.ErrOrStderr(), level)
			slog.SetDefault(opts.logger)
			return nil
		},
	}

	// Persistent flags (available to all commands)
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "Configuration file (YAML or JSON)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn or error")

	cmd.AddCommand(
		newTypesCmd(opts),
		newEvalCmd(opts),
		newGraphCmd(opts),
		newValidateCmd(opts),
		newServeCmd(opts),
		newMCPCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
