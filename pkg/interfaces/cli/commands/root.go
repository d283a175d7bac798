// Package commands implements the cmrp command line.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/cmrp/pkg/config"
	"github.com/vsinha/cmrp/pkg/infrastructure/logging"
)

// Options holds the global flags shared by every subcommand
type Options struct {
	ConfigPath string
	Verbose    bool
	Ephemeral  bool
}

// app carries state initialised by the root command's pre-run hook
type app struct {
	opts   Options
	config *config.Config
	logger *zap.Logger
}

// runtime wires storage and services for commands that need them
func (a *app) runtime(ctx context.Context) (*Runtime, error) {
	return Bootstrap(ctx, a.config, a.logger, a.opts.Ephemeral)
}

// NewRootCommand builds the cmrp command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "cmrp",
		Short: "Contract monitoring and revenue planning service",
		Long: `cmrp tracks contract projects, their progress updates, invoice
forecasts, schedules and material requests.

Run "cmrp serve" to start the web service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.opts.ConfigPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			logger, err := logging.New(cfg.Logging, a.opts.Verbose)
			if err != nil {
				return err
			}
			a.config = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.opts.ConfigPath, "config", "c", "cmrp.yaml", "path to the YAML config file")
	flags.BoolVarP(&a.opts.Verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&a.opts.Ephemeral, "ephemeral", false, "keep all data in memory")

	root.AddCommand(
		newServeCommand(a),
		newMigrateCommand(a),
		newUserCommand(a),
		newImportCommand(a),
		newExportCommand(a),
		newReportCommand(a),
		newGanttCommand(a),
		newSeedCommand(a),
		newConfigCommand(a),
	)
	return root
}
