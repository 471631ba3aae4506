package main

import (
	"github.com/spf13/cobra"

	"stretchtime/internal/config"
	apperrors "stretchtime/internal/errors"
	"stretchtime/internal/logger"
)

var version = "dev"

// options are the persistent flags and the configuration they resolve to.
type options struct {
	configPath string
	debug      bool
	config     *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "stretchtime",
		Short: "StretchTime - guided stretching timer and daily reminder",
		Long: `StretchTime lives in the system tray. It runs a countdown for short
stretching sessions and sends a desktop notification at the same time every day.
Without a subcommand the tray app is started.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(opts, runFlags{})
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (default <config dir>/stretchtime/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Log debug output to stderr")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newStatsCmd(opts),
		newScheduleCmd(opts),
		newRemindCmd(opts),
		newPermissionCmd(opts),
		newAutostartCmd(opts),
	)
	return rootCmd
}

func (opts *options) setup() error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.debug {
		cfg.Logging.Debug = true
	}

	appDir, err := config.DefaultDir()
	if err != nil {
		return err
	}
	if err := logger.Init(logger.Config{Debug: cfg.Logging.Debug, ConfigDir: appDir}); err != nil {
		return err
	}

	opts.config = cfg
	logger.Debug("configuration loaded", "storage", cfg.Storage.Type, "path", cfg.Storage.Path)
	return nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	apperrors.Fatal(newRootCmd().Execute())
}
