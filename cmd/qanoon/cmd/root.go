// Package cmd provides the CLI commands for qanoon.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/qanoonhq/qanoon/internal/config"
	"github.com/qanoonhq/qanoon/internal/logging"
	"github.com/qanoonhq/qanoon/pkg/version"
)

var (
	configPath     string
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qanoon",
		Short: "Bilingual legal document question answering",
		Long: `Qanoon answers questions over Arabic legal documents using hybrid
retrieval: BM25 keyword search fused with dense similarity, filtered by
the requester's roles, with cited and highlighted excerpts.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("qanoon version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = func(*cobra.Command, []string) {
		if loggingCleanup != nil {
			loggingCleanup()
			loggingCleanup = nil
		}
	}

	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setupLogging installs the process logger before any command runs.
func setupLogging(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if debugMode {
		level = "debug"
	}
	_, cleanup, err := logging.Setup(level, cfg.Logging.File)
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
