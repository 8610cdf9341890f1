package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/symnet/etsm/internal/config"
	"github.com/symnet/etsm/internal/logger"
	"github.com/symnet/etsm/internal/sources"
)

// Version info set via ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
)

var (
	verbose    bool
	sourcesURL string

	toolConfig *config.Store
)

var rootCmd = &cobra.Command{
	Use:     "etsm",
	Short:   "Enemy Territory server manager",
	Version: version + " (" + commit + ")",
	Long: `A CLI tool to install, configure and run dedicated
Enemy Territory: Legacy servers.

Quick start:
  etsm sources update           Sync installation sources
  etsm server create            Install a server
  etsm server run               Start it in the foreground`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		_ = logger.Init(verbose)

		toolConfig = config.NewStore()
		if err := toolConfig.Load(); err != nil {
			logger.Warn("Failed to load tool config", "error", err)
		}
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringVar(&sourcesURL, "sources-url", "", "Override the sources mirror URL")
}

// getLogger returns the shared logger instance, falling back to the
// charmbracelet default before Init has run (e.g. in completion).
func getLogger() *log.Logger {
	if logger.Log != nil {
		return logger.Log
	}
	return log.Default()
}

// etsmHome resolves the install root from ETSM_HOME, the tool config,
// or the built-in default.
func etsmHome() string {
	return toolConfig.ResolveHome()
}

// resolveSourcesURL picks the mirror: the --sources-url flag wins,
// then the tool config, then the default.
func resolveSourcesURL() string {
	if sourcesURL != "" {
		return sourcesURL
	}
	if cfg := toolConfig.Get(); cfg.SourcesURL != "" {
		return cfg.SourcesURL
	}
	return sources.DefaultURL
}

// getSources builds a sources manager rooted at the install home.
func getSources() *sources.Manager {
	return sources.NewManager(etsmHome(), resolveSourcesURL(), getLogger())
}
