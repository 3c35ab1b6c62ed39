// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"minnow/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagPort    int
	flagBase    string
	flagTimeout int
	flagAPIKey  string
	flagPlayer  string
	flagJSON    bool
	flagDebug   bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

// log is the shared logger; debug level when configured.
var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "minnow",
	Short: "Extract playable streams from third-party embed pages",
	Long: `Minnow scrapes streaming-embed pages for signed HLS manifest URLs.
Run it as an HTTP extraction API with "minnow serve", resolve a single
title with "minnow extract", or search and play locally with "minnow watch".`,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagPort, "port", 0, "HTTP listen port")
	rootCmd.PersistentFlags().StringVar(&flagBase, "base", "", "Source base URL (default https://vixsrc.to)")
	rootCmd.PersistentFlags().IntVar(&flagTimeout, "timeout", 0, "Request timeout in seconds")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "tmdb-key", "", "TMDB API key")
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", "", "Media player: mpv | vlc | iina | celluloid")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Output results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if flagPort > 0 {
		cfg.Port = flagPort
	}
	if flagBase != "" {
		cfg.SourceBase = flagBase
	}
	if flagTimeout > 0 {
		cfg.TimeoutSecs = flagTimeout
	}
	if flagAPIKey != "" {
		cfg.TMDBAPIKey = flagAPIKey
	}
	if flagPlayer != "" {
		cfg.Player = flagPlayer
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.SetOutput(os.Stderr)
	if cfg.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	return nil
}
