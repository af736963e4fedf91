// platformer is a terminal platformer built around a fixed-step
// character-motion core.
//
// Usage:
//
//	platformer list                  - List built-in levels
//	platformer play <level|file>     - Play a level
//	platformer menu                  - Pick levels interactively
//	platformer simulate <level|file> - Run a level headless and print frames
//	platformer runs [level]          - Show the best recorded runs
//	platformer serve                 - Start SSH server for remote play
//
// Global flags:
//
//	--config <path>     - Physics/keys config (default: search order, then embedded)
//	--db <path>         - Run log database (default: ~/.platformer/runs.db)
//	--log-file <path>   - Write logs to a file during interactive play
//	--log-level <level> - debug, info, warn or error
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-platformer/internal/config"
	// Import levels to register them
	_ "github.com/vovakirdan/tui-platformer/internal/levels"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLogFile  string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "platformer",
	Short: "Platformer - run and jump in your terminal",
	Long: `Platformer is a terminal game built around a small 2D motion core:
a character with jerk-aware acceleration, gravity and ground collision.

Available commands:
  list      - Show all built-in levels
  play      - Play a level directly
  menu      - Interactive level picker
  simulate  - Run a level headless, optionally driven by a key script
  runs      - View the best recorded runs
  serve     - Start SSH server for remote play

Examples:
  platformer list
  platformer play first-steps
  platformer play ./my-level.yaml
  platformer simulate canopy --script ./jump.yaml --ticks 240
  platformer serve --ssh :2222`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom platformer config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.platformer/runs.db", "Path to run log database")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file during interactive play")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
}

// newLogger builds a logger writing to w at the configured level.
func newLogger(w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "platformer",
	})
	logger.SetLevel(level)
	return logger, nil
}

// interactiveLogger logs to --log-file, or nowhere, so the alt screen stays
// clean. The returned func closes the file.
func interactiveLogger() (*log.Logger, func(), error) {
	if flagLogFile == "" {
		logger, err := newLogger(io.Discard)
		return logger, func() {}, err
	}
	f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}
	logger, err := newLogger(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return logger, func() { f.Close() }, nil
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, fmt.Errorf("cannot load config: %w", err)
	}
	return cfg, nil
}

// openStore opens the run log, warning and continuing without it on error.
func openStore(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open run database: %v\n", err)
		logger.Warn("could not open run database", "error", err)
		return nil
	}
	return store
}
