package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/wslup/internal/adapters/logging"
	"github.com/felixgeelhaar/wslup/internal/domain/config"
	"github.com/felixgeelhaar/wslup/internal/ports"
)

var (
	// Global flags
	cfgFile  string
	verbose  bool
	jsonLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "wslup",
	Short: "Bootstraps WSL, a Linux distribution, and an application runtime",
	Long: `wslup brings a Windows machine from an arbitrary starting state to one
where WSL, a Linux distribution, and a language runtime plus an application
are installed and launchable.

The installation runs as a staged, idempotent pipeline that survives the
mandatory OS reboot after enabling optional Windows features: invoke
'wslup install' again after the reboot (or let the run-once hook do it) and
the pipeline resumes at the correct stage.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "wslup.toml", "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit diagnostic logs as JSON")

	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the diagnostic logger. Diagnostics go to stderr; stdout
// is reserved for the primary status marker and structured records.
func newLogger() ports.Logger {
	level := ports.LevelInfo
	if verbose {
		level = ports.LevelDebug
	}
	logger := logging.NewConsoleLogger(
		logging.WithLevel(level),
		logging.WithJSONFormat(jsonLogs),
	)
	return logger.With(ports.F("run_id", uuid.NewString()))
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// printError prints an error message to stderr.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", err.Error())
}
