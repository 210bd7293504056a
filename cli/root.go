// Package cli wires the ingest and report pipelines into one binary.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"ecomdb/config"
	"ecomdb/logging"
	_ "ecomdb/sources/all"
)

// Execute runs the CLI and returns the process exit code. Pipeline
// failures are logged by the pipelines themselves and exit 0; only an
// unusable invocation exits non-zero.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type rootOptions struct {
	configPath string
	dataDir    string
	dbPath     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "ecomdb",
		Short:         "CSV-to-SQLite loader and order report runner",
		Long:          "ecomdb infers a schema per tabular file in a data directory, bulk-loads the rows into SQLite, and reports on the result with a fixed multi-table join.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "HCL config file")
	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Directory of source files (overrides config)")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database file (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newIngestCmd(opts))
	rootCmd.AddCommand(newReportCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))

	return rootCmd
}

// loadConfig resolves configuration with precedence flag > file > default.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = o.dataDir
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = o.dbPath
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func (o *rootOptions) newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.LogLevel, cfg.LogJSON, cmd.ErrOrStderr())
}
