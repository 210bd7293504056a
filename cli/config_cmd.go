package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ecomdb/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "ecomdb.hcl"
			if len(args) == 1 {
				path = args[0]
			}
			cfg := config.DefaultConfig()
			if cmd.Flags().Changed("data-dir") {
				cfg.DataDir = opts.dataDir
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath = opts.dbPath
			}
			if err := config.Export(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	configCmd.AddCommand(initCmd)
	return configCmd
}
