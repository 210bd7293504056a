package cli

import (
	"github.com/spf13/cobra"

	"ecomdb/ingest"
)

func newIngestCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Load every source file in the data directory into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := opts.newLogger(cmd, cfg)
			return ingest.NewLoader(cfg, logger, cmd.OutOrStdout()).Run()
		},
	}
}
