package cli

import (
	"github.com/spf13/cobra"

	"ecomdb/report"
)

func newReportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Run the order analysis join and print it as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := opts.newLogger(cmd, cfg)
			return report.NewRunner(cfg, logger, cmd.OutOrStdout()).Run()
		},
	}
}
