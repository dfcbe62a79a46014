package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/shoprec/internal/version"
)

func newVersionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if opts.outputFormat != "table" {
				return printOutput(out, opts.outputFormat, map[string]string{
					"version": version.Version,
					"commit":  version.Commit,
					"date":    version.Date,
				})
			}
			fmt.Fprintln(out, "shoprecctl", version.String())
			return nil
		},
	}
}
