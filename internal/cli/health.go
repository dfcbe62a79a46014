package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check database and cache connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := opts.openClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			h := client.Health(ctx)
			out := cmd.OutOrStdout()
			if opts.outputFormat != "table" {
				if err := printOutput(out, opts.outputFormat, map[string]any{
					"status": h.Status,
					"checks": h.Checks,
				}); err != nil {
					return err
				}
			} else {
				names := make([]string, 0, len(h.Checks))
				for name := range h.Checks {
					names = append(names, name)
				}
				sort.Strings(names)

				t := NewTable("COMPONENT", "STATUS")
				for _, name := range names {
					t.AddRow(name, h.Checks[name])
				}
				if err := t.Render(out); err != nil {
					return err
				}
				fmt.Fprintf(out, "\nOverall: %s\n", h.Status)
			}

			if h.Status == "error" {
				return fmt.Errorf("shoprec is unhealthy")
			}
			return nil
		},
	}
}
