package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached recommendation results",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "invalidate <user-id>",
		Short: "Drop cached results of one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := opts.openClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			n, err := client.Invalidate(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to invalidate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached entries for %s\n", n, args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "flush",
		Short: "Drop every cached result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := opts.openClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			n, err := client.FlushCache(ctx)
			if err != nil {
				return fmt.Errorf("failed to flush: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached entries\n", n)
			return nil
		},
	})

	return cmd
}
