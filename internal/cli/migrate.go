package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/shoprec/internal/db/sqlstore"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the storefront schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			store, err := sqlstore.Open(sqlstore.Config{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
			if err := store.WaitForReady(cmd.Context(), timeout); err != nil {
				return fmt.Errorf("database not ready: %w", err)
			}

			v, err := store.Migrate()
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", v)
			return nil
		},
	}
}
