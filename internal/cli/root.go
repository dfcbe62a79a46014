// Package cli implements shoprecctl, the operator command line for shoprec.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/shoprec/internal/config"
	shoprec "github.com/kailas-cloud/shoprec/pkg/sdk"
)

// options holds the persistent flags shared by every command.
type options struct {
	cfgFile      string
	env          string
	outputFormat string
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "shoprecctl",
		Short: "shoprec CLI - product recommendations for the storefront",
		Long: `shoprecctl runs shoprec operations against the storefront database:
applying the schema, previewing a user's recommendations, checking health
and clearing cached results.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default config/<env>.yaml)")
	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "environment name used to locate the config")
	cmd.PersistentFlags().StringVarP(&opts.outputFormat, "output", "o", "table", "output format: table, json, yaml")

	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newRecommendCmd(opts))
	cmd.AddCommand(newHealthCmd(opts))
	cmd.AddCommand(newCacheCmd(opts))
	cmd.AddCommand(newVersionCmd(opts))

	return cmd
}

func (o *options) loadConfig() (config.Config, error) {
	if o.cfgFile != "" {
		return config.LoadFile(o.cfgFile)
	}
	return config.Load(o.env)
}

// openClient connects the embedded engine using the loaded config.
func (o *options) openClient(ctx context.Context, extra ...shoprec.Option) (*shoprec.Client, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	var opts []shoprec.Option
	switch cfg.Database.Driver {
	case "sqlite":
		opts = append(opts, shoprec.WithSQLite(cfg.Database.DSN))
	default:
		opts = append(opts, shoprec.WithPostgres(cfg.Database.DSN))
	}
	if cfg.Cache.Enabled {
		opts = append(opts,
			shoprec.WithCache(cfg.Cache.Addrs[0], cfg.Cache.Password, cfg.CacheTTL()),
			shoprec.WithCacheKeyPrefix(cfg.Cache.KeyPrefix),
		)
	}
	opts = append(opts,
		shoprec.WithNeighborhoodSize(cfg.Recommend.NeighborhoodSize),
		shoprec.WithMaxLimit(cfg.Recommend.MaxLimit),
		shoprec.WithTimeout(time.Duration(cfg.Recommend.TimeoutMS)*time.Millisecond),
	)
	opts = append(opts, extra...)

	client, err := shoprec.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return client, nil
}
