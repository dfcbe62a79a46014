package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	shoprec "github.com/kailas-cloud/shoprec/pkg/sdk"
)

type productView struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Category   string `json:"category,omitempty" yaml:"category,omitempty"`
	PriceCents int64  `json:"price_cents" yaml:"price_cents"`
}

type recommendationView struct {
	UserID string        `json:"user_id" yaml:"user_id"`
	Source string        `json:"source" yaml:"source"`
	Reason string        `json:"reason,omitempty" yaml:"reason,omitempty"`
	Items  []productView `json:"items" yaml:"items"`
}

func newRecommendCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "recommend <user-id>",
		Aliases: []string{"rec"},
		Short:   "Show the recommendations a user would get",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := opts.openClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			recs, err := client.Recommend(ctx, args[0], limit)
			if err != nil {
				return fmt.Errorf("failed to get recommendations: %w", err)
			}

			out := cmd.OutOrStdout()
			if opts.outputFormat != "table" {
				return printOutput(out, opts.outputFormat, toView(args[0], &recs))
			}

			fmt.Fprintf(out, "Source: %s", recs.Source)
			if recs.Reason != "" {
				fmt.Fprintf(out, " (%s)", recs.Reason)
			}
			fmt.Fprintln(out)

			t := NewTable("#", "ID", "NAME", "CATEGORY", "PRICE")
			for i, p := range recs.Items {
				t.AddRow(
					strconv.Itoa(i+1),
					p.ID,
					p.Name,
					p.Category,
					fmt.Sprintf("%d.%02d", p.PriceCents/100, p.PriceCents%100),
				)
			}
			return t.Render(out)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "maximum number of products")

	return cmd
}

func toView(userID string, recs *shoprec.Recommendations) recommendationView {
	items := make([]productView, len(recs.Items))
	for i, p := range recs.Items {
		items[i] = productView{ID: p.ID, Name: p.Name, Category: p.Category, PriceCents: p.PriceCents}
	}
	return recommendationView{
		UserID: userID,
		Source: string(recs.Source),
		Reason: recs.Reason,
		Items:  items,
	}
}
