package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newPipelinesCmd(opts *rootOptions) *cobra.Command {
	var (
		page    int
		perPage int
		output  string
	)
	cmd := &cobra.Command{
		Use:   "pipelines",
		Short: "List the pipelines of a catalog",
		Example: `  pipegen pipelines --url https://data.example.com
  pipegen pipelines --url https://data.example.com --page 2 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runTask(cmd, func(ctx context.Context, rt *runtime) error {
				if err := rt.loadCatalog(ctx, opts.url); err != nil {
					return err
				}
				res, err := rt.ext.Pipelines(ctx, page, perPage)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), output, res, func(tw *tabwriter.Writer) {
					fmt.Fprintln(tw, "ID\tNAME\tFIELDS\tDESCRIPTION")
					for _, p := range res.Pipelines {
						fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.ID, p.Name, len(p.RequiredFields), p.Description)
					}
					fmt.Fprintf(tw, "\npage %d of %d, %d pipelines at %s\n",
						res.Page.Number, res.Page.TotalPages, res.Total, res.BaseURL)
				})
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "pipelines per page (default catalog.per_page)")
	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "output format: table, yaml or json")
	return cmd
}
