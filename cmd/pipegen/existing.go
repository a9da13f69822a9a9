package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newExistingCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "existing",
		Short: "List microflows already generated for a catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runTask(cmd, func(ctx context.Context, rt *runtime) error {
				if err := rt.loadCatalog(ctx, opts.url); err != nil {
					return err
				}
				calls, err := rt.ext.DiscoverExisting(ctx)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), output, calls, func(tw *tabwriter.Writer) {
					fmt.Fprintln(tw, "ID\tMODULE\tNAME\tPIPELINE")
					for _, c := range calls {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.MicroflowID, c.Module, c.Name, c.PipelineName)
					}
				})
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "output format: table, yaml or json")
	return cmd
}
