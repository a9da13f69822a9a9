package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newModulesCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List the modules microflows can be created in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runTask(cmd, func(ctx context.Context, rt *runtime) error {
				modules, err := rt.ext.Modules(ctx)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), output, modules, func(tw *tabwriter.Writer) {
					fmt.Fprintln(tw, "NAME")
					for _, m := range modules {
						fmt.Fprintln(tw, m.Name)
					}
				})
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "output format: table, yaml or json")
	return cmd
}
