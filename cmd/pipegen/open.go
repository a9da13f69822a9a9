package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newOpenCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "open <microflow-id>",
		Short: "Print a saved microflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runTask(cmd, func(ctx context.Context, rt *runtime) error {
				doc, err := rt.ext.OpenMicroflow(ctx, args[0])
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), output, doc, nil)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", formatYAML, "output format: yaml or json")
	return cmd
}
