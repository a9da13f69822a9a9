package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kbukum/pipegen/version"
)

func newVersionCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Printing the version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			return render(cmd.OutOrStdout(), output, info, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Version:\t%s\n", info.Version)
				fmt.Fprintf(tw, "Commit:\t%s\n", info.GitCommit)
				fmt.Fprintf(tw, "Built:\t%s\n", info.BuildTime)
				fmt.Fprintf(tw, "Go:\t%s\n", info.GoVersion)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "output format: table, yaml or json")
	return cmd
}
