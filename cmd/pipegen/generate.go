package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		pipeline string
		module   string
		dryRun   bool
		output   string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the microflow calling a pipeline",
		Long: `generate builds the microflow that calls one pipeline and saves it in a
module of the workspace store. With --dry-run the microflow template is
printed instead and nothing is saved.`,
		Example: `  pipegen generate --url https://data.example.com --pipeline "Orders Sync"
  pipegen generate --url https://data.example.com --pipeline "Orders Sync" --dry-run -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runTask(cmd, func(ctx context.Context, rt *runtime) error {
				if err := rt.loadCatalog(ctx, opts.url); err != nil {
					return err
				}
				if dryRun {
					t, err := rt.ext.Preview(ctx, pipeline)
					if err != nil {
						return err
					}
					return render(cmd.OutOrStdout(), output, t, nil)
				}
				if module == "" && len(rt.cfg.Store.Modules) > 0 {
					module = rt.cfg.Store.Modules[0]
				}
				res, err := rt.ext.CreateMicroflow(ctx, pipeline, module)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), output, res, func(tw *tabwriter.Writer) {
					fmt.Fprintln(tw, "ID\tNAME\tMODULE\tSKIPPED")
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", res.MicroflowID, res.Name, res.Module, len(res.Skipped))
				})
			})
		},
	}
	cmd.Flags().StringVarP(&pipeline, "pipeline", "p", "", "pipeline name")
	cmd.Flags().StringVarP(&module, "module", "m", "", "target module (default the first store.modules entry)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the microflow template without saving it")
	cmd.Flags().StringVarP(&output, "output", "o", formatYAML, "output format: table, yaml or json")
	_ = cmd.MarkFlagRequired("pipeline")
	return cmd
}
