package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskdata/pkg/catalog"
	"taskdata/pkg/ddi"
	"taskdata/pkg/report"
)

func newReportCmd(a *app) *cobra.Command {
	var xlsx string
	cmd := &cobra.Command{
		Use:   "report <dir>",
		Short: "Print the farm, year and field task report of a TaskData folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(args[0], catalog.WithLogger(a.log))
			if err != nil {
				return err
			}
			r := report.Build(cat, ddi.Build(cat))
			if err := report.WriteText(cmd.OutOrStdout(), r); err != nil {
				return err
			}
			if xlsx == "" {
				return nil
			}
			if err := report.WriteXLSX(xlsx, r); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", xlsx)
			return nil
		},
	}
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "also save the report as an Excel workbook")
	return cmd
}
