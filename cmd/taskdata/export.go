package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskdata/pkg/export"
	"taskdata/pkg/ingest"
	"taskdata/pkg/merge"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir> [out dir]",
		Short: "Decode every task log of a TaskData folder to CSV",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir := a.cfg.OutDir
			if len(args) == 2 {
				outDir = args[1]
			}
			sources, err := ingest.Run(cmd.Context(), args[:1], a.ingestOptions(false))
			if err != nil {
				return err
			}
			files, err := export.WriteIndexCSV(merge.Merge(sources...), outDir)
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return err
		},
	}
}
