package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"taskdata/pkg/export"
	"taskdata/pkg/ingest"
	"taskdata/pkg/merge"
)

func newExtractCmd(a *app) *cobra.Command {
	var (
		out       string
		appendOut bool
	)
	cmd := &cobra.Command{
		Use:   "extract <dir>...",
		Short: "Write field boundaries of one or more TaskData folders as GeoJSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, dirs []string) error {
			if out == "" {
				out = filepath.Join(a.cfg.OutDir, "fields.geojson")
			}
			sources, err := ingest.Run(cmd.Context(), dirs, a.ingestOptions(true))
			if err != nil {
				return err
			}
			n, err := export.WriteFieldsGeoJSON(merge.Merge(sources...), out, appendOut)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d fields to %s\n", n, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "GeoJSON output file (default <out dir>/fields.geojson)")
	cmd.Flags().BoolVar(&appendOut, "append", false, "keep features already in the output file")
	return cmd
}
