package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"taskdata/database"
	fieldRepoImp "taskdata/pkg/field/repositoryImp"
	fieldSvcImp "taskdata/pkg/field/serviceImp"
	importRepoImp "taskdata/pkg/importrun/repositoryImp"
	importSvcImp "taskdata/pkg/importrun/serviceImp"
	"taskdata/pkg/ingest"
	"taskdata/pkg/merge"
	pointRepoImp "taskdata/pkg/point/repositoryImp"
	pointSvcImp "taskdata/pkg/point/serviceImp"
	taskRepoImp "taskdata/pkg/task/repositoryImp"
	taskSvcImp "taskdata/pkg/task/serviceImp"
)

func newLoadCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <dir>...",
		Short: "Decode TaskData folders into the SQLite store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, dirs []string) error {
			db, err := database.Open(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer database.Close(db)

			sources, err := ingest.Run(cmd.Context(), dirs, a.ingestOptions(false))
			if err != nil {
				return err
			}
			run, err := newImportService(a, db).Import(merge.Merge(sources...))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "import %s: %d fields, %d tasks, %d logs, %d points (%d warnings, %d truncated, %d failed)\n",
				run.ID, run.Fields, run.Tasks, run.Logs, run.Points, run.Warnings, run.Truncated, run.Failed)
			return nil
		},
	}
	cmd.Flags().StringVar(&a.cfg.DBPath, "db", a.cfg.DBPath, "SQLite store path")
	return cmd
}

func newImportService(a *app, db *gorm.DB) *importSvcImp.ImportSvc {
	return importSvcImp.NewImportService(
		importRepoImp.New(db),
		fieldSvcImp.NewFieldService(fieldRepoImp.New(db)),
		taskSvcImp.New(taskRepoImp.New(db)),
		pointSvcImp.NewPointService(pointRepoImp.New(db)),
		a.metrics,
		a.log,
	)
}
