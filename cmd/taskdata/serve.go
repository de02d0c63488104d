package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskdata/database"
	"taskdata/pkg/middleware"
	"taskdata/router"

	// Field
	fieldCtrlImp "taskdata/pkg/field/controllerImp"
	fieldRepoImp "taskdata/pkg/field/repositoryImp"
	fieldSvcImp "taskdata/pkg/field/serviceImp"

	// Task
	taskCtrlImp "taskdata/pkg/task/controllerImp"
	taskRepoImp "taskdata/pkg/task/repositoryImp"
	taskSvcImp "taskdata/pkg/task/serviceImp"

	// Point
	pointCtrlImp "taskdata/pkg/point/controllerImp"
	pointRepoImp "taskdata/pkg/point/repositoryImp"
	pointSvcImp "taskdata/pkg/point/serviceImp"

	// Import runs
	importCtrlImp "taskdata/pkg/importrun/controllerImp"

	// Health
	healthCtrlImp "taskdata/pkg/health/controllerImp"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the loaded store over a read-only HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := database.Open(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer database.Close(db)

			e := newServer(a, db)
			errc := make(chan error, 1)
			go func() {
				a.log.Info("listening", zap.String("addr", ":"+a.cfg.Port))
				errc <- e.Start(":" + a.cfg.Port)
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			a.log.Info("shutting down")
			return e.Shutdown(ctx)
		},
	}
	cmd.Flags().StringVar(&a.cfg.DBPath, "db", a.cfg.DBPath, "SQLite store path")
	cmd.Flags().StringVar(&a.cfg.Port, "port", a.cfg.Port, "listen port")
	return cmd
}

func newServer(a *app, db *gorm.DB) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.RequestLogger(a.log))

	fCtrl := fieldCtrlImp.New(fieldSvcImp.NewFieldService(fieldRepoImp.New(db)))
	tCtrl := taskCtrlImp.New(taskSvcImp.New(taskRepoImp.New(db)))
	pCtrl := pointCtrlImp.New(pointSvcImp.NewPointService(pointRepoImp.New(db)))
	iCtrl := importCtrlImp.New(newImportService(a, db))
	hCtrl := healthCtrlImp.NewHealthCtrl(db)

	var metricsHandler http.Handler
	if a.metrics != nil {
		metricsHandler = a.metrics.Handler()
	}
	return router.New(e, fCtrl, tCtrl, pCtrl, iCtrl, hCtrl, metricsHandler)
}
