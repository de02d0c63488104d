package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskdata/pkg/middleware"
)

func New(
	e *echo.Echo,
	fieldCtrl interface{ List(echo.Context) error; Get(echo.Context) error },
	taskCtrl interface{ Register(*echo.Group) },
	pointCtrl interface{ List(echo.Context) error; Summary(echo.Context) error },
	importCtrl interface{ List(echo.Context) error; Get(echo.Context) error },
	healthCtrl interface{ Health(echo.Context) error },
	metrics http.Handler,
) *echo.Echo {
	e.Use(middleware.ReadOnly())

	e.GET("/health", healthCtrl.Health)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}

	api := e.Group("/api/v1")
	api.GET("/fields", fieldCtrl.List)
	api.GET("/fields/*", fieldCtrl.Get)

	taskCtrl.Register(api)

	api.GET("/points", pointCtrl.List)
	api.GET("/points/summary", pointCtrl.Summary)

	api.GET("/imports", importCtrl.List)
	api.GET("/imports/:id", importCtrl.Get)
	return e
}
