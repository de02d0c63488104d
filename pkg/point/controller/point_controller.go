package controller

import "github.com/labstack/echo/v4"

type PointController interface {
	List(c echo.Context) error
	Summary(c echo.Context) error
}
