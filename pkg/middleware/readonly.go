package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ReadOnly rejects every method except GET, HEAD and OPTIONS with 405. The
// store is written by the load command only.
func ReadOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}
			return c.JSON(http.StatusMethodNotAllowed, echo.Map{"error": "read-only API"})
		}
	}
}
