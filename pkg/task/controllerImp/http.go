package controllerImp

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	tsvc "taskdata/pkg/task/service"
)

type httpCtrl struct{ s tsvc.Service }

func New(s tsvc.Service) *httpCtrl { return &httpCtrl{s: s} }

func (h *httpCtrl) Register(g *echo.Group) {
	g.GET("/tasks", h.list)
	g.GET("/tasks/*", h.get)
}

// list handles ?field=<composite id>&year=<yyyy|unknown>.
func (h *httpCtrl) list(c echo.Context) error {
	f := tsvc.Filter{Field: c.QueryParam("field")}
	if v := strings.TrimSpace(c.QueryParam("year")); v != "" {
		year, err := parseYear(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year"})
		}
		f.Year = &year
	}
	list, err := h.s.List(f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, list)
}

func (h *httpCtrl) get(c echo.Context) error {
	id, err := url.PathUnescape(c.Param("*"))
	if err != nil || id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid task id"})
	}
	t, err := h.s.Get(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, t)
}

func parseYear(s string) (int, error) {
	if strings.EqualFold(s, "unknown") {
		return 0, nil
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1 {
		return 0, errors.New("invalid year")
	}
	return y, nil
}
