package controllerImp

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"taskdata/pkg/point/service"
)

const (
	defaultLimit = 1000
	maxLimit     = 100000
)

type PointCtrl struct{ s service.PointService }

func New(s service.PointService) *PointCtrl { return &PointCtrl{s} }

// List handles ?tlg=<id>&tlg=<id>&limit=n. Ids may also be comma separated.
func (h *PointCtrl) List(c echo.Context) error {
	var ids []string
	for _, v := range c.QueryParams()["tlg"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	limit := parseLimit(c.QueryParam("limit"), defaultLimit, maxLimit)
	out, err := h.s.ByTLG(ids, limit)
	if errors.Is(err, service.ErrNoTLGIDs) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PointCtrl) Summary(c echo.Context) error {
	out, err := h.s.Summary()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, out)
}

func parseLimit(s string, def, max int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
