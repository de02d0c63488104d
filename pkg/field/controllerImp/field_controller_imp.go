package controllerImp

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"taskdata/pkg/field/service"
)

type FieldCtrl struct{ s service.FieldService }

func New(s service.FieldService) *FieldCtrl { return &FieldCtrl{s} }

// List answers with a GeoJSON FeatureCollection of the stored fields.
func (h *FieldCtrl) List(c echo.Context) error {
	fc, err := h.s.FeatureCollection()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, fc)
}

// Get answers with one feature; the composite id is the wildcard tail of the
// path, e.g. /api/v1/fields/TASKDATA/PFD1.
func (h *FieldCtrl) Get(c echo.Context) error {
	id := WildcardID(c)
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing field id"})
	}
	f, err := h.s.Feature(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, f)
}

// WildcardID returns the unescaped "*" path parameter.
func WildcardID(c echo.Context) string {
	raw := c.Param("*")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}
