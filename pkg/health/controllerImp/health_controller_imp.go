package controllerImp

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"taskdata/entities"
)

type HealthCtrl struct {
	db    *gorm.DB
	start time.Time
}

func NewHealthCtrl(db *gorm.DB) *HealthCtrl { return &HealthCtrl{db: db, start: time.Now()} }

type check struct {
	OK  bool   `json:"ok"`
	Err string `json:"err,omitempty"`
}

// Health pings the store and reports row counts of the loaded data.
func (h *HealthCtrl) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()

	db := check{OK: true}
	counts := map[string]int64{}
	switch {
	case h.db == nil:
		db = check{Err: "gorm db is nil"}
	default:
		sqlDB, err := h.db.DB()
		if err != nil {
			db = check{Err: "db.DB(): " + err.Error()}
		} else if err := sqlDB.PingContext(ctx); err != nil {
			db = check{Err: "ping: " + err.Error()}
		}
	}
	if db.OK {
		for table, model := range map[string]any{
			"fields":  &entities.Field{},
			"tasks":   &entities.Task{},
			"points":  &entities.Point{},
			"imports": &entities.ImportRun{},
		} {
			var n int64
			if err := h.db.WithContext(ctx).Model(model).Count(&n).Error; err != nil {
				db = check{Err: "count " + table + ": " + err.Error()}
				break
			}
			counts[table] = n
		}
	}

	status := http.StatusOK
	if !db.OK {
		status = http.StatusServiceUnavailable
	}
	resp := map[string]any{
		"status":     map[string]any{"ok": db.OK},
		"uptime_sec": int(time.Since(h.start).Seconds()),
		"checks":     map[string]any{"database": db},
		"time":       time.Now().Format(time.RFC3339),
	}
	if db.OK {
		resp["rows"] = counts
	}
	return c.JSON(status, resp)
}
