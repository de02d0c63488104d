package service

import (
	"errors"

	"github.com/google/uuid"

	"taskdata/entities"
	"taskdata/pkg/merge"
)

// ErrNoTLGIDs is returned by queries given an empty id list.
var ErrNoTLGIDs = errors.New("point: at least one composite TLG id is required")

type PointService interface {
	// Load stores the records of every decoded log of ix, replacing points
	// previously loaded for the same composite TLG ids.
	Load(ix *merge.Index, runID uuid.UUID) (LoadStats, error)
	ByTLG(ids []string, limit int) ([]entities.Point, error)
	Summary() ([]entities.TLGSummary, error)
	// ExportCSV writes the points of ids to path and returns the row count.
	ExportCSV(ids []string, path string) (int, error)
}

type LoadStats struct {
	Logs      int
	Points    int
	Warnings  int
	Truncated int
	Failed    int
}
