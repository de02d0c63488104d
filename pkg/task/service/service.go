package service

import (
	"github.com/google/uuid"

	"taskdata/entities"
	"taskdata/pkg/merge"
)

type Service interface {
	// Save upserts every task of ix, unassigned ones included.
	Save(ix *merge.Index, runID uuid.UUID) (int, error)
	Get(compositeID string) (*entities.Task, error)
	List(f Filter) ([]entities.Task, error)
}

// Filter narrows List. A nil Year matches every year; 0 selects tasks
// without a start time.
type Filter struct {
	Field string
	Year  *int
}
