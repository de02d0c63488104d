package service

import (
	"github.com/google/uuid"

	"taskdata/entities"
	"taskdata/pkg/export"
	"taskdata/pkg/merge"
)

type FieldService interface {
	// Save upserts every field of ix and returns the number written.
	Save(ix *merge.Index, runID uuid.UUID) (int, error)
	ListFields() ([]entities.Field, error)
	GetField(compositeID string) (*entities.Field, error)
	// FeatureCollection returns the stored fields that have a boundary.
	FeatureCollection() (*export.FeatureCollection, error)
	Feature(compositeID string) (*export.Feature, error)
}
