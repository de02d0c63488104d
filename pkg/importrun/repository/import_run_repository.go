package repository

import (
	"github.com/google/uuid"

	"taskdata/entities"
)

type ImportRunRepository interface {
	Create(r *entities.ImportRun) error
	Save(r *entities.ImportRun) error
	FindByID(id uuid.UUID) (*entities.ImportRun, error)
	// Recent lists the newest runs first.
	Recent(limit int) ([]entities.ImportRun, error)
}
