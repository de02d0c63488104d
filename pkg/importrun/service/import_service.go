package service

import (
	"github.com/google/uuid"

	"taskdata/entities"
	"taskdata/pkg/merge"
)

const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

type ImportService interface {
	// Import stores fields, tasks and points of ix under a new import run.
	// The run is returned even when storing fails part way.
	Import(ix *merge.Index) (*entities.ImportRun, error)
	Run(id uuid.UUID) (*entities.ImportRun, error)
	Recent(limit int) ([]entities.ImportRun, error)
}
