package repository

import "taskdata/entities"

type Repo interface {
	Upsert(tasks []entities.Task) error
	FindByID(compositeID string) (*entities.Task, error)
	// List filters by composite field id and year when they are set.
	List(fieldCompositeID string, year *int) ([]entities.Task, error)
}
