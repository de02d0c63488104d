package repository

import "taskdata/entities"

type FieldRepository interface {
	Upsert(fields []entities.Field) error
	List() ([]entities.Field, error)
	FindByCompositeID(id string) (*entities.Field, error)
}
