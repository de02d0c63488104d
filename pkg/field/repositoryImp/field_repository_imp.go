package repositoryImp

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskdata/entities"
	"taskdata/pkg/field/repository"
)

type fieldRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.FieldRepository { return &fieldRepo{db} }

func (r *fieldRepo) Upsert(fields []entities.Field) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "composite_id"}},
		UpdateAll: true,
	}).Create(&fields).Error
}

func (r *fieldRepo) List() ([]entities.Field, error) {
	var out []entities.Field
	if err := r.db.Order("source_tag ASC, field_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *fieldRepo) FindByCompositeID(id string) (*entities.Field, error) {
	var f entities.Field
	if err := r.db.Where("composite_id = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}
