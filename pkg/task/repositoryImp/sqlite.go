package repositoryImp

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskdata/entities"
	"taskdata/pkg/task/repository"
)

type sqliteRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.Repo { return &sqliteRepo{db: db} }

func (r *sqliteRepo) Upsert(tasks []entities.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "composite_id"}},
		UpdateAll: true,
	}).Create(&tasks).Error
}

func (r *sqliteRepo) FindByID(compositeID string) (*entities.Task, error) {
	var out entities.Task
	if err := r.db.Where("composite_id = ?", compositeID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *sqliteRepo) List(fieldCompositeID string, year *int) ([]entities.Task, error) {
	q := r.db.Model(&entities.Task{})
	if fieldCompositeID != "" {
		q = q.Where("field_composite_id = ?", fieldCompositeID)
	}
	if year != nil {
		q = q.Where("year = ?", *year)
	}
	var list []entities.Task
	// unknown years (0) sort after every known year
	return list, q.Order("year = 0 ASC, year ASC, start ASC, composite_id ASC").Find(&list).Error
}
