package repositoryImp

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskdata/entities"
	"taskdata/pkg/importrun/repository"
)

type importRunRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.ImportRunRepository { return &importRunRepo{db} }

func (r *importRunRepo) Create(run *entities.ImportRun) error { return r.db.Create(run).Error }

func (r *importRunRepo) Save(run *entities.ImportRun) error { return r.db.Save(run).Error }

func (r *importRunRepo) FindByID(id uuid.UUID) (*entities.ImportRun, error) {
	var run entities.ImportRun
	if err := r.db.Where("id = ?", id).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *importRunRepo) Recent(limit int) ([]entities.ImportRun, error) {
	q := r.db.Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []entities.ImportRun
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
