package repositoryImp

import (
	"gorm.io/gorm"

	"taskdata/entities"
	"taskdata/pkg/point/repository"
)

const batchSize = 500

type pointRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.PointRepository { return &pointRepo{db} }

func (r *pointRepo) Replace(tlgIDs []string, points []entities.Point) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(tlgIDs) > 0 {
			if err := tx.Where("composite_tlg_id IN ?", tlgIDs).Delete(&entities.Point{}).Error; err != nil {
				return err
			}
		}
		if len(points) == 0 {
			return nil
		}
		return tx.CreateInBatches(points, batchSize).Error
	})
}

func (r *pointRepo) ByTLG(ids []string, limit int) ([]entities.Point, error) {
	q := r.db.Where("composite_tlg_id IN ?", ids).Order("composite_tlg_id ASC, time_stamp ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []entities.Point
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *pointRepo) Summary() ([]entities.TLGSummary, error) {
	var out []entities.TLGSummary
	err := r.db.Model(&entities.Point{}).
		Select("composite_tlg_id, COUNT(*) AS point_count, MIN(time_stamp) AS first_point, MAX(time_stamp) AS last_point").
		Group("composite_tlg_id").
		Order("composite_tlg_id ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *pointRepo) Each(ids []string, size int, fn func([]entities.Point) error) error {
	var batch []entities.Point
	return r.db.Where("composite_tlg_id IN ?", ids).
		FindInBatches(&batch, size, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		}).Error
}
