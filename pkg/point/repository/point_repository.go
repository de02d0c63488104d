package repository

import "taskdata/entities"

type PointRepository interface {
	// Replace swaps every stored point of the given logs for points.
	Replace(tlgIDs []string, points []entities.Point) error
	// ByTLG returns points in log and time order; limit <= 0 means all.
	ByTLG(ids []string, limit int) ([]entities.Point, error)
	Summary() ([]entities.TLGSummary, error)
	// Each streams the points of ids to fn in batches of size.
	Each(ids []string, size int, fn func([]entities.Point) error) error
}
