package serviceImp

import (
	"github.com/google/uuid"

	"taskdata/entities"
	"taskdata/pkg/merge"
	"taskdata/pkg/task/repository"
	svc "taskdata/pkg/task/service"
)

type service struct{ repo repository.Repo }

func New(r repository.Repo) svc.Service { return &service{repo: r} }

func (s *service) Save(ix *merge.Index, runID uuid.UUID) (int, error) {
	rows := make([]entities.Task, 0, len(ix.Tasks()))
	for _, t := range ix.Tasks() {
		row := entities.Task{
			CompositeID:      t.CompositeID,
			SourceTag:        t.SourceTag,
			TaskID:           t.LocalID,
			Name:             t.Name,
			FarmName:         t.FarmName,
			FieldCompositeID: t.FieldCompositeID,
			Year:             int(t.Year),
			Machine:          t.Machine,
			Crops:            append([]string{}, t.Crops...),
			TLGIDs:           []string{},
			ImportRunID:      runID,
		}
		if t.HasStart {
			start := t.Start
			row.Start = &start
		}
		if t.HasEnd {
			end := t.End
			row.End = &end
		}
		for _, l := range t.Logs {
			row.TLGIDs = append(row.TLGIDs, l.CompositeID)
		}
		rows = append(rows, row)
	}
	if err := s.repo.Upsert(rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *service) Get(compositeID string) (*entities.Task, error) {
	return s.repo.FindByID(compositeID)
}

func (s *service) List(f svc.Filter) ([]entities.Task, error) {
	return s.repo.List(f.Field, f.Year)
}
