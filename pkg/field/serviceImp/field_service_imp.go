package serviceImp

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"taskdata/entities"
	"taskdata/pkg/export"
	repo "taskdata/pkg/field/repository"
	"taskdata/pkg/field/service"
	"taskdata/pkg/merge"
)

type fieldSvc struct{ r repo.FieldRepository }

func NewFieldService(r repo.FieldRepository) service.FieldService { return &fieldSvc{r} }

func (s *fieldSvc) Save(ix *merge.Index, runID uuid.UUID) (int, error) {
	var rows []entities.Field
	for _, sum := range ix.Summaries() {
		props, err := json.Marshal(export.Properties(sum))
		if err != nil {
			return 0, fmt.Errorf("field %s: %w", sum.CompositeID, err)
		}
		row := entities.Field{
			CompositeID: sum.CompositeID,
			SourceTag:   sum.Folder,
			FieldID:     sum.FieldID,
			Name:        sum.Name,
			Document:    sum.Source,
			Properties:  string(props),
			Years:       []int{},
			TotalTasks:  sum.TotalTasks,
			ImportRunID: runID,
		}
		if f, ok := ix.Field(sum.CompositeID); ok {
			row.FarmName = f.FarmName
		}
		if sum.HasGeometry {
			g, err := json.Marshal(sum.Geometry)
			if err != nil {
				return 0, fmt.Errorf("field %s: %w", sum.CompositeID, err)
			}
			row.Geometry = string(g)
		}
		for _, y := range sum.Years {
			if y.Known() {
				row.Years = append(row.Years, int(y))
			}
		}
		rows = append(rows, row)
	}
	if err := s.r.Upsert(rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *fieldSvc) ListFields() ([]entities.Field, error) { return s.r.List() }

func (s *fieldSvc) GetField(compositeID string) (*entities.Field, error) {
	return s.r.FindByCompositeID(compositeID)
}

func (s *fieldSvc) FeatureCollection() (*export.FeatureCollection, error) {
	fields, err := s.r.List()
	if err != nil {
		return nil, err
	}
	fc := &export.FeatureCollection{Type: "FeatureCollection", Features: []export.Feature{}}
	for _, f := range fields {
		if !f.HasGeometry() {
			continue
		}
		fc.Features = append(fc.Features, feature(f))
	}
	return fc, nil
}

func (s *fieldSvc) Feature(compositeID string) (*export.Feature, error) {
	f, err := s.r.FindByCompositeID(compositeID)
	if err != nil {
		return nil, err
	}
	out := feature(*f)
	return &out, nil
}

func feature(f entities.Field) export.Feature {
	geom := json.RawMessage("null")
	if f.HasGeometry() {
		geom = json.RawMessage(f.Geometry)
	}
	props := json.RawMessage("{}")
	if f.Properties != "" {
		props = json.RawMessage(f.Properties)
	}
	return export.Feature{Type: "Feature", Properties: props, Geometry: geom}
}
