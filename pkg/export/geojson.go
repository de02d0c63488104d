package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"taskdata/pkg/merge"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature keeps geometry and properties as raw JSON so features read from an
// existing file are written back unchanged.
type Feature struct {
	Type       string          `json:"type"`
	Properties json.RawMessage `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

type TaskYear struct {
	// Year is null for the unknown bucket.
	Year      *int     `json:"Year"`
	TaskCount int      `json:"TaskCount"`
	TaskIDs   []string `json:"TaskIDs"`
	Crops     []string `json:"Crops"`
}

type FieldProperties struct {
	CompositeID string     `json:"CompositeID"`
	FieldID     string     `json:"FieldID"`
	Folder      string     `json:"Folder"`
	FieldName   string     `json:"FieldName"`
	Years       *string    `json:"Years"`
	YearList    []int      `json:"YearList"`
	TaskYears   []TaskYear `json:"TaskYears"`
	TotalTasks  int        `json:"TotalTasks"`
	Source      string     `json:"Source"`
}

// Properties renders the feature properties of one field summary.
func Properties(s merge.FieldSummary) FieldProperties {
	props := FieldProperties{
		CompositeID: s.CompositeID,
		FieldID:     s.FieldID,
		Folder:      s.Folder,
		FieldName:   s.Name,
		YearList:    []int{},
		TaskYears:   []TaskYear{},
		TotalTasks:  s.TotalTasks,
		Source:      s.Source,
	}
	var years []string
	for _, ty := range s.TaskYears {
		row := TaskYear{TaskCount: ty.TaskCount, TaskIDs: ty.TaskIDs, Crops: ty.Crops}
		if ty.Year.Known() {
			y := int(ty.Year)
			row.Year = &y
			props.YearList = append(props.YearList, y)
			years = append(years, ty.Year.String())
		}
		props.TaskYears = append(props.TaskYears, row)
	}
	if len(years) > 0 {
		joined := strings.Join(years, ", ")
		props.Years = &joined
	}
	return props
}

// FieldFeatures builds one feature per field that has geometry.
func FieldFeatures(ix *merge.Index) ([]Feature, error) {
	var out []Feature
	for _, s := range ix.Summaries() {
		if !s.HasGeometry {
			continue
		}
		p, err := json.Marshal(Properties(s))
		if err != nil {
			return nil, err
		}
		g, err := json.Marshal(s.Geometry)
		if err != nil {
			return nil, err
		}
		out = append(out, Feature{Type: "Feature", Properties: p, Geometry: g})
	}
	return out, nil
}

// WriteFieldsGeoJSON writes the field features of ix to path. With
// appendExisting, features already in a FeatureCollection at path are kept
// ahead of the new ones. It returns the number of features written from ix.
func WriteFieldsGeoJSON(ix *merge.Index, path string, appendExisting bool) (int, error) {
	features, err := FieldFeatures(ix)
	if err != nil {
		return 0, err
	}
	fc := FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
	if appendExisting {
		existing, err := ReadFeatureCollection(path)
		switch {
		case err == nil:
			fc.Features = append(fc.Features, existing.Features...)
		case errors.Is(err, os.ErrNotExist):
		default:
			return 0, err
		}
	}
	fc.Features = append(fc.Features, features...)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	b, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	return len(features), nil
}

func ReadFeatureCollection(path string) (*FeatureCollection, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc FeatureCollection
	if err := json.Unmarshal(b, &fc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("parse %s: not a FeatureCollection (%q)", path, fc.Type)
	}
	return &fc, nil
}
