package merge

import (
	"taskdata/pkg/geometry"
)

type YearSummary struct {
	Year      Year
	TaskCount int
	TaskIDs   []string
	Crops     []string
}

type FieldSummary struct {
	CompositeID string
	FieldID     string
	Folder      string
	Name        string
	Geometry    geometry.Geometry
	HasGeometry bool
	Years       []Year
	TaskYears   []YearSummary
	TotalTasks  int
	Source      string
}

// Summaries describes every field in merge order.
func (ix *Index) Summaries() []FieldSummary {
	out := make([]FieldSummary, 0, len(ix.fields))
	for _, f := range ix.fields {
		s := FieldSummary{
			CompositeID: f.CompositeID,
			FieldID:     f.LocalID,
			Folder:      f.SourceTag,
			Name:        f.Name,
			Geometry:    f.Geometry,
			HasGeometry: f.HasGeometry,
			Source:      f.Document,
		}
		byYear := ix.byField[f.CompositeID]
		s.Years = SortYears(byYear)
		for _, y := range s.Years {
			ys := YearSummary{Year: y}
			seen := map[string]bool{}
			for _, t := range byYear[y] {
				ys.TaskCount++
				ys.TaskIDs = append(ys.TaskIDs, t.LocalID)
				if c := t.Crop(); !seen[c] {
					seen[c] = true
					ys.Crops = append(ys.Crops, c)
				}
			}
			s.TotalTasks += ys.TaskCount
			s.TaskYears = append(s.TaskYears, ys)
		}
		out = append(out, s)
	}
	return out
}
