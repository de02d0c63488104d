package serviceImp

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/google/uuid"

	"taskdata/entities"
	"taskdata/pkg/merge"
	repo "taskdata/pkg/point/repository"
	"taskdata/pkg/point/service"
	"taskdata/pkg/tlg"
)

const exportBatch = 1000

type pointSvc struct{ r repo.PointRepository }

func NewPointService(r repo.PointRepository) service.PointService { return &pointSvc{r} }

func (s *pointSvc) Load(ix *merge.Index, runID uuid.UUID) (service.LoadStats, error) {
	var st service.LoadStats
	seen := map[string]bool{}
	for _, t := range ix.Tasks() {
		for _, l := range t.Logs {
			if seen[l.CompositeID] {
				continue
			}
			seen[l.CompositeID] = true
			st.Warnings += l.Warnings
			if l.Truncated {
				st.Truncated++
			}
			if l.Err != nil {
				st.Failed++
			}
			if len(l.Records) == 0 {
				continue
			}
			points := make([]entities.Point, 0, len(l.Records))
			for _, rec := range l.Records {
				points = append(points, toPoint(l.CompositeID, t.CompositeID, rec, runID))
			}
			if err := s.r.Replace([]string{l.CompositeID}, points); err != nil {
				return st, fmt.Errorf("store %s: %w", l.CompositeID, err)
			}
			st.Logs++
			st.Points += len(points)
		}
	}
	return st, nil
}

func toPoint(tlgID, taskID string, rec tlg.Record, runID uuid.UUID) entities.Point {
	p := entities.Point{
		CompositeTLGID: tlgID,
		TaskID:         taskID,
		TimeStamp:      rec.Timestamp(),
		Latitude:       rec.Latitude,
		Longitude:      rec.Longitude,
		Static:         rec.Static,
		Values:         make(map[string]float64, len(rec.Values)),
		ImportRunID:    runID,
	}
	if rec.GPSTime != nil {
		gps := rec.GPSTime.Format(tlg.TimeLayout)
		p.GPSTime = &gps
	}
	for name, v := range rec.Values {
		if v.Finite() {
			p.Values[name] = v.Float()
		}
	}
	return p
}

func (s *pointSvc) ByTLG(ids []string, limit int) ([]entities.Point, error) {
	if len(ids) == 0 {
		return nil, service.ErrNoTLGIDs
	}
	return s.r.ByTLG(ids, limit)
}

func (s *pointSvc) Summary() ([]entities.TLGSummary, error) { return s.r.Summary() }

func (s *pointSvc) ExportCSV(ids []string, path string) (int, error) {
	if len(ids) == 0 {
		return 0, service.ErrNoTLGIDs
	}
	// first pass collects the column set
	var gps bool
	static, values := map[string]bool{}, map[string]bool{}
	err := s.r.Each(ids, exportBatch, func(batch []entities.Point) error {
		for _, p := range batch {
			gps = gps || p.GPSTime != nil
			for k := range p.Static {
				static[k] = true
			}
			for k := range p.Values {
				values[k] = true
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	staticCols, valueCols := sortedKeys(static), sortedKeys(values)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"CompositeTLGID", "time_stamp", "latitude", "longitude"}
	header = append(header, staticCols...)
	if gps {
		header = append(header, "gps_time")
	}
	header = append(header, valueCols...)
	if err := w.Write(header); err != nil {
		return 0, err
	}

	n := 0
	err = s.r.Each(ids, exportBatch, func(batch []entities.Point) error {
		for _, p := range batch {
			row := []string{
				p.CompositeTLGID,
				p.TimeStamp,
				strconv.FormatFloat(p.Latitude, 'f', -1, 64),
				strconv.FormatFloat(p.Longitude, 'f', -1, 64),
			}
			for _, k := range staticCols {
				if v, ok := p.Static[k]; ok {
					row = append(row, strconv.FormatInt(int64(v), 10))
				} else {
					row = append(row, "")
				}
			}
			if gps {
				g := ""
				if p.GPSTime != nil {
					g = *p.GPSTime
				}
				row = append(row, g)
			}
			for _, k := range valueCols {
				if v, ok := p.Values[k]; ok {
					row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
				} else {
					row = append(row, "")
				}
			}
			if err := w.Write(row); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return n, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return n, fmt.Errorf("write %s: %w", path, err)
	}
	return n, f.Close()
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
