package serviceImp

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdata/database/dbtest"
	"taskdata/pkg/merge"
	"taskdata/pkg/merge/mergetest"
	"taskdata/pkg/point/repositoryImp"
	"taskdata/pkg/point/service"
)

func newSvc(t *testing.T) service.PointService {
	t.Helper()
	return NewPointService(repositoryImp.New(dbtest.Open(t)))
}

func TestLoad(t *testing.T) {
	s := newSvc(t)
	st, err := s.Load(mergetest.Index(t), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, service.LoadStats{Logs: 1, Points: 3}, st)

	pts, err := s.ByTLG([]string{"A/TLG00001"}, 0)
	require.NoError(t, err)
	require.Len(t, pts, 3)
	assert.Equal(t, "2023-08-01T10:00:00", pts[0].TimeStamp)
	assert.Equal(t, "A/TSK1", pts[0].TaskID)
	assert.InDelta(t, 55.001, pts[1].Latitude, 1e-9)
	assert.Equal(t, map[string]float64{"Yield": 30}, pts[2].Values)
	assert.Equal(t, map[string]int32{"satellites": 9}, pts[2].Static)
	assert.Nil(t, pts[0].GPSTime)

	limited, err := s.ByTLG([]string{"A/TLG00001"}, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestLoadReplacesPreviousPoints(t *testing.T) {
	s := newSvc(t)
	ix := mergetest.Index(t)
	_, err := s.Load(ix, uuid.New())
	require.NoError(t, err)
	_, err = s.Load(ix, uuid.New())
	require.NoError(t, err)

	sum, err := s.Summary()
	require.NoError(t, err)
	require.Len(t, sum, 1)
	assert.Equal(t, "A/TLG00001", sum[0].CompositeTLGID)
	assert.EqualValues(t, 3, sum[0].PointCount)
	assert.Equal(t, "2023-08-01T10:00:00", sum[0].FirstPoint)
	assert.Equal(t, "2023-08-01T10:00:02", sum[0].LastPoint)
}

func TestLoadCountsLogOutcomes(t *testing.T) {
	bad := mergetest.Log("TLG00001", 1)
	bad.Truncated = true
	bad.Warnings = 2
	failed := merge.TaskLog{LogID: "TLG00001", Err: errors.New("boom")}

	for name, l := range map[string]merge.TaskLog{"truncated": bad, "failed": failed} {
		t.Run(name, func(t *testing.T) {
			ix := merge.Merge(merge.Source{Tag: "A", Catalog: mergetest.Index(t).Sources()[0].Catalog, Logs: map[string]merge.TaskLog{"TLG00001": l}})
			st, err := newSvc(t).Load(ix, uuid.New())
			require.NoError(t, err)
			if name == "truncated" {
				assert.Equal(t, service.LoadStats{Logs: 1, Points: 1, Warnings: 2, Truncated: 1}, st)
			} else {
				assert.Equal(t, service.LoadStats{Failed: 1}, st)
			}
		})
	}
}

func TestEmptyIDs(t *testing.T) {
	s := newSvc(t)
	_, err := s.ByTLG(nil, 10)
	assert.ErrorIs(t, err, service.ErrNoTLGIDs)
	_, err = s.ExportCSV([]string{}, filepath.Join(t.TempDir(), "x.csv"))
	assert.ErrorIs(t, err, service.ErrNoTLGIDs)
}

func TestExportCSV(t *testing.T) {
	s := newSvc(t)
	_, err := s.Load(mergetest.Index(t), uuid.New())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "points.csv")
	n, err := s.ExportCSV([]string{"A/TLG00001", "B/TLG404"}, path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"CompositeTLGID", "time_stamp", "latitude", "longitude", "satellites", "Yield"}, rows[0])
	assert.Equal(t, []string{"A/TLG00001", "2023-08-01T10:00:00", "55", "12", "9", "10"}, rows[1])
}
