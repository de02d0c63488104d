package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdata/pkg/catalog"
	"taskdata/pkg/ddi"
	"taskdata/pkg/merge"
	"taskdata/pkg/tlg"
)

const doc = `<TaskData>
  <PDT A="P1" B="Wheat"/>
  <PFD A="F2" C="Field 1">
    <PLN><LSG><PNT C="55.0" D="12.0"/><PNT C="55.1" D="12.1"/><PNT C="55.0" D="12.0"/></LSG></PLN>
  </PFD>
  <PFD A="F3" C="No shape"/>
  <TSK A="T1" E="F2"><TLG A="log1"/><TIM A="2021-01-01T00:00:00Z"/><PAN A="P1"/></TSK>
  <TSK A="T2" E="F2"/>
</TaskData>`

func index(t *testing.T, logs map[string]merge.TaskLog) *merge.Index {
	t.Helper()
	c, err := catalog.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return merge.Merge(merge.Source{Tag: "TaskData", Catalog: c, Logs: logs})
}

func TestWriteFieldsGeoJSONAppends(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.geojson")
	initial := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"TaskID":"existing"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[0,0]]]}}]}`
	require.NoError(t, os.WriteFile(out, []byte(initial), 0o644))

	n, err := WriteFieldsGeoJSON(index(t, nil), out, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	fc, err := ReadFeatureCollection(out)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.JSONEq(t, `{"TaskID":"existing"}`, string(fc.Features[0].Properties))

	var props map[string]any
	require.NoError(t, json.Unmarshal(fc.Features[1].Properties, &props))
	assert.Equal(t, "TaskData/F2", props["CompositeID"])
	assert.Equal(t, "Field 1", props["FieldName"])
	assert.Equal(t, "2021", props["Years"])
	assert.Equal(t, []any{2021.0}, props["YearList"])
	assert.Equal(t, 2.0, props["TotalTasks"])
	taskYears := props["TaskYears"].([]any)
	require.Len(t, taskYears, 2)
	assert.Nil(t, taskYears[1].(map[string]any)["Year"])
	assert.Equal(t, []any{"Wheat"}, taskYears[0].(map[string]any)["Crops"])

	var geom map[string]any
	require.NoError(t, json.Unmarshal(fc.Features[1].Geometry, &geom))
	assert.Equal(t, "Polygon", geom["type"])
}

func TestWriteFieldsGeoJSONOverwrite(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "fields.geojson")
	_, err := WriteFieldsGeoJSON(index(t, nil), out, true)
	require.NoError(t, err)
	_, err = WriteFieldsGeoJSON(index(t, nil), out, false)
	require.NoError(t, err)

	fc, err := ReadFeatureCollection(out)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)
}

func TestWriteFieldsGeoJSONRejectsForeignFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bad.geojson")
	require.NoError(t, os.WriteFile(out, []byte(`{"type":"Feature"}`), 0o644))
	_, err := WriteFieldsGeoJSON(index(t, nil), out, true)
	assert.Error(t, err)
}

func sampleLog() merge.TaskLog {
	ts := time.Date(2021, 1, 1, 10, 0, 0, 0, time.UTC)
	return merge.TaskLog{
		LogID:   "log1",
		Static:  []string{"status"},
		Columns: []tlg.Column{{Name: "Speed"}, {Name: "Fugtighed", Unit: "%"}},
		Records: []tlg.Record{
			{Time: ts, Latitude: 55.5, Longitude: 12.25, Static: map[string]int32{"status": 4},
				Values: map[string]ddi.Value{"Speed": {Raw: 12, Scaled: 12}, "Fugtighed": {Raw: 12345, Scaled: 1.2345, IsScaled: true}}},
			{Time: ts.Add(time.Second), Latitude: 55.6, Longitude: 12.26, Static: map[string]int32{"status": 4},
				Values: map[string]ddi.Value{"Speed": {Raw: 13, Scaled: 13}}},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteTaskCSVAppends(t *testing.T) {
	dir := t.TempDir()
	e := merge.LogEntry{CompositeID: "TaskData/log1", TaskLog: sampleLog()}

	p, err := WriteTaskCSV(dir, "TaskData", e)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "TaskData-log1.csv"), p)

	rows := readCSV(t, p)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"CompositeTLGID", "time_stamp", "latitude", "longitude", "status", "Speed", "Fugtighed"}, rows[0])
	assert.Equal(t, []string{"TaskData/log1", "2021-01-01T10:00:00", "55.5", "12.25", "4", "12", "1.2345"}, rows[1])
	assert.Equal(t, "", rows[2][6])

	_, err = WriteTaskCSV(dir, "TaskData", e)
	require.NoError(t, err)
	rows = readCSV(t, p)
	assert.Len(t, rows, 5)
	assert.Equal(t, "TaskData/log1", rows[3][0])
}

func TestWriteIndexCSV(t *testing.T) {
	ix := index(t, map[string]merge.TaskLog{"log1": sampleLog()})
	written, err := WriteIndexCSV(ix, t.TempDir())
	require.NoError(t, err)
	require.Len(t, written, 1)
	assert.Equal(t, "TaskData-log1.csv", filepath.Base(written[0]))
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "TASKDATA _2_-TLG00001", SafeName("TASKDATA (2)-TLG00001"))
	assert.Equal(t, "a_b_c", SafeName("a/b:c"))
	assert.Equal(t, "Gård", SafeName(" Gård "))
}
