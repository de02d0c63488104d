package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdata/pkg/catalog"
	"taskdata/pkg/merge"
	"taskdata/pkg/metrics"
	"taskdata/pkg/tlg"
	"taskdata/pkg/tlg/tlgtest"
)

const doc = `<ISO11783_TaskData>
  <PFD A="PFD1" C="North">
    <PLN><LSG><PNT C="55.0" D="12.0"/><PNT C="55.1" D="12.1"/><PNT C="55.0" D="12.0"/></LSG></PLN>
  </PFD>
  <DVC A="DVC1" B="Combine">
    <DET A="DET1"/>
    <DPD A="1" B="0084" E="Speed"/>
  </DVC>
  <TSK A="TSK1" E="PFD1">
    <DAN C="DVC1"/>
    <TLG A="TLG00001"/>
    <TLG A="TLG00002"/>
    <TIM A="2023-08-01T10:00:00"/>
  </TSK>
  <TSK A="TSK2" E="PFD1"><TLG A="TLG00001"/></TSK>
</ISO11783_TaskData>`

func folder(t *testing.T, name string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "TASKDATA.XML"), []byte(doc), 0o644))
	data := tlgtest.Encode(
		tlgtest.Record{Ms: 1000, Lat: 550000000, Lon: 120000000, Entries: []tlgtest.Entry{{Index: 0, Value: 7}}},
		tlgtest.Record{Ms: 2000, Lat: 550000001, Lon: 120000001, Entries: []tlgtest.Entry{{Index: 3, Value: 7}}},
	)
	// trailing partial record
	data = append(data, 1, 2, 3)
	tlgtest.WriteLog(t, dir, "TLG00001", tlgtest.Header("AB", tlgtest.DLV{DDI: "0084", Element: "DET-missing"}), data)
	return dir
}

func TestLoadSource(t *testing.T) {
	dir := folder(t, "TASKDATA")
	src, err := LoadSource(context.Background(), dir, "TASKDATA", Options{Workers: 2, Backend: tlg.StreamBackend{}})
	require.NoError(t, err)
	assert.Equal(t, "TASKDATA", src.Tag)
	require.Len(t, src.Logs, 2)

	l := src.Logs["TLG00001"]
	require.NoError(t, l.Err)
	require.Len(t, l.Records, 2)
	// unknown element falls back to the task's device
	assert.Equal(t, "Speed", l.Columns[0].Name)
	assert.Equal(t, int64(7), l.Records[0].Values["Speed"].Raw)
	assert.Equal(t, 1, l.Warnings)
	assert.True(t, l.Truncated)

	missing := src.Logs["TLG00002"]
	assert.ErrorIs(t, missing.Err, tlg.ErrMissingSchema)
	assert.Empty(t, missing.Records)
}

func TestRunSkipsBadFolders(t *testing.T) {
	good := folder(t, "TASKDATA")
	m := metrics.New()
	srcs, err := Run(context.Background(), []string{filepath.Join(t.TempDir(), "gone"), good}, Options{Metrics: m})
	require.NoError(t, err)
	require.Len(t, srcs, 1)

	ix := merge.Merge(srcs...)
	task, ok := ix.Task("TASKDATA/TSK1")
	require.True(t, ok)
	require.Len(t, task.Logs, 2)
	assert.Len(t, task.Logs[0].Records, 2)
	assert.Equal(t, "TASKDATA/TLG00001", task.Logs[0].CompositeID)
}

func TestRunAllFail(t *testing.T) {
	_, err := Run(context.Background(), []string{filepath.Join(t.TempDir(), "gone")}, Options{})
	assert.ErrorIs(t, err, ErrNoSources)
	assert.ErrorIs(t, err, catalog.ErrMissingRequiredFile)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srcs, err := Run(ctx, []string{folder(t, "A")}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, srcs)
}

func TestSkipLogs(t *testing.T) {
	src, err := LoadSource(context.Background(), folder(t, "A"), "A", Options{SkipLogs: true})
	require.NoError(t, err)
	assert.Empty(t, src.Logs)
	assert.Len(t, src.Catalog.Tasks(), 2)
}

func TestTag(t *testing.T) {
	assert.Equal(t, "TASKDATA", Tag("/data/farm/TASKDATA/"))
}
