package merge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdata/pkg/catalog"
)

const docA = `<ISO11783_TaskData>
  <FRM A="FRM1" B="Hedegaard"/>
  <PFD A="PFD1" C="North" F="FRM1">
    <PLN><LSG><PNT C="55.0" D="12.0"/><PNT C="55.1" D="12.1"/><PNT C="55.0" D="12.0"/></LSG></PLN>
  </PFD>
  <PDT A="PDT1" B="Barley"/>
  <DVC A="DVC1" B="Combine"/>
  <TSK A="TSK1" E="PFD1"><DAN C="DVC1"/><PAN A="PDT1"/><TLG A="TLG00001"/><TIM A="2023-08-01T10:00:00"/></TSK>
  <TSK A="TSK2" E="PFD1"><TIM A="not a date"/></TSK>
  <TSK A="TSK3" E="PFD1"><TIM A="2021-04-01T10:00:00"/><TIM A="2020-12-31T23:00:00"/></TSK>
  <TSK A="TSK4"><TIM A="2023-01-01T00:00:00"/></TSK>
</ISO11783_TaskData>`

const docB = `<ISO11783_TaskData>
  <PFD A="PFD1" C="Other North">
    <PLN><LSG><PNT C="56.0" D="10.0"/><PNT C="56.1" D="10.1"/><PNT C="56.2" D="10.0"/></LSG></PLN>
  </PFD>
  <TSK A="TSK1" E="PFD1"><TIM A="2023-05-01T08:00:00Z"/></TSK>
</ISO11783_TaskData>`

func parse(t *testing.T, doc string) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return c
}

func TestMergeCompositeIDsStayDistinct(t *testing.T) {
	ix := Merge(
		Source{Tag: "TASKDATA", Catalog: parse(t, docA)},
		Source{Tag: "TASKDATA", Catalog: parse(t, docB)},
	)
	require.Len(t, ix.Sources(), 2)
	assert.Equal(t, "TASKDATA", ix.Sources()[0].Tag)
	assert.Equal(t, "TASKDATA (2)", ix.Sources()[1].Tag)

	require.Len(t, ix.Fields(), 2)
	a, ok := ix.Field("TASKDATA/PFD1")
	require.True(t, ok)
	b, ok := ix.Field("TASKDATA (2)/PFD1")
	require.True(t, ok)
	assert.NotEqual(t, a.CompositeID, b.CompositeID)
	assert.NotEqual(t, a.Geometry, b.Geometry)
	assert.Equal(t, "Hedegaard", a.FarmName)
	assert.Equal(t, catalog.UnknownFarm, b.FarmName)

	_, ok = ix.Task("TASKDATA (2)/TSK1")
	assert.True(t, ok)
	assert.Len(t, ix.Tasks(), 5)
}

func TestMergeYearBuckets(t *testing.T) {
	ix := Merge(Source{Tag: "A", Catalog: parse(t, docA)})

	assert.Equal(t, []Year{2020, 2023, UnknownYear}, ix.Years("A/PFD1"))
	byYear := ix.TasksByYear("A/PFD1")
	require.Len(t, byYear[UnknownYear], 1)
	assert.Equal(t, "TSK2", byYear[UnknownYear][0].LocalID)
	assert.Equal(t, "TSK3", byYear[2020][0].LocalID)

	require.Len(t, ix.Unassigned(), 1)
	assert.Equal(t, "TSK4", ix.Unassigned()[0].LocalID)
	assert.Equal(t, Year(2023), ix.Unassigned()[0].Year)
}

func TestMergeTaskDetails(t *testing.T) {
	ix := Merge(Source{Tag: "A", Catalog: parse(t, docA), Logs: map[string]TaskLog{
		"TLG00001": {LogID: "TLG00001", Warnings: 2},
	}})
	task, ok := ix.Task("A/TSK1")
	require.True(t, ok)
	assert.Equal(t, "Combine", task.Machine)
	assert.Equal(t, []string{"Barley"}, task.Crops)
	assert.Equal(t, "Barley", task.Crop())
	assert.Equal(t, "A/PFD1", task.FieldCompositeID)
	assert.Equal(t, "Hedegaard", task.FarmName)
	require.Len(t, task.Logs, 1)
	assert.Equal(t, "A/TLG00001", task.Logs[0].CompositeID)
	assert.Equal(t, 2, task.Logs[0].Warnings)
	assert.True(t, task.HasStart)

	other, _ := ix.Task("A/TSK2")
	assert.Equal(t, "Unknown", other.Crop())
	assert.Empty(t, other.Machine)
	assert.False(t, other.HasStart)
}

func TestSummaries(t *testing.T) {
	ix := Merge(Source{Tag: "A", Catalog: parse(t, docA)}, Source{Tag: "B", Catalog: parse(t, docB)})
	sums := ix.Summaries()
	require.Len(t, sums, 2)

	s := sums[0]
	assert.Equal(t, "A/PFD1", s.CompositeID)
	assert.Equal(t, "PFD1", s.FieldID)
	assert.Equal(t, "A", s.Folder)
	assert.Equal(t, 3, s.TotalTasks)
	assert.Equal(t, []Year{2020, 2023, UnknownYear}, s.Years)
	require.Len(t, s.TaskYears, 3)
	assert.Equal(t, YearSummary{Year: 2023, TaskCount: 1, TaskIDs: []string{"TSK1"}, Crops: []string{"Barley"}}, s.TaskYears[1])
	assert.Equal(t, UnknownYear, s.TaskYears[2].Year)

	assert.Equal(t, []Year{2023}, sums[1].Years)
}

func TestMergeSkipsNilCatalog(t *testing.T) {
	ix := Merge(Source{Tag: "X"}, Source{Tag: "X", Catalog: parse(t, docB)})
	require.Len(t, ix.Sources(), 1)
	assert.Equal(t, "X", ix.Sources()[0].Tag)
}

func TestYearString(t *testing.T) {
	assert.Equal(t, "Unknown", UnknownYear.String())
	assert.Equal(t, "2024", Year(2024).String())
	assert.Equal(t, []Year{1999, 2024, UnknownYear}, SortYears(map[Year]bool{UnknownYear: true, 2024: true, 1999: true}))
}
