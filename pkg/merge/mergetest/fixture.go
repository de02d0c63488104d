// Package mergetest builds small merged indexes for store and API tests.
package mergetest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taskdata/pkg/catalog"
	"taskdata/pkg/ddi"
	"taskdata/pkg/merge"
	"taskdata/pkg/tlg"
)

const DocA = `<ISO11783_TaskData>
  <FRM A="FRM1" B="Hedegaard"/>
  <PFD A="PFD1" C="North" F="FRM1">
    <PLN><LSG><PNT C="55.0" D="12.0"/><PNT C="55.1" D="12.1"/><PNT C="55.0" D="12.2"/></LSG></PLN>
  </PFD>
  <PDT A="PDT1" B="Barley"/>
  <DVC A="DVC1" B="Combine"/>
  <TSK A="TSK1" B="Harvest" E="PFD1"><DAN C="DVC1"/><PAN A="PDT1"/><TLG A="TLG00001"/>
    <TIM A="2023-08-01T10:00:00" B="2023-08-01T12:00:00"/>
  </TSK>
  <TSK A="TSK2" E="PFD1"><TIM A="2022-04-01T09:00:00"/></TSK>
</ISO11783_TaskData>`

const DocB = `<ISO11783_TaskData>
  <PFD A="PFD7" C="No Boundary"/>
  <TSK A="TSK9" E="PFD7"/>
  <TSK A="TSK10"/>
</ISO11783_TaskData>`

// Start is the time of the first fixture record.
var Start = time.Date(2023, 8, 1, 10, 0, 0, 0, time.UTC)

// Log returns a decoded log of n records one second apart with a "Yield"
// column.
func Log(logID string, n int) merge.TaskLog {
	l := merge.TaskLog{
		LogID:   logID,
		Columns: []tlg.Column{{Name: "Yield", Unit: "kg", DDI: 0x0054, Known: true}},
		Static:  []string{"satellites"},
	}
	for i := 0; i < n; i++ {
		l.Records = append(l.Records, tlg.Record{
			Time:      Start.Add(time.Duration(i) * time.Second),
			Latitude:  55.0 + float64(i)/1000,
			Longitude: 12.0,
			Static:    map[string]int32{"satellites": 9},
			Values: map[string]ddi.Value{
				"Yield": {Raw: int64(100 * (i + 1)), Scaled: float64(10 * (i + 1)), IsScaled: true},
			},
		})
	}
	return l
}

func parse(t testing.TB, doc string) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return c
}

// Index merges DocA (tag "A", TLG00001 with three records) and DocB
// (tag "B", no logs).
func Index(t testing.TB) *merge.Index {
	t.Helper()
	return merge.Merge(
		merge.Source{Tag: "A", Catalog: parse(t, DocA), Logs: map[string]merge.TaskLog{"TLG00001": Log("TLG00001", 3)}},
		merge.Source{Tag: "B", Catalog: parse(t, DocB)},
	)
}
