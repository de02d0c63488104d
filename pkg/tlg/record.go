package tlg

import (
	"fmt"
	"time"

	"taskdata/pkg/catalog"
	"taskdata/pkg/ddi"
)

// TimeLayout is the whole-second timestamp format used by every sink.
const TimeLayout = "2006-01-02T15:04:05"

// DefaultEpoch is day zero of the binary time stamps.
var DefaultEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// Record is one decoded time-series row. It owns all its data.
type Record struct {
	Time      time.Time
	Latitude  float64
	Longitude float64
	// Static holds the logged position columns (up, status, pdop, hdop,
	// satellites); nil when none are declared.
	Static  map[string]int32
	GPSTime *time.Time
	// Values only holds the entries present in this record.
	Values map[string]ddi.Value
}

func (r Record) Timestamp() string { return r.Time.Format(TimeLayout) }

// Column is a bound value column of a decoder.
type Column struct {
	Name       string
	Unit       string
	DDI        catalog.DDI
	ElementRef string
	Known      bool
}

// Warning describes one skipped entry.
type Warning struct {
	Record int
	Offset int64
	Index  int
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("record %d (offset %d) index %d: %s", w.Record, w.Offset, w.Index, w.Reason)
}
