package catalog

import (
	"strings"
	"time"

	"taskdata/pkg/geometry"
)

const (
	UnknownFarm    = "Unknown Farm"
	UnknownProduct = "Unknown Product"
	UnknownMachine = "Unknown Machine"
)

type Farm struct {
	ID   string
	Name string
}

type Field struct {
	ID      string
	Name    string
	FarmRef string

	// Boundary is the raw PLN/LSG/PNT structure, kept for re-extraction.
	Boundary    []geometry.RawPolygon
	Geometry    geometry.Geometry
	HasGeometry bool
}

type Product struct {
	ID   string
	Name string
}

type DeviceElement struct {
	ID       string
	DeviceID string
	Name     string
}

// ProcessData is a DPD entry, scoped to its device.
type ProcessData struct {
	ID              string
	DDI             DDI
	Name            string
	PresentationRef string
}

// ValuePresentation is a DVP entry: value = (raw + Offset) * Scale, rounded to
// Decimals places.
type ValuePresentation struct {
	ID       string
	Offset   float64
	Scale    float64
	Decimals int
	Unit     string
}

type Device struct {
	ID            string
	Name          string
	Elements      []DeviceElement
	ProcessData   []ProcessData
	Presentations []ValuePresentation
}

// Presentation looks up a DVP of this device by id.
func (d Device) Presentation(id string) (ValuePresentation, bool) {
	for _, p := range d.Presentations {
		if p.ID == id {
			return p, true
		}
	}
	return ValuePresentation{}, false
}

// DataLogValue is a DLV entry. Inside a TIM it carries a task total.
type DataLogValue struct {
	DDI              DDI
	Value            int64
	DeviceElementRef string
}

type TimeWindow struct {
	Start  string
	End    string
	Totals []DataLogValue
}

func (w TimeWindow) StartTime() (time.Time, bool) { return ParseTime(w.Start) }
func (w TimeWindow) EndTime() (time.Time, bool)   { return ParseTime(w.End) }

type Task struct {
	ID          string
	Name        string
	CustomerRef string
	FarmRef     string
	FieldRef    string
	DeviceRefs  []string
	ProductRefs []string
	LogRefs     []string
	Windows     []TimeWindow
}

// DeviceRef returns the first allocated device, or "".
func (t Task) DeviceRef() string {
	if len(t.DeviceRefs) == 0 {
		return ""
	}
	return t.DeviceRefs[0]
}

// EarliestStart is the minimum parsable start across the task's windows.
func (t Task) EarliestStart() (time.Time, bool) {
	var out time.Time
	found := false
	for _, w := range t.Windows {
		if ts, ok := w.StartTime(); ok && (!found || ts.Before(out)) {
			out, found = ts, true
		}
	}
	return out, found
}

// LatestEnd is the maximum parsable end across the task's windows.
func (t Task) LatestEnd() (time.Time, bool) {
	var out time.Time
	found := false
	for _, w := range t.Windows {
		if ts, ok := w.EndTime(); ok && (!found || ts.After(out)) {
			out, found = ts, true
		}
	}
	return out, found
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime accepts the ISO 8601 variants seen in TIM@A and TIM@B. Values
// without a zone are read as UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
