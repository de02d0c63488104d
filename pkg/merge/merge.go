package merge

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"taskdata/pkg/catalog"
	"taskdata/pkg/geometry"
	"taskdata/pkg/tlg"
)

// Year buckets tasks by the calendar year of their earliest start.
type Year int

// UnknownYear holds tasks without a parsable start. It sorts last.
const UnknownYear Year = 0

func (y Year) Known() bool { return y != UnknownYear }

func (y Year) String() string {
	if !y.Known() {
		return "Unknown"
	}
	return strconv.Itoa(int(y))
}

// TaskLog is the decoded content of one binary log.
type TaskLog struct {
	LogID     string
	Columns   []tlg.Column
	Static    []string
	GPSTime   bool
	Records   []tlg.Record
	Warnings  int
	Truncated bool
	// Err is set when the log could not be decoded; Records may be partial.
	Err error
}

// Source is one loaded TaskData folder.
type Source struct {
	Tag     string
	Catalog *catalog.Catalog
	Logs    map[string]TaskLog
}

type FieldEntry struct {
	CompositeID string
	SourceTag   string
	LocalID     string
	Name        string
	FarmName    string
	Geometry    geometry.Geometry
	HasGeometry bool
	// Document is the path of the TaskData document the field came from.
	Document string
}

type LogEntry struct {
	CompositeID string
	TaskLog
}

type TaskEntry struct {
	CompositeID      string
	SourceTag        string
	LocalID          string
	Name             string
	FarmName         string
	FieldCompositeID string
	Year             Year
	Start            time.Time
	End              time.Time
	HasStart         bool
	HasEnd           bool
	Machine          string
	Crops            []string
	Logs             []LogEntry
	Task             catalog.Task
}

// Crop returns the first allocated product, or "Unknown".
func (t *TaskEntry) Crop() string {
	if len(t.Crops) == 0 {
		return "Unknown"
	}
	return t.Crops[0]
}

// Index is the cross-source aggregation keyed by composite ids.
type Index struct {
	sources    []Source
	fields     []*FieldEntry
	fieldIdx   map[string]*FieldEntry
	tasks      []*TaskEntry
	taskIdx    map[string]*TaskEntry
	byField    map[string]map[Year][]*TaskEntry
	unassigned []*TaskEntry
}

// CompositeID joins a source tag and a local id.
func CompositeID(tag, localID string) string { return tag + "/" + localID }

// Merge aggregates sources in order. Sources with a repeated tag are renamed
// "<tag> (2)", "<tag> (3)" and so on.
func Merge(sources ...Source) *Index {
	ix := &Index{
		fieldIdx: map[string]*FieldEntry{},
		taskIdx:  map[string]*TaskEntry{},
		byField:  map[string]map[Year][]*TaskEntry{},
	}
	used := map[string]bool{}
	for _, src := range sources {
		if src.Catalog == nil {
			continue
		}
		src.Tag = uniqueTag(src.Tag, used)
		ix.sources = append(ix.sources, src)
		ix.add(src)
	}
	return ix
}

func uniqueTag(tag string, used map[string]bool) string {
	if tag == "" {
		tag = "source"
	}
	out := tag
	for n := 2; used[out]; n++ {
		out = fmt.Sprintf("%s (%d)", tag, n)
	}
	used[out] = true
	return out
}

func (ix *Index) add(src Source) {
	cat := src.Catalog
	for _, f := range cat.Fields() {
		e := &FieldEntry{
			CompositeID: CompositeID(src.Tag, f.ID),
			SourceTag:   src.Tag,
			LocalID:     f.ID,
			Name:        f.Name,
			FarmName:    farmName(cat, f.FarmRef, ""),
			Geometry:    f.Geometry,
			HasGeometry: f.HasGeometry,
			Document:    cat.Path(),
		}
		ix.fields = append(ix.fields, e)
		ix.fieldIdx[e.CompositeID] = e
	}

	for _, t := range cat.Tasks() {
		e := &TaskEntry{
			CompositeID: CompositeID(src.Tag, t.ID),
			SourceTag:   src.Tag,
			LocalID:     t.ID,
			Name:        t.Name,
			Task:        t,
			Year:        UnknownYear,
		}
		if start, ok := t.EarliestStart(); ok {
			e.Start, e.HasStart = start, true
			e.Year = Year(start.Year())
		}
		e.End, e.HasEnd = t.LatestEnd()
		if d, ok := cat.Device(t.DeviceRef()); ok {
			e.Machine = d.Name
		}
		for _, ref := range t.ProductRefs {
			e.Crops = append(e.Crops, cat.ProductName(ref))
		}
		fieldRef := ""
		if t.FieldRef != "" {
			e.FieldCompositeID = CompositeID(src.Tag, t.FieldRef)
			if f, ok := cat.Field(t.FieldRef); ok {
				fieldRef = f.FarmRef
			}
		}
		e.FarmName = farmName(cat, fieldRef, t.FarmRef)
		for _, logID := range t.LogRefs {
			l, ok := src.Logs[logID]
			if !ok {
				l = TaskLog{LogID: logID}
			}
			e.Logs = append(e.Logs, LogEntry{CompositeID: CompositeID(src.Tag, logID), TaskLog: l})
		}

		ix.tasks = append(ix.tasks, e)
		ix.taskIdx[e.CompositeID] = e
		if e.FieldCompositeID == "" {
			ix.unassigned = append(ix.unassigned, e)
			continue
		}
		years := ix.byField[e.FieldCompositeID]
		if years == nil {
			years = map[Year][]*TaskEntry{}
			ix.byField[e.FieldCompositeID] = years
		}
		years[e.Year] = append(years[e.Year], e)
	}
}

// farmName prefers the field's farm, then the task's, then the only farm of
// the document.
func farmName(cat *catalog.Catalog, refs ...string) string {
	for _, ref := range refs {
		if f, ok := cat.Farm(ref); ok {
			return f.Name
		}
	}
	if farms := cat.Farms(); len(farms) == 1 {
		return farms[0].Name
	}
	return catalog.UnknownFarm
}

// Sources returns the merged sources with their final tags.
func (ix *Index) Sources() []Source { return ix.sources }

func (ix *Index) Fields() []*FieldEntry { return ix.fields }

func (ix *Index) Field(compositeID string) (*FieldEntry, bool) {
	f, ok := ix.fieldIdx[compositeID]
	return f, ok
}

func (ix *Index) Tasks() []*TaskEntry { return ix.tasks }

func (ix *Index) Task(compositeID string) (*TaskEntry, bool) {
	t, ok := ix.taskIdx[compositeID]
	return t, ok
}

// Unassigned lists tasks that reference no field.
func (ix *Index) Unassigned() []*TaskEntry { return ix.unassigned }

// TasksByYear returns the tasks of a composite field grouped by year.
func (ix *Index) TasksByYear(fieldCompositeID string) map[Year][]*TaskEntry {
	return ix.byField[fieldCompositeID]
}

// Years returns the buckets of a field: known years ascending, unknown last.
func (ix *Index) Years(fieldCompositeID string) []Year {
	return SortYears(ix.byField[fieldCompositeID])
}

func SortYears[V any](m map[Year]V) []Year {
	out := make([]Year, 0, len(m))
	for y := range m {
		out = append(out, y)
	}
	slices.SortFunc(out, compareYears)
	return out
}

func compareYears(a, b Year) int {
	switch {
	case a == b:
		return 0
	case !a.Known():
		return 1
	case !b.Known():
		return -1
	case a < b:
		return -1
	default:
		return 1
	}
}
