// Package report summarises a TaskData document per farm, year and field,
// including the task totals recorded in TIM elements.
package report

import (
	"slices"
	"strconv"
	"strings"

	"taskdata/pkg/catalog"
	"taskdata/pkg/ddi"
)

const (
	GenericMachine = "Generic Machine"
	NoCrop         = "None"
	UnknownYear    = "Unknown Year"
	UnknownTime    = "Unknown"
	timeLayout     = "2006-01-02 15:04:05"
)

// fallbackUnits label totals whose DPD has no presentation.
var fallbackUnits = map[catalog.DDI]string{
	0x0074: "m²",
	0x005A: "kg",
}

type Property struct {
	Name  string
	Value ddi.Value
	Unit  string
}

// String renders "Name: value unit"; scaled values get two decimals and
// thousands separators.
func (p Property) String() string {
	return strings.TrimRight(p.Name+": "+p.FormatValue()+" "+p.Unit, " ")
}

func (p Property) FormatValue() string {
	if !p.Value.IsScaled {
		return strconv.FormatInt(p.Value.Raw, 10)
	}
	return groupThousands(strconv.FormatFloat(p.Value.Scaled, 'f', 2, 64))
}

type Task struct {
	Farm       string
	Year       string
	Field      string
	TaskID     string
	Machine    string
	Crop       string
	Start      string
	End        string
	TLGs       []string
	Properties []Property
}

func (t Task) TimeRange() string { return t.Start + " - " + t.End }

type Field struct {
	Name  string
	Tasks []Task
}

type Year struct {
	Year   string
	Fields []Field
}

type Farm struct {
	Name  string
	Years []Year
}

type Report struct {
	Farms []Farm
}

// Build groups the tasks of cat. Farms keep first-seen order, years and
// field names are sorted, tasks keep document order.
func Build(cat *catalog.Catalog, res *ddi.Resolver) Report {
	var farmOrder []string
	grouped := map[string]map[string]map[string][]Task{}

	for _, t := range cat.Tasks() {
		row := buildTask(cat, res, t)
		years := grouped[row.Farm]
		if years == nil {
			years = map[string]map[string][]Task{}
			grouped[row.Farm] = years
			farmOrder = append(farmOrder, row.Farm)
		}
		fields := years[row.Year]
		if fields == nil {
			fields = map[string][]Task{}
			years[row.Year] = fields
		}
		fields[row.Field] = append(fields[row.Field], row)
	}

	var r Report
	for _, farm := range farmOrder {
		f := Farm{Name: farm}
		for _, y := range sortedKeys(grouped[farm]) {
			yr := Year{Year: y}
			for _, name := range sortedKeys(grouped[farm][y]) {
				yr.Fields = append(yr.Fields, Field{Name: name, Tasks: grouped[farm][y][name]})
			}
			f.Years = append(f.Years, yr)
		}
		r.Farms = append(r.Farms, f)
	}
	return r
}

func buildTask(cat *catalog.Catalog, res *ddi.Resolver, t catalog.Task) Task {
	row := Task{
		TaskID:  t.ID,
		Machine: GenericMachine,
		Crop:    NoCrop,
		Year:    UnknownYear,
		Start:   UnknownTime,
		End:     UnknownTime,
		TLGs:    t.LogRefs,
	}

	fieldFarm := ""
	if f, ok := cat.Field(t.FieldRef); ok {
		row.Field = f.Name
		fieldFarm = f.FarmRef
	} else {
		row.Field = "Unknown Field (" + t.FieldRef + ")"
	}
	row.Farm = farmName(cat, fieldFarm, t.FarmRef)

	if d, ok := cat.Device(t.DeviceRef()); ok {
		row.Machine = d.Name
	}
	var crops []string
	for _, ref := range t.ProductRefs {
		if p, ok := cat.Product(ref); ok {
			crops = append(crops, p.Name)
		}
	}
	if len(crops) > 0 {
		row.Crop = strings.Join(crops, ", ")
	}

	if start, ok := t.EarliestStart(); ok {
		row.Start = start.Format(timeLayout)
		row.Year = strconv.Itoa(start.Year())
	}
	if end, ok := t.LatestEnd(); ok {
		row.End = end.Format(timeLayout)
	}

	seen := map[string]bool{}
	for _, w := range t.Windows {
		for _, dlv := range w.Totals {
			r := res.Resolve(dlv.DeviceElementRef, dlv.DDI, t.DeviceRef())
			p := Property{Name: r.Name, Value: r.Value(dlv.Value), Unit: r.Unit}
			if p.Unit == "" && r.Known && r.Transform.Kind == ddi.Passthrough {
				p.Unit = fallbackUnits[dlv.DDI]
			}
			if s := p.String(); !seen[s] {
				seen[s] = true
				row.Properties = append(row.Properties, p)
			}
		}
	}
	return row
}

func farmName(cat *catalog.Catalog, refs ...string) string {
	for _, ref := range refs {
		if f, ok := cat.Farm(ref); ok {
			return f.Name
		}
	}
	if farms := cat.Farms(); len(farms) > 0 {
		return farms[0].Name
	}
	return catalog.UnknownFarm
}

// PropertyNames lists every property name in the report, sorted.
func (r Report) PropertyNames() []string {
	set := map[string]bool{}
	for _, t := range r.Tasks() {
		for _, p := range t.Properties {
			set[p.Name] = true
		}
	}
	return sortedKeys(set)
}

// Tasks flattens the report in display order.
func (r Report) Tasks() []Task {
	var out []Task
	for _, f := range r.Farms {
		for _, y := range f.Years {
			for _, fl := range y.Fields {
				out = append(out, fl.Tasks...)
			}
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	out := b.String()
	if hasFrac {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
