package ddi

import (
	"taskdata/pkg/catalog"
)

type Code = catalog.DDI

const (
	Moisture  Code = 0x0106
	DryMatter Code = 0x013B
)

// overrides win over any DPD/DVP the device declares.
var overrides = map[Code]Resolved{
	Moisture:  {Name: "Fugtighed", Unit: "%", Transform: Transform{Kind: Fixed, Scale: 0.0001}, Known: true},
	DryMatter: {Name: "Tørstofindhold", Unit: "%", Transform: Transform{Kind: Fixed, Scale: 0.0001}, Known: true},
}

type Resolved struct {
	Name      string
	Unit      string
	Transform Transform
	// Known is false when neither an override nor a DPD matched.
	Known bool
}

func (r Resolved) Value(raw int64) Value { return r.Transform.Apply(raw) }

// Resolver maps (device element, DDI) pairs to named, scaled columns. It is
// immutable after Build.
type Resolver struct {
	elementDevice map[string]string
	tables        map[string]map[Code]Resolved
}

// Build indexes every device's DPD table. When a device declares the same DDI
// twice, the first declaration wins.
func Build(cat *catalog.Catalog) *Resolver {
	r := &Resolver{elementDevice: map[string]string{}, tables: map[string]map[Code]Resolved{}}
	for _, d := range cat.Devices() {
		for _, el := range d.Elements {
			if _, ok := r.elementDevice[el.ID]; !ok {
				r.elementDevice[el.ID] = d.ID
			}
		}
		tbl := make(map[Code]Resolved, len(d.ProcessData))
		for _, pd := range d.ProcessData {
			if _, dup := tbl[pd.DDI]; dup {
				continue
			}
			res := Resolved{Name: pd.Name, Known: true}
			if dvp, ok := d.Presentation(pd.PresentationRef); ok && pd.PresentationRef != "" {
				res.Unit = dvp.Unit
				res.Transform = Transform{Kind: Presentation, Offset: dvp.Offset, Scale: dvp.Scale, Decimals: dvp.Decimals}
			}
			tbl[pd.DDI] = res
		}
		r.tables[d.ID] = tbl
	}
	return r
}

// DeviceFor resolves the device owning detRef, or fallback when unknown.
func (r *Resolver) DeviceFor(detRef, fallback string) string {
	if id, ok := r.elementDevice[detRef]; ok {
		return id
	}
	return fallback
}

func (r *Resolver) Resolve(detRef string, code Code, fallbackDevice string) Resolved {
	if o, ok := overrides[code]; ok {
		return o
	}
	if res, ok := r.tables[r.DeviceFor(detRef, fallbackDevice)][code]; ok {
		return res
	}
	return Resolved{Name: "DDI " + code.String()}
}
