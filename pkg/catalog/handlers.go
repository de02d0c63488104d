package catalog

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"taskdata/pkg/geometry"
)

type attrs map[string]string

// get returns the attribute or def when it is absent or blank.
func (a attrs) get(k, def string) string {
	if v := strings.TrimSpace(a[k]); v != "" {
		return v
	}
	return def
}

// handler reacts to one element kind. open reports whether the element was
// taken; close only runs for taken elements.
type handler struct {
	open  func(b *builder, a attrs) bool
	close func(b *builder)
}

var handlers = map[string]handler{
	"FRM": {open: (*builder).openFarm},
	"PFD": {open: (*builder).openField, close: (*builder).closeField},
	"PLN": {open: (*builder).openPolygon, close: (*builder).closePolygon},
	"LSG": {open: (*builder).openRing, close: (*builder).closeRing},
	"PNT": {open: (*builder).openPoint},
	"PDT": {open: (*builder).openProduct},
	"DVC": {open: (*builder).openDevice, close: (*builder).closeDevice},
	"DET": {open: (*builder).openElement},
	"DPD": {open: (*builder).openProcessData},
	"DVP": {open: (*builder).openPresentation},
	"TSK": {open: (*builder).openTask, close: (*builder).closeTask},
	"DAN": {open: (*builder).openAllocation},
	"PAN": {open: (*builder).openProductAllocation},
	"TLG": {open: (*builder).openLog},
	"TIM": {open: (*builder).openWindow, close: (*builder).closeWindow},
	"DLV": {open: (*builder).openValue},
}

type frame struct {
	name  string
	taken bool
}

type builder struct {
	log   *zap.Logger
	stack []frame

	farms    []Farm
	fields   []*Field
	products []Product
	devices  []*Device
	tasks    []*Task

	seen map[string]map[string]bool

	field     *Field
	polyDepth int
	ringDepth int
	device    *Device
	task      *Task
	window    *TimeWindow
}

func newBuilder(log *zap.Logger) *builder {
	return &builder{log: log, seen: map[string]map[string]bool{}}
}

func (b *builder) run(dec *xml.Decoder) error {
	sawRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			sawRoot = true
			taken := false
			if h, ok := handlers[t.Name.Local]; ok && h.open != nil {
				taken = h.open(b, attrsOf(t))
			}
			b.stack = append(b.stack, frame{name: t.Name.Local, taken: taken})
		case xml.EndElement:
			if len(b.stack) == 0 {
				return fmt.Errorf("%w: unbalanced </%s>", ErrMalformedDocument, t.Name.Local)
			}
			top := b.stack[len(b.stack)-1]
			b.stack = b.stack[:len(b.stack)-1]
			if top.taken {
				if h := handlers[top.name]; h.close != nil {
					h.close(b)
				}
			}
		}
	}
	if !sawRoot {
		return fmt.Errorf("%w: no root element", ErrMalformedDocument)
	}
	if len(b.stack) != 0 {
		return fmt.Errorf("%w: unclosed <%s>", ErrMalformedDocument, b.stack[len(b.stack)-1].name)
	}
	return nil
}

func attrsOf(el xml.StartElement) attrs {
	a := make(attrs, len(el.Attr))
	for _, at := range el.Attr {
		a[at.Name.Local] = at.Value
	}
	return a
}

// first records id under kind and reports whether it was new.
func (b *builder) first(kind, id string) bool {
	ids := b.seen[kind]
	if ids == nil {
		ids = map[string]bool{}
		b.seen[kind] = ids
	}
	if ids[id] {
		b.log.Warn("duplicate id ignored", zap.String("element", kind), zap.String("id", id))
		return false
	}
	ids[id] = true
	return true
}

func (b *builder) openFarm(a attrs) bool {
	id := a["A"]
	if b.first("FRM", id) {
		b.farms = append(b.farms, Farm{ID: id, Name: a.get("B", UnknownFarm)})
	}
	return true
}

func (b *builder) openField(a attrs) bool {
	if b.field != nil {
		return false
	}
	id := a["A"]
	b.field = &Field{ID: id, Name: a.get("C", "Unknown_"+id), FarmRef: a["F"]}
	return true
}

func (b *builder) closeField() {
	f := b.field
	b.field = nil
	b.polyDepth, b.ringDepth = 0, 0
	f.Geometry, f.HasGeometry = geometry.Extract(f.Boundary)
	if b.first("PFD", f.ID) {
		b.fields = append(b.fields, f)
	}
}

func (b *builder) openPolygon(attrs) bool {
	if b.field == nil || b.polyDepth > 0 {
		return false
	}
	b.field.Boundary = append(b.field.Boundary, geometry.RawPolygon{})
	b.polyDepth++
	return true
}

func (b *builder) closePolygon() { b.polyDepth-- }

func (b *builder) openRing(attrs) bool {
	if b.polyDepth == 0 || b.ringDepth > 0 {
		return false
	}
	p := &b.field.Boundary[len(b.field.Boundary)-1]
	*p = append(*p, geometry.RawRing{})
	b.ringDepth++
	return true
}

func (b *builder) closeRing() { b.ringDepth-- }

func (b *builder) openPoint(a attrs) bool {
	if b.ringDepth == 0 {
		return false
	}
	p := b.field.Boundary[len(b.field.Boundary)-1]
	r := &p[len(p)-1]
	*r = append(*r, geometry.RawPoint{North: a["C"], East: a["D"]})
	return true
}

func (b *builder) openProduct(a attrs) bool {
	id := a["A"]
	if b.first("PDT", id) {
		b.products = append(b.products, Product{ID: id, Name: a.get("B", UnknownProduct)})
	}
	return true
}

func (b *builder) openDevice(a attrs) bool {
	if b.device != nil {
		return false
	}
	b.device = &Device{ID: a["A"], Name: a.get("B", UnknownMachine)}
	return true
}

func (b *builder) closeDevice() {
	d := b.device
	b.device = nil
	if b.first("DVC", d.ID) {
		b.devices = append(b.devices, d)
	}
}

func (b *builder) openElement(a attrs) bool {
	if b.device == nil {
		return false
	}
	b.device.Elements = append(b.device.Elements, DeviceElement{
		ID:       a["A"],
		DeviceID: b.device.ID,
		Name:     a["D"],
	})
	return true
}

func (b *builder) openProcessData(a attrs) bool {
	if b.device == nil {
		return false
	}
	code, err := ParseDDI(a["B"])
	if err != nil {
		b.log.Warn("process data skipped", zap.String("device", b.device.ID), zap.String("id", a["A"]), zap.Error(err))
		return false
	}
	b.device.ProcessData = append(b.device.ProcessData, ProcessData{
		ID:              a["A"],
		DDI:             code,
		Name:            a.get("E", "DDI "+code.String()),
		PresentationRef: strings.TrimSpace(a["F"]),
	})
	return true
}

func (b *builder) openPresentation(a attrs) bool {
	if b.device == nil {
		return false
	}
	b.device.Presentations = append(b.device.Presentations, ValuePresentation{
		ID:       a["A"],
		Offset:   parseFloat(a["B"], 0),
		Scale:    parseFloat(a["C"], 1),
		Decimals: int(parseInt(a["D"], 0)),
		Unit:     a["E"],
	})
	return true
}

func (b *builder) openTask(a attrs) bool {
	if b.task != nil {
		return false
	}
	id := a["A"]
	b.task = &Task{
		ID:          id,
		Name:        a.get("B", id),
		CustomerRef: a["C"],
		FarmRef:     a["D"],
		FieldRef:    strings.TrimSpace(a["E"]),
	}
	return true
}

func (b *builder) closeTask() {
	t := b.task
	b.task = nil
	b.window = nil
	if b.first("TSK", t.ID) {
		b.tasks = append(b.tasks, t)
	}
}

func (b *builder) openAllocation(a attrs) bool {
	if b.task == nil {
		return false
	}
	if ref := strings.TrimSpace(a["C"]); ref != "" {
		b.task.DeviceRefs = append(b.task.DeviceRefs, ref)
	}
	return true
}

func (b *builder) openProductAllocation(a attrs) bool {
	if b.task == nil {
		return false
	}
	if ref := strings.TrimSpace(a["A"]); ref != "" {
		b.task.ProductRefs = append(b.task.ProductRefs, ref)
	}
	return true
}

func (b *builder) openLog(a attrs) bool {
	if b.task == nil {
		return false
	}
	if stem := strings.TrimSpace(a["A"]); stem != "" {
		b.task.LogRefs = append(b.task.LogRefs, stem)
	}
	return true
}

func (b *builder) openWindow(a attrs) bool {
	if b.task == nil || b.window != nil {
		return false
	}
	b.window = &TimeWindow{Start: strings.TrimSpace(a["A"]), End: strings.TrimSpace(a["B"])}
	return true
}

func (b *builder) closeWindow() {
	b.task.Windows = append(b.task.Windows, *b.window)
	b.window = nil
}

func (b *builder) openValue(a attrs) bool {
	if b.window == nil {
		return false
	}
	code, err := ParseDDI(a["A"])
	if err != nil {
		b.log.Debug("total skipped", zap.String("task", b.task.ID), zap.Error(err))
		return false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(a["B"]), 10, 64)
	if err != nil {
		b.log.Debug("total skipped", zap.String("task", b.task.ID), zap.String("ddi", code.String()), zap.Error(err))
		return false
	}
	b.window.Totals = append(b.window.Totals, DataLogValue{DDI: code, Value: v, DeviceElementRef: strings.TrimSpace(a["C"])})
	return true
}

func (b *builder) catalog() *Catalog {
	c := &Catalog{
		farms:      b.farms,
		products:   b.products,
		farmIdx:    make(map[string]int, len(b.farms)),
		fieldIdx:   make(map[string]int, len(b.fields)),
		productIdx: make(map[string]int, len(b.products)),
		deviceIdx:  make(map[string]int, len(b.devices)),
		taskIdx:    make(map[string]int, len(b.tasks)),
		elementIdx: map[string]string{},
	}
	for i, f := range b.farms {
		c.farmIdx[f.ID] = i
	}
	for i, p := range b.products {
		c.productIdx[p.ID] = i
	}
	for i, f := range b.fields {
		c.fields = append(c.fields, *f)
		c.fieldIdx[f.ID] = i
	}
	for i, d := range b.devices {
		c.devices = append(c.devices, *d)
		c.deviceIdx[d.ID] = i
		for _, el := range d.Elements {
			if _, dup := c.elementIdx[el.ID]; !dup {
				c.elementIdx[el.ID] = d.ID
			}
		}
	}
	for i, t := range b.tasks {
		c.tasks = append(c.tasks, *t)
		c.taskIdx[t.ID] = i
	}
	return c
}

func parseInt(s string, def int64) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(v)
	}
	return def
}

func parseFloat(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return v
}
