package tlg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"time"

	"go.uber.org/zap"

	"taskdata/pkg/catalog"
	"taskdata/pkg/ddi"
)

const (
	entrySize = 5
	// maxWarnings bounds the retained warning list; WarningCount keeps counting.
	maxWarnings = 1000
)

type Options struct {
	// Epoch is day zero of the record time stamps; zero means DefaultEpoch.
	Epoch time.Time
	// FallbackDevice is used for device elements the catalog does not know.
	FallbackDevice string
	Logger         *zap.Logger
	// Backend overrides SelectBackend.
	Backend Backend
}

// Decoder is a forward-only cursor over the records of one binary log.
// A Decoder is not safe for concurrent use.
type Decoder struct {
	cur    Cursor
	log    *zap.Logger
	epoch  time.Time
	static []string
	gps    bool
	cols   []Column
	res    []ddi.Resolved

	head []byte
	body []byte

	rec       Record
	n         int
	warnings  []Warning
	warnCount int
	truncated bool
	done      bool
	closed    bool
	err       error
}

// Open starts decoding the log at path.
func Open(path string, schema *Schema, res *ddi.Resolver, opts Options) (*Decoder, error) {
	b := opts.Backend
	if b == nil {
		b = SelectBackend()
	}
	cur, err := b.Open(path)
	if err != nil {
		return nil, err
	}
	return newDecoder(cur, schema, res, opts), nil
}

// NewDecoder decodes from r through the stream path. If r is an io.Closer it
// is closed by Close.
func NewDecoder(r io.Reader, schema *Schema, res *ddi.Resolver, opts Options) *Decoder {
	c, _ := r.(io.Closer)
	return newDecoder(newReaderCursor(r, c), schema, res, opts)
}

func newDecoder(cur Cursor, schema *Schema, res *ddi.Resolver, opts Options) *Decoder {
	if res == nil {
		res = ddi.Build(&catalog.Catalog{})
	}
	d := &Decoder{
		cur:    cur,
		log:    opts.Logger,
		epoch:  opts.Epoch,
		static: schema.StaticColumns(),
		gps:    schema.HasGPSTime(),
		head:   make([]byte, schema.HeaderSize()),
		body:   make([]byte, 255*entrySize),
	}
	if d.log == nil {
		d.log = zap.NewNop()
	}
	d.log = d.log.With(zap.String("log", schema.LogID))
	if d.epoch.IsZero() {
		d.epoch = DefaultEpoch
	}
	d.bind(schema, res, opts.FallbackDevice)
	return d
}

// bind resolves every declared index once. Clashing names get the element
// reference appended, then the declared index.
func (d *Decoder) bind(schema *Schema, res *ddi.Resolver, fallback string) {
	used := map[string]bool{"time_stamp": true, "latitude": true, "longitude": true, "gps_time": true}
	for _, s := range d.static {
		used[s] = true
	}
	for i, decl := range schema.Values {
		var r ddi.Resolved
		if decl.Valid {
			r = res.Resolve(decl.ElementRef, decl.DDI, fallback)
		} else {
			r = ddi.Resolved{Name: "DLV " + strconv.Itoa(i)}
		}
		name := r.Name
		if used[name] && decl.ElementRef != "" {
			name = fmt.Sprintf("%s [%s]", r.Name, decl.ElementRef)
		}
		if used[name] {
			name = fmt.Sprintf("%s #%d", r.Name, i)
		}
		used[name] = true
		d.res = append(d.res, r)
		d.cols = append(d.cols, Column{Name: name, Unit: r.Unit, DDI: decl.DDI, ElementRef: decl.ElementRef, Known: r.Known})
	}
}

// Columns returns the bound value columns in declared order.
func (d *Decoder) Columns() []Column { return d.cols }

// StaticColumns returns the logged position column names.
func (d *Decoder) StaticColumns() []string { return d.static }

func (d *Decoder) HasGPSTime() bool { return d.gps }

// Next advances to the next record. It returns false at end of stream, after
// a truncated tail, on a read error, or once the decoder is closed.
func (d *Decoder) Next() bool {
	if d.done {
		return false
	}
	start := d.cur.Offset()
	if _, err := d.cur.ReadFull(d.head); err != nil {
		return d.finish(err, start)
	}
	count := int(d.head[len(d.head)-1])
	body := d.body[:count*entrySize]
	if _, err := d.cur.ReadFull(body); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return d.finish(err, start)
	}
	d.rec = d.decode(body, start)
	d.n++
	return true
}

func (d *Decoder) decode(body []byte, start int64) Record {
	le := binary.LittleEndian
	h := d.head
	rec := Record{
		Time:      d.stamp(le.Uint32(h[0:]), le.Uint32(h[4:])),
		Latitude:  float64(int32(le.Uint32(h[8:]))) * 1e-7,
		Longitude: float64(int32(le.Uint32(h[12:]))) * 1e-7,
	}
	off := 16
	if len(d.static) > 0 {
		rec.Static = make(map[string]int32, len(d.static))
		for _, name := range d.static {
			rec.Static[name] = int32(le.Uint32(h[off:]))
			off += 4
		}
	}
	if d.gps {
		t := d.stamp(le.Uint32(h[off:]), le.Uint32(h[off+4:]))
		rec.GPSTime = &t
	}

	rec.Values = make(map[string]ddi.Value, len(body)/entrySize)
	for i := 0; i < len(body); i += entrySize {
		idx := int(body[i])
		raw := int64(int32(le.Uint32(body[i+1:])))
		if idx >= len(d.cols) {
			d.warn(Warning{Record: d.n, Offset: start, Index: idx, Reason: fmt.Sprintf("index out of range (%d declared)", len(d.cols))})
			continue
		}
		v := d.res[idx].Value(raw)
		if !v.Finite() {
			d.warn(Warning{Record: d.n, Offset: start, Index: idx, Reason: "non-finite value for " + d.cols[idx].Name})
			continue
		}
		rec.Values[d.cols[idx].Name] = v
	}
	return rec
}

func (d *Decoder) stamp(ms, days uint32) time.Time {
	return d.epoch.AddDate(0, 0, int(days)).Add(time.Duration(ms) * time.Millisecond).Truncate(time.Second)
}

func (d *Decoder) warn(w Warning) {
	d.warnCount++
	if len(d.warnings) < maxWarnings {
		d.warnings = append(d.warnings, w)
	}
	d.log.Warn("corrupt field skipped", zap.Int("record", w.Record), zap.Int64("offset", w.Offset), zap.Int("index", w.Index), zap.String("reason", w.Reason))
}

func (d *Decoder) finish(err error, start int64) bool {
	d.done = true
	switch {
	case errors.Is(err, io.EOF):
	case errors.Is(err, io.ErrUnexpectedEOF):
		d.truncated = true
		d.log.Info("truncated tail ignored", zap.Int("records", d.n), zap.Int64("offset", start))
	default:
		if !d.closed {
			d.err = fmt.Errorf("read record %d: %w", d.n, err)
		}
	}
	return false
}

// Record returns the record produced by the last successful Next.
func (d *Decoder) Record() Record { return d.rec }

// Err returns the first read error other than end of stream.
func (d *Decoder) Err() error { return d.err }

// Warnings returns the retained corrupt-field warnings.
func (d *Decoder) Warnings() []Warning { return d.warnings }

// WarningCount counts every warning, including those not retained.
func (d *Decoder) WarningCount() int { return d.warnCount }

// Truncated reports whether the stream ended inside a record.
func (d *Decoder) Truncated() bool { return d.truncated }

// Count is the number of records produced so far.
func (d *Decoder) Count() int { return d.n }

// All yields the remaining records.
func (d *Decoder) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for d.Next() {
			if !yield(d.Record()) {
				return
			}
		}
	}
}

// Close releases the cursor. Records already returned stay valid.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.done = true
	return d.cur.Close()
}
