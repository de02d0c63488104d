package catalog

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// DocumentName is the TaskData document file name, matched case-insensitively.
const DocumentName = "taskdata.xml"

// Catalog is the typed view of one TaskData document. It is immutable once
// Load returns and safe for concurrent readers. Slices returned by accessors
// share backing arrays with the catalog and must not be modified.
type Catalog struct {
	dir  string
	path string

	farms    []Farm
	fields   []Field
	products []Product
	devices  []Device
	tasks    []Task

	farmIdx    map[string]int
	fieldIdx   map[string]int
	productIdx map[string]int
	deviceIdx  map[string]int
	taskIdx    map[string]int
	elementIdx map[string]string
}

type options struct {
	logger *zap.Logger
}

type Option func(*options)

// WithLogger routes loader diagnostics (duplicate ids, skipped values) to l.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Load finds the TaskData document in dir and parses it in one streaming pass.
func Load(dir string, opts ...Option) (*Catalog, error) {
	o := options{logger: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	path, err := FindFile(dir, DocumentName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	c, err := Parse(f, WithLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.dir = dir
	c.path = path
	return c, nil
}

// Parse reads a TaskData document from r.
func Parse(r io.Reader, opts ...Option) (*Catalog, error) {
	o := options{logger: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	b := newBuilder(o.logger)
	if err := b.run(dec); err != nil {
		return nil, err
	}
	return b.catalog(), nil
}

// FindFile returns the path of the entry in dir whose name equals name
// ignoring case.
func FindFile(dir, name string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: folder %s", ErrMissingRequiredFile, dir)
		}
		return "", fmt.Errorf("read dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(e.Name(), name) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: %s in %s", ErrMissingRequiredFile, name, dir)
}

func (c *Catalog) Dir() string  { return c.dir }
func (c *Catalog) Path() string { return c.path }

// LogPath resolves the binary log of a TLG stem next to the document.
func (c *Catalog) LogPath(logID string) (string, error) {
	return FindFile(c.dir, logID+".bin")
}

func (c *Catalog) Farms() []Farm       { return c.farms }
func (c *Catalog) Fields() []Field     { return c.fields }
func (c *Catalog) Products() []Product { return c.products }
func (c *Catalog) Devices() []Device   { return c.devices }
func (c *Catalog) Tasks() []Task       { return c.tasks }

func (c *Catalog) Farm(id string) (Farm, bool)       { return lookup(c.farms, c.farmIdx, id) }
func (c *Catalog) Field(id string) (Field, bool)     { return lookup(c.fields, c.fieldIdx, id) }
func (c *Catalog) Product(id string) (Product, bool) { return lookup(c.products, c.productIdx, id) }
func (c *Catalog) Device(id string) (Device, bool)   { return lookup(c.devices, c.deviceIdx, id) }
func (c *Catalog) Task(id string) (Task, bool)       { return lookup(c.tasks, c.taskIdx, id) }

// ElementDevice maps a device element id (DET@A) to its owning device id.
func (c *Catalog) ElementDevice(detID string) (string, bool) {
	id, ok := c.elementIdx[detID]
	return id, ok
}

// FarmName resolves a farm reference, falling back to UnknownFarm.
func (c *Catalog) FarmName(id string) string {
	if f, ok := c.Farm(id); ok {
		return f.Name
	}
	return UnknownFarm
}

// ProductName resolves a product reference, falling back to UnknownProduct.
func (c *Catalog) ProductName(id string) string {
	if p, ok := c.Product(id); ok {
		return p.Name
	}
	return UnknownProduct
}

func lookup[T any](items []T, idx map[string]int, id string) (T, bool) {
	i, ok := idx[id]
	if !ok {
		var zero T
		return zero, false
	}
	return items[i], true
}
