package tlg

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"

	"taskdata/pkg/catalog"
)

// ErrMissingSchema is returned when a log's XML header is absent or has no
// PTN element.
var ErrMissingSchema = errors.New("tlg: missing log header")

// static holds the optional position columns in their fixed binary order.
var static = []struct {
	flag string
	name string
}{
	{"C", "up"},
	{"D", "status"},
	{"E", "pdop"},
	{"F", "hdop"},
	{"G", "satellites"},
}

// Declared is one DLV of the log header. Its position in Schema.Values is the
// declared index used by binary entries.
type Declared struct {
	DDI        catalog.DDI
	ElementRef string
	// Valid is false when the DDI attribute did not parse; the slot is kept so
	// later indices stay aligned.
	Valid bool
}

// Schema is the declared field layout of one binary log.
type Schema struct {
	LogID  string
	flags  map[string]bool
	Values []Declared
}

// LoadSchema reads <logID>.xml next to the binary log.
func LoadSchema(dir, logID string) (*Schema, error) {
	path, err := catalog.FindFile(dir, logID+".xml")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingSchema, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s, err := ParseSchema(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.LogID = logID
	return s, nil
}

// ParseSchema reads a log header. A PTN attribute declares a logged column
// when it is present with an empty value; attributes carrying a value are
// constants and take no space in the binary record.
func ParseSchema(r io.Reader) (*Schema, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	s := &Schema{flags: map[string]bool{}}
	sawPTN := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", catalog.ErrMalformedDocument, err)
		}
		el, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch el.Name.Local {
		case "PTN":
			if sawPTN {
				continue
			}
			sawPTN = true
			for _, a := range el.Attr {
				if strings.TrimSpace(a.Value) == "" {
					s.flags[a.Name.Local] = true
				}
			}
		case "DLV":
			var d Declared
			for _, a := range el.Attr {
				switch a.Name.Local {
				case "A":
					if code, err := catalog.ParseDDI(a.Value); err == nil {
						d.DDI, d.Valid = code, true
					}
				case "C":
					d.ElementRef = strings.TrimSpace(a.Value)
				}
			}
			s.Values = append(s.Values, d)
		}
	}
	if !sawPTN {
		return nil, ErrMissingSchema
	}
	return s, nil
}

// Has reports whether the PTN attribute letter is logged.
func (s *Schema) Has(flag string) bool { return s.flags[flag] }

// StaticColumns lists the logged position columns in binary order.
func (s *Schema) StaticColumns() []string {
	var out []string
	for _, c := range static {
		if s.flags[c.flag] {
			out = append(out, c.name)
		}
	}
	return out
}

// HasGPSTime is true when both H and I are logged.
func (s *Schema) HasGPSTime() bool { return s.flags["H"] && s.flags["I"] }

// HeaderSize is the fixed part of one record, including the entry count byte.
func (s *Schema) HeaderSize() int {
	n := 16 + 4*len(s.StaticColumns()) + 1
	if s.HasGPSTime() {
		n += 8
	}
	return n
}
