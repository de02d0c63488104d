package geometry

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	TypePolygon      = "Polygon"
	TypeMultiPolygon = "MultiPolygon"
)

// Point is a (longitude, latitude) pair, GeoJSON order.
type Point [2]float64

// Ring is a closed linear ring: first and last points are identical.
type Ring []Point

// Polygon is an outer ring followed by zero or more inner rings.
type Polygon []Ring

// Geometry holds one or more polygons in document order. A single polygon
// encodes as a GeoJSON Polygon, several as a MultiPolygon.
type Geometry struct {
	Polygons []Polygon
}

// RawPoint is a PNT element as written in the document. North is attribute C,
// East is attribute D.
type RawPoint struct {
	North string
	East  string
}

// RawRing is an LSG element's points.
type RawRing []RawPoint

// RawPolygon is a PLN element's rings.
type RawPolygon []RawRing

func (g Geometry) IsEmpty() bool { return len(g.Polygons) == 0 }

// Type returns the GeoJSON type name, or "" for an empty geometry.
func (g Geometry) Type() string {
	switch len(g.Polygons) {
	case 0:
		return ""
	case 1:
		return TypePolygon
	default:
		return TypeMultiPolygon
	}
}

// Coordinates returns the GeoJSON coordinates array for Type().
func (g Geometry) Coordinates() any {
	switch len(g.Polygons) {
	case 0:
		return nil
	case 1:
		return g.Polygons[0]
	default:
		return g.Polygons
	}
}

// RingCount counts rings across all polygons.
func (g Geometry) RingCount() int {
	n := 0
	for _, p := range g.Polygons {
		n += len(p)
	}
	return n
}

func (g Geometry) MarshalJSON() ([]byte, error) {
	if g.IsEmpty() {
		return []byte("null"), nil
	}
	return json.Marshal(struct {
		Type        string `json:"type"`
		Coordinates any    `json:"coordinates"`
	}{g.Type(), g.Coordinates()})
}

// Extract converts the raw PLN/LSG/PNT structure of one field into a
// geometry. Points whose coordinates do not parse are skipped, rings with
// fewer than three valid points are dropped, open rings are closed by
// repeating their first point, and polygons left without rings are dropped.
// The boolean is false when nothing survives.
func Extract(polys []RawPolygon) (Geometry, bool) {
	var g Geometry
	for _, raw := range polys {
		var poly Polygon
		for _, rr := range raw {
			if ring, ok := ExtractRing(rr); ok {
				poly = append(poly, ring)
			}
		}
		if len(poly) > 0 {
			g.Polygons = append(g.Polygons, poly)
		}
	}
	return g, !g.IsEmpty()
}

// ExtractRing parses and closes a single ring.
func ExtractRing(raw RawRing) (Ring, bool) {
	ring := make(Ring, 0, len(raw)+1)
	for _, p := range raw {
		lat, ok := parseCoord(p.North)
		if !ok {
			continue
		}
		lon, ok := parseCoord(p.East)
		if !ok {
			continue
		}
		ring = append(ring, Point{lon, lat})
	}
	if len(ring) <= 2 {
		return nil, false
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring, true
}

func parseCoord(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
