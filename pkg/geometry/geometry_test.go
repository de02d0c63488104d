package geometry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(pts ...[2]string) RawRing {
	out := make(RawRing, 0, len(pts))
	for _, p := range pts {
		out = append(out, RawPoint{North: p[0], East: p[1]})
	}
	return out
}

func TestExtractRingClosure(t *testing.T) {
	tests := []struct {
		name string
		in   RawRing
		want Ring
	}{
		{
			name: "closed by coincidence",
			in:   raw([2]string{"55.0", "12.0"}, [2]string{"55.1", "12.1"}, [2]string{"55.0", "12.0"}),
			want: Ring{{12.0, 55.0}, {12.1, 55.1}, {12.0, 55.0}},
		},
		{
			name: "open triangle",
			in:   raw([2]string{"55.0", "12.0"}, [2]string{"55.1", "12.1"}, [2]string{"55.2", "12.0"}),
			want: Ring{{12.0, 55.0}, {12.1, 55.1}, {12.0, 55.2}, {12.0, 55.0}},
		},
		{
			name: "bad points skipped",
			in: raw([2]string{"55.0", "12.0"}, [2]string{"north", "12.1"}, [2]string{"55.1", ""},
				[2]string{" 55.1 ", "12.1"}, [2]string{"55.2", "12.0"}),
			want: Ring{{12.0, 55.0}, {12.1, 55.1}, {12.0, 55.2}, {12.0, 55.0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractRing(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got[0], got[len(got)-1])
		})
	}
}

func TestExtractRingTooSmall(t *testing.T) {
	_, ok := ExtractRing(raw([2]string{"55.0", "12.0"}, [2]string{"55.1", "12.1"}))
	assert.False(t, ok)

	_, ok = ExtractRing(raw([2]string{"55.0", "12.0"}, [2]string{"55.1", "12.1"}, [2]string{"NaN", "12"}))
	assert.False(t, ok)
}

func TestExtractDropsEmptyPolygons(t *testing.T) {
	tri := raw([2]string{"1", "1"}, [2]string{"2", "1"}, [2]string{"2", "2"})
	small := raw([2]string{"1", "1"}, [2]string{"2", "1"})

	g, ok := Extract([]RawPolygon{{small}, {tri}})
	require.True(t, ok)
	assert.Equal(t, TypePolygon, g.Type())
	assert.Len(t, g.Polygons, 1)

	_, ok = Extract([]RawPolygon{{small}, {}})
	assert.False(t, ok)
}

func TestExtractMultiPolygonKeepsOrder(t *testing.T) {
	a := raw([2]string{"1", "1"}, [2]string{"2", "1"}, [2]string{"2", "2"})
	hole := raw([2]string{"1.1", "1.1"}, [2]string{"1.2", "1.1"}, [2]string{"1.2", "1.2"})
	b := raw([2]string{"10", "10"}, [2]string{"11", "10"}, [2]string{"11", "11"}, [2]string{"10", "10"})

	g, ok := Extract([]RawPolygon{{a, hole}, {b}})
	require.True(t, ok)
	assert.Equal(t, TypeMultiPolygon, g.Type())
	require.Len(t, g.Polygons, 2)
	assert.Len(t, g.Polygons[0], 2)
	assert.Equal(t, Point{1.1, 1.1}, g.Polygons[0][1][0])
	assert.Equal(t, Point{10, 10}, g.Polygons[1][0][0])
	assert.Equal(t, 3, g.RingCount())

	for _, p := range g.Polygons {
		for _, r := range p {
			assert.Equal(t, r[0], r[len(r)-1])
		}
	}
}

func TestGeometryMarshalJSON(t *testing.T) {
	g, ok := Extract([]RawPolygon{{raw([2]string{"55.0", "12.0"}, [2]string{"55.1", "12.1"}, [2]string{"55.0", "12.0"})}})
	require.True(t, ok)

	b, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Polygon","coordinates":[[[12,55],[12.1,55.1],[12,55]]]}`, string(b))

	b, err = json.Marshal(Geometry{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}
