package ddi

import (
	"math"
	"strconv"
)

type Kind int

const (
	// Passthrough keeps the raw integer.
	Passthrough Kind = iota
	// Presentation applies a DVP: offset, scale, then rounding to Decimals.
	Presentation
	// Fixed multiplies by Scale without rounding.
	Fixed
)

type Transform struct {
	Kind     Kind
	Offset   float64
	Scale    float64
	Decimals int
}

// Value is one decoded measurement.
type Value struct {
	Raw    int64
	Scaled float64
	// IsScaled is false for passthrough values, where Scaled equals Raw.
	IsScaled bool
}

func (v Value) Float() float64 { return v.Scaled }

// Finite reports whether the value can be written to any sink.
func (v Value) Finite() bool {
	return !math.IsNaN(v.Scaled) && !math.IsInf(v.Scaled, 0)
}

func (v Value) String() string {
	if !v.IsScaled {
		return strconv.FormatInt(v.Raw, 10)
	}
	return strconv.FormatFloat(v.Scaled, 'f', -1, 64)
}

func (t Transform) Apply(raw int64) Value {
	switch t.Kind {
	case Presentation:
		p := math.Pow10(t.Decimals)
		x := (float64(raw) + t.Offset) * t.Scale * p
		return Value{Raw: raw, Scaled: math.Trunc(x+0.5) / p, IsScaled: true}
	case Fixed:
		return Value{Raw: raw, Scaled: float64(raw) * t.Scale, IsScaled: true}
	default:
		return Value{Raw: raw, Scaled: float64(raw)}
	}
}
