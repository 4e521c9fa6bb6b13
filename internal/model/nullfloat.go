package model

import (
	"encoding/json"
	"math"
	"strconv"
)

// NullFloat is a float64 that may be missing. Arithmetic on NullFloat
// propagates missingness: any missing operand yields a missing result.
type NullFloat struct {
	V     float64
	Valid bool
}

// Missing is the missing-value marker.
var Missing = NullFloat{}

// Float returns a valid NullFloat. NaN and infinities are treated as missing.
func Float(v float64) NullFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing
	}
	return NullFloat{V: v, Valid: true}
}

// Add returns f + o.
func (f NullFloat) Add(o NullFloat) NullFloat {
	if !f.Valid || !o.Valid {
		return Missing
	}
	return Float(f.V + o.V)
}

// Sub returns f - o.
func (f NullFloat) Sub(o NullFloat) NullFloat {
	if !f.Valid || !o.Valid {
		return Missing
	}
	return Float(f.V - o.V)
}

// Mul returns f * o.
func (f NullFloat) Mul(o NullFloat) NullFloat {
	if !f.Valid || !o.Valid {
		return Missing
	}
	return Float(f.V * o.V)
}

// Div returns f / o. A zero or missing denominator yields Missing.
func (f NullFloat) Div(o NullFloat) NullFloat {
	if !f.Valid || !o.Valid || o.V == 0 {
		return Missing
	}
	return Float(f.V / o.V)
}

// Scale returns f * k.
func (f NullFloat) Scale(k float64) NullFloat {
	if !f.Valid {
		return Missing
	}
	return Float(f.V * k)
}

// OrNaN returns the value, or NaN when missing.
func (f NullFloat) OrNaN() float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.V
}

// String formats the value with the shortest exact representation; missing is "".
func (f NullFloat) String() string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.V, 'f', -1, 64)
}

// MarshalJSON encodes missing values as null.
func (f NullFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.V)
}

// UnmarshalJSON decodes null as missing.
func (f *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Missing
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// MarshalYAML encodes missing values as null.
func (f NullFloat) MarshalYAML() (any, error) {
	if !f.Valid {
		return nil, nil
	}
	return f.V, nil
}
