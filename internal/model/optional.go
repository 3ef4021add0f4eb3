package model

import (
	"database/sql/driver"
	"encoding/json"
	"math"
	"strconv"
)

// Float is a number that may be absent. The zero value is absent, which
// keeps "no data" distinct from a real 0.
type Float struct {
	V     float64
	Valid bool
}

// Some wraps a present value.
func Some(v float64) Float { return Float{V: v, Valid: true} }

// None is the absent value.
var None = Float{}

// Finite reports whether the value is absent or an ordinary number.
func (f Float) Finite() bool {
	return !f.Valid || (!math.IsNaN(f.V) && !math.IsInf(f.V, 0))
}

// Value implements driver.Valuer so absent numbers persist as NULL.
func (f Float) Value() (driver.Value, error) {
	if !f.Valid {
		return nil, nil
	}
	return f.V, nil
}

// MarshalJSON encodes absent values as null.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f.V, 'g', -1, 64)), nil
}

// UnmarshalJSON accepts a number or null.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = None
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Some(v)
	return nil
}

// String renders the value, or "n/a" when absent.
func (f Float) String() string {
	if !f.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(f.V, 'f', 2, 64)
}
