package analysis

import (
	"encoding/json"
	"fmt"
	"math"
)

// Value is a statistic that may be undefined, e.g. the standard deviation of
// a single row or the correlation with a constant column.
type Value struct {
	V     float64
	Valid bool
}

// Defined wraps x. NaN and ±Inf collapse to Undefined.
func Defined(x float64) Value {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Value{}
	}
	return Value{V: x, Valid: true}
}

// Undefined returns the undefined value.
func Undefined() Value { return Value{} }

// Float returns the number and whether it is defined.
func (v Value) Float() (float64, bool) { return v.V, v.Valid }

func (v Value) String() string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.4g", v.V)
}

// MarshalJSON encodes undefined values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

// MarshalYAML encodes undefined values as null.
func (v Value) MarshalYAML() (interface{}, error) {
	if !v.Valid {
		return nil, nil
	}
	return v.V, nil
}
