package dataset

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned by ReadScalar for an origin outside the
// variable's shape.
var ErrIndexOutOfRange = errors.New("index out of range")

// Widen converts a typed slice or scalar returned by a backend to float64.
// int64 is accepted for time axes stored as LONG.
func Widen(values any) ([]float64, error) {
	switch vs := values.(type) {
	case []float64:
		out := make([]float64, len(vs))
		copy(out, vs)
		return out, nil
	case []float32:
		return widenSlice(vs), nil
	case []int32:
		return widenSlice(vs), nil
	case []int16:
		return widenSlice(vs), nil
	case []int64:
		return widenSlice(vs), nil
	case float64:
		return []float64{vs}, nil
	case float32:
		return []float64{float64(vs)}, nil
	case int32:
		return []float64{float64(vs)}, nil
	case int16:
		return []float64{float64(vs)}, nil
	case int64:
		return []float64{float64(vs)}, nil
	default:
		return nil, fmt.Errorf("%T: %w", values, ErrUnsupportedType)
	}
}

func widenSlice[T float32 | int64 | int32 | int16](vs []T) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = float64(v)
	}
	return out
}

// FirstNumber returns the first element of a numeric attribute value.
func FirstNumber(values any) (float64, bool) {
	vs, err := Widen(values)
	if err != nil || len(vs) == 0 {
		return 0, false
	}
	return vs[0], true
}

// CheckOrigin verifies that origin addresses an element of a variable with
// the given axis lengths.
func CheckOrigin(desc string, lengths, origin []int) error {
	if len(origin) != len(lengths) {
		return fmt.Errorf("%s: origin has %d indices for rank %d: %w", desc, len(origin), len(lengths), ErrIndexOutOfRange)
	}
	for i, idx := range origin {
		if idx < 0 || idx >= lengths[i] {
			return fmt.Errorf("%s: index %d on axis %d (length %d): %w", desc, idx, i, lengths[i], ErrIndexOutOfRange)
		}
	}
	return nil
}
