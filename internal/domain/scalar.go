package domain

import "math"

// Reading is one decoded element. Valid is false when the element is missing.
type Reading struct {
	Value float64
	Valid bool
}

// Missing returns the missing reading.
func Missing() Reading {
	return Reading{}
}

// Ptr returns a pointer to the value, or nil when the reading is missing.
func (r Reading) Ptr() *float64 {
	if !r.Valid {
		return nil
	}
	v := r.Value
	return &v
}

// ClassifyScalar decides whether a raw element read as t is a real value.
// A declared fill value wins over everything else; NaN is missing for every
// float type since it cannot be carried through JSON.
func ClassifyScalar(raw float64, t ElementType, fill *float64) Reading {
	if t == ElementUnsupported {
		return Missing()
	}
	if fill != nil && sameElement(raw, *fill, t) {
		return Missing()
	}
	if math.IsNaN(raw) {
		return Missing()
	}
	return Reading{Value: raw, Valid: true}
}

// sameElement compares at the storage precision so that a float32 fill
// widened to float64 still matches a float32 element widened the same way.
func sameElement(raw, fill float64, t ElementType) bool {
	switch t {
	case ElementFloat32:
		return float32(raw) == float32(fill) || (math.IsNaN(raw) && math.IsNaN(fill))
	case ElementFloat64:
		return raw == fill || (math.IsNaN(raw) && math.IsNaN(fill))
	default:
		return raw == fill
	}
}
