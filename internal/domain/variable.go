package domain

import "fmt"

// ElementType is the storage type of a variable's elements.
type ElementType int

const (
	// ElementUnsupported marks any storage type the decoder cannot widen.
	ElementUnsupported ElementType = iota
	// ElementFloat32 is a 32-bit IEEE float (NetCDF FLOAT).
	ElementFloat32
	// ElementFloat64 is a 64-bit IEEE float (NetCDF DOUBLE).
	ElementFloat64
	// ElementInt32 is a 32-bit signed integer (NetCDF INT).
	ElementInt32
	// ElementInt16 is a 16-bit signed integer (NetCDF SHORT).
	ElementInt16
)

func (t ElementType) String() string {
	switch t {
	case ElementFloat32:
		return "float"
	case ElementFloat64:
		return "double"
	case ElementInt32:
		return "int"
	case ElementInt16:
		return "short"
	default:
		return "unsupported"
	}
}

// Axis is one named storage dimension of a variable.
type Axis struct {
	Name   string
	Length int
}

// CoordinateAxis is a rank-1 coordinate variable read once per extraction.
// Values are widened to float64 and must not be modified after reading.
type CoordinateAxis struct {
	Name   string
	Role   AxisRole
	Values []float64
}

// Len returns the number of values on the axis.
func (c CoordinateAxis) Len() int {
	return len(c.Values)
}

// VariableDescriptor describes how a variable is laid out in a file.
type VariableDescriptor struct {
	Name      string
	Axes      []Axis // Storage axes in declared order.
	Type      ElementType
	FillValue *float64 // Numeric _FillValue, nil when not declared.

	// FixedIndices maps auxiliary axis names (e.g. "temp_at_hagl") to the
	// index to read along that axis.
	FixedIndices map[string]int
}

// Rank returns the number of storage axes.
func (d VariableDescriptor) Rank() int {
	return len(d.Axes)
}

// AxisNames returns the storage axis names in declared order.
func (d VariableDescriptor) AxisNames() []string {
	names := make([]string, len(d.Axes))
	for i, a := range d.Axes {
		names[i] = a.Name
	}
	return names
}

// WithFixedIndices returns a copy of d carrying the given axis overrides.
func (d VariableDescriptor) WithFixedIndices(fixed map[string]int) VariableDescriptor {
	if len(fixed) == 0 {
		return d
	}
	out := d
	out.FixedIndices = make(map[string]int, len(fixed))
	for k, v := range fixed {
		out.FixedIndices[k] = v
	}
	return out
}

// SliceDescriptor selects a single element: Origin holds the index along each
// axis and Shape is all ones.
type SliceDescriptor struct {
	Origin []int
	Shape  []int
}

// String formats the slice as "origin=[..] shape=[..]" for logs.
func (s SliceDescriptor) String() string {
	return fmt.Sprintf("origin=%v shape=%v", s.Origin, s.Shape)
}
