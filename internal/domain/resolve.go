package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTimeAxisUnresolved means no storage axis could be mapped to time.
	ErrTimeAxisUnresolved = errors.New("time axis not found")
	// ErrSpatialAxisUnresolved means the latitude/longitude or station axis
	// required for the variable's rank could not be mapped.
	ErrSpatialAxisUnresolved = errors.New("spatial axis not found")
	// ErrUnresolvedAxis means an axis could not be classified at all.
	ErrUnresolvedAxis = errors.New("axis could not be classified")
	// ErrFixedAxisAmbiguous means an auxiliary axis longer than one has no
	// override and the strict policy is in effect.
	ErrFixedAxisAmbiguous = errors.New("auxiliary axis has no fixed index")
	// ErrFixedIndexOutOfRange means a caller override points past the axis.
	ErrFixedIndexOutOfRange = errors.New("fixed index out of range")
	// ErrAxisLengthMismatch means a coordinate axis and the variable axis it
	// indexes have different lengths.
	ErrAxisLengthMismatch = errors.New("coordinate axis length mismatch")
)

// FixedAxisPolicy decides what happens to an auxiliary axis longer than one
// when the caller supplied no index for it.
type FixedAxisPolicy int

const (
	// FixedAxisFirst reads index 0 and records a warning.
	FixedAxisFirst FixedAxisPolicy = iota
	// FixedAxisStrict fails the variable.
	FixedAxisStrict
)

// Resolution is the role assignment for one variable, reused for every
// timestep of an extraction.
type Resolution struct {
	Variable string
	Roles    []AxisRole
	Lengths  []int

	// Axis positions, -1 when the role is absent.
	TimeAxis      int
	LatitudeAxis  int
	LongitudeAxis int
	StationAxis   int

	// LowConfidence is set when roles were guessed from substrings or from
	// axis order rather than exact names.
	LowConfidence bool
	Warnings      []string

	fixed []int
}

// ResolveAxes assigns a role to every axis of desc. The first axis carrying a
// recognized name takes the role; later duplicates are read as fixed axes.
func ResolveAxes(desc VariableDescriptor, mode LocatorMode, names RoleNames, policy FixedAxisPolicy) (*Resolution, error) {
	names = names.WithDefaults()
	rank := desc.Rank()
	res := &Resolution{
		Variable:      desc.Name,
		Roles:         make([]AxisRole, rank),
		Lengths:       make([]int, rank),
		TimeAxis:      -1,
		LatitudeAxis:  -1,
		LongitudeAxis: -1,
		StationAxis:   -1,
		fixed:         make([]int, rank),
	}

	for i, axis := range desc.Axes {
		res.Lengths[i] = axis.Length
		role := ClassifyAxis(axis.Name, axis.Length, names)
		if role == RoleUnresolved {
			return nil, fmt.Errorf("%s axis %d: %w", desc.Name, i, ErrUnresolvedAxis)
		}
		// Spatial names that do not belong to the addressing mode are auxiliary.
		if (mode == LocatorGrid && role == RoleStation) ||
			(mode == LocatorStation && (role == RoleLatitude || role == RoleLongitude)) {
			role = RoleFixed
		}
		if role != RoleFixed && res.position(role) >= 0 {
			role = RoleFixed
		}
		res.assign(i, role)
	}

	if mode == LocatorStation && rank == 2 && (res.TimeAxis < 0 || res.StationAxis < 0) {
		res.stationFallback(desc)
	}

	if res.TimeAxis < 0 {
		return nil, fmt.Errorf("%s %v: %w", desc.Name, desc.AxisNames(), ErrTimeAxisUnresolved)
	}
	switch mode {
	case LocatorGrid:
		if rank > 2 && (res.LatitudeAxis < 0 || res.LongitudeAxis < 0) {
			return nil, fmt.Errorf("%s %v: %w", desc.Name, desc.AxisNames(), ErrSpatialAxisUnresolved)
		}
	case LocatorStation:
		if rank >= 2 && res.StationAxis < 0 {
			return nil, fmt.Errorf("%s %v: %w", desc.Name, desc.AxisNames(), ErrSpatialAxisUnresolved)
		}
	}

	for i, role := range res.Roles {
		if role != RoleFixed {
			continue
		}
		idx, err := fixedIndex(desc, desc.Axes[i], policy)
		if err != nil {
			return nil, err
		}
		if desc.Axes[i].Length > 1 {
			if _, ok := desc.FixedIndices[desc.Axes[i].Name]; !ok {
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"axis %s has length %d and no fixed index; reading index 0", desc.Axes[i].Name, desc.Axes[i].Length))
			}
		}
		res.fixed[i] = idx
	}
	return res, nil
}

// stationFallback handles rank-2 station series whose axis names are not
// conventional: first by substring, then by assuming (station, time) order.
func (r *Resolution) stationFallback(desc VariableDescriptor) {
	for i, axis := range desc.Axes {
		lower := strings.ToLower(axis.Name)
		if r.TimeAxis < 0 && i != r.StationAxis && strings.Contains(lower, "time") {
			r.assign(i, RoleTime)
			r.LowConfidence = true
		}
		if r.StationAxis < 0 && i != r.TimeAxis && strings.Contains(lower, "station") {
			r.assign(i, RoleStation)
			r.LowConfidence = true
		}
	}
	switch {
	case r.TimeAxis < 0 && r.StationAxis < 0:
		r.assign(0, RoleStation)
		r.assign(1, RoleTime)
	case r.TimeAxis < 0:
		r.assign(1-r.StationAxis, RoleTime)
	case r.StationAxis < 0:
		r.assign(1-r.TimeAxis, RoleStation)
	default:
		return
	}
	r.LowConfidence = true
	r.Warnings = append(r.Warnings, fmt.Sprintf(
		"axes %v not recognized; assuming station=%d time=%d", desc.AxisNames(), r.StationAxis, r.TimeAxis))
}

func (r *Resolution) assign(i int, role AxisRole) {
	r.Roles[i] = role
	switch role {
	case RoleTime:
		r.TimeAxis = i
	case RoleLatitude:
		r.LatitudeAxis = i
	case RoleLongitude:
		r.LongitudeAxis = i
	case RoleStation:
		r.StationAxis = i
	}
}

func (r *Resolution) position(role AxisRole) int {
	switch role {
	case RoleTime:
		return r.TimeAxis
	case RoleLatitude:
		return r.LatitudeAxis
	case RoleLongitude:
		return r.LongitudeAxis
	case RoleStation:
		return r.StationAxis
	default:
		return -1
	}
}

func fixedIndex(desc VariableDescriptor, axis Axis, policy FixedAxisPolicy) (int, error) {
	if idx, ok := desc.FixedIndices[axis.Name]; ok {
		if idx < 0 || idx >= axis.Length {
			return 0, fmt.Errorf("%s axis %s index %d (length %d): %w",
				desc.Name, axis.Name, idx, axis.Length, ErrFixedIndexOutOfRange)
		}
		return idx, nil
	}
	if axis.Length > 1 && policy == FixedAxisStrict {
		return 0, fmt.Errorf("%s axis %s (length %d): %w", desc.Name, axis.Name, axis.Length, ErrFixedAxisAmbiguous)
	}
	return 0, nil
}

// CheckAxis verifies that a coordinate axis of the given role has the same
// length as the variable axis it indexes. Roles absent from the variable pass.
func (r *Resolution) CheckAxis(role AxisRole, length int) error {
	pos := r.position(role)
	if pos < 0 {
		return nil
	}
	if r.Lengths[pos] != length {
		return fmt.Errorf("%s %s axis has length %d, coordinate has %d: %w",
			r.Variable, role, r.Lengths[pos], length, ErrAxisLengthMismatch)
	}
	return nil
}

// Slice builds the single-element slice for one timestep at loc.
func (r *Resolution) Slice(timeIndex int, loc Location) SliceDescriptor {
	origin := make([]int, len(r.Roles))
	shape := make([]int, len(r.Roles))
	for i, role := range r.Roles {
		shape[i] = 1
		switch role {
		case RoleTime:
			origin[i] = timeIndex
		case RoleLatitude:
			origin[i] = loc.Grid.LatIndex
		case RoleLongitude:
			origin[i] = loc.Grid.LonIndex
		case RoleStation:
			origin[i] = loc.StationIndex
		default:
			origin[i] = r.fixed[i]
		}
	}
	return SliceDescriptor{Origin: origin, Shape: shape}
}
