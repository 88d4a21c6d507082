package domain

import (
	"errors"
	"slices"
	"testing"
)

func desc(name string, axes ...Axis) VariableDescriptor {
	return VariableDescriptor{Name: name, Axes: axes, Type: ElementFloat32}
}

func TestClassifyAxis(t *testing.T) {
	names := DefaultRoleNames()
	tests := []struct {
		name   string
		length int
		want   AxisRole
	}{
		{"time", 48, RoleTime},
		{"latitude", 390, RoleLatitude},
		{"lat", 390, RoleLatitude},
		{"longitude", 390, RoleLongitude},
		{"lon", 390, RoleLongitude},
		{"station", 50, RoleStation},
		{"stations", 50, RoleStation},
		{"temp_at_hagl", 1, RoleFixed},
		{"Time", 48, RoleFixed},
		{"", 1, RoleUnresolved},
		{"time", -1, RoleUnresolved},
	}

	for _, tt := range tests {
		if got := ClassifyAxis(tt.name, tt.length, names); got != tt.want {
			t.Errorf("ClassifyAxis(%q, %d) = %v, want %v", tt.name, tt.length, got, tt.want)
		}
	}
}

func TestClassifyAxis_CustomNames(t *testing.T) {
	names := RoleNames{Time: []string{"valid_time"}}.WithDefaults()
	if got := ClassifyAxis("valid_time", 3, names); got != RoleTime {
		t.Errorf("custom time name: got %v, want time", got)
	}
	if got := ClassifyAxis("time", 3, names); got != RoleFixed {
		t.Errorf("replaced default: got %v, want fixed", got)
	}
	if got := ClassifyAxis("lat", 3, names); got != RoleLatitude {
		t.Errorf("untouched default: got %v, want latitude", got)
	}
}

func TestResolveAxes_GridWithHeightAxis(t *testing.T) {
	d := desc("air-temperature-hagl",
		Axis{"time", 2}, Axis{"temp_at_hagl", 1}, Axis{"lat", 2}, Axis{"lon", 2})

	res, err := ResolveAxes(d, LocatorGrid, RoleNames{}, FixedAxisFirst)
	if err != nil {
		t.Fatalf("ResolveAxes() error = %v", err)
	}
	want := []AxisRole{RoleTime, RoleFixed, RoleLatitude, RoleLongitude}
	if !slices.Equal(res.Roles, want) {
		t.Errorf("Roles = %v, want %v", res.Roles, want)
	}
	if res.LowConfidence || len(res.Warnings) != 0 {
		t.Errorf("unexpected low confidence: %v", res.Warnings)
	}

	s := res.Slice(1, Location{Grid: GridPoint{LatIndex: 1, LonIndex: 0}})
	if !slices.Equal(s.Origin, []int{1, 0, 1, 0}) {
		t.Errorf("Origin = %v, want [1 0 1 0]", s.Origin)
	}
	if !slices.Equal(s.Shape, []int{1, 1, 1, 1}) {
		t.Errorf("Shape = %v, want all ones", s.Shape)
	}
}

func TestResolveAxes_FixedOverride(t *testing.T) {
	d := desc("wind", Axis{"time", 2}, Axis{"height", 3}, Axis{"lat", 2}, Axis{"lon", 2}).
		WithFixedIndices(map[string]int{"height": 2})

	res, err := ResolveAxes(d, LocatorGrid, RoleNames{}, FixedAxisStrict)
	if err != nil {
		t.Fatalf("ResolveAxes() error = %v", err)
	}
	if got := res.Slice(0, Location{}).Origin[1]; got != 2 {
		t.Errorf("height index = %d, want 2", got)
	}

	d = d.WithFixedIndices(map[string]int{"height": 3})
	if _, err := ResolveAxes(d, LocatorGrid, RoleNames{}, FixedAxisFirst); !errors.Is(err, ErrFixedIndexOutOfRange) {
		t.Errorf("out of range override: error = %v, want ErrFixedIndexOutOfRange", err)
	}
}

func TestResolveAxes_AmbiguousFixedAxis(t *testing.T) {
	d := desc("wind", Axis{"time", 2}, Axis{"height", 3}, Axis{"lat", 2}, Axis{"lon", 2})

	if _, err := ResolveAxes(d, LocatorGrid, RoleNames{}, FixedAxisStrict); !errors.Is(err, ErrFixedAxisAmbiguous) {
		t.Errorf("strict: error = %v, want ErrFixedAxisAmbiguous", err)
	}

	res, err := ResolveAxes(d, LocatorGrid, RoleNames{}, FixedAxisFirst)
	if err != nil {
		t.Fatalf("lenient: error = %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("lenient: warnings = %v, want one", res.Warnings)
	}
}

func TestResolveAxes_DuplicateRoleIsFixed(t *testing.T) {
	d := desc("t", Axis{"time", 2}, Axis{"lat", 2}, Axis{"latitude", 1}, Axis{"lon", 2})

	res, err := ResolveAxes(d, LocatorGrid, RoleNames{}, FixedAxisFirst)
	if err != nil {
		t.Fatalf("ResolveAxes() error = %v", err)
	}
	if res.LatitudeAxis != 1 || res.Roles[2] != RoleFixed {
		t.Errorf("Roles = %v, latitude axis = %d", res.Roles, res.LatitudeAxis)
	}
}

func TestResolveAxes_MissingRoles(t *testing.T) {
	tests := []struct {
		name string
		d    VariableDescriptor
		mode LocatorMode
		want error
	}{
		{"no time", desc("v", Axis{"lat", 2}, Axis{"lon", 2}), LocatorGrid, ErrTimeAxisUnresolved},
		{"grid rank 3 no lon", desc("v", Axis{"time", 2}, Axis{"lat", 2}, Axis{"x", 2}), LocatorGrid, ErrSpatialAxisUnresolved},
		{"station rank 3 no station", desc("v", Axis{"time", 2}, Axis{"a", 2}, Axis{"b", 2}), LocatorStation, ErrSpatialAxisUnresolved},
		{"unnamed axis", desc("v", Axis{"time", 2}, Axis{"", 2}), LocatorGrid, ErrUnresolvedAxis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ResolveAxes(tt.d, tt.mode, RoleNames{}, FixedAxisFirst); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestResolveAxes_TimeOnly(t *testing.T) {
	res, err := ResolveAxes(desc("v", Axis{"time", 4}), LocatorGrid, RoleNames{}, FixedAxisFirst)
	if err != nil {
		t.Fatalf("ResolveAxes() error = %v", err)
	}
	if !slices.Equal(res.Slice(3, Location{}).Origin, []int{3}) {
		t.Errorf("Origin = %v, want [3]", res.Slice(3, Location{}).Origin)
	}
}

func TestResolveAxes_StationNamed(t *testing.T) {
	d := desc("ta", Axis{"station", 3}, Axis{"time", 2})

	res, err := ResolveAxes(d, LocatorStation, RoleNames{}, FixedAxisFirst)
	if err != nil {
		t.Fatalf("ResolveAxes() error = %v", err)
	}
	if res.LowConfidence {
		t.Error("named axes should not be low confidence")
	}
	if got := res.Slice(1, Location{StationIndex: 2}).Origin; !slices.Equal(got, []int{2, 1}) {
		t.Errorf("Origin = %v, want [2 1]", got)
	}
}

// Unrecognized rank-2 station variables are read as (station, time).
func TestResolveAxes_StationFallback(t *testing.T) {
	d := desc("ta", Axis{"x", 3}, Axis{"y", 2})

	res, err := ResolveAxes(d, LocatorStation, RoleNames{}, FixedAxisStrict)
	if err != nil {
		t.Fatalf("ResolveAxes() error = %v", err)
	}
	if res.StationAxis != 0 || res.TimeAxis != 1 {
		t.Errorf("station=%d time=%d, want station=0 time=1", res.StationAxis, res.TimeAxis)
	}
	if !res.LowConfidence {
		t.Error("expected LowConfidence")
	}
	if got := res.Slice(1, Location{StationIndex: 2}).Origin; !slices.Equal(got, []int{2, 1}) {
		t.Errorf("Origin = %v, want [2 1]", got)
	}
}

func TestResolveAxes_StationFallbackSubstring(t *testing.T) {
	d := desc("ta", Axis{"obs_time", 2}, Axis{"station_id", 3})

	res, err := ResolveAxes(d, LocatorStation, RoleNames{}, FixedAxisFirst)
	if err != nil {
		t.Fatalf("ResolveAxes() error = %v", err)
	}
	if res.TimeAxis != 0 || res.StationAxis != 1 || !res.LowConfidence {
		t.Errorf("time=%d station=%d low=%v", res.TimeAxis, res.StationAxis, res.LowConfidence)
	}
}

func TestResolveAxes_StationModeLatLonAreFixed(t *testing.T) {
	d := desc("ta", Axis{"time", 2}, Axis{"station", 3}, Axis{"lat", 1})

	res, err := ResolveAxes(d, LocatorStation, RoleNames{}, FixedAxisFirst)
	if err != nil {
		t.Fatalf("ResolveAxes() error = %v", err)
	}
	if res.Roles[2] != RoleFixed || res.LatitudeAxis != -1 {
		t.Errorf("Roles = %v", res.Roles)
	}
}

func TestResolution_CheckAxis(t *testing.T) {
	res, err := ResolveAxes(desc("v", Axis{"time", 2}, Axis{"lat", 3}, Axis{"lon", 4}), LocatorGrid, RoleNames{}, FixedAxisFirst)
	if err != nil {
		t.Fatalf("ResolveAxes() error = %v", err)
	}
	if err := res.CheckAxis(RoleLatitude, 3); err != nil {
		t.Errorf("matching latitude: %v", err)
	}
	if err := res.CheckAxis(RoleLongitude, 3); !errors.Is(err, ErrAxisLengthMismatch) {
		t.Errorf("mismatched longitude: error = %v, want ErrAxisLengthMismatch", err)
	}
	if err := res.CheckAxis(RoleStation, 10); err != nil {
		t.Errorf("absent role: %v", err)
	}
}
