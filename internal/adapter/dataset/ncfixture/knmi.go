package ncfixture

import "sort"

// TimeUnits is the units attribute KNMI uses for its time axes.
const TimeUnits = "seconds since 1970-01-01T00:00:00+00:00"

// FillFloat32 is the default NetCDF fill value for FLOAT variables.
const FillFloat32 float32 = 9.96921e36

// TemperatureGrid describes a HARMONIE "air-temperature-hagl" file:
// air-temperature-hagl(time, temp_at_hagl, lat, lon).
type TemperatureGrid struct {
	Times []float64 // seconds since the epoch
	Lats  []float64
	Lons  []float64

	// Values in (time, lat, lon) order; the height axis has length 1.
	Values []float32

	// TimeUnits overrides the units attribute; "-" omits it.
	TimeUnits string
}

// File returns the NetCDF layout of g.
func (g TemperatureGrid) File() File {
	timeLen := len(g.Times)
	timeAttrs := map[string]any{"units": TimeUnits, "standard_name": "time"}
	switch g.TimeUnits {
	case "":
	case "-":
		delete(timeAttrs, "units")
	default:
		timeAttrs["units"] = g.TimeUnits
	}
	return File{
		Dims: []Dim{
			{Name: "time", Length: timeLen},
			{Name: "temp_at_hagl", Length: 1},
			{Name: "lat", Length: len(g.Lats)},
			{Name: "lon", Length: len(g.Lons)},
		},
		Vars: []Var{
			{Name: "time", Dims: []string{"time"}, Data: g.Times, Attrs: timeAttrs},
			{Name: "temp_at_hagl", Dims: []string{"temp_at_hagl"}, Data: []float64{2},
				Attrs: map[string]any{"units": "m", "long_name": "height above ground level"}},
			{Name: "lat", Dims: []string{"lat"}, Data: g.Lats, Attrs: map[string]any{"units": "degrees_north"}},
			{Name: "lon", Dims: []string{"lon"}, Data: g.Lons, Attrs: map[string]any{"units": "degrees_east"}},
			{Name: "air-temperature-hagl", Dims: []string{"time", "temp_at_hagl", "lat", "lon"}, Data: g.Values,
				Attrs: map[string]any{
					"units":      "C",
					"long_name":  "Air temperature at height above ground level",
					"_FillValue": []float32{FillFloat32},
				}},
		},
		Attrs: map[string]any{"title": "uwcw_extra_lv_ha43_nl_2km"},
	}
}

// TwoByTwo returns the 2x2 grid with two hourly steps used throughout the
// tests: latitudes 52.0/52.4, longitudes 4.0/4.4, and the cell (1,1) reading
// 13 then 17.
func TwoByTwo() TemperatureGrid {
	return TemperatureGrid{
		Times: []float64{0, 3600},
		Lats:  []float64{52.0, 52.4},
		Lons:  []float64{4.0, 4.4},
		Values: []float32{
			10, 11,
			12, 13,

			14, 15,
			16, 17,
		},
	}
}

// StationSeries describes a KNMI 10-minute observation file:
// one (station, time) variable per measurement plus per-station lat/lon.
type StationSeries struct {
	Lats  []float64
	Lons  []float64
	Times []float64

	// Measurements maps variable name to values in (station, time) order.
	Measurements map[string][]float64

	// AxisNames overrides the dimension names, e.g. {"x", "y"}.
	AxisNames [2]string
}

// File returns the NetCDF layout of s.
func (s StationSeries) File() File {
	stationDim, timeDim := "station", "time"
	if s.AxisNames[0] != "" {
		stationDim, timeDim = s.AxisNames[0], s.AxisNames[1]
	}
	f := File{
		Dims: []Dim{
			{Name: stationDim, Length: len(s.Lats)},
			{Name: timeDim, Length: len(s.Times)},
		},
		Vars: []Var{
			{Name: "time", Dims: []string{timeDim}, Data: s.Times, Attrs: map[string]any{"units": TimeUnits}},
			{Name: "lat", Dims: []string{stationDim}, Data: s.Lats, Attrs: map[string]any{"units": "degrees_north"}},
			{Name: "lon", Dims: []string{stationDim}, Data: s.Lons, Attrs: map[string]any{"units": "degrees_east"}},
		},
		Attrs: map[string]any{"title": "Actuele10mindataKNMIstations"},
	}
	names := make([]string, 0, len(s.Measurements))
	for name := range s.Measurements {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f.Vars = append(f.Vars, Var{
			Name: name, Dims: []string{stationDim, timeDim}, Data: s.Measurements[name],
			Attrs: map[string]any{"_FillValue": []float64{-9999}},
		})
	}
	return f
}

// ReferenceGrid is the smallest HARMONIE-like file: a 3-D
// air-temperature-hagl(time, latitude, longitude) on a 0.5 degree grid with
// two hourly steps. The cell nearest (52.4, 4.4) is (1,1) and reads 13 then 17.
func ReferenceGrid() File {
	return File{
		Dims: []Dim{
			{Name: "time", Length: 2},
			{Name: "latitude", Length: 2},
			{Name: "longitude", Length: 2},
		},
		Vars: []Var{
			{Name: "time", Dims: []string{"time"}, Data: []float64{0, 3600},
				Attrs: map[string]any{"units": "seconds since 1970-01-01T00:00:00Z"}},
			{Name: "latitude", Dims: []string{"latitude"}, Data: []float64{52.0, 52.5}},
			{Name: "longitude", Dims: []string{"longitude"}, Data: []float64{4.0, 4.5}},
			{Name: "air-temperature-hagl", Dims: []string{"time", "latitude", "longitude"},
				Data: []float32{10, 11, 12, 13, 14, 15, 16, 17}},
		},
	}
}
