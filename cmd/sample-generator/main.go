// Command sample-generator writes synthetic KNMI-shaped NetCDF files for local
// testing of the extraction server and ncextract.
//
// Usage:
//
//	go run ./cmd/sample-generator -kind grid -out ./data/air-temperature-hagl.nc
//	go run -tags libnetcdf ./cmd/sample-generator -kind station -format netcdf4 -out ./data/KMDS__OPER_P___10M_OBS_L2.nc
package main

import (
	"flag"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.ngs.io/knmi-forecast/internal/adapter/dataset/ncfixture"
)

// RegionalGrid defines the geographic bounds and resolution.
type RegionalGrid struct {
	LatMin     float64
	LatMax     float64
	LonMin     float64
	LonMax     float64
	Resolution float64 // degrees
}

// KNMI 10-minute station subset: De Bilt, Schiphol, Vlissingen, Eelde, Maastricht.
var stations = []struct {
	Lat, Lon float64
}{
	{52.100, 5.180},
	{52.318, 4.790},
	{51.442, 3.596},
	{53.125, 6.585},
	{50.906, 5.762},
}

func main() {
	kind := flag.String("kind", "grid", "File kind: grid (air-temperature-hagl) or station (10-minute observations)")
	format := flag.String("format", "classic", "Output format: classic (pure Go) or netcdf4 (needs libnetcdf)")
	out := flag.String("out", "./data/sample.nc", "Output file path")
	latMin := flag.Float64("lat-min", 50.5, "Minimum latitude (grid)")
	latMax := flag.Float64("lat-max", 53.7, "Maximum latitude (grid)")
	lonMin := flag.Float64("lon-min", 3.2, "Minimum longitude (grid)")
	lonMax := flag.Float64("lon-max", 7.4, "Maximum longitude (grid)")
	resolution := flag.Float64("resolution", 0.1, "Grid resolution in degrees")
	steps := flag.Int("steps", 48, "Number of time steps")
	step := flag.Duration("step", time.Hour, "Time between steps")
	startStr := flag.String("start", "", "First valid time, RFC3339 (default: current hour)")
	flag.Parse()

	start := time.Now().UTC().Truncate(time.Hour)
	if *startStr != "" {
		t, err := time.Parse(time.RFC3339, *startStr)
		if err != nil {
			log.Fatalf("Invalid start time: %v", err)
		}
		start = t.UTC()
	}
	if *steps < 0 {
		log.Fatalf("Steps must not be negative")
	}
	times := make([]float64, *steps)
	for i := range times {
		times[i] = float64(start.Add(time.Duration(i) * *step).Unix())
	}

	var f ncfixture.File
	switch *kind {
	case "grid":
		grid := RegionalGrid{LatMin: *latMin, LatMax: *latMax, LonMin: *lonMin, LonMax: *lonMax, Resolution: *resolution}
		if grid.Resolution <= 0 || grid.LatMax < grid.LatMin || grid.LonMax < grid.LonMin {
			log.Fatalf("Invalid grid: %+v", grid)
		}
		f = temperatureGrid(grid, times).File()
		log.Printf("Grid: %.2f-%.2fN, %.2f-%.2fE, resolution: %.3f",
			grid.LatMin, grid.LatMax, grid.LonMin, grid.LonMax, grid.Resolution)
	case "station":
		f = stationSeries(times).File()
		log.Printf("Stations: %d", len(stations))
	default:
		log.Fatalf("Unknown kind: %s (use grid or station)", *kind)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	var err error
	switch *format {
	case "classic":
		err = f.WriteFile(*out)
	case "netcdf4":
		err = writeNetCDF4(*out, f)
	default:
		log.Fatalf("Unknown format: %s (use classic or netcdf4)", *format)
	}
	if err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
	log.Printf("Wrote %s (%s, %d time steps from %s)", *out, *format, len(times), start.Format(time.RFC3339))
}

// temperatureGrid builds a 2 m temperature field with a diurnal cycle, a
// north-south gradient and some smooth spatial variation.
func temperatureGrid(grid RegionalGrid, times []float64) ncfixture.TemperatureGrid {
	nLat := int((grid.LatMax-grid.LatMin)/grid.Resolution) + 1
	nLon := int((grid.LonMax-grid.LonMin)/grid.Resolution) + 1

	lat := make([]float64, nLat)
	for i := range lat {
		lat[i] = grid.LatMin + float64(i)*grid.Resolution
	}
	lon := make([]float64, nLon)
	for j := range lon {
		lon[j] = grid.LonMin + float64(j)*grid.Resolution
	}

	values := make([]float32, 0, len(times)*nLat*nLon)
	for _, t := range times {
		hour := math.Mod(t/3600, 24)
		diurnal := 5 * math.Sin((hour-9)*math.Pi/12)
		for i := range lat {
			for j := range lon {
				v := 15 + diurnal -
					0.8*(lat[i]-52) +
					0.5*math.Sin(lon[j]*math.Pi/2) +
					0.3*math.Cos((lat[i]+lon[j])*math.Pi/3)
				values = append(values, float32(v))
			}
		}
	}
	return ncfixture.TemperatureGrid{Times: times, Lats: lat, Lons: lon, Values: values}
}

// stationSeries builds plausible 10-minute observations; every seventh
// pressure reading is the fill value, as with a station that does not report.
func stationSeries(times []float64) ncfixture.StationSeries {
	s := ncfixture.StationSeries{
		Times:        times,
		Measurements: map[string][]float64{},
	}
	for _, st := range stations {
		s.Lats = append(s.Lats, st.Lat)
		s.Lons = append(s.Lons, st.Lon)
	}

	for name, gen := range map[string]func(st, k int, hour float64) float64{
		"ta": func(st, _ int, hour float64) float64 { return 14 - float64(st) + 4*math.Sin((hour-9)*math.Pi/12) },
		"rh": func(st, _ int, hour float64) float64 { return 80 - 15*math.Sin((hour-9)*math.Pi/12) + float64(st) },
		"ff": func(st, k int, _ float64) float64 { return 4 + float64(st) + math.Sin(float64(k)/3) },
		"dd": func(st, k int, _ float64) float64 { return math.Mod(220+float64(10*st+k), 360) },
		"pp": func(st, k int, _ float64) float64 {
			if (st+k)%7 == 6 {
				return -9999
			}
			return 1013 + float64(st)*0.4 - float64(k)*0.05
		},
	} {
		vals := make([]float64, 0, len(stations)*len(times))
		for st := range stations {
			for k, t := range times {
				vals = append(vals, math.Round(gen(st, k, math.Mod(t/3600, 24))*10)/10)
			}
		}
		s.Measurements[name] = vals
	}
	return s
}
