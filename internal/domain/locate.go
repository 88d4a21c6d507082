package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ErrNoClosestPoint is returned when no spatial reference point can be chosen.
var ErrNoClosestPoint = errors.New("no closest point found")

// Coordinate is a target position in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LocatorMode selects how spatial reference points are addressed.
type LocatorMode int

const (
	// LocatorGrid addresses a rectangular grid via independent 1-D latitude
	// and longitude axes.
	LocatorGrid LocatorMode = iota
	// LocatorStation addresses an irregular point set via parallel per-station
	// latitude and longitude arrays.
	LocatorStation
)

func (m LocatorMode) String() string {
	if m == LocatorStation {
		return "station"
	}
	return "grid"
}

// ParseLocatorMode parses "grid" or "station". The empty string means grid.
func ParseLocatorMode(s string) (LocatorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "grid":
		return LocatorGrid, nil
	case "station":
		return LocatorStation, nil
	default:
		return LocatorGrid, fmt.Errorf("unknown locator mode %q (use grid or station)", s)
	}
}

// GridPoint is a (latitude, longitude) index pair into a rectangular grid.
type GridPoint struct {
	LatIndex int `json:"lat_index"`
	LonIndex int `json:"lon_index"`
}

// Location is the resolved spatial reference point for one extraction.
type Location struct {
	Mode         LocatorMode `json:"-"`
	Grid         GridPoint   `json:"grid"`
	StationIndex int         `json:"station_index"`
	Lat          float64     `json:"lat"` // Axis value at the chosen point.
	Lon          float64     `json:"lon"`
}

// NearestIndex returns the index minimizing |axis[i]-target|. Ties keep the
// earliest index; NaN entries are never chosen.
func NearestIndex(axis []float64, target float64) (int, error) {
	diffs := make([]float64, len(axis))
	for i, v := range axis {
		diffs[i] = math.Abs(v - target)
	}
	return argmin(diffs)
}

// NearestGridPoint finds the grid cell closest to target by scanning the
// latitude and longitude axes independently. Longitude wraparound at the
// antimeridian is not handled.
func NearestGridPoint(lats, lons []float64, target Coordinate) (GridPoint, error) {
	latIdx, err := NearestIndex(lats, target.Lat)
	if err != nil {
		return GridPoint{}, fmt.Errorf("latitude axis: %w", err)
	}
	lonIdx, err := NearestIndex(lons, target.Lon)
	if err != nil {
		return GridPoint{}, fmt.Errorf("longitude axis: %w", err)
	}
	return GridPoint{LatIndex: latIdx, LonIndex: lonIdx}, nil
}

// NearestStation finds the station minimizing the squared planar distance in
// degree space. Longitude degrees are not scaled by latitude.
func NearestStation(lats, lons []float64, target Coordinate) (int, error) {
	if len(lats) != len(lons) {
		return 0, fmt.Errorf("station coordinates differ in length: %d latitudes, %d longitudes", len(lats), len(lons))
	}
	dist := make([]float64, len(lats))
	for i := range lats {
		dLat := lats[i] - target.Lat
		dLon := lons[i] - target.Lon
		dist[i] = dLat*dLat + dLon*dLon
	}
	return argmin(dist)
}

// Locate resolves target against the coordinate axes using the given mode.
func Locate(mode LocatorMode, lats, lons []float64, target Coordinate) (Location, error) {
	switch mode {
	case LocatorStation:
		idx, err := NearestStation(lats, lons, target)
		if err != nil {
			return Location{}, err
		}
		return Location{Mode: mode, StationIndex: idx, Lat: lats[idx], Lon: lons[idx]}, nil
	default:
		gp, err := NearestGridPoint(lats, lons, target)
		if err != nil {
			return Location{}, err
		}
		return Location{Mode: LocatorGrid, Grid: gp, Lat: lats[gp.LatIndex], Lon: lons[gp.LonIndex]}, nil
	}
}

// argmin wraps floats.MinIdx, which panics on empty input and keeps the first
// index on ties. NaN is mapped to +Inf so it can only win when nothing else is
// comparable, in which case there is no answer.
func argmin(vals []float64) (int, error) {
	if len(vals) == 0 {
		return 0, ErrNoClosestPoint
	}
	for i, v := range vals {
		if math.IsNaN(v) {
			vals[i] = math.Inf(1)
		}
	}
	idx := floats.MinIdx(vals)
	if math.IsInf(vals[idx], 1) {
		return 0, ErrNoClosestPoint
	}
	return idx, nil
}
