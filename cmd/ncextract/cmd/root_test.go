package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/knmi-forecast/internal/adapter/dataset/ncfixture"
	"go.ngs.io/knmi-forecast/internal/domain"
	"go.ngs.io/knmi-forecast/internal/usecase"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "uwcw_extra_lv_ha43_nl_2km_air-temperature-hagl_202506010000.nc")
	require.NoError(t, ncfixture.TwoByTwo().File().WriteFile(path))
	return path
}

func TestRun_Vars(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(&stdout, &stderr, options{
		path:    writeFixture(t),
		lat:     52.4,
		lon:     4.4,
		mode:    "grid",
		vars:    []string{"air-temperature-hagl=temperature"},
		fixed:   []string{"temp_at_hagl=0"},
		backend: "classic",
	})
	require.NoError(t, err, stderr.String())

	var fc usecase.Forecast
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &fc))
	require.Len(t, fc.Samples, 2)
	assert.Equal(t, 13.0, *fc.Samples[0].Temperature)
	assert.Equal(t, 17.0, *fc.Samples[1].Temperature)
}

func TestRun_Catalog(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(&stdout, &stderr, options{
		path:       writeFixture(t),
		lat:        52.0,
		lon:        4.0,
		dataset:    "uwcw_extra_lv_ha43_nl_2km",
		configPath: filepath.Join("..", "..", "..", "config", "config.yaml"),
		backend:    "auto",
	})
	require.NoError(t, err, stderr.String())

	var fc usecase.Forecast
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &fc))
	require.Len(t, fc.Samples, 2)
	assert.Equal(t, 10.0, *fc.Samples[0].Temperature)
}

// Several points are read concurrently from one open file.
func TestRun_Points(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(&stdout, &stderr, options{
		path:    writeFixture(t),
		points:  []string{"52.4,4.4", "52.0, 4.0", "52.3,4.1"},
		mode:    "grid",
		vars:    []string{"air-temperature-hagl=temperature"},
		fixed:   []string{"temp_at_hagl=0"},
		backend: "native",
	})
	require.NoError(t, err, stderr.String())

	var fcs []usecase.Forecast
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &fcs))
	require.Len(t, fcs, 3)
	want := [][2]float64{{13, 17}, {10, 14}, {12, 16}}
	for i, fc := range fcs {
		require.Len(t, fc.Samples, 2, "point %d", i)
		assert.Equal(t, want[i][0], *fc.Samples[0].Temperature, "point %d", i)
		assert.Equal(t, want[i][1], *fc.Samples[1].Temperature, "point %d", i)
	}
}

// A NetCDF-4 station file with an int64 time axis goes through the whole
// extraction, decoder picked from the file signature.
func TestRun_NetCDF4Stations(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(&stdout, &stderr, options{
		path:    filepath.Join("..", "..", "..", "internal", "adapter", "dataset", "backend", "testdata", "stations.nc4"),
		lat:     52.3,
		lon:     4.8,
		mode:    "station",
		vars:    []string{"ta=temperature"},
		backend: "auto",
	})
	require.NoError(t, err, stderr.String())

	var fc usecase.Forecast
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &fc))
	require.Empty(t, fc.Reason)
	require.Len(t, fc.Samples, 2)
	assert.Equal(t, 1, fc.Location.StationIndex)
	assert.Equal(t, time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC), fc.Samples[0].Time)
	assert.Equal(t, time.Date(2025, 6, 1, 6, 10, 0, 0, time.UTC), fc.Samples[1].Time)
	require.NotNil(t, fc.Samples[0].Temperature)
	assert.Equal(t, 11.2, *fc.Samples[0].Temperature)
	assert.Nil(t, fc.Samples[1].Temperature)
}

func TestRun_InvalidPoint(t *testing.T) {
	tests := []struct {
		name  string
		point string
	}{
		{"no comma", "52.4"},
		{"bad latitude", "north,4.4"},
		{"bad longitude", "52.4,east"},
		{"out of range", "91,4.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(&stdout, &stderr, options{
				path:    writeFixture(t),
				points:  []string{tt.point},
				vars:    []string{"air-temperature-hagl=temperature"},
				mode:    "grid",
				backend: "classic",
			})
			assert.Error(t, err)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestBuildRequest_Errors(t *testing.T) {
	tests := []struct {
		name string
		o    options
	}{
		{"nothing to extract", options{}},
		{"both sources", options{dataset: "d", vars: []string{"ta=temperature"}}},
		{"bad var", options{vars: []string{"ta"}}},
		{"unknown measurement", options{vars: []string{"ta=visibility"}}},
		{"bad mode", options{mode: "swath", vars: []string{"ta=temperature"}}},
		{"bad fixed", options{vars: []string{"ta=temperature"}, fixed: []string{"height=-1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildRequest(tt.o)
			assert.Error(t, err)
		})
	}
}

func TestBuildRequest_Vars(t *testing.T) {
	req, err := buildRequest(options{
		mode:  "station",
		vars:  []string{"ta=temperature", "ff=wind_speed"},
		fixed: []string{"height=1"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LocatorStation, req.Mode)
	require.Len(t, req.Variables, 2)
	assert.Equal(t, domain.WindSpeed, req.Variables[1].Measurement)
	assert.Equal(t, map[string]int{"height": 1}, req.Variables[0].Fixed)
}
