// Package backend selects a dataset implementation by name.
package backend

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"go.ngs.io/knmi-forecast/internal/adapter/dataset"
	"go.ngs.io/knmi-forecast/internal/adapter/dataset/classic"
	"go.ngs.io/knmi-forecast/internal/adapter/dataset/native"
)

const (
	Auto      = "auto"
	Classic   = "classic"
	Native    = "native"
	LibNetCDF = "libnetcdf"
)

// ErrUnavailable is returned for a backend that was not compiled in.
var ErrUnavailable = errors.New("dataset backend not available in this build")

// Names lists the backend names this binary accepts. libnetcdf needs cgo and
// is only included in builds tagged libnetcdf.
func Names() []string {
	names := []string{Auto, Classic, Native}
	if libnetcdfEnabled {
		names = append(names, LibNetCDF)
	}
	return names
}

var (
	cdfMagic  = []byte("CDF")
	hdf5Magic = []byte("\x89HDF\r\n\x1a\n")
)

// New returns the opener for name. tempDir is only used by libnetcdf.
func New(name, tempDir string) (dataset.Opener, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Auto:
		return dataset.OpenerFunc(openAuto), nil
	case Classic:
		return classic.Opener(), nil
	case Native:
		return native.Opener(), nil
	case LibNetCDF:
		return newLibNetCDF(tempDir)
	default:
		return nil, fmt.Errorf("unknown dataset backend %q (use one of %s)", name, strings.Join(Names(), ", "))
	}
}

// openAuto picks a pure-Go decoder from the file signature: classic files
// go to cdf, HDF5-based NetCDF-4 files to the native decoder.
func openAuto(data []byte) (dataset.Dataset, error) {
	switch {
	case bytes.HasPrefix(data, cdfMagic):
		return classic.Open(data)
	case bytes.HasPrefix(data, hdf5Magic):
		return native.Open(data)
	default:
		return nil, fmt.Errorf("not a NetCDF file (%d bytes, unknown signature)", len(data))
	}
}
