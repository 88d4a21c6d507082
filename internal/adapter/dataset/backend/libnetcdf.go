//go:build libnetcdf

package backend

import (
	"go.ngs.io/knmi-forecast/internal/adapter/dataset"
	"go.ngs.io/knmi-forecast/internal/adapter/dataset/libnetcdf"
)

const libnetcdfEnabled = true

func newLibNetCDF(tempDir string) (dataset.Opener, error) {
	return libnetcdf.Opener{TempDir: tempDir}, nil
}
