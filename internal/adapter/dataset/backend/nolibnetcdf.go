//go:build !libnetcdf

package backend

import (
	"fmt"

	"go.ngs.io/knmi-forecast/internal/adapter/dataset"
)

const libnetcdfEnabled = false

func newLibNetCDF(string) (dataset.Opener, error) {
	return nil, fmt.Errorf("%s (rebuild with -tags libnetcdf): %w", LibNetCDF, ErrUnavailable)
}
