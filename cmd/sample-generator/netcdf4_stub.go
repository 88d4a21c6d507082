//go:build !libnetcdf

package main

import (
	"errors"

	"go.ngs.io/knmi-forecast/internal/adapter/dataset/ncfixture"
)

func writeNetCDF4(string, ncfixture.File) error {
	return errors.New("netcdf4 output needs libnetcdf: rebuild with -tags libnetcdf")
}
