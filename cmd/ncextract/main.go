// Command ncextract prints the point forecast for one NetCDF file as JSON.
//
// Usage:
//
//	ncextract --file air-temperature-hagl.nc --lat 52.1 --lon 5.18 \
//	  --dataset uwcw_extra_lv_ha43_nl_2km --file-kind air-temperature-hagl
//	ncextract --file obs.nc --lat 52.1 --lon 5.18 --mode station --var ta=temperature
package main

import (
	"fmt"
	"os"

	"go.ngs.io/knmi-forecast/cmd/ncextract/cmd"
)

func main() {
	if err := cmd.Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
