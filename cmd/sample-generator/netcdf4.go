//go:build libnetcdf

package main

import (
	"fmt"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/knmi-forecast/internal/adapter/dataset/ncfixture"
)

// writeNetCDF4 writes f as a NetCDF-4 (HDF5) file through libnetcdf. A zero
// length dimension becomes unlimited.
func writeNetCDF4(path string, f ncfixture.File) error {
	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = ds.Close() }()

	dims := make(map[string]netcdf.Dim, len(f.Dims))
	for _, d := range f.Dims {
		dim, err := ds.AddDim(d.Name, uint64(d.Length))
		if err != nil {
			return fmt.Errorf("dimension %s: %w", d.Name, err)
		}
		dims[d.Name] = dim
	}

	vars := make([]netcdf.Var, len(f.Vars))
	for i, v := range f.Vars {
		vdims := make([]netcdf.Dim, len(v.Dims))
		for k, name := range v.Dims {
			d, ok := dims[name]
			if !ok {
				return fmt.Errorf("variable %s: unknown dimension %s", v.Name, name)
			}
			vdims[k] = d
		}
		t, err := ncType(v.Data)
		if err != nil {
			return fmt.Errorf("variable %s: %w", v.Name, err)
		}
		if vars[i], err = ds.AddVar(v.Name, t, vdims); err != nil {
			return fmt.Errorf("variable %s: %w", v.Name, err)
		}
		for name, val := range v.Attrs {
			if err := writeAttr(vars[i].Attr(name), val); err != nil {
				return fmt.Errorf("variable %s attribute %s: %w", v.Name, name, err)
			}
		}
	}
	for name, val := range f.Attrs {
		if err := writeAttr(ds.Attr(name), val); err != nil {
			return fmt.Errorf("global attribute %s: %w", name, err)
		}
	}

	if err := ds.EndDef(); err != nil {
		return fmt.Errorf("enddef: %w", err)
	}

	for i, v := range f.Vars {
		if err := writeData(vars[i], v.Data); err != nil {
			return fmt.Errorf("write %s: %w", v.Name, err)
		}
	}
	return nil
}

func ncType(data any) (netcdf.Type, error) {
	switch data.(type) {
	case []float32:
		return netcdf.FLOAT, nil
	case []float64:
		return netcdf.DOUBLE, nil
	case []int32:
		return netcdf.INT, nil
	case []int16:
		return netcdf.SHORT, nil
	default:
		return 0, fmt.Errorf("unsupported data type %T", data)
	}
}

func writeData(v netcdf.Var, data any) error {
	switch d := data.(type) {
	case []float32:
		if len(d) == 0 {
			return nil
		}
		return v.WriteFloat32s(d)
	case []float64:
		if len(d) == 0 {
			return nil
		}
		return v.WriteFloat64s(d)
	case []int32:
		if len(d) == 0 {
			return nil
		}
		return v.WriteInt32s(d)
	case []int16:
		if len(d) == 0 {
			return nil
		}
		return v.WriteInt16s(d)
	default:
		return fmt.Errorf("unsupported data type %T", data)
	}
}

func writeAttr(a netcdf.Attr, val any) error {
	switch x := val.(type) {
	case string:
		return a.WriteBytes([]byte(x))
	case []float32:
		return a.WriteFloat32s(x)
	case []float64:
		return a.WriteFloat64s(x)
	case []int32:
		return a.WriteInt32s(x)
	case []int16:
		return a.WriteInt16s(x)
	default:
		return fmt.Errorf("unsupported attribute type %T", val)
	}
}
