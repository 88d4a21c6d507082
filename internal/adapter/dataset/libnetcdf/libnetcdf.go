//go:build libnetcdf

// Package libnetcdf reads NetCDF files through the Unidata C library via
// fhs/go-netcdf. It handles every format libnetcdf does, including
// compressed NetCDF-4, at the cost of cgo and a temp file per dataset.
package libnetcdf

import (
	"fmt"
	"os"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/knmi-forecast/internal/adapter/dataset"
	"go.ngs.io/knmi-forecast/internal/domain"
)

// Opener stages uploaded bytes in TempDir (os.TempDir when empty) so the C
// library can open them by path.
type Opener struct {
	TempDir string
}

// Open implements dataset.Opener. The temp file is removed on Close, or
// immediately when the file cannot be opened.
func (o Opener) Open(data []byte) (dataset.Dataset, error) {
	tmp, err := os.CreateTemp(o.TempDir, "knmi-forecast-*.nc")
	if err != nil {
		return nil, fmt.Errorf("libnetcdf: stage file: %w", err)
	}
	path := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("libnetcdf: stage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("libnetcdf: stage file: %w", err)
	}

	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("libnetcdf: failed to open NetCDF file: %w", err)
	}
	return &Dataset{nc: nc, path: path}, nil
}

// Dataset is an open file backed by a temp file it owns.
type Dataset struct {
	nc     netcdf.Dataset
	path   string
	closed bool
}

var _ dataset.Dataset = (*Dataset)(nil)

// Path returns the staged file location.
func (d *Dataset) Path() string {
	return d.path
}

func (d *Dataset) variable(name string) (netcdf.Var, error) {
	if d.closed {
		return netcdf.Var{}, dataset.ErrClosed
	}
	v, err := d.nc.Var(name)
	if err != nil {
		return netcdf.Var{}, fmt.Errorf("%s: %w (%v)", name, dataset.ErrVariableNotFound, err)
	}
	return v, nil
}

func elementType(t netcdf.Type) domain.ElementType {
	switch t {
	case netcdf.FLOAT:
		return domain.ElementFloat32
	case netcdf.DOUBLE:
		return domain.ElementFloat64
	case netcdf.INT:
		return domain.ElementInt32
	case netcdf.SHORT:
		return domain.ElementInt16
	default:
		return domain.ElementUnsupported
	}
}

func axes(v netcdf.Var) ([]domain.Axis, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	out := make([]domain.Axis, len(dims))
	for i, dim := range dims {
		name, err := dim.Name()
		if err != nil {
			return nil, fmt.Errorf("failed to get dim%d name: %w", i, err)
		}
		n, err := dim.Len()
		if err != nil {
			return nil, fmt.Errorf("failed to get dim%d length: %w", i, err)
		}
		out[i] = domain.Axis{Name: name, Length: int(n)}
	}
	return out, nil
}

// Variable implements dataset.Dataset.
func (d *Dataset) Variable(name string) (domain.VariableDescriptor, error) {
	v, err := d.variable(name)
	if err != nil {
		return domain.VariableDescriptor{}, err
	}
	ax, err := axes(v)
	if err != nil {
		return domain.VariableDescriptor{}, fmt.Errorf("%s: %w", name, err)
	}
	t, err := v.Type()
	if err != nil {
		return domain.VariableDescriptor{}, fmt.Errorf("%s: failed to get var type: %w", name, err)
	}
	desc := domain.VariableDescriptor{Name: name, Axes: ax, Type: elementType(t)}
	if fv, ok := fillValue(v); ok {
		desc.FillValue = &fv
	}
	return desc, nil
}

// fillValue returns the numeric _FillValue attribute if present.
func fillValue(v netcdf.Var) (float64, bool) {
	a := v.Attr("_FillValue")
	if n, err := a.Len(); err != nil || n == 0 {
		return 0, false
	}
	t, err := a.Type()
	if err != nil {
		return 0, false
	}
	switch t {
	case netcdf.DOUBLE:
		buf := make([]float64, 1)
		if err := a.ReadFloat64s(buf); err == nil {
			return buf[0], true
		}
	case netcdf.FLOAT:
		buf := make([]float32, 1)
		if err := a.ReadFloat32s(buf); err == nil {
			return float64(buf[0]), true
		}
	case netcdf.INT:
		buf := make([]int32, 1)
		if err := a.ReadInt32s(buf); err == nil {
			return float64(buf[0]), true
		}
	case netcdf.SHORT:
		buf := make([]int16, 1)
		if err := a.ReadInt16s(buf); err == nil {
			return float64(buf[0]), true
		}
	}
	return 0, false
}

// ReadAxis implements dataset.Dataset.
func (d *Dataset) ReadAxis(name string) ([]float64, error) {
	v, err := d.variable(name)
	if err != nil {
		return nil, err
	}
	ax, err := axes(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(ax) != 1 {
		return nil, fmt.Errorf("%s has rank %d: %w", name, len(ax), dataset.ErrNotAxis)
	}
	length := ax[0].Length
	if length == 0 {
		return []float64{}, nil
	}

	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get var type: %w", name, err)
	}
	var raw any
	switch t {
	case netcdf.DOUBLE:
		data := make([]float64, length)
		err = v.ReadFloat64s(data)
		raw = data
	case netcdf.FLOAT:
		data := make([]float32, length)
		err = v.ReadFloat32s(data)
		raw = data
	case netcdf.INT:
		data := make([]int32, length)
		err = v.ReadInt32s(data)
		raw = data
	case netcdf.SHORT:
		data := make([]int16, length)
		err = v.ReadInt16s(data)
		raw = data
	case netcdf.INT64:
		// KNMI stores time axes as LONG.
		data := make([]int64, length)
		err = v.ReadInt64s(data)
		raw = data
	default:
		return nil, fmt.Errorf("%s (%v): %w", name, t, dataset.ErrUnsupportedType)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return dataset.Widen(raw)
}

// ReadScalar implements dataset.Dataset with a one-element hyperslab read.
func (d *Dataset) ReadScalar(name string, origin []int) (float64, error) {
	v, err := d.variable(name)
	if err != nil {
		return 0, err
	}
	ax, err := axes(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	lengths := make([]int, len(ax))
	for i, a := range ax {
		lengths[i] = a.Length
	}
	if err := dataset.CheckOrigin(name, lengths, origin); err != nil {
		return 0, err
	}

	start := make([]uint64, len(origin))
	count := make([]uint64, len(origin))
	for i, idx := range origin {
		start[i] = uint64(idx)
		count[i] = 1
	}

	t, err := v.Type()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to get var type: %w", name, err)
	}
	switch t {
	case netcdf.DOUBLE:
		buf := make([]float64, 1)
		if err := v.ReadFloat64Slice(buf, start, count); err != nil {
			return 0, fmt.Errorf("read %s%v: %w", name, origin, err)
		}
		return buf[0], nil
	case netcdf.FLOAT:
		buf := make([]float32, 1)
		if err := v.ReadFloat32Slice(buf, start, count); err != nil {
			return 0, fmt.Errorf("read %s%v: %w", name, origin, err)
		}
		return float64(buf[0]), nil
	case netcdf.INT:
		buf := make([]int32, 1)
		if err := v.ReadInt32Slice(buf, start, count); err != nil {
			return 0, fmt.Errorf("read %s%v: %w", name, origin, err)
		}
		return float64(buf[0]), nil
	case netcdf.SHORT:
		buf := make([]int16, 1)
		if err := v.ReadInt16Slice(buf, start, count); err != nil {
			return 0, fmt.Errorf("read %s%v: %w", name, origin, err)
		}
		return float64(buf[0]), nil
	default:
		return 0, fmt.Errorf("%s (%v): %w", name, t, dataset.ErrUnsupportedType)
	}
}

// StringAttribute implements dataset.Dataset.
func (d *Dataset) StringAttribute(varName, attr string) (string, bool) {
	v, err := d.variable(varName)
	if err != nil {
		return "", false
	}
	a := v.Attr(attr)
	n, err := a.Len()
	if err != nil || n == 0 {
		return "", false
	}
	if t, err := a.Type(); err != nil || t != netcdf.CHAR {
		return "", false
	}
	buf := make([]byte, n)
	if err := a.ReadBytes(buf); err != nil {
		return "", false
	}
	// C strings may carry a trailing NUL.
	for len(buf) > 0 && buf[len(buf)-1] == 0 {
		buf = buf[:len(buf)-1]
	}
	return string(buf), true
}

// Close closes the handle and removes the staged file.
func (d *Dataset) Close() error {
	if d.closed {
		return dataset.ErrClosed
	}
	d.closed = true
	closeErr := d.nc.Close()
	if err := os.Remove(d.path); err != nil && !os.IsNotExist(err) {
		if closeErr == nil {
			closeErr = err
		}
	}
	return closeErr
}
