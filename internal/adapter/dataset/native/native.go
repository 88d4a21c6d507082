// Package native reads NetCDF classic and NetCDF-4 files with the pure-Go
// batchatco/go-native-netcdf decoder. No cgo and no temp files are needed.
package native

import (
	"bytes"
	"fmt"
	"reflect"
	"slices"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"go.ngs.io/knmi-forecast/internal/adapter/dataset"
	"go.ngs.io/knmi-forecast/internal/domain"
)

// memFile lets the decoder read the uploaded bytes as if they were a file.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

var _ api.ReadSeekerCloser = memFile{}

// Dataset is an open file.
type Dataset struct {
	nc     api.Group
	vars   []string
	shapes map[string][]int // axis lengths by variable, filled on first use
	closed bool
}

var _ dataset.Dataset = (*Dataset)(nil)

// Open decodes the file structure of data.
func Open(data []byte) (dataset.Dataset, error) {
	nc, err := netcdf.New(memFile{bytes.NewReader(data)})
	if err != nil {
		return nil, fmt.Errorf("native: open: %w", err)
	}
	return &Dataset{nc: nc, vars: nc.ListVariables(), shapes: make(map[string][]int)}, nil
}

// Opener returns an Opener for this backend.
func Opener() dataset.Opener {
	return dataset.OpenerFunc(Open)
}

func (d *Dataset) getter(name string) (api.VarGetter, error) {
	if d.closed {
		return nil, dataset.ErrClosed
	}
	if !slices.Contains(d.vars, name) {
		return nil, fmt.Errorf("%s: %w", name, dataset.ErrVariableNotFound)
	}
	vg, err := d.nc.GetVarGetter(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return vg, nil
}

// elementType maps the CDL type name to the element types we can decode.
func elementType(cdl string) domain.ElementType {
	switch cdl {
	case "float":
		return domain.ElementFloat32
	case "double":
		return domain.ElementFloat64
	case "int":
		return domain.ElementInt32
	case "short":
		return domain.ElementInt16
	default:
		return domain.ElementUnsupported
	}
}

// shape returns the axis lengths of the named variable, computing them once.
func (d *Dataset) shape(name string, vg api.VarGetter) ([]int, error) {
	if ls, ok := d.shapes[name]; ok {
		return ls, nil
	}
	ls, err := d.lengths(vg)
	if err != nil {
		return nil, err
	}
	d.shapes[name] = ls
	return ls, nil
}

// lengths returns the axis lengths of vg. The decoder only reports lengths
// for dimensions without a coordinate variable, and reports the unlimited
// dimension of a classic file as 0, so coordinate variables are asked first
// and the shape of the data is the last resort.
func (d *Dataset) lengths(vg api.VarGetter) ([]int, error) {
	dims := vg.Dimensions()
	ls := make([]int, len(dims))
	if len(dims) == 1 {
		ls[0] = int(vg.Len())
		return ls, nil
	}

	missing := false
	for i, dim := range dims {
		if n, ok := d.coordinateLength(dim); ok {
			ls[i] = n
			continue
		}
		if n, ok := d.nc.GetDimension(dim); ok && n > 0 {
			ls[i] = int(n)
			continue
		}
		missing = true
	}
	if !missing {
		return ls, nil
	}

	vals, err := vg.Values()
	if err != nil {
		return nil, err
	}
	rv := reflect.ValueOf(vals)
	for i := range dims {
		if rv.Kind() != reflect.Slice {
			break
		}
		ls[i] = rv.Len()
		if rv.Len() == 0 {
			break
		}
		rv = rv.Index(0)
	}
	return ls, nil
}

func (d *Dataset) coordinateLength(dim string) (int, bool) {
	if !slices.Contains(d.vars, dim) {
		return 0, false
	}
	vg, err := d.nc.GetVarGetter(dim)
	if err != nil {
		return 0, false
	}
	if dims := vg.Dimensions(); len(dims) != 1 || dims[0] != dim {
		return 0, false
	}
	return int(vg.Len()), true
}

// Variable implements dataset.Dataset.
func (d *Dataset) Variable(name string) (domain.VariableDescriptor, error) {
	vg, err := d.getter(name)
	if err != nil {
		return domain.VariableDescriptor{}, err
	}
	ls, err := d.shape(name, vg)
	if err != nil {
		return domain.VariableDescriptor{}, fmt.Errorf("%s: shape: %w", name, err)
	}
	dims := vg.Dimensions()
	desc := domain.VariableDescriptor{
		Name: name,
		Axes: make([]domain.Axis, len(dims)),
		Type: elementType(vg.Type()),
	}
	for i, dim := range dims {
		desc.Axes[i] = domain.Axis{Name: dim, Length: ls[i]}
	}
	if raw, ok := vg.Attributes().Get("_FillValue"); ok {
		if fv, ok := dataset.FirstNumber(raw); ok {
			desc.FillValue = &fv
		}
	}
	return desc, nil
}

// ReadAxis implements dataset.Dataset.
func (d *Dataset) ReadAxis(name string) ([]float64, error) {
	vg, err := d.getter(name)
	if err != nil {
		return nil, err
	}
	if n := len(vg.Dimensions()); n != 1 {
		return nil, fmt.Errorf("%s has rank %d: %w", name, n, dataset.ErrNotAxis)
	}
	if vg.Len() == 0 {
		return []float64{}, nil
	}
	if elementType(vg.Type()) == domain.ElementUnsupported && vg.Type() != "int64" {
		return nil, fmt.Errorf("%s (%s): %w", name, vg.Type(), dataset.ErrUnsupportedType)
	}
	vals, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return dataset.Widen(vals)
}

// ReadScalar implements dataset.Dataset. Only the outermost index can be
// sliced by the decoder, so one outer slab is read and indexed in memory.
func (d *Dataset) ReadScalar(name string, origin []int) (float64, error) {
	vg, err := d.getter(name)
	if err != nil {
		return 0, err
	}
	if elementType(vg.Type()) == domain.ElementUnsupported {
		return 0, fmt.Errorf("%s (%s): %w", name, vg.Type(), dataset.ErrUnsupportedType)
	}
	ls, err := d.shape(name, vg)
	if err != nil {
		return 0, fmt.Errorf("%s: shape: %w", name, err)
	}
	if err := dataset.CheckOrigin(name, ls, origin); err != nil {
		return 0, err
	}
	if len(origin) == 0 {
		vals, err := vg.Values()
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", name, err)
		}
		if v, ok := dataset.FirstNumber(vals); ok {
			return v, nil
		}
		return 0, fmt.Errorf("read %s: %w", name, dataset.ErrUnsupportedType)
	}

	slab, err := vg.GetSlice(int64(origin[0]), int64(origin[0])+1)
	if err != nil {
		return 0, fmt.Errorf("read %s%v: %w", name, origin, err)
	}
	rv := reflect.ValueOf(slab).Index(0)
	for _, idx := range origin[1:] {
		if rv.Kind() != reflect.Slice || idx >= rv.Len() {
			return 0, fmt.Errorf("read %s%v: %w", name, origin, dataset.ErrIndexOutOfRange)
		}
		rv = rv.Index(idx)
	}
	v, ok := dataset.FirstNumber(rv.Interface())
	if !ok {
		return 0, fmt.Errorf("read %s%v: %T: %w", name, origin, rv.Interface(), dataset.ErrUnsupportedType)
	}
	return v, nil
}

// StringAttribute implements dataset.Dataset.
func (d *Dataset) StringAttribute(varName, attr string) (string, bool) {
	vg, err := d.getter(varName)
	if err != nil {
		return "", false
	}
	raw, ok := vg.Attributes().Get(attr)
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

// Close implements dataset.Dataset.
func (d *Dataset) Close() error {
	if d.closed {
		return dataset.ErrClosed
	}
	d.closed = true
	d.nc.Close()
	return nil
}
