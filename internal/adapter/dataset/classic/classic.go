// Package classic reads NetCDF classic and 64-bit offset files entirely in
// memory with the pure-Go ctessum/cdf decoder.
package classic

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ctessum/cdf"

	"go.ngs.io/knmi-forecast/internal/adapter/dataset"
	"go.ngs.io/knmi-forecast/internal/domain"
)

var errReadOnly = errors.New("classic: dataset is read-only")

// memFile serves the uploaded bytes to cdf, which wants a ReaderWriterAt.
type memFile struct {
	*bytes.Reader
}

func (memFile) WriteAt([]byte, int64) (int, error) {
	return 0, errReadOnly
}

// Dataset is an open classic-format file.
type Dataset struct {
	f      *cdf.File
	size   int64
	closed bool
}

var _ dataset.Dataset = (*Dataset)(nil)

// Open parses the header of data. NetCDF-4 (HDF5) files are rejected.
func Open(data []byte) (dataset.Dataset, error) {
	f, err := cdf.Open(memFile{bytes.NewReader(data)})
	if err != nil {
		return nil, fmt.Errorf("classic: read header: %w", err)
	}
	if errs := f.Header.Check(); len(errs) > 0 {
		return nil, fmt.Errorf("classic: invalid header: %w", errors.Join(errs...))
	}
	return &Dataset{f: f, size: int64(len(data))}, nil
}

// Opener returns an Opener for this backend.
func Opener() dataset.Opener {
	return dataset.OpenerFunc(Open)
}

// lengths returns the axis lengths of v with the record dimension resolved
// from the file size.
func (d *Dataset) lengths(v string) []int {
	ls := append([]int(nil), d.f.Header.Lengths(v)...)
	if d.f.Header.IsRecordVariable(v) {
		ls[0] = int(d.f.Header.NumRecs(d.size))
	}
	return ls
}

func (d *Dataset) has(v string) bool {
	return d.f.Header.ZeroValue(v, 0) != nil
}

// Variable implements dataset.Dataset.
func (d *Dataset) Variable(name string) (domain.VariableDescriptor, error) {
	if d.closed {
		return domain.VariableDescriptor{}, dataset.ErrClosed
	}
	if !d.has(name) {
		return domain.VariableDescriptor{}, fmt.Errorf("%s: %w", name, dataset.ErrVariableNotFound)
	}
	dims := d.f.Header.Dimensions(name)
	ls := d.lengths(name)
	desc := domain.VariableDescriptor{
		Name: name,
		Axes: make([]domain.Axis, len(dims)),
		Type: elementType(d.f.Header.ZeroValue(name, 0)),
	}
	for i := range dims {
		desc.Axes[i] = domain.Axis{Name: dims[i], Length: ls[i]}
	}
	if fv, ok := dataset.FirstNumber(d.f.Header.GetAttribute(name, "_FillValue")); ok {
		desc.FillValue = &fv
	}
	return desc, nil
}

func elementType(zero any) domain.ElementType {
	switch zero.(type) {
	case []float32:
		return domain.ElementFloat32
	case []float64:
		return domain.ElementFloat64
	case []int32:
		return domain.ElementInt32
	case []int16:
		return domain.ElementInt16
	default:
		return domain.ElementUnsupported
	}
}

// ReadAxis implements dataset.Dataset.
func (d *Dataset) ReadAxis(name string) ([]float64, error) {
	if d.closed {
		return nil, dataset.ErrClosed
	}
	if !d.has(name) {
		return nil, fmt.Errorf("%s: %w", name, dataset.ErrVariableNotFound)
	}
	ls := d.lengths(name)
	if len(ls) != 1 {
		return nil, fmt.Errorf("%s has rank %d: %w", name, len(ls), dataset.ErrNotAxis)
	}
	if ls[0] == 0 {
		return []float64{}, nil
	}
	if elementType(d.f.Header.ZeroValue(name, 0)) == domain.ElementUnsupported {
		return nil, fmt.Errorf("%s: %w", name, dataset.ErrUnsupportedType)
	}
	return d.read(name, []int{0}, []int{ls[0] - 1}, ls[0])
}

// ReadScalar implements dataset.Dataset.
func (d *Dataset) ReadScalar(name string, origin []int) (float64, error) {
	if d.closed {
		return 0, dataset.ErrClosed
	}
	if !d.has(name) {
		return 0, fmt.Errorf("%s: %w", name, dataset.ErrVariableNotFound)
	}
	if err := dataset.CheckOrigin(name, d.lengths(name), origin); err != nil {
		return 0, err
	}
	if elementType(d.f.Header.ZeroValue(name, 0)) == domain.ElementUnsupported {
		return 0, fmt.Errorf("%s: %w", name, dataset.ErrUnsupportedType)
	}
	// The reader's end corner is inclusive, so begin == end is one element.
	vals, err := d.read(name, origin, origin, 1)
	if err != nil {
		return 0, err
	}
	return vals[0], nil
}

func (d *Dataset) read(name string, begin, end []int, n int) ([]float64, error) {
	r := d.f.Reader(name, begin, end)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("read %s%v: %w", name, begin, err)
	}
	return dataset.Widen(buf)
}

// StringAttribute implements dataset.Dataset.
func (d *Dataset) StringAttribute(varName, attr string) (string, bool) {
	if d.closed {
		return "", false
	}
	s, ok := d.f.Header.GetAttribute(varName, attr).(string)
	return s, ok
}

// Close implements dataset.Dataset. The bytes belong to the caller, so
// there is nothing to release beyond the handle itself.
func (d *Dataset) Close() error {
	if d.closed {
		return dataset.ErrClosed
	}
	d.closed = true
	d.f = nil
	return nil
}
