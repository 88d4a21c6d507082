// Package dataset defines the read-only view of a NetCDF file used by the
// extractor. Backends live in subpackages.
package dataset

import (
	"errors"
	"sync"

	"go.ngs.io/knmi-forecast/internal/domain"
)

var (
	// ErrVariableNotFound is returned when a named variable is not in the file.
	ErrVariableNotFound = errors.New("variable not found")
	// ErrNotAxis is returned by ReadAxis for a variable whose rank is not 1.
	ErrNotAxis = errors.New("variable is not a one-dimensional axis")
	// ErrUnsupportedType is returned when an element type cannot be widened
	// to float64.
	ErrUnsupportedType = errors.New("unsupported element type")
	// ErrClosed is returned by every method after Close.
	ErrClosed = errors.New("dataset closed")
)

// Dataset is an open NetCDF file. It is owned by whoever opened it and must
// be closed exactly once.
type Dataset interface {
	// Variable describes the layout of a variable. Fixed indices are never set.
	Variable(name string) (domain.VariableDescriptor, error)

	// ReadAxis returns all values of a rank-1 variable widened to float64.
	ReadAxis(name string) ([]float64, error)

	// ReadScalar reads the single element at origin, widened to float64.
	// The value is raw: fill values and NaN are left for the caller.
	ReadScalar(name string, origin []int) (float64, error)

	// StringAttribute returns a text attribute of a variable.
	StringAttribute(varName, attr string) (string, bool)

	Close() error
}

// Opener opens a dataset from raw file bytes.
type Opener interface {
	Open(data []byte) (Dataset, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(data []byte) (Dataset, error)

// Open calls f(data).
func (f OpenerFunc) Open(data []byte) (Dataset, error) {
	return f(data)
}

// Synchronized wraps ds so that it can be shared between goroutines. None
// of the backends allow concurrent reads on one handle.
func Synchronized(ds Dataset) Dataset {
	if _, ok := ds.(*syncDataset); ok {
		return ds
	}
	return &syncDataset{ds: ds}
}

type syncDataset struct {
	mu sync.Mutex
	ds Dataset
}

func (s *syncDataset) Variable(name string) (domain.VariableDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ds.Variable(name)
}

func (s *syncDataset) ReadAxis(name string) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ds.ReadAxis(name)
}

func (s *syncDataset) ReadScalar(name string, origin []int) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ds.ReadScalar(name, origin)
}

func (s *syncDataset) StringAttribute(varName, attr string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ds.StringAttribute(varName, attr)
}

func (s *syncDataset) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ds.Close()
}
