// Package ncfixture writes small classic-format NetCDF files shaped like KNMI
// products. It backs the backend tests and cmd/sample-generator.
package ncfixture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ctessum/cdf"
)

// Dim is a named dimension. Length 0 declares the record dimension.
type Dim struct {
	Name   string
	Length int
}

// Var is a variable with its data in row-major order. Data must be one of
// []float32, []float64, []int32 or []int16.
type Var struct {
	Name  string
	Dims  []string
	Data  any
	Attrs map[string]any // string or a typed slice
}

// File describes a whole NetCDF file.
type File struct {
	Dims  []Dim
	Vars  []Var
	Attrs map[string]any
}

func dataLen(data any) (int, error) {
	switch d := data.(type) {
	case []float32:
		return len(d), nil
	case []float64:
		return len(d), nil
	case []int32:
		return len(d), nil
	case []int16:
		return len(d), nil
	default:
		return 0, fmt.Errorf("ncfixture: unsupported data type %T", data)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Header builds the cdf header for f.
func (f File) Header() (*cdf.Header, error) {
	names := make([]string, len(f.Dims))
	lengths := make([]int, len(f.Dims))
	records := 0
	for i, d := range f.Dims {
		names[i] = d.Name
		lengths[i] = d.Length
		if d.Length == 0 {
			records++
		}
	}
	if records > 1 {
		return nil, errors.New("ncfixture: more than one record dimension")
	}

	h := cdf.NewHeader(names, lengths)
	for _, k := range sortedKeys(f.Attrs) {
		h.AddAttribute("", k, f.Attrs[k])
	}
	for _, v := range f.Vars {
		if _, err := dataLen(v.Data); err != nil {
			return nil, fmt.Errorf("%s: %w", v.Name, err)
		}
		h.AddVariable(v.Name, v.Dims, v.Data)
		for _, k := range sortedKeys(v.Attrs) {
			h.AddAttribute(v.Name, k, v.Attrs[k])
		}
	}
	h.Define()
	if errs := h.Check(); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return h, nil
}

// Write writes f to w.
func (f File) Write(w *os.File) error {
	h, err := f.Header()
	if err != nil {
		return err
	}
	nc, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return err
	}
	for _, v := range f.Vars {
		n, _ := dataLen(v.Data)
		if n == 0 {
			continue
		}
		// The writer reports io.EOF once it reaches the end of the variable.
		if _, err := nc.Writer(v.Name, nil, nil).Write(v.Data); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("ncfixture: writing variable %s: %w", v.Name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

// WriteFile writes f to path, replacing any existing file.
func (f File) WriteFile(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Write(out); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Bytes returns the encoded file. cdf needs a real file to update the
// record count, so the bytes pass through a temporary file.
func (f File) Bytes() ([]byte, error) {
	tmp, err := os.CreateTemp("", "ncfixture-*.nc")
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := f.Write(tmp); err != nil {
		_ = tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	return os.ReadFile(tmp.Name())
}
