package usecase

import (
	"errors"
	"fmt"
	"strings"

	"go.ngs.io/knmi-forecast/internal/domain"
)

var (
	ErrUnknownDataset = errors.New("unknown dataset")
	ErrUnknownFile    = errors.New("unknown file")
)

// DatasetSpec describes one KNMI dataset and the file kinds it publishes.
type DatasetSpec struct {
	Name          string     `mapstructure:"name" json:"name"`
	Version       string     `mapstructure:"version" json:"version"`
	Description   string     `mapstructure:"description" json:"description,omitempty"`
	FileExtension string     `mapstructure:"file_extension" json:"file_extension"`
	FileCount     int        `mapstructure:"file_count" json:"file_count"`
	Files         []FileSpec `mapstructure:"files" json:"files"`
}

// FileSpec describes one kind of file within a dataset.
type FileSpec struct {
	Name string `mapstructure:"name" json:"name"`
	Mode string `mapstructure:"mode" json:"mode"`

	Roles             domain.RoleNames `mapstructure:"roles" json:"roles,omitempty"`
	TimeVariable      string           `mapstructure:"time_variable" json:"time_variable,omitempty"`
	LatitudeVariable  string           `mapstructure:"latitude_variable" json:"latitude_variable,omitempty"`
	LongitudeVariable string           `mapstructure:"longitude_variable" json:"longitude_variable,omitempty"`

	Variables []VariableConfig `mapstructure:"variables" json:"variables"`
}

// VariableConfig is the declarative form of a VariableSpec.
type VariableConfig struct {
	Name        string         `mapstructure:"name" json:"name"`
	Measurement string         `mapstructure:"measurement" json:"measurement"`
	Unit        string         `mapstructure:"unit" json:"unit,omitempty"`
	Description string         `mapstructure:"description" json:"description,omitempty"`
	Fixed       map[string]int `mapstructure:"fixed" json:"fixed,omitempty"`
}

type catalogFile struct {
	spec FileSpec
	mode domain.LocatorMode
	vars []VariableSpec
}

type catalogEntry struct {
	spec  DatasetSpec
	files []catalogFile
}

// Catalog maps (dataset, file) pairs to extraction templates. It is built
// once from configuration and read-only afterwards.
type Catalog struct {
	entries []catalogEntry
}

// NewCatalog validates specs and builds a Catalog.
func NewCatalog(specs []DatasetSpec) (*Catalog, error) {
	c := &Catalog{entries: make([]catalogEntry, 0, len(specs))}
	seen := make(map[string]bool, len(specs))

	for _, ds := range specs {
		if ds.Name == "" {
			return nil, errors.New("dataset name is empty")
		}
		if seen[ds.Name] {
			return nil, fmt.Errorf("dataset %s declared twice", ds.Name)
		}
		seen[ds.Name] = true
		if len(ds.Files) == 0 {
			return nil, fmt.Errorf("dataset %s has no files", ds.Name)
		}

		entry := catalogEntry{spec: ds}
		fileSeen := make(map[string]bool, len(ds.Files))
		for _, f := range ds.Files {
			if f.Name == "" {
				return nil, fmt.Errorf("dataset %s: file name is empty", ds.Name)
			}
			if fileSeen[f.Name] {
				return nil, fmt.Errorf("dataset %s: file %s declared twice", ds.Name, f.Name)
			}
			fileSeen[f.Name] = true

			cf, err := buildFile(f)
			if err != nil {
				return nil, fmt.Errorf("dataset %s file %s: %w", ds.Name, f.Name, err)
			}
			entry.files = append(entry.files, cf)
		}
		c.entries = append(c.entries, entry)
	}
	return c, nil
}

func buildFile(f FileSpec) (catalogFile, error) {
	mode, err := domain.ParseLocatorMode(f.Mode)
	if err != nil {
		return catalogFile{}, err
	}
	if len(f.Variables) == 0 {
		return catalogFile{}, errors.New("no variables")
	}

	vars := make([]VariableSpec, 0, len(f.Variables))
	for _, v := range f.Variables {
		m, err := domain.ParseMeasurement(v.Measurement)
		if err != nil {
			return catalogFile{}, fmt.Errorf("variable %s: %w", v.Name, err)
		}
		vars = append(vars, VariableSpec{Name: v.Name, Measurement: m, Fixed: v.Fixed})
	}

	// Run the request checks once here so misconfiguration fails at startup.
	req := ExtractionRequest{Mode: mode, Variables: vars}
	if err := req.Validate(); err != nil {
		return catalogFile{}, err
	}
	return catalogFile{spec: f, mode: mode, vars: vars}, nil
}

// Datasets returns the configured datasets in declaration order.
func (c *Catalog) Datasets() []DatasetSpec {
	out := make([]DatasetSpec, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.spec
	}
	return out
}

// Lookup returns the extraction template for a file of the given dataset.
// file is either a file kind from the catalog or a published file name
// containing one, e.g. "uwcw_..._air-temperature-hagl_202506010000.nc". The
// longest matching kind wins. The returned request has no Target.
func (c *Catalog) Lookup(dataset, file string) (ExtractionRequest, error) {
	var entry *catalogEntry
	for i := range c.entries {
		if c.entries[i].spec.Name == dataset {
			entry = &c.entries[i]
			break
		}
	}
	if entry == nil {
		return ExtractionRequest{}, fmt.Errorf("%w: %s", ErrUnknownDataset, dataset)
	}

	var match *catalogFile
	for i := range entry.files {
		f := &entry.files[i]
		if f.spec.Name == file {
			match = f
			break
		}
		if strings.Contains(file, f.spec.Name) && (match == nil || len(f.spec.Name) > len(match.spec.Name)) {
			match = f
		}
	}
	if match == nil {
		return ExtractionRequest{}, fmt.Errorf("%w: %s in dataset %s", ErrUnknownFile, file, dataset)
	}

	vars := make([]VariableSpec, len(match.vars))
	copy(vars, match.vars)
	return ExtractionRequest{
		Mode:              match.mode,
		Variables:         vars,
		Roles:             match.spec.Roles,
		TimeVariable:      match.spec.TimeVariable,
		LatitudeVariable:  match.spec.LatitudeVariable,
		LongitudeVariable: match.spec.LongitudeVariable,
	}, nil
}
