// Package cmd holds the ncextract command tree.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"go.ngs.io/knmi-forecast/internal/adapter/dataset"
	"go.ngs.io/knmi-forecast/internal/adapter/dataset/backend"
	"go.ngs.io/knmi-forecast/internal/config"
	"go.ngs.io/knmi-forecast/internal/domain"
	"go.ngs.io/knmi-forecast/internal/observability"
	"go.ngs.io/knmi-forecast/internal/usecase"
)

type options struct {
	path       string
	lat, lon   float64
	points     []string
	dataset    string
	fileKind   string
	configPath string
	mode       string
	vars       []string
	fixed      []string
	backend    string
	strict     bool
	verbose    bool
}

var opts options

// Root is the ncextract command.
var Root = &cobra.Command{
	Use:   "ncextract",
	Short: "Extract a point forecast from a KNMI NetCDF file.",
	Long: `ncextract reads a NetCDF file, picks the grid cell or station closest to
--lat/--lon and prints one JSON sample per time step. Repeated --point lat,lon
flags replace --lat/--lon and print one forecast per point, all read from the
same open file.

Variables come either from the dataset catalog (--dataset and --file-kind,
read from --config) or from repeated --var name=measurement flags.`,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println("ncextract v0.1.0")
	},
	DisableAutoGenTag: true,
}

func init() {
	f := Root.Flags()
	f.StringVar(&opts.path, "file", "", "NetCDF file to read")
	f.Float64Var(&opts.lat, "lat", 0, "Target latitude")
	f.Float64Var(&opts.lon, "lon", 0, "Target longitude")
	f.StringArrayVar(&opts.points, "point", nil, "Target as lat,lon (repeatable, replaces --lat/--lon)")
	f.StringVar(&opts.dataset, "dataset", "", "Catalog dataset name")
	f.StringVar(&opts.fileKind, "file-kind", "", "Catalog file kind (default: derived from --file)")
	f.StringVar(&opts.configPath, "config", "", "Path to config.yaml holding the catalog")
	f.StringVar(&opts.mode, "mode", "grid", "Locator mode for --var: grid or station")
	f.StringArrayVar(&opts.vars, "var", nil, "Variable to extract as name=measurement (repeatable)")
	f.StringArrayVar(&opts.fixed, "fixed", nil, "Fixed axis index as axis=index (repeatable, applies to every --var)")
	f.StringVar(&opts.backend, "backend", backend.Auto, "NetCDF backend: "+strings.Join(backend.Names(), ", "))
	f.BoolVar(&opts.strict, "strict", false, "Reject auxiliary axes longer than 1 without a --fixed index")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log extraction details to stderr")
	_ = Root.MarkFlagRequired("file")
	Root.MarkFlagsRequiredTogether("lat", "lon")
	Root.MarkFlagsOneRequired("lat", "point")
	Root.MarkFlagsMutuallyExclusive("lat", "point")

	Root.AddCommand(versionCmd)
}

func run(stdout, stderr io.Writer, o options) error {
	req, err := buildRequest(o)
	if err != nil {
		return err
	}
	targets, err := o.targets()
	if err != nil {
		return err
	}
	for _, target := range targets {
		req.Target = target
		if err := req.Validate(); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(o.path)
	if err != nil {
		return err
	}
	opener, err := backend.New(o.backend, "")
	if err != nil {
		return err
	}
	ds, err := opener.Open(data)
	if err != nil {
		return fmt.Errorf("open %s: %w", o.path, err)
	}
	defer func() { _ = ds.Close() }()

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	policy := domain.FixedAxisFirst
	if o.strict {
		policy = domain.FixedAxisStrict
	}
	ex := usecase.NewExtractor(logger, observability.NewMetricsWith(prometheus.NewRegistry()), nil, policy)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if len(o.points) == 0 {
		return enc.Encode(ex.Extract(ds, req))
	}
	return enc.Encode(extractAll(ex, ds, req, targets))
}

// extractAll extracts every target concurrently from one shared handle.
func extractAll(ex *usecase.Extractor, ds dataset.Dataset, req usecase.ExtractionRequest, targets []domain.Coordinate) []usecase.Forecast {
	shared := dataset.Synchronized(ds)
	out := make([]usecase.Forecast, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := req
			r.Target = target
			out[i] = ex.Extract(shared, r)
		}()
	}
	wg.Wait()
	return out
}

func (o options) targets() ([]domain.Coordinate, error) {
	if len(o.points) == 0 {
		return []domain.Coordinate{{Lat: o.lat, Lon: o.lon}}, nil
	}
	targets := make([]domain.Coordinate, len(o.points))
	for i, p := range o.points {
		c, err := parsePoint(p)
		if err != nil {
			return nil, err
		}
		targets[i] = c
	}
	return targets, nil
}

func parsePoint(p string) (domain.Coordinate, error) {
	latStr, lonStr, ok := strings.Cut(p, ",")
	if !ok {
		return domain.Coordinate{}, fmt.Errorf("--point %q: expected lat,lon", p)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("--point %q: latitude: %w", p, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("--point %q: longitude: %w", p, err)
	}
	return domain.Coordinate{Lat: lat, Lon: lon}, nil
}

func buildRequest(o options) (usecase.ExtractionRequest, error) {
	if o.dataset != "" {
		if len(o.vars) > 0 {
			return usecase.ExtractionRequest{}, errors.New("--dataset and --var are mutually exclusive")
		}
		cfg, err := config.Load(o.configPath)
		if err != nil {
			return usecase.ExtractionRequest{}, err
		}
		catalog, err := usecase.NewCatalog(cfg.Datasets)
		if err != nil {
			return usecase.ExtractionRequest{}, err
		}
		kind := o.fileKind
		if kind == "" {
			kind = o.path
		}
		return catalog.Lookup(o.dataset, kind)
	}

	if len(o.vars) == 0 {
		return usecase.ExtractionRequest{}, errors.New("either --dataset or at least one --var is required")
	}
	mode, err := domain.ParseLocatorMode(o.mode)
	if err != nil {
		return usecase.ExtractionRequest{}, err
	}
	fixed, err := parseFixed(o.fixed)
	if err != nil {
		return usecase.ExtractionRequest{}, err
	}

	req := usecase.ExtractionRequest{Mode: mode}
	for _, v := range o.vars {
		name, m, ok := strings.Cut(v, "=")
		if !ok {
			return usecase.ExtractionRequest{}, fmt.Errorf("--var %q: expected name=measurement", v)
		}
		measurement, err := domain.ParseMeasurement(m)
		if err != nil {
			return usecase.ExtractionRequest{}, fmt.Errorf("--var %q: %w", v, err)
		}
		req.Variables = append(req.Variables, usecase.VariableSpec{Name: name, Measurement: measurement, Fixed: fixed})
	}
	return req, nil
}

func parseFixed(pairs []string) (map[string]int, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	fixed := make(map[string]int, len(pairs))
	for _, p := range pairs {
		axis, idx, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("--fixed %q: expected axis=index", p)
		}
		n, err := strconv.Atoi(idx)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("--fixed %q: index must be a non-negative integer", p)
		}
		fixed[axis] = n
	}
	return fixed, nil
}
