package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"go.ngs.io/knmi-forecast/internal/adapter/dataset"
	"go.ngs.io/knmi-forecast/internal/domain"
	"go.ngs.io/knmi-forecast/internal/observability"
)

var (
	// ErrInvalidRequest wraps every ExtractionRequest validation failure.
	ErrInvalidRequest = errors.New("invalid extraction request")
	// ErrMissingTimeUnits means the time variable has no units attribute.
	ErrMissingTimeUnits = errors.New("time axis has no units attribute")
	// ErrCoordinateNotFound means none of the candidate coordinate variables exist.
	ErrCoordinateNotFound = errors.New("coordinate variable not found")
)

// VariableSpec binds a file variable to a WeatherSample field.
type VariableSpec struct {
	Name        string             `json:"name"`
	Measurement domain.Measurement `json:"measurement"`

	// Fixed maps auxiliary axis names to the index to read.
	Fixed map[string]int `json:"fixed,omitempty"`
}

// ExtractionRequest describes what to pull out of one file.
type ExtractionRequest struct {
	Target    domain.Coordinate
	Mode      domain.LocatorMode
	Variables []VariableSpec

	// Roles overrides the axis names recognized per role. Empty lists keep
	// the defaults.
	Roles domain.RoleNames

	// Coordinate variable names. When empty, the role names are tried in order.
	TimeVariable      string
	LatitudeVariable  string
	LongitudeVariable string
}

// Validate checks the target and the variable list.
func (r *ExtractionRequest) Validate() error {
	if math.IsNaN(r.Target.Lat) || r.Target.Lat < -90 || r.Target.Lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalidRequest)
	}
	if math.IsNaN(r.Target.Lon) || r.Target.Lon < -180 || r.Target.Lon > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrInvalidRequest)
	}
	if len(r.Variables) == 0 {
		return fmt.Errorf("%w: at least one variable is required", ErrInvalidRequest)
	}

	seen := make(map[domain.Measurement]string, len(r.Variables))
	for _, v := range r.Variables {
		if v.Name == "" {
			return fmt.Errorf("%w: variable name is empty", ErrInvalidRequest)
		}
		if v.Measurement == domain.MeasurementUnknown {
			return fmt.Errorf("%w: variable %s has no measurement", ErrInvalidRequest, v.Name)
		}
		if prev, ok := seen[v.Measurement]; ok {
			return fmt.Errorf("%w: variables %s and %s both map to %s", ErrInvalidRequest, prev, v.Name, v.Measurement)
		}
		seen[v.Measurement] = v.Name
	}
	return nil
}

// OmittedVariable records why a variable is absent from every sample.
type OmittedVariable struct {
	Name        string             `json:"name"`
	Measurement domain.Measurement `json:"measurement"`
	Reason      string             `json:"reason"`
}

// Forecast is the result of one extraction. Samples follow the order of the
// file's time axis. When Samples is empty, Reason says why.
type Forecast struct {
	Samples     []domain.WeatherSample `json:"samples"`
	Location    *domain.Location       `json:"location,omitempty"`
	Omitted     []OmittedVariable      `json:"omitted,omitempty"`
	Reason      string                 `json:"reason,omitempty"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// Outcome classifies the forecast for metrics: ok, partial or empty.
func (f Forecast) Outcome() string {
	switch {
	case len(f.Samples) == 0:
		return "empty"
	case len(f.Omitted) > 0:
		return "partial"
	default:
		return "ok"
	}
}

// Extractor turns an open dataset into a Forecast. It holds no per-call
// state and may be shared.
type Extractor struct {
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
	policy  domain.FixedAxisPolicy
}

// NewExtractor creates an Extractor. A nil clock means the real clock.
func NewExtractor(logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, policy domain.FixedAxisPolicy) *Extractor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Extractor{logger: logger, metrics: metrics, clock: clock, policy: policy}
}

// plan is a resolved variable, reused for every time step.
type plan struct {
	spec    VariableSpec
	desc    domain.VariableDescriptor
	res     *domain.Resolution
	missing int
}

// Extract reads the requested variables at the point nearest req.Target for
// every time step. Problems with the file as a whole yield an empty forecast
// with a reason; problems with one variable drop only that variable; problems
// with one value leave only that field empty.
func (e *Extractor) Extract(ds dataset.Dataset, req ExtractionRequest) Forecast {
	start := e.clock.Now()
	fc := e.extract(ds, req)
	fc.GeneratedAt = e.clock.Now().UTC()

	e.metrics.Extractions.WithLabelValues(fc.Outcome()).Inc()
	e.metrics.SamplesEmitted.Add(float64(len(fc.Samples)))
	e.metrics.ExtractionDuration.Observe(e.clock.Since(start).Seconds())
	return fc
}

func (e *Extractor) fail(err error) Forecast {
	e.logger.Error("extraction failed", "error", err)
	return Forecast{Samples: []domain.WeatherSample{}, Reason: err.Error()}
}

func (e *Extractor) extract(ds dataset.Dataset, req ExtractionRequest) Forecast {
	if err := req.Validate(); err != nil {
		return e.fail(err)
	}
	names := req.Roles.WithDefaults()

	times, err := e.readTimes(ds, req.TimeVariable, names.Time)
	if err != nil {
		return e.fail(err)
	}

	latRole, lonRole := domain.RoleLatitude, domain.RoleLongitude
	if req.Mode == domain.LocatorStation {
		// Station coordinates are indexed by the station axis.
		latRole, lonRole = domain.RoleStation, domain.RoleStation
	}
	lats, err := readCoordinate(ds, req.LatitudeVariable, names.Latitude, latRole)
	if err != nil {
		return e.fail(fmt.Errorf("latitude: %w", err))
	}
	lons, err := readCoordinate(ds, req.LongitudeVariable, names.Longitude, lonRole)
	if err != nil {
		return e.fail(fmt.Errorf("longitude: %w", err))
	}
	loc, err := domain.Locate(req.Mode, lats.Values, lons.Values, req.Target)
	if err != nil {
		return e.fail(fmt.Errorf("locate (%.4f, %.4f) on %s/%s: %w", req.Target.Lat, req.Target.Lon, lats.Name, lons.Name, err))
	}
	e.logger.Debug("closest point",
		"mode", loc.Mode.String(),
		"lat_index", loc.Grid.LatIndex,
		"lon_index", loc.Grid.LonIndex,
		"station_index", loc.StationIndex,
		"lat", loc.Lat,
		"lon", loc.Lon,
	)

	fc := Forecast{Samples: []domain.WeatherSample{}, Location: &loc}
	if times.Len() == 0 {
		fc.Reason = "time axis is empty"
		e.logger.Warn("no time steps in file")
		return fc
	}

	plans := make([]*plan, 0, len(req.Variables))
	for _, spec := range req.Variables {
		p, err := e.resolve(ds, spec, req.Mode, names, []domain.CoordinateAxis{times.CoordinateAxis, lats, lons})
		if err != nil {
			fc.Omitted = append(fc.Omitted, OmittedVariable{Name: spec.Name, Measurement: spec.Measurement, Reason: err.Error()})
			e.metrics.VariablesOmitted.WithLabelValues(spec.Name).Inc()
			e.logger.Warn("variable omitted", "variable", spec.Name, "error", err)
			continue
		}
		plans = append(plans, p)
	}

	fc.Samples = make([]domain.WeatherSample, times.Len())
	for t, valid := range times.Times {
		s := domain.WeatherSample{Time: valid}
		for _, p := range plans {
			s.Set(p.spec.Measurement, e.decode(ds, p, t, loc))
		}
		fc.Samples[t] = s
	}

	for _, p := range plans {
		if p.missing > 0 {
			e.metrics.ValuesMissing.WithLabelValues(p.spec.Name).Add(float64(p.missing))
		}
	}
	return fc
}

// timeAxis is the time coordinate with its decoded instants.
type timeAxis struct {
	domain.CoordinateAxis
	Times []time.Time
}

func (e *Extractor) readTimes(ds dataset.Dataset, explicit string, candidates []string) (timeAxis, error) {
	axis, err := readCoordinate(ds, explicit, candidates, domain.RoleTime)
	if err != nil {
		return timeAxis{}, fmt.Errorf("time axis: %w", err)
	}
	units, ok := ds.StringAttribute(axis.Name, "units")
	if !ok {
		return timeAxis{}, fmt.Errorf("time axis %s: %w", axis.Name, ErrMissingTimeUnits)
	}
	unit, err := domain.ParseTimeUnit(units)
	if err != nil {
		return timeAxis{}, fmt.Errorf("time axis %s: %w", axis.Name, err)
	}

	times := make([]time.Time, axis.Len())
	for i, v := range axis.Values {
		if times[i], err = unit.Decode(v); err != nil {
			return timeAxis{}, fmt.Errorf("time axis %s[%d]: %w", axis.Name, i, err)
		}
	}
	e.logger.Debug("time axis decoded", "variable", axis.Name, "units", units, "steps", len(times))
	return timeAxis{CoordinateAxis: axis, Times: times}, nil
}

// readCoordinate reads the explicit variable, or else the first candidate
// present in the file.
func readCoordinate(ds dataset.Dataset, explicit string, candidates []string, role domain.AxisRole) (domain.CoordinateAxis, error) {
	if explicit != "" {
		vals, err := ds.ReadAxis(explicit)
		return domain.CoordinateAxis{Name: explicit, Role: role, Values: vals}, err
	}
	for _, name := range candidates {
		vals, err := ds.ReadAxis(name)
		if errors.Is(err, dataset.ErrVariableNotFound) {
			continue
		}
		return domain.CoordinateAxis{Name: name, Role: role, Values: vals}, err
	}
	return domain.CoordinateAxis{}, fmt.Errorf("tried %v: %w", candidates, ErrCoordinateNotFound)
}

// resolve describes and resolves one variable, then checks each coordinate
// axis against the variable axis of the same role.
func (e *Extractor) resolve(ds dataset.Dataset, spec VariableSpec, mode domain.LocatorMode, names domain.RoleNames, coords []domain.CoordinateAxis) (*plan, error) {
	desc, err := ds.Variable(spec.Name)
	if err != nil {
		return nil, err
	}
	desc = desc.WithFixedIndices(spec.Fixed)

	res, err := domain.ResolveAxes(desc, mode, names, e.policy)
	if err != nil {
		return nil, err
	}

	for _, c := range coords {
		if err := res.CheckAxis(c.Role, c.Len()); err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
	}

	if res.LowConfidence {
		e.logger.Warn("axis roles guessed", "variable", spec.Name, "axes", desc.AxisNames(), "roles", fmt.Sprint(res.Roles))
	}
	for _, w := range res.Warnings {
		e.logger.Warn("axis resolution", "variable", spec.Name, "warning", w)
	}
	return &plan{spec: spec, desc: desc, res: res}, nil
}

// decode reads one value. Read failures count as missing.
func (e *Extractor) decode(ds dataset.Dataset, p *plan, t int, loc domain.Location) domain.Reading {
	slice := p.res.Slice(t, loc)
	raw, err := ds.ReadScalar(p.spec.Name, slice.Origin)
	if err != nil {
		e.logger.Debug("read failed", "variable", p.spec.Name, "slice", slice.String(), "error", err)
		p.missing++
		return domain.Missing()
	}
	r := domain.ClassifyScalar(raw, p.desc.Type, p.desc.FillValue)
	if !r.Valid {
		p.missing++
	}
	return r
}
