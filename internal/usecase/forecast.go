package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"go.ngs.io/knmi-forecast/internal/adapter/dataset"
	"go.ngs.io/knmi-forecast/internal/domain"
	"go.ngs.io/knmi-forecast/internal/observability"
)

// SampleSink receives the samples of every non-empty forecast.
type SampleSink interface {
	Publish(ctx context.Context, key string, samples []domain.WeatherSample) error
}

// ForecastRequest asks for a point forecast from one downloaded file.
type ForecastRequest struct {
	Dataset string
	File    string
	Target  domain.Coordinate
	Data    []byte
}

// ForecastResponse is a Forecast annotated with where it came from.
type ForecastResponse struct {
	Dataset string `json:"dataset"`
	Version string `json:"version"`
	File    string `json:"file"`
	Mode    string `json:"mode"`
	Forecast
}

// ForecastUseCase opens a file, extracts a forecast and hands the samples to
// the sink.
type ForecastUseCase struct {
	catalog   *Catalog
	opener    dataset.Opener
	extractor *Extractor
	sink      SampleSink
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewForecastUseCase creates a ForecastUseCase. sink may be nil.
func NewForecastUseCase(catalog *Catalog, opener dataset.Opener, extractor *Extractor, sink SampleSink, logger *slog.Logger, metrics *observability.Metrics) *ForecastUseCase {
	return &ForecastUseCase{
		catalog:   catalog,
		opener:    opener,
		extractor: extractor,
		sink:      sink,
		logger:    logger,
		metrics:   metrics,
	}
}

// Catalog returns the dataset catalog.
func (uc *ForecastUseCase) Catalog() *Catalog {
	return uc.catalog
}

// Execute returns an error only for requests that name an unknown dataset or
// file, or carry an invalid target. Anything wrong with the file itself is
// reported through the forecast's Reason.
func (uc *ForecastUseCase) Execute(ctx context.Context, req ForecastRequest) (*ForecastResponse, error) {
	extraction, err := uc.catalog.Lookup(req.Dataset, req.File)
	if err != nil {
		return nil, err
	}
	extraction.Target = req.Target
	if err := extraction.Validate(); err != nil {
		return nil, err
	}

	resp := &ForecastResponse{
		Dataset: req.Dataset,
		Version: uc.datasetVersion(req.Dataset),
		File:    req.File,
		Mode:    extraction.Mode.String(),
	}

	ds, err := uc.opener.Open(req.Data)
	if err != nil {
		resp.Forecast = uc.extractor.fail(fmt.Errorf("open %s: %w", req.File, err))
		resp.Forecast.GeneratedAt = uc.extractor.clock.Now().UTC()
		uc.metrics.Extractions.WithLabelValues(resp.Outcome()).Inc()
		return resp, nil
	}
	defer func() {
		if err := ds.Close(); err != nil {
			uc.logger.Warn("close dataset", "file", req.File, "error", err)
		}
	}()

	resp.Forecast = uc.extractor.Extract(ds, extraction)
	uc.logger.Info("forecast extracted",
		"dataset", req.Dataset,
		"file", req.File,
		"outcome", resp.Outcome(),
		"samples", len(resp.Samples),
		"omitted", len(resp.Omitted),
	)

	if uc.sink != nil && len(resp.Samples) > 0 {
		key := SampleKey(req.Dataset, req.File, req.Target)
		if err := uc.sink.Publish(ctx, key, resp.Samples); err != nil {
			uc.metrics.PublishErrors.Inc()
			uc.logger.Error("publish samples", "key", key, "error", err)
		} else {
			uc.metrics.SamplesPublished.Add(float64(len(resp.Samples)))
		}
	}
	return resp, nil
}

func (uc *ForecastUseCase) datasetVersion(name string) string {
	for _, d := range uc.catalog.Datasets() {
		if d.Name == name {
			return d.Version
		}
	}
	return ""
}

// SampleKey identifies a point forecast on the sink: dataset/file@lat,lon.
func SampleKey(datasetName, file string, target domain.Coordinate) string {
	return datasetName + "/" + file + "@" +
		strconv.FormatFloat(target.Lat, 'f', -1, 64) + "," +
		strconv.FormatFloat(target.Lon, 'f', -1, 64)
}
