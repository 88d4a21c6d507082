package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/knmi-forecast/internal/adapter/dataset/classic"
	"go.ngs.io/knmi-forecast/internal/adapter/dataset/ncfixture"
	"go.ngs.io/knmi-forecast/internal/domain"
	"go.ngs.io/knmi-forecast/internal/observability"
	"go.ngs.io/knmi-forecast/internal/usecase"
)

type recordingSink struct {
	keys    []string
	samples [][]domain.WeatherSample
	err     error
}

func (s *recordingSink) Publish(_ context.Context, key string, samples []domain.WeatherSample) error {
	if s.err != nil {
		return s.err
	}
	s.keys = append(s.keys, key)
	s.samples = append(s.samples, samples)
	return nil
}

func newForecastUseCase(t *testing.T, sink usecase.SampleSink) (*usecase.ForecastUseCase, *observability.Metrics) {
	t.Helper()
	catalog, err := usecase.NewCatalog([]usecase.DatasetSpec{harmonieSpec(), stationSpec()})
	require.NoError(t, err)

	m := observability.NewMetricsForTesting()
	ex := usecase.NewExtractor(discardLogger(), m, clockwork.NewFakeClockAt(fixedNow), domain.FixedAxisFirst)
	return usecase.NewForecastUseCase(catalog, classic.Opener(), ex, sink, discardLogger(), m), m
}

func twoByTwo(t *testing.T) []byte {
	t.Helper()
	data, err := ncfixture.TwoByTwo().File().Bytes()
	require.NoError(t, err)
	return data
}

func TestForecastUseCase_Execute(t *testing.T) {
	sink := &recordingSink{}
	uc, m := newForecastUseCase(t, sink)

	resp, err := uc.Execute(context.Background(), usecase.ForecastRequest{
		Dataset: "uwcw_extra_lv_ha43_nl_2km",
		File:    "air-temperature-hagl",
		Target:  domain.Coordinate{Lat: 52.4, Lon: 4.4},
		Data:    twoByTwo(t),
	})
	require.NoError(t, err)

	assert.Equal(t, "1.0", resp.Version)
	assert.Equal(t, "grid", resp.Mode)
	assert.Equal(t, []*float64{ptr(13), ptr(17)}, temperatures(t, resp.Samples))

	require.Len(t, sink.keys, 1)
	assert.Equal(t, "uwcw_extra_lv_ha43_nl_2km/air-temperature-hagl@52.4,4.4", sink.keys[0])
	assert.Len(t, sink.samples[0], 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SamplesPublished))
}

func TestForecastUseCase_UnreadableFile(t *testing.T) {
	sink := &recordingSink{}
	uc, m := newForecastUseCase(t, sink)

	resp, err := uc.Execute(context.Background(), usecase.ForecastRequest{
		Dataset: "uwcw_extra_lv_ha43_nl_2km",
		File:    "air-temperature-hagl",
		Target:  domain.Coordinate{Lat: 52.4, Lon: 4.4},
		Data:    []byte("<html>503 Service Unavailable</html>"),
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Samples)
	assert.Contains(t, resp.Reason, "open air-temperature-hagl")
	assert.Equal(t, fixedNow, resp.GeneratedAt)
	assert.Empty(t, sink.keys, "empty forecasts are not published")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Extractions.WithLabelValues("empty")))
}

func TestForecastUseCase_RequestErrors(t *testing.T) {
	uc, _ := newForecastUseCase(t, nil)
	ctx := context.Background()

	_, err := uc.Execute(ctx, usecase.ForecastRequest{Dataset: "nope", File: "air-temperature-hagl"})
	assert.ErrorIs(t, err, usecase.ErrUnknownDataset)

	_, err = uc.Execute(ctx, usecase.ForecastRequest{Dataset: "uwcw_extra_lv_ha43_nl_2km", File: "nope"})
	assert.ErrorIs(t, err, usecase.ErrUnknownFile)

	_, err = uc.Execute(ctx, usecase.ForecastRequest{
		Dataset: "uwcw_extra_lv_ha43_nl_2km",
		File:    "air-temperature-hagl",
		Target:  domain.Coordinate{Lat: 52, Lon: 200},
	})
	assert.ErrorIs(t, err, usecase.ErrInvalidRequest)
}

func TestForecastUseCase_SinkFailureKeepsForecast(t *testing.T) {
	sink := &recordingSink{err: errors.New("broker unavailable")}
	uc, m := newForecastUseCase(t, sink)

	resp, err := uc.Execute(context.Background(), usecase.ForecastRequest{
		Dataset: "uwcw_extra_lv_ha43_nl_2km",
		File:    "air-temperature-hagl",
		Target:  domain.Coordinate{Lat: 52.4, Lon: 4.4},
		Data:    twoByTwo(t),
	})
	require.NoError(t, err)
	assert.Len(t, resp.Samples, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PublishErrors))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SamplesPublished))
}

func TestSampleKey(t *testing.T) {
	assert.Equal(t, "d/f@-33.5,151.25", usecase.SampleKey("d", "f", domain.Coordinate{Lat: -33.5, Lon: 151.25}))
}
