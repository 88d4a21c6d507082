package kafka

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/knmi-forecast/internal/config"
	"go.ngs.io/knmi-forecast/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	valid := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
	sample := domain.WeatherSample{Time: valid}
	sample.Set(domain.Temperature, domain.Reading{Value: 13.5, Valid: true})
	sample.Set(domain.WindSpeed, domain.Reading{Value: 4.2, Valid: true})
	sample.Set(domain.Precipitation, domain.Missing())

	msg, err := serializeToMessage("uwcw_extra_lv_ha43_nl_2km/air-temperature-hagl@52.4,4.4", sample)
	require.NoError(t, err)

	assert.Equal(t, []byte("uwcw_extra_lv_ha43_nl_2km/air-temperature-hagl@52.4,4.4"), msg.Key)
	assert.JSONEq(t, `{"time":"2025-06-01T06:00:00Z","temperature":13.5,"wind_speed":4.2}`, string(msg.Value))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "measurement_count", msg.Headers[0].Key)
	assert.Equal(t, []byte("2"), msg.Headers[0].Value)
	assert.Equal(t, "valid_time", msg.Headers[1].Key)
	assert.Equal(t, []byte("2025-06-01T06:00:00Z"), msg.Headers[1].Value)
}

func TestPublish_EmptyIsNoop(t *testing.T) {
	w := NewWriter(config.KafkaConfig{Brokers: []string{"127.0.0.1:1"}, Topic: "unused"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer func() { _ = w.Close() }()

	assert.NoError(t, w.Publish(context.Background(), "k", nil))
}
