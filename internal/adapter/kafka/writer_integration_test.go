//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"go.ngs.io/knmi-forecast/internal/config"
	"go.ngs.io/knmi-forecast/internal/domain"
)

const testTopic = "test-samples"

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("knmi-forecast-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer func() { _ = cc.Close() }()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}))
}

func TestWriter_PublishRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	w := NewWriter(config.KafkaConfig{Brokers: []string{broker}, Topic: testTopic, WriteTimeout: 10 * time.Second},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer func() { _ = w.Close() }()

	samples := make([]domain.WeatherSample, 2)
	for i, v := range []float64{13, 17} {
		samples[i] = domain.WeatherSample{Time: time.Unix(int64(i)*3600, 0).UTC()}
		samples[i].Set(domain.Temperature, domain.Reading{Value: v, Valid: true})
	}
	key := "uwcw_extra_lv_ha43_nl_2km/air-temperature-hagl@52.4,4.4"
	require.NoError(t, w.Publish(ctx, key, samples))

	reader := kafkago.NewReader(kafkago.ReaderConfig{Brokers: []string{broker}, Topic: testTopic, Partition: 0})
	defer func() { _ = reader.Close() }()

	for i, want := range []float64{13, 17} {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := reader.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read message %d", i)

		assert.Equal(t, key, string(msg.Key))
		var got domain.WeatherSample
		require.NoError(t, json.Unmarshal(msg.Value, &got))
		require.NotNil(t, got.Temperature)
		assert.Equal(t, want, *got.Temperature)
		assert.True(t, samples[i].Time.Equal(got.Time))
	}
}
