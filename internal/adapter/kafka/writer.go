package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"go.ngs.io/knmi-forecast/internal/config"
	"go.ngs.io/knmi-forecast/internal/domain"
)

// Writer publishes weather samples to a Kafka topic, one message per sample.
// It implements usecase.SampleSink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sample topic.
func NewWriter(cfg config.KafkaConfig, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		WriteTimeout: cfg.WriteTimeout,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes samples in a single WriteMessages call. Every message carries
// the same key so one point forecast lands on one partition in time order.
func (w *Writer) Publish(ctx context.Context, key string, samples []domain.WeatherSample) error {
	if len(samples) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(samples))
	for i := range samples {
		msg, err := serializeToMessage(key, samples[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d samples for %s: %w", len(msgs), key, err)
	}
	w.logger.Debug("samples published", "key", key, "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a WeatherSample into a Kafka message.
func serializeToMessage(key string, sample domain.WeatherSample) (kafkago.Message, error) {
	data, err := json.Marshal(sample)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize weather sample: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "measurement_count", Value: []byte(strconv.Itoa(sample.Count()))},
			{Key: "valid_time", Value: []byte(sample.Time.UTC().Format(time.RFC3339))},
		},
	}, nil
}
