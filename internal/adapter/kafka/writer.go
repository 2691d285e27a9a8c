package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/nivo-observations/internal/config"
	"github.com/couchcryptid/nivo-observations/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes observation feed events to a Kafka topic.
// It implements feed.Sink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured feed topic.
// Writes are batched up to BatchSize messages or BatchFlushInterval.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchFlushInterval,
	}
	return &Writer{writer: w, logger: logger}
}

// Name identifies the writer in feed metrics.
func (w *Writer) Name() string { return "kafka" }

// PublishBatch serializes and writes feed events in a single WriteMessages
// call. Events are keyed by observation ID so every change to one observation
// lands on one partition.
func (w *Writer) PublishBatch(ctx context.Context, events []domain.FeedEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write feed events: %w", err)
	}
	w.logger.Debug("feed events published", "count", len(events))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a FeedEvent into a Kafka message.
func serializeToMessage(event domain.FeedEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize feed event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ObservationID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "occurred_at", Value: []byte(event.OccurredAt.Format(time.RFC3339))},
		},
	}, nil
}
