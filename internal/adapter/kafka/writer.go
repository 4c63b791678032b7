package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/resource-finder-geocode/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// AuditWriter publishes tool invocation records to a Kafka topic.
// It implements tools.AuditSink.
type AuditWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewAuditWriter creates a Kafka producer for the audit topic.
func NewAuditWriter(brokers []string, topic string, logger *slog.Logger) *AuditWriter {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &AuditWriter{writer: w, logger: logger}
}

// Publish writes a single invocation record, keyed by invocation ID.
func (w *AuditWriter) Publish(ctx context.Context, inv domain.ToolInvocation) error {
	msg, err := serializeToMessage(inv)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish audit record %s: %w", inv.ID, err)
	}
	w.logger.Debug("audit record published", "invocation_id", inv.ID, "tool", inv.Tool)
	return nil
}

func (w *AuditWriter) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a ToolInvocation into a Kafka message.
func serializeToMessage(inv domain.ToolInvocation) (kafkago.Message, error) {
	data, err := json.Marshal(inv)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize tool invocation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(inv.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "tool", Value: []byte(inv.Tool)},
			{Key: "invoked_at", Value: []byte(inv.InvokedAt.Format(time.RFC3339))},
		},
	}, nil
}
