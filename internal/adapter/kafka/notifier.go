// Package kafka publishes user-facing layer notifications to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/hazard-map-overlay/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the notifier uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Notifier produces notifications to a Kafka topic.
// It implements layer.Notifier.
type Notifier struct {
	writer messageWriter
	logger *slog.Logger
}

// NewNotifier creates a Kafka producer for the notification topic.
func NewNotifier(brokers []string, topic string, logger *slog.Logger) *Notifier {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Notifier{writer: w, logger: logger.With("topic", topic)}
}

// Notify publishes n. Publish failures are logged; the notification is still
// delivered through the other channels.
func (p *Notifier) Notify(ctx context.Context, n domain.Notification) {
	msg, err := serializeToMessage(n)
	if err != nil {
		p.logger.Error("serialize notification", "error", err)
		return
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("publish notification failed", "source", n.Source, "error", err)
	}
}

func (p *Notifier) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a Notification into a Kafka message keyed by
// source, so one source's notifications stay ordered.
func serializeToMessage(n domain.Notification) (kafkago.Message, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize notification: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(n.Source),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte(n.Source)},
			{Key: "raised_at", Value: []byte(n.At.Format(time.RFC3339))},
		},
	}, nil
}
