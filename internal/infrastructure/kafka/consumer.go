package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/GarimaGupta40/Main-Intercorp/internal/events"
)

// ChangeHandler is invoked once per decoded change message.
type ChangeHandler func(ctx context.Context, change events.Change) error

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader}
}

// Consume blocks until ctx is cancelled, handing each change to handler.
// Undecodable messages and handler errors are logged and skipped.
func (c *Consumer) Consume(ctx context.Context, handler ChangeHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[Kafka] Error reading message: %v", err)
			continue
		}

		change, err := DecodeChange(msg.Value)
		if err != nil {
			log.Printf("[Kafka] Skipping message at offset %d: %v", msg.Offset, err)
			continue
		}

		if err := handler(ctx, change); err != nil {
			log.Printf("[Kafka] Error handling %s for %s: %v", change.Type, change.EntityID, err)
		}
	}
}

// DecodeChange parses a message value produced by Producer.Publish.
func DecodeChange(value []byte) (events.Change, error) {
	var change events.Change
	if err := json.Unmarshal(value, &change); err != nil {
		return events.Change{}, fmt.Errorf("failed to decode change: %w", err)
	}
	if change.Type == "" {
		return events.Change{}, fmt.Errorf("change without type")
	}
	return change, nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
