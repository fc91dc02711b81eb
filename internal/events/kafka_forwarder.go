package events

import (
	"context"
	"log"
	"time"
)

// MessagePublisher is satisfied by kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// KafkaForwarder relays bus changes to a Kafka topic so other processes
// (the notifier, dashboards in other tabs) can observe them.
type KafkaForwarder struct {
	producer MessagePublisher
	timeout  time.Duration
}

func NewKafkaForwarder(producer MessagePublisher) *KafkaForwarder {
	return &KafkaForwarder{producer: producer, timeout: 5 * time.Second}
}

// Attach subscribes the forwarder to bus and returns the unsubscribe func.
func (f *KafkaForwarder) Attach(bus *Bus) func() {
	return bus.Subscribe(f.Forward)
}

// Forward publishes c keyed by entity id. Failures are logged, not returned:
// the local write has already succeeded.
func (f *KafkaForwarder) Forward(c Change) {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	if err := f.producer.Publish(ctx, c.EntityID, c); err != nil {
		log.Printf("[Events] Failed to forward %s %s for %s: %v", c.Type, c.Kind, c.EntityID, err)
	}
}
