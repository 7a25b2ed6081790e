// Package queue is the durable single-topic work queue between the ingestor and the consumer
package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Message is one queued event; Body is opaque to the queue
type Message struct {
	ID          string
	Type        string
	Body        []byte
	Attempt     int
	PublishedAt time.Time
}

// NewMessage stamps a fresh id and publish time
func NewMessage(typ string, body []byte) Message {
	return Message{
		ID:          uuid.NewString(),
		Type:        typ,
		Body:        body,
		PublishedAt: time.Now().UTC(),
	}
}

// Publisher writes one durable message
type Publisher interface {
	Publish(ctx context.Context, m Message) error
}

// Delivery is a received message awaiting settlement
type Delivery interface {
	Message() Message
	// Ack removes the message for good
	Ack(ctx context.Context) error
	// Nack hands the message back; requeue false dead-letters it
	Nack(ctx context.Context, requeue bool) error
}

// Source streams deliveries until ctx is cancelled, then closes the channel
type Source interface {
	Deliveries(ctx context.Context) (<-chan Delivery, error)
}

// Queue is what a driver provides
type Queue interface {
	Publisher
	Source
	Ping(ctx context.Context) error
	Close() error
}

// Backoff is base doubled per prior attempt, capped at ten minutes
func Backoff(base time.Duration, attempt int) time.Duration {
	const ceiling = 10 * time.Minute
	if base <= 0 {
		base = time.Second
	}
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= ceiling {
			return ceiling
		}
	}
	return d
}
