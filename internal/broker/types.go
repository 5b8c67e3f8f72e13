package broker

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// Message is a consumed record as handed to a HandlerFunc.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers []kafka.Header
}

type Producer interface {
	// Publish JSON-encodes value and writes it to topic.
	Publish(ctx context.Context, topic, key string, value any) error
	Close() error
}

type Consumer interface {
	Consume(ctx context.Context, topic string, handler HandlerFunc) error
	Close() error
	SetServiceName(name string)
}

// HandlerFunc processes one message. A returned error routes the message to
// the dead letter topic.
type HandlerFunc func(ctx context.Context, msg Message) error
