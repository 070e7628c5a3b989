package message_broaker

import "context"

// Publisher is the write side of a broker. Audit sinks only need this.
type Publisher interface {
	Publish(queue string, message []byte) error
}

type MessageBroker interface {
	Publisher
	Consume(ctx context.Context, queue string) (<-chan []byte, error)
	Close() error
}
