package mocks

import (
	"context"
	"sync"
)

// MockMessageBroker is a mock implementation of message_broaker.MessageBroker.
// Without a PublishFunc it keeps every published message.
type MockMessageBroker struct {
	PublishFunc func(queue string, message []byte) error
	CloseFunc   func() error

	mu        sync.Mutex
	Published map[string][][]byte
}

func (m *MockMessageBroker) Publish(queue string, message []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(queue, message)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Published == nil {
		m.Published = make(map[string][][]byte)
	}
	m.Published[queue] = append(m.Published[queue], message)
	return nil
}

// Consume replays what was published to queue and then closes the channel.
func (m *MockMessageBroker) Consume(ctx context.Context, queue string) (<-chan []byte, error) {
	m.mu.Lock()
	messages := append([][]byte(nil), m.Published[queue]...)
	m.mu.Unlock()

	ch := make(chan []byte, len(messages))
	for _, msg := range messages {
		ch <- msg
	}
	close(ch)
	return ch, nil
}

func (m *MockMessageBroker) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
