package mocks

import (
	"context"
	"time"

	"github.com/MrRookie-AIR/PushupsbyArduino/internal/transport"
)

// MockTransport replays Lines and records what was sent.
type MockTransport struct {
	Lines   []string
	Sent    []string
	OpenErr error
	Opened  bool
	Closed  bool
}

func (m *MockTransport) Open(ctx context.Context) error {
	if m.OpenErr != nil {
		return m.OpenErr
	}
	m.Opened = true
	return nil
}

func (m *MockTransport) Send(data []byte) error {
	m.Sent = append(m.Sent, string(data))
	return nil
}

func (m *MockTransport) ReadLine(timeout time.Duration) (string, error) {
	if len(m.Lines) == 0 {
		return "", transport.ErrNoData
	}
	line := m.Lines[0]
	m.Lines = m.Lines[1:]
	return line, nil
}

func (m *MockTransport) Close() error {
	m.Closed = true
	return nil
}

// MockPaymentNotifier records notifications.
type MockPaymentNotifier struct {
	Calls []int64
	Err   error
}

func (m *MockPaymentNotifier) Notify(ctx context.Context, violationID int64, userID string) error {
	m.Calls = append(m.Calls, violationID)
	return m.Err
}
