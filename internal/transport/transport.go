package transport

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoData is returned by ReadLine when no complete line arrived in time.
	ErrNoData = errors.New("transport: no data")

	ErrNotOpen = errors.New("transport: not open")
)

// Transport is a line-oriented link to the actuator.
type Transport interface {
	Open(ctx context.Context) error
	Send(data []byte) error
	ReadLine(timeout time.Duration) (string, error)
	Close() error
}
