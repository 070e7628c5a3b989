package mocks

import (
	"context"
	"sync"

	"github.com/MrRookie-AIR/PushupsbyArduino/types"
)

// MockRecorder collects audit records in arrival order.
type MockRecorder struct {
	mu      sync.Mutex
	Records []types.AuditRecord
	Err     error
}

func (m *MockRecorder) Record(ctx context.Context, rec types.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, rec)
	return m.Err
}

func (m *MockRecorder) Kinds() []types.AuditKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	kinds := make([]types.AuditKind, 0, len(m.Records))
	for _, r := range m.Records {
		kinds = append(kinds, r.Kind)
	}
	return kinds
}
