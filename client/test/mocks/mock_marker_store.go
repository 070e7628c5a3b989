package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/MrRookie-AIR/PushupsbyArduino/internal/store"
	"github.com/MrRookie-AIR/PushupsbyArduino/types"
)

// MockMarkerStore is an in-memory store.MarkerStore. The Func fields, when
// set, replace the default behaviour.
type MockMarkerStore struct {
	mu      sync.Mutex
	pending *types.PendingJob
	busy    *types.BusyMarker

	PendingExistsFunc func(ctx context.Context) (bool, error)
	PutPendingFunc    func(ctx context.Context, job types.PendingJob) error
	GetBusyFunc       func(ctx context.Context) (*types.BusyMarker, error)
	SetBusyFunc       func(ctx context.Context, at time.Time) error
	ClearBusyFunc     func(ctx context.Context) error

	PutPendingCalls int
	ClearBusyCalls  int
	SetBusyCalls    int
}

func (m *MockMarkerStore) PendingExists(ctx context.Context) (bool, error) {
	if m.PendingExistsFunc != nil {
		return m.PendingExistsFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending != nil, nil
}

func (m *MockMarkerStore) PutPending(ctx context.Context, job types.PendingJob) error {
	m.mu.Lock()
	m.PutPendingCalls++
	m.mu.Unlock()
	if m.PutPendingFunc != nil {
		return m.PutPendingFunc(ctx, job)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending != nil {
		return store.ErrSlotOccupied
	}
	m.pending = &job
	return nil
}

func (m *MockMarkerStore) PeekPending(ctx context.Context) (*types.PendingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return nil, nil
	}
	job := *m.pending
	return &job, nil
}

func (m *MockMarkerStore) TakePending(ctx context.Context) (*types.PendingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job := m.pending
	m.pending = nil
	return job, nil
}

func (m *MockMarkerStore) GetBusy(ctx context.Context) (*types.BusyMarker, error) {
	if m.GetBusyFunc != nil {
		return m.GetBusyFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy == nil {
		return nil, nil
	}
	marker := *m.busy
	return &marker, nil
}

func (m *MockMarkerStore) SetBusy(ctx context.Context, at time.Time) error {
	m.mu.Lock()
	m.SetBusyCalls++
	m.mu.Unlock()
	if m.SetBusyFunc != nil {
		return m.SetBusyFunc(ctx, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy = &types.BusyMarker{SetAt: at}
	return nil
}

func (m *MockMarkerStore) ClearBusy(ctx context.Context) error {
	m.mu.Lock()
	m.ClearBusyCalls++
	m.mu.Unlock()
	if m.ClearBusyFunc != nil {
		return m.ClearBusyFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy = nil
	return nil
}

func (m *MockMarkerStore) Close() error {
	return nil
}

// SeedPending places a job in the slot without going through PutPending.
func (m *MockMarkerStore) SeedPending(job types.PendingJob) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = &job
}

// SeedBusy places a marker without going through SetBusy.
func (m *MockMarkerStore) SeedBusy(at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy = &types.BusyMarker{SetAt: at}
}
