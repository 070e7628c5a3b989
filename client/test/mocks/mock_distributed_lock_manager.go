package mocks

import "sync"

// MockDistributedLockManager is a mock implementation of lock.DistributedLockManager.
// It counts calls and never blocks.
type MockDistributedLockManager struct {
	AcquireFunc func(lockID int) error
	ReleaseFunc func(lockID int) error

	mu       sync.Mutex
	Acquired int
	Released int
}

func (m *MockDistributedLockManager) Acquire(lockID int) error {
	m.mu.Lock()
	m.Acquired++
	m.mu.Unlock()
	if m.AcquireFunc != nil {
		return m.AcquireFunc(lockID)
	}
	return nil
}

func (m *MockDistributedLockManager) Release(lockID int) error {
	m.mu.Lock()
	m.Released++
	m.mu.Unlock()
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(lockID)
	}
	return nil
}
