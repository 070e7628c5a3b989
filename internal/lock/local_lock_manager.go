package lock

import (
	"fmt"
	"sync"
)

// LocalLockManager is an in-process lock table, for backends whose writes
// are already atomic across processes.
type LocalLockManager struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
	held  map[int]bool
}

func NewLocalLockManager() *LocalLockManager {
	return &LocalLockManager{
		locks: make(map[int]*sync.Mutex),
		held:  make(map[int]bool),
	}
}

func (l *LocalLockManager) mutex(lockID int) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[lockID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[lockID] = m
	}
	return m
}

func (l *LocalLockManager) Acquire(lockID int) error {
	l.mutex(lockID).Lock()
	l.mu.Lock()
	l.held[lockID] = true
	l.mu.Unlock()
	return nil
}

func (l *LocalLockManager) Release(lockID int) error {
	l.mu.Lock()
	if !l.held[lockID] {
		l.mu.Unlock()
		return fmt.Errorf("failed to release lock: lock %d is not held", lockID)
	}
	l.held[lockID] = false
	m := l.locks[lockID]
	l.mu.Unlock()
	m.Unlock()
	return nil
}
