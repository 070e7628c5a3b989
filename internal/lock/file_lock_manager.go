package lock

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// FileLockManager takes an advisory flock on <dir>/.slot-<id>.lock so that
// separate processes sharing the marker directory exclude each other.
// Goroutines of one process queue on a local mutex first.
type FileLockManager struct {
	dir   string
	local *LocalLockManager

	mu    sync.Mutex
	files map[int]*flock.Flock
}

func NewFileLockManager(dir string) *FileLockManager {
	return &FileLockManager{
		dir:   dir,
		local: NewLocalLockManager(),
		files: make(map[int]*flock.Flock),
	}
}

func (l *FileLockManager) path(lockID int) string {
	return filepath.Join(l.dir, fmt.Sprintf(".slot-%d.lock", lockID))
}

func (l *FileLockManager) flock(lockID int) *flock.Flock {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, ok := l.files[lockID]
	if !ok {
		f = flock.New(l.path(lockID))
		l.files[lockID] = f
	}
	return f
}

func (l *FileLockManager) Acquire(lockID int) error {
	if err := l.local.Acquire(lockID); err != nil {
		return err
	}
	if err := l.flock(lockID).Lock(); err != nil {
		_ = l.local.Release(lockID)
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	return nil
}

func (l *FileLockManager) Release(lockID int) error {
	unlockErr := l.flock(lockID).Unlock()
	if err := l.local.Release(lockID); err != nil {
		return err
	}
	if unlockErr != nil {
		return fmt.Errorf("failed to release lock: %w", unlockErr)
	}
	return nil
}
