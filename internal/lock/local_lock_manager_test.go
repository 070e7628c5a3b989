package lock

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseMutualExclusion(t *testing.T, mgr DistributedLockManager) {
	t.Helper()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !assert.NoError(t, mgr.Acquire(1)) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			atomic.AddInt32(&inside, -1)
			assert.NoError(t, mgr.Release(1))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}

func TestLocalLockManager_MutualExclusion(t *testing.T) {
	exerciseMutualExclusion(t, NewLocalLockManager())
}

func TestLocalLockManager_IndependentIDs(t *testing.T) {
	mgr := NewLocalLockManager()
	require.NoError(t, mgr.Acquire(1))
	require.NoError(t, mgr.Acquire(2))
	require.NoError(t, mgr.Release(2))
	require.NoError(t, mgr.Release(1))
}

func TestLocalLockManager_ReleaseNotHeld(t *testing.T) {
	mgr := NewLocalLockManager()
	err := mgr.Release(3)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not held")
}

func TestFileLockManager_MutualExclusion(t *testing.T) {
	exerciseMutualExclusion(t, NewFileLockManager(t.TempDir()))
}

func TestFileLockManager_CreatesLockFile(t *testing.T) {
	dir := t.TempDir()
	mgr := NewFileLockManager(dir)
	require.NoError(t, mgr.Acquire(1))
	assert.FileExists(t, mgr.path(1))
	require.NoError(t, mgr.Release(1))
}
