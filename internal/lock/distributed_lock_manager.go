package lock

// DistributedLockManager serializes critical sections identified by lockID
// across goroutines and, depending on the implementation, processes.
type DistributedLockManager interface {
	Acquire(lockID int) error
	Release(lockID int) error
}
