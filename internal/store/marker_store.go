package store

import (
	"context"
	"errors"
	"time"

	"github.com/MrRookie-AIR/PushupsbyArduino/types"
)

// ErrSlotOccupied is returned by PutPending when a job already holds the slot.
var ErrSlotOccupied = errors.New("pending slot is occupied")

// PendingJobStore holds at most one pending job.
type PendingJobStore interface {
	// PendingExists reports whether the slot is occupied. Implementations
	// must observe writes from other processes without caching.
	PendingExists(ctx context.Context) (bool, error)

	// PutPending stores job if the slot is empty, or returns ErrSlotOccupied.
	// Readers never see a partially written job.
	PutPending(ctx context.Context, job types.PendingJob) error

	// PeekPending returns the pending job without removing it, or nil.
	PeekPending(ctx context.Context) (*types.PendingJob, error)

	// TakePending removes and returns the pending job, or nil when empty.
	TakePending(ctx context.Context) (*types.PendingJob, error)
}

// BusyMarkerStore holds the timestamped "actuator executing" marker.
type BusyMarkerStore interface {
	// GetBusy returns the marker, or nil when none is present.
	GetBusy(ctx context.Context) (*types.BusyMarker, error)

	SetBusy(ctx context.Context, at time.Time) error

	// ClearBusy removes the marker. Removing an absent marker is not an error.
	ClearBusy(ctx context.Context) error
}

// MarkerStore is implemented by every storage backend.
type MarkerStore interface {
	PendingJobStore
	BusyMarkerStore

	// Close releases the backend's resources.
	Close() error
}
