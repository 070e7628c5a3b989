package client

import (
	"context"
	"fmt"
	"log"

	"github.com/MrRookie-AIR/PushupsbyArduino/internal/state"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/store"
	"github.com/MrRookie-AIR/PushupsbyArduino/types"
)

// StatusReporter answers pollers. It never modifies the pending slot.
type StatusReporter struct {
	busy    *BusyTracker
	pending store.PendingJobStore
}

func NewStatusReporter(busy *BusyTracker, pending store.PendingJobStore) *StatusReporter {
	return &StatusReporter{busy: busy, pending: pending}
}

// Query reports BUSY when the marker cannot be read.
func (r *StatusReporter) Query(ctx context.Context) types.ActuatorStatus {
	busy, err := r.busy.IsBusy(ctx)
	if err != nil {
		log.Printf("[status] %v", err)
	}
	if busy {
		return types.StatusBusy
	}
	return types.StatusReady
}

func (r *StatusReporter) Snapshot(ctx context.Context) (types.SlotSnapshot, error) {
	marker, err := r.busy.Current(ctx)
	if err != nil {
		return types.SlotSnapshot{}, err
	}
	pending, err := r.pending.PeekPending(ctx)
	if err != nil {
		return types.SlotSnapshot{}, fmt.Errorf("read pending job: %w", err)
	}

	snapshot := types.SlotSnapshot{
		State:   state.Derive(pending != nil, marker != nil),
		Status:  types.StatusReady,
		Pending: pending,
		Busy:    marker,
	}
	if marker != nil {
		snapshot.Status = types.StatusBusy
	}
	return snapshot, nil
}
