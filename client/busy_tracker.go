package client

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/MrRookie-AIR/PushupsbyArduino/internal/audit"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/store"
	"github.com/MrRookie-AIR/PushupsbyArduino/types"
)

// BusyTracker owns the "actuator executing" fact. A marker older than the
// staleness threshold counts as absent for every reader; deleting it is a
// side effect, not a precondition.
type BusyTracker struct {
	markers    store.BusyMarkerStore
	recorder   audit.Recorder
	staleAfter time.Duration
	instance   string
	now        func() time.Time
}

func NewBusyTracker(markers store.BusyMarkerStore, recorder audit.Recorder, staleAfter time.Duration, instance string) *BusyTracker {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &BusyTracker{
		markers:    markers,
		recorder:   recorder,
		staleAfter: staleAfter,
		instance:   instance,
		now:        time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (b *BusyTracker) WithClock(now func() time.Time) *BusyTracker {
	b.now = now
	return b
}

// IsBusy reclaims a stale marker first. On a read error it reports busy
// together with the error.
func (b *BusyTracker) IsBusy(ctx context.Context) (bool, error) {
	marker, err := b.Current(ctx)
	if err != nil {
		return true, err
	}
	return marker != nil, nil
}

// Current returns the live marker, or nil when there is none or it was stale.
func (b *BusyTracker) Current(ctx context.Context) (*types.BusyMarker, error) {
	marker, err := b.markers.GetBusy(ctx)
	if err != nil {
		return nil, fmt.Errorf("read busy marker: %w", err)
	}
	if marker == nil {
		return nil, nil
	}
	if marker.IsStale(b.now(), b.staleAfter) {
		b.reclaim(ctx, *marker)
		return nil, nil
	}
	return marker, nil
}

// ReclaimIfStale removes a marker older than the threshold. An absent marker
// is left alone, so repeated calls issue no further deletes.
func (b *BusyTracker) ReclaimIfStale(ctx context.Context) (bool, error) {
	marker, err := b.markers.GetBusy(ctx)
	if err != nil {
		return false, fmt.Errorf("read busy marker: %w", err)
	}
	if marker == nil || !marker.IsStale(b.now(), b.staleAfter) {
		return false, nil
	}
	b.reclaim(ctx, *marker)
	return true, nil
}

func (b *BusyTracker) reclaim(ctx context.Context, marker types.BusyMarker) {
	age := marker.Age(b.now()).Truncate(time.Second)
	if err := b.markers.ClearBusy(ctx); err != nil {
		log.Printf("[busy] stale marker (age %s) could not be removed: %v", age, err)
		return
	}
	log.Printf("[busy] reclaimed stale marker, age %s", age)
	b.record(ctx, audit.NewRecord(types.AuditMarkerReclaimed, b.instance, "", "", fmt.Sprintf("stale after %s", age)))
}

// Set writes a fresh marker for job.
func (b *BusyTracker) Set(ctx context.Context, job types.PendingJob) error {
	if err := b.markers.SetBusy(ctx, b.now()); err != nil {
		return fmt.Errorf("set busy marker: %w", err)
	}
	b.record(ctx, audit.NewRecord(types.AuditMarkerSet, b.instance, job.JobID, job.Label, ""))
	return nil
}

// Clear removes the marker. Clearing an absent marker succeeds.
func (b *BusyTracker) Clear(ctx context.Context, reason string) error {
	if err := b.markers.ClearBusy(ctx); err != nil {
		return fmt.Errorf("clear busy marker: %w", err)
	}
	b.record(ctx, audit.NewRecord(types.AuditMarkerCleared, b.instance, "", "", reason))
	return nil
}

func (b *BusyTracker) record(ctx context.Context, rec types.AuditRecord) {
	if err := b.recorder.Record(ctx, rec); err != nil {
		log.Printf("[busy] audit %s failed: %v", rec.Kind, err)
	}
}
