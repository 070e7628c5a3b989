package test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrRookie-AIR/PushupsbyArduino/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusyTracker_IsBusy(t *testing.T) {
	tests := []struct {
		name     string
		seed     *time.Duration
		expected bool
	}{
		{name: "no marker", expected: false},
		{name: "fresh marker", seed: durationPtr(100 * time.Second), expected: true},
		{name: "exactly at threshold", seed: durationPtr(300 * time.Second), expected: true},
		{name: "past threshold", seed: durationPtr(301 * time.Second), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.seed != nil {
				f.markers.SeedBusy(fixedNow.Add(-*tt.seed))
			}
			busy, err := f.tracker.IsBusy(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, busy)
		})
	}
}

func TestBusyTracker_StaleMarkerIsRemoved(t *testing.T) {
	f := newFixture()
	f.markers.SeedBusy(fixedNow.Add(-301 * time.Second))

	busy, err := f.tracker.IsBusy(context.Background())
	require.NoError(t, err)
	assert.False(t, busy)

	marker, err := f.markers.GetBusy(context.Background())
	require.NoError(t, err)
	assert.Nil(t, marker)
	assert.Equal(t, []types.AuditKind{types.AuditMarkerReclaimed}, f.recorder.Kinds())
}

func TestBusyTracker_StaleMarkerIgnoredEvenWhenRemovalFails(t *testing.T) {
	f := newFixture()
	f.markers.SeedBusy(fixedNow.Add(-10 * time.Minute))
	f.markers.ClearBusyFunc = func(ctx context.Context) error {
		return errors.New("read-only filesystem")
	}

	busy, err := f.tracker.IsBusy(context.Background())
	require.NoError(t, err)
	assert.False(t, busy)
	assert.Empty(t, f.recorder.Records)
}

func TestBusyTracker_ReclaimIfStale(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	reclaimed, err := f.tracker.ReclaimIfStale(ctx)
	require.NoError(t, err)
	assert.False(t, reclaimed)
	assert.Equal(t, 0, f.markers.ClearBusyCalls)

	f.markers.SeedBusy(fixedNow.Add(-time.Minute))
	reclaimed, err = f.tracker.ReclaimIfStale(ctx)
	require.NoError(t, err)
	assert.False(t, reclaimed)

	f.markers.SeedBusy(fixedNow.Add(-time.Hour))
	reclaimed, err = f.tracker.ReclaimIfStale(ctx)
	require.NoError(t, err)
	assert.True(t, reclaimed)

	reclaimed, err = f.tracker.ReclaimIfStale(ctx)
	require.NoError(t, err)
	assert.False(t, reclaimed)
	assert.Equal(t, 1, f.markers.ClearBusyCalls)
}

func TestBusyTracker_ReadErrorCountsAsBusy(t *testing.T) {
	f := newFixture()
	f.markers.GetBusyFunc = func(ctx context.Context) (*types.BusyMarker, error) {
		return nil, errors.New("stat failed")
	}

	busy, err := f.tracker.IsBusy(context.Background())
	assert.Error(t, err)
	assert.True(t, busy)
}

func TestBusyTracker_SetAndClear(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	require.NoError(t, f.tracker.Set(ctx, types.PendingJob{JobID: "77", Label: "Ivan"}))
	marker, err := f.markers.GetBusy(ctx)
	require.NoError(t, err)
	require.NotNil(t, marker)
	assert.Equal(t, fixedNow, marker.SetAt)

	require.NoError(t, f.tracker.Clear(ctx, "done"))
	require.NoError(t, f.tracker.Clear(ctx, "done again"))

	busy, err := f.tracker.IsBusy(ctx)
	require.NoError(t, err)
	assert.False(t, busy)
	assert.Equal(t, []types.AuditKind{
		types.AuditMarkerSet,
		types.AuditMarkerCleared,
		types.AuditMarkerCleared,
	}, f.recorder.Kinds())
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}
