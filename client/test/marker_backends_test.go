package test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MrRookie-AIR/PushupsbyArduino/client"
	"github.com/MrRookie-AIR/PushupsbyArduino/client/test/mocks"
	"github.com/MrRookie-AIR/PushupsbyArduino/custom_errors"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/constants"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/lock"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/store"
	fsstore "github.com/MrRookie-AIR/PushupsbyArduino/internal/store/fs"
	redisstore "github.com/MrRookie-AIR/PushupsbyArduino/internal/store/redis"
	"github.com/MrRookie-AIR/PushupsbyArduino/types"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

// testClock is a settable time source shared by the tracker and the test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type markerBackend struct {
	name string
	open func(t *testing.T) (store.MarkerStore, lock.DistributedLockManager)
}

func markerBackends() []markerBackend {
	return []markerBackend{
		{
			name: "filesystem",
			open: func(t *testing.T) (store.MarkerStore, lock.DistributedLockManager) {
				dir := t.TempDir()
				markers, err := fsstore.NewMarkerStore(afs.New(), dir)
				require.NoError(t, err)
				return markers, lock.NewFileLockManager(dir)
			},
		},
		{
			name: "redis",
			open: func(t *testing.T) (store.MarkerStore, lock.DistributedLockManager) {
				server := miniredis.RunT(t)
				markers := redisstore.NewRedisMarkerStore(redis.NewClient(&redis.Options{Addr: server.Addr()}))
				t.Cleanup(func() { _ = markers.Close() })
				return markers, lock.NewLocalLockManager()
			},
		},
	}
}

type backendRig struct {
	markers  store.MarkerStore
	clock    *testClock
	recorder *mocks.MockRecorder
	tracker  *client.BusyTracker
	queue    *client.AdmissionQueue
	status   *client.StatusReporter
}

func newBackendRig(t *testing.T, backend markerBackend) *backendRig {
	t.Helper()
	markers, lockManager := backend.open(t)
	r := &backendRig{
		markers:  markers,
		clock:    &testClock{now: fixedNow},
		recorder: &mocks.MockRecorder{},
	}
	identity := &mocks.MockIdentityStore{
		LatestJobIDFunc: func(ctx context.Context, userID string) (string, error) {
			return "77", nil
		},
	}
	r.tracker = client.NewBusyTracker(markers, r.recorder, constants.BusyStaleAfter, "test-instance").WithClock(r.clock.Now)
	r.queue = client.NewAdmissionQueue(markers, r.tracker, client.NewIdentityResolver(identity), lockManager, r.recorder, "test-instance")
	r.status = client.NewStatusReporter(r.tracker, markers)
	return r
}

func countKind(kinds []types.AuditKind, kind types.AuditKind) int {
	n := 0
	for _, k := range kinds {
		if k == kind {
			n++
		}
	}
	return n
}

func TestMarkerBackends_Staleness(t *testing.T) {
	for _, backend := range markerBackends() {
		t.Run(backend.name, func(t *testing.T) {
			ctx := context.Background()
			rig := newBackendRig(t, backend)
			require.NoError(t, rig.tracker.Set(ctx, types.PendingJob{JobID: "77", Label: "Ivan"}))

			rig.clock.Advance(100 * time.Second)
			assert.Equal(t, types.StatusBusy, rig.status.Query(ctx))

			rig.clock.Advance(201 * time.Second)
			assert.Equal(t, types.StatusReady, rig.status.Query(ctx))

			marker, err := rig.markers.GetBusy(ctx)
			require.NoError(t, err)
			assert.Nil(t, marker, "a stale marker is removed when observed")
		})
	}
}

func TestMarkerBackends_ReclaimIsIdempotent(t *testing.T) {
	for _, backend := range markerBackends() {
		t.Run(backend.name, func(t *testing.T) {
			ctx := context.Background()
			rig := newBackendRig(t, backend)
			require.NoError(t, rig.tracker.Set(ctx, types.PendingJob{JobID: "77", Label: "Ivan"}))
			rig.clock.Advance(301 * time.Second)

			reclaimed, err := rig.tracker.ReclaimIfStale(ctx)
			require.NoError(t, err)
			assert.True(t, reclaimed)

			reclaimed, err = rig.tracker.ReclaimIfStale(ctx)
			require.NoError(t, err)
			assert.False(t, reclaimed)

			busy, err := rig.tracker.IsBusy(ctx)
			require.NoError(t, err)
			assert.False(t, busy)
			assert.Equal(t, 1, countKind(rig.recorder.Kinds(), types.AuditMarkerReclaimed))
		})
	}
}

func TestMarkerBackends_ResubmitAfterStaleMarker(t *testing.T) {
	for _, backend := range markerBackends() {
		t.Run(backend.name, func(t *testing.T) {
			ctx := context.Background()
			rig := newBackendRig(t, backend)

			_, err := rig.queue.Submit(ctx, client.SubmitRequest{UserID: "42", Label: "Ivan"})
			require.NoError(t, err)
			taken, err := rig.markers.TakePending(ctx)
			require.NoError(t, err)
			require.NotNil(t, taken)

			rig.clock.Advance(100 * time.Second)
			_, err = rig.queue.Submit(ctx, client.SubmitRequest{UserID: "42", Label: "Ivan"})
			reason, ok := custom_errors.ReasonOf(err)
			require.True(t, ok)
			assert.Equal(t, custom_errors.ReasonActuatorBusy, reason)

			rig.clock.Advance(201 * time.Second)
			assert.Equal(t, types.StatusReady, rig.status.Query(ctx))
			accepted, err := rig.queue.Submit(ctx, client.SubmitRequest{UserID: "42", Label: "Ivan"})
			require.NoError(t, err)
			assert.Equal(t, "77", accepted.JobID)
			assert.False(t, accepted.Degraded)
		})
	}
}

func TestMarkerBackends_RoundTripAfterClear(t *testing.T) {
	for _, backend := range markerBackends() {
		t.Run(backend.name, func(t *testing.T) {
			ctx := context.Background()
			rig := newBackendRig(t, backend)
			req := client.SubmitRequest{JobID: "77", Label: "<b>Ivan</b>"}

			first, err := rig.queue.Submit(ctx, req)
			require.NoError(t, err)
			assert.Equal(t, types.Accepted{JobID: "77", Label: "Ivan"}, first)

			snapshot, err := rig.status.Snapshot(ctx)
			require.NoError(t, err)
			require.NotNil(t, snapshot.Pending)
			assert.Equal(t, "Ivan", snapshot.Pending.Label)

			taken, err := rig.markers.TakePending(ctx)
			require.NoError(t, err)
			require.NotNil(t, taken)
			require.NoError(t, rig.tracker.Clear(ctx, "job done"))

			snapshot, err = rig.status.Snapshot(ctx)
			require.NoError(t, err)
			assert.Nil(t, snapshot.Pending)
			assert.Nil(t, snapshot.Busy)

			second, err := rig.queue.Submit(ctx, req)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestMarkerBackends_ConcurrentSubmitAdmitsOne(t *testing.T) {
	for _, backend := range markerBackends() {
		t.Run(backend.name, func(t *testing.T) {
			ctx := context.Background()
			rig := newBackendRig(t, backend)

			const callers = 16
			var wg sync.WaitGroup
			results := make(chan error, callers)
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := rig.queue.Submit(ctx, client.SubmitRequest{JobID: "77", Label: "Ivan"})
					results <- err
				}()
			}
			wg.Wait()
			close(results)

			var accepted, queued int
			for err := range results {
				if err == nil {
					accepted++
					continue
				}
				reason, ok := custom_errors.ReasonOf(err)
				require.True(t, ok, "unexpected error: %v", err)
				if reason == custom_errors.ReasonAlreadyQueued {
					queued++
				}
			}
			assert.Equal(t, 1, accepted)
			assert.Equal(t, callers-1, queued)
			assert.Equal(t, 1, countKind(rig.recorder.Kinds(), types.AuditAccepted))
		})
	}
}
