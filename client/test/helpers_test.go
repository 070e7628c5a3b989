package test

import (
	"time"

	"github.com/MrRookie-AIR/PushupsbyArduino/client"
	"github.com/MrRookie-AIR/PushupsbyArduino/client/test/mocks"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/constants"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/lock"
)

var fixedNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fixture struct {
	markers  *mocks.MockMarkerStore
	identity *mocks.MockIdentityStore
	recorder *mocks.MockRecorder
	tracker  *client.BusyTracker
	queue    *client.AdmissionQueue
	status   *client.StatusReporter
}

func newFixture() *fixture {
	return newFixtureWithLock(lock.NewLocalLockManager())
}

func newFixtureWithLock(lockManager lock.DistributedLockManager) *fixture {
	f := &fixture{
		markers:  &mocks.MockMarkerStore{},
		identity: &mocks.MockIdentityStore{},
		recorder: &mocks.MockRecorder{},
	}
	f.tracker = client.NewBusyTracker(f.markers, f.recorder, constants.BusyStaleAfter, "test-instance").WithClock(clock)
	resolver := client.NewIdentityResolver(f.identity)
	f.queue = client.NewAdmissionQueue(f.markers, f.tracker, resolver, lockManager, f.recorder, "test-instance")
	f.status = client.NewStatusReporter(f.tracker, f.markers)
	return f
}
