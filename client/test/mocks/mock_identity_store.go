package mocks

import (
	"context"
	"time"

	"github.com/MrRookie-AIR/PushupsbyArduino/types"
)

// MockIdentityStore is a mock implementation of store.IdentityStore and
// store.ObligationStore for testing.
type MockIdentityStore struct {
	LatestJobIDFunc           func(ctx context.Context, userID string) (string, error)
	OldestUnpaidJobIDFunc     func(ctx context.Context, userID string) (string, error)
	OwnerOfFunc               func(ctx context.Context, jobID string) (string, error)
	PushupPlanFunc            func(ctx context.Context, parentID int64, childID string) (*types.PushupPlan, error)
	LatestUnpaidViolationFunc func(ctx context.Context, jobID string) (*types.Violation, error)
	MarkViolationPaidFunc     func(ctx context.Context, violationID int64, at time.Time) (bool, error)
	IsJobPaidFunc             func(ctx context.Context, jobID string) (bool, error)

	LatestJobIDCalls int
}

func (m *MockIdentityStore) LatestJobID(ctx context.Context, userID string) (string, error) {
	m.LatestJobIDCalls++
	if m.LatestJobIDFunc != nil {
		return m.LatestJobIDFunc(ctx, userID)
	}
	return "", nil
}

func (m *MockIdentityStore) OldestUnpaidJobID(ctx context.Context, userID string) (string, error) {
	if m.OldestUnpaidJobIDFunc != nil {
		return m.OldestUnpaidJobIDFunc(ctx, userID)
	}
	return "", nil
}

func (m *MockIdentityStore) OwnerOf(ctx context.Context, jobID string) (string, error) {
	if m.OwnerOfFunc != nil {
		return m.OwnerOfFunc(ctx, jobID)
	}
	return "", nil
}

func (m *MockIdentityStore) PushupPlan(ctx context.Context, parentID int64, childID string) (*types.PushupPlan, error) {
	if m.PushupPlanFunc != nil {
		return m.PushupPlanFunc(ctx, parentID, childID)
	}
	return nil, nil
}

func (m *MockIdentityStore) LatestUnpaidViolation(ctx context.Context, jobID string) (*types.Violation, error) {
	if m.LatestUnpaidViolationFunc != nil {
		return m.LatestUnpaidViolationFunc(ctx, jobID)
	}
	return nil, nil
}

func (m *MockIdentityStore) MarkViolationPaid(ctx context.Context, violationID int64, at time.Time) (bool, error) {
	if m.MarkViolationPaidFunc != nil {
		return m.MarkViolationPaidFunc(ctx, violationID, at)
	}
	return true, nil
}

func (m *MockIdentityStore) IsJobPaid(ctx context.Context, jobID string) (bool, error) {
	if m.IsJobPaidFunc != nil {
		return m.IsJobPaidFunc(ctx, jobID)
	}
	return false, nil
}
