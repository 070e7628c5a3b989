package store

import (
	"context"
	"time"

	"github.com/MrRookie-AIR/PushupsbyArduino/types"
)

// IdentityStore maps users to jobs. Lookups that find nothing return a
// zero value and a nil error.
type IdentityStore interface {
	// LatestJobID returns the most recently created job of the user.
	LatestJobID(ctx context.Context, userID string) (string, error)

	// OldestUnpaidJobID returns the job of the user's oldest unpaid violation.
	OldestUnpaidJobID(ctx context.Context, userID string) (string, error)
}

// ObligationStore is what the actuator worker needs to execute and settle a job.
type ObligationStore interface {
	// OwnerOf returns the user the job belongs to.
	OwnerOf(ctx context.Context, jobID string) (string, error)

	// PushupPlan returns the latest plan a parent set for a child, or nil.
	PushupPlan(ctx context.Context, parentID int64, childID string) (*types.PushupPlan, error)

	// LatestUnpaidViolation returns the newest unpaid violation of a job, or nil.
	LatestUnpaidViolation(ctx context.Context, jobID string) (*types.Violation, error)

	// MarkViolationPaid stamps the violation as paid. It reports false when
	// the violation was already paid.
	MarkViolationPaid(ctx context.Context, violationID int64, at time.Time) (bool, error)

	// IsJobPaid reports whether the newest violation of the job has been paid.
	IsJobPaid(ctx context.Context, jobID string) (bool, error)
}
