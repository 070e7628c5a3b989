package client

import (
	"context"
	"log"
	"strings"

	"github.com/MrRookie-AIR/PushupsbyArduino/custom_errors"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/store"
)

// IdentityResolver maps a user to a job. Every lookup hits the store; nothing
// is cached.
type IdentityResolver struct {
	store store.IdentityStore
}

func NewIdentityResolver(identityStore store.IdentityStore) *IdentityResolver {
	return &IdentityResolver{store: identityStore}
}

// Resolve returns the user's most recently created job. A failed lookup is
// logged as store_unavailable and reported as not found.
func (r *IdentityResolver) Resolve(ctx context.Context, userID string) (string, bool) {
	return r.lookup(ctx, "latest job", userID, r.store.LatestJobID)
}

// OldestUnpaid returns the job of the user's oldest unpaid obligation.
func (r *IdentityResolver) OldestUnpaid(ctx context.Context, userID string) (string, bool) {
	return r.lookup(ctx, "oldest unpaid job", userID, r.store.OldestUnpaidJobID)
}

func (r *IdentityResolver) lookup(ctx context.Context, what, userID string, query func(context.Context, string) (string, error)) (string, bool) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", false
	}
	jobID, err := query(ctx, userID)
	if err != nil {
		log.Printf("[resolver] %s: %s lookup for user %s failed: %v", custom_errors.KindStoreUnavailable, what, userID, err)
		return "", false
	}
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return "", false
	}
	return jobID, true
}
