package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MrRookie-AIR/PushupsbyArduino/internal/store"
	"github.com/MrRookie-AIR/PushupsbyArduino/types"
)

// postgresIdentityStore reads the rules/violation/parents tables. Queries
// only use positional $n placeholders so the same store also runs on sqlite3.
type postgresIdentityStore struct {
	db *sql.DB
}

// IdentityStore is the combined lookup and settlement view of the relational
// store. Close closes the underlying connection.
type IdentityStore interface {
	store.IdentityStore
	store.ObligationStore
	Close() error
}

// NewPostgresIdentityStore creates a new IdentityStore with a DB connection
func NewPostgresIdentityStore(db *sql.DB) IdentityStore {
	return &postgresIdentityStore{db: db}
}

func (r *postgresIdentityStore) LatestJobID(ctx context.Context, userID string) (string, error) {
	query := `SELECT id FROM rules WHERE user_id = $1 ORDER BY id DESC LIMIT 1`
	return r.scanString(ctx, query, userID)
}

func (r *postgresIdentityStore) OldestUnpaidJobID(ctx context.Context, userID string) (string, error) {
	query := `
		SELECT v.rule_id
		  FROM violation v
		  JOIN rules r ON r.id = v.rule_id
		 WHERE r.user_id = $1
		   AND v.date_paid IS NULL
		 ORDER BY v.date_creation ASC
		 LIMIT 1`
	return r.scanString(ctx, query, userID)
}

func (r *postgresIdentityStore) OwnerOf(ctx context.Context, jobID string) (string, error) {
	query := `SELECT user_id FROM rules WHERE id = $1 LIMIT 1`
	return r.scanString(ctx, query, jobID)
}

func (r *postgresIdentityStore) PushupPlan(ctx context.Context, parentID int64, childID string) (*types.PushupPlan, error) {
	query := `
		SELECT push_ups, time
		  FROM parents
		 WHERE p_id = $1 AND ch_id = $2
		 ORDER BY id DESC
		 LIMIT 1`
	plan := &types.PushupPlan{}
	err := r.db.QueryRowContext(ctx, query, parentID, childID).Scan(&plan.Pushups, &plan.RestTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("pushup plan for child %s: %w", childID, err)
	}
	return plan, nil
}

func (r *postgresIdentityStore) LatestUnpaidViolation(ctx context.Context, jobID string) (*types.Violation, error) {
	query := `
		SELECT id
		  FROM violation
		 WHERE rule_id = $1
		   AND date_paid IS NULL
		 ORDER BY date_creation DESC
		 LIMIT 1`
	v := &types.Violation{JobID: jobID}
	err := r.db.QueryRowContext(ctx, query, jobID).Scan(&v.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("unpaid violation for job %s: %w", jobID, err)
	}
	return v, nil
}

func (r *postgresIdentityStore) MarkViolationPaid(ctx context.Context, violationID int64, at time.Time) (bool, error) {
	query := `UPDATE violation SET date_paid = $1 WHERE id = $2 AND date_paid IS NULL`
	result, err := r.db.ExecContext(ctx, query, at, violationID)
	if err != nil {
		return false, fmt.Errorf("mark violation %d paid: %w", violationID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

func (r *postgresIdentityStore) IsJobPaid(ctx context.Context, jobID string) (bool, error) {
	query := `
		SELECT date_paid IS NOT NULL
		  FROM violation
		 WHERE rule_id = $1
		 ORDER BY date_creation DESC
		 LIMIT 1`
	var paid bool
	err := r.db.QueryRowContext(ctx, query, jobID).Scan(&paid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("payment state of job %s: %w", jobID, err)
	}
	return paid, nil
}

func (r *postgresIdentityStore) Close() error {
	return r.db.Close()
}

func (r *postgresIdentityStore) scanString(ctx context.Context, query string, arg any) (string, error) {
	var value sql.NullString
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return value.String, nil
}
