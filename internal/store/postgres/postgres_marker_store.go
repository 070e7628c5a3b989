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

type postgresMarkerStore struct {
	db *sql.DB
}

// NewPostgresMarkerStore keeps the pending slot and the busy marker in
// single-row tables. The primary key on slot makes PutPending a
// check-and-set.
func NewPostgresMarkerStore(db *sql.DB) store.MarkerStore {
	return &postgresMarkerStore{db: db}
}

func (s *postgresMarkerStore) PendingExists(ctx context.Context) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM pushup_schema.pending_job WHERE slot = 1)`,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check pending job: %w", err)
	}
	return exists, nil
}

func (s *postgresMarkerStore) PutPending(ctx context.Context, job types.PendingJob) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO pushup_schema.pending_job (slot, job_id, label, created_at)
		VALUES (1, $1, $2, now())
		ON CONFLICT (slot) DO NOTHING`,
		job.JobID, job.Label)
	if err != nil {
		return fmt.Errorf("write pending job: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("write pending job: %w", err)
	}
	if affected == 0 {
		return store.ErrSlotOccupied
	}
	return nil
}

func (s *postgresMarkerStore) PeekPending(ctx context.Context) (*types.PendingJob, error) {
	row := s.db.QueryRowContext(ctx, `SELECT job_id, label FROM pushup_schema.pending_job WHERE slot = 1`)
	return scanPendingJob(row)
}

func (s *postgresMarkerStore) TakePending(ctx context.Context) (*types.PendingJob, error) {
	row := s.db.QueryRowContext(ctx, `DELETE FROM pushup_schema.pending_job WHERE slot = 1 RETURNING job_id, label`)
	return scanPendingJob(row)
}

func (s *postgresMarkerStore) GetBusy(ctx context.Context) (*types.BusyMarker, error) {
	marker := &types.BusyMarker{}
	err := s.db.QueryRowContext(ctx, `SELECT set_at FROM pushup_schema.busy_marker WHERE slot = 1`).Scan(&marker.SetAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read busy marker: %w", err)
	}
	return marker, nil
}

func (s *postgresMarkerStore) SetBusy(ctx context.Context, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pushup_schema.busy_marker (slot, set_at)
		VALUES (1, $1)
		ON CONFLICT (slot) DO UPDATE SET set_at = EXCLUDED.set_at`,
		at)
	if err != nil {
		return fmt.Errorf("write busy marker: %w", err)
	}
	return nil
}

func (s *postgresMarkerStore) ClearBusy(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pushup_schema.busy_marker WHERE slot = 1`); err != nil {
		return fmt.Errorf("clear busy marker: %w", err)
	}
	return nil
}

func (s *postgresMarkerStore) Close() error {
	return s.db.Close()
}

func scanPendingJob(row *sql.Row) (*types.PendingJob, error) {
	job := &types.PendingJob{}
	if err := row.Scan(&job.JobID, &job.Label); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read pending job: %w", err)
	}
	return job, nil
}
