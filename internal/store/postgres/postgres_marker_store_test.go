package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/store"
	"github.com/MrRookie-AIR/PushupsbyArduino/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPostgresMarkerStore(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	markerStore := NewPostgresMarkerStore(db)
	require.NotNil(t, markerStore)
}

func TestPostgresMarkerStore_PendingExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := NewPostgresMarkerStore(db).PendingExists(context.Background())
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMarkerStore_PutPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO pushup_schema.pending_job").
		WithArgs("77", "Ivan").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewPostgresMarkerStore(db).PutPending(context.Background(), types.PendingJob{JobID: "77", Label: "Ivan"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMarkerStore_PutPending_Occupied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO pushup_schema.pending_job").
		WithArgs("77", "Ivan").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewPostgresMarkerStore(db).PutPending(context.Background(), types.PendingJob{JobID: "77", Label: "Ivan"})
	assert.ErrorIs(t, err, store.ErrSlotOccupied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMarkerStore_PutPending_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO pushup_schema.pending_job").
		WillReturnError(sql.ErrConnDone)

	err = NewPostgresMarkerStore(db).PutPending(context.Background(), types.PendingJob{JobID: "1", Label: "x"})
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NotErrorIs(t, err, store.ErrSlotOccupied)
}

func TestPostgresMarkerStore_TakePending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("DELETE FROM pushup_schema.pending_job WHERE slot = 1 RETURNING").
		WillReturnRows(sqlmock.NewRows([]string{"job_id", "label"}).AddRow("5", "Olga"))
	mock.ExpectQuery("DELETE FROM pushup_schema.pending_job WHERE slot = 1 RETURNING").
		WillReturnError(sql.ErrNoRows)

	markerStore := NewPostgresMarkerStore(db)
	job, err := markerStore.TakePending(context.Background())
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, types.PendingJob{JobID: "5", Label: "Olga"}, *job)

	job, err = markerStore.TakePending(context.Background())
	require.NoError(t, err)
	assert.Nil(t, job)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMarkerStore_BusyLifecycle(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	setAt := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT set_at FROM pushup_schema.busy_marker").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO pushup_schema.busy_marker").
		WithArgs(setAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT set_at FROM pushup_schema.busy_marker").
		WillReturnRows(sqlmock.NewRows([]string{"set_at"}).AddRow(setAt))
	mock.ExpectExec("DELETE FROM pushup_schema.busy_marker").
		WillReturnResult(sqlmock.NewResult(0, 1))

	markerStore := NewPostgresMarkerStore(db)
	ctx := context.Background()

	marker, err := markerStore.GetBusy(ctx)
	require.NoError(t, err)
	assert.Nil(t, marker)

	require.NoError(t, markerStore.SetBusy(ctx, setAt))

	marker, err = markerStore.GetBusy(ctx)
	require.NoError(t, err)
	require.NotNil(t, marker)
	assert.True(t, setAt.Equal(marker.SetAt))

	require.NoError(t, markerStore.ClearBusy(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAuditStore_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := types.AuditRecord{
		ID:        "c1f0",
		Kind:      types.AuditAccepted,
		JobID:     "77",
		Label:     "Ivan",
		Instance:  "box-1",
		CreatedAt: time.Now(),
	}
	mock.ExpectExec("INSERT INTO pushup_schema.audit_records").
		WithArgs(rec.ID, "accepted", rec.JobID, rec.Label, rec.Message, rec.Instance, rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, NewPostgresAuditStore(db).Record(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}
