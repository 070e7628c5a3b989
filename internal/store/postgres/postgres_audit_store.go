package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrRookie-AIR/PushupsbyArduino/types"
)

// AuditStore appends audit records to pushup_schema.audit_records.
type AuditStore struct {
	db *sql.DB
}

func NewPostgresAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) Record(ctx context.Context, rec types.AuditRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pushup_schema.audit_records (record_id, kind, job_id, label, message, instance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, string(rec.Kind), rec.JobID, rec.Label, rec.Message, rec.Instance, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}
