package audit

import (
	"context"
	"log"
	"time"

	"github.com/MrRookie-AIR/PushupsbyArduino/types"
	"github.com/google/uuid"
)

// Recorder appends audit records. Records are observational only.
type Recorder interface {
	Record(ctx context.Context, rec types.AuditRecord) error
}

// NewRecord stamps a record with a fresh id and the current time.
func NewRecord(kind types.AuditKind, instance, jobID, label, message string) types.AuditRecord {
	return types.AuditRecord{
		ID:        uuid.New().String(),
		Kind:      kind,
		JobID:     jobID,
		Label:     label,
		Message:   message,
		Instance:  instance,
		CreatedAt: time.Now(),
	}
}

// MultiRecorder fans a record out to every sink in order. A failing sink is
// logged and does not stop the others.
type MultiRecorder struct {
	recorders []Recorder
}

func NewMultiRecorder(recorders ...Recorder) *MultiRecorder {
	var nonNil []Recorder
	for _, r := range recorders {
		if r != nil {
			nonNil = append(nonNil, r)
		}
	}
	return &MultiRecorder{recorders: nonNil}
}

func (m *MultiRecorder) Record(ctx context.Context, rec types.AuditRecord) error {
	for _, r := range m.recorders {
		if err := r.Record(ctx, rec); err != nil {
			log.Printf("[audit] %T failed to record %s for job %s: %v", r, rec.Kind, rec.JobID, err)
		}
	}
	return nil
}

// Nop discards every record.
type Nop struct{}

func (Nop) Record(context.Context, types.AuditRecord) error { return nil }
