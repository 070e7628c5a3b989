package types

import "time"

type AuditKind string

const (
	AuditAccepted        AuditKind = "accepted"
	AuditMarkerSet       AuditKind = "marker_set"
	AuditMarkerCleared   AuditKind = "marker_cleared"
	AuditMarkerReclaimed AuditKind = "marker_reclaimed"
	AuditJobCompleted    AuditKind = "job_completed"
)

// AuditRecord is an append-only observation. Nothing in the service reads
// these back.
type AuditRecord struct {
	ID        string    `json:"id"`
	Kind      AuditKind `json:"kind"`
	JobID     string    `json:"job_id,omitempty"`
	Label     string    `json:"label,omitempty"`
	Message   string    `json:"message,omitempty"`
	Instance  string    `json:"instance,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
