package types

import (
	"fmt"
	"strings"

	"github.com/MrRookie-AIR/PushupsbyArduino/internal/constants"
)

// PendingJob is the single accepted-but-not-yet-executed work item.
type PendingJob struct {
	JobID string `json:"job_id"`
	Label string `json:"label"`
}

// Encode renders the job the way it is stored in the pending slot.
func (p PendingJob) Encode() string {
	return p.JobID + constants.SlotSeparator + p.Label
}

// ParsePendingJob reverses Encode. The label may itself contain the separator.
func ParsePendingJob(raw string) (PendingJob, error) {
	raw = strings.TrimSpace(raw)
	jobID, label, ok := strings.Cut(raw, constants.SlotSeparator)
	if !ok || jobID == "" {
		return PendingJob{}, fmt.Errorf("malformed pending job %q", raw)
	}
	return PendingJob{JobID: jobID, Label: label}, nil
}
