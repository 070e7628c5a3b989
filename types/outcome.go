package types

import "github.com/MrRookie-AIR/PushupsbyArduino/internal/state"

// Accepted is returned by a successful submission. Degraded is set when the
// job was stored but the busy marker could not be written.
type Accepted struct {
	JobID    string `json:"job_id"`
	Label    string `json:"label"`
	Degraded bool   `json:"degraded,omitempty"`
}

type ActuatorStatus string

const (
	StatusReady ActuatorStatus = "READY"
	StatusBusy  ActuatorStatus = "BUSY"
)

func (s ActuatorStatus) String() string {
	return string(s)
}

// SlotSnapshot is the operator view of the pending slot and busy marker.
type SlotSnapshot struct {
	State   state.SlotState `json:"state"`
	Status  ActuatorStatus  `json:"status"`
	Pending *PendingJob     `json:"pending,omitempty"`
	Busy    *BusyMarker     `json:"busy,omitempty"`
}

// PushupPlan is what the actuator is told to enforce.
type PushupPlan struct {
	Pushups  string `json:"pushups"`
	RestTime string `json:"rest_time"`
}

// Violation is an unpaid obligation attached to a job.
type Violation struct {
	ID    int64  `json:"id"`
	JobID string `json:"job_id"`
}
