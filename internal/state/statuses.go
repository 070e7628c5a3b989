package state

// SlotState is the composite state of the pending slot and the busy marker.
type SlotState string

const (
	StateIdle      SlotState = "idle"
	StatePending   SlotState = "pending"
	StateExecuting SlotState = "executing"
)

func (s SlotState) String() string {
	return string(s)
}

// Derive maps the two persisted markers onto a slot state. A live busy
// marker wins over a pending job.
func Derive(pending, busy bool) SlotState {
	switch {
	case busy:
		return StateExecuting
	case pending:
		return StatePending
	default:
		return StateIdle
	}
}
