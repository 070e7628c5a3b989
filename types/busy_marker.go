package types

import "time"

// BusyMarker signals that the actuator is executing a job.
type BusyMarker struct {
	SetAt time.Time `json:"set_at"`
}

func (m BusyMarker) Age(now time.Time) time.Duration {
	return now.Sub(m.SetAt)
}

// IsStale reports whether the marker is older than threshold. The boundary
// itself is not stale.
func (m BusyMarker) IsStale(now time.Time, threshold time.Duration) bool {
	return m.Age(now) > threshold
}
