package custom_errors

import (
	"errors"
	"fmt"
)

// Reason identifies why a submission was turned down. Values are stable and
// meant for automated callers.
type Reason string

const (
	ReasonAlreadyQueued      Reason = "already_queued"
	ReasonActuatorBusy       Reason = "actuator_busy"
	ReasonIdentityNotFound   Reason = "identity_not_found"
	ReasonMissingParameters  Reason = "missing_parameters"
	ReasonPersistenceFailure Reason = "persistence_failure"
)

// Log-only kinds. Callers never see them as a rejection reason.
const (
	KindStoreUnavailable    = "store_unavailable"
	KindMarkerWriteDegraded = "marker_write_degraded"
)

func (r Reason) String() string {
	return string(r)
}

// RejectionError is a terminal rejection of a submission.
type RejectionError struct {
	Reason Reason
	Err    error
}

func NewRejection(reason Reason, err error) *RejectionError {
	return &RejectionError{Reason: reason, Err: err}
}

func (e *RejectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("rejected: %s", e.Reason)
	}
	return fmt.Sprintf("rejected: %s: %v", e.Reason, e.Err)
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

// ReasonOf extracts the rejection reason from err, if any.
func ReasonOf(err error) (Reason, bool) {
	var rejection *RejectionError
	if errors.As(err, &rejection) {
		return rejection.Reason, true
	}
	return "", false
}
