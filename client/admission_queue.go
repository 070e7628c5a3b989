package client

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/MrRookie-AIR/PushupsbyArduino/custom_errors"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/audit"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/constants"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/lock"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/store"
	"github.com/MrRookie-AIR/PushupsbyArduino/types"
)

// SubmitRequest carries either a job id or a user id to resolve one from.
type SubmitRequest struct {
	JobID  string
	UserID string
	Label  string
}

// AdmissionQueue holds at most one pending job and refuses new work while a
// job is pending or the actuator is busy.
type AdmissionQueue struct {
	pending   store.PendingJobStore
	busy      *BusyTracker
	resolver  *IdentityResolver
	lock      lock.DistributedLockManager
	recorder  audit.Recorder
	sanitizer *LabelSanitizer
	instance  string
}

func NewAdmissionQueue(
	pending store.PendingJobStore,
	busy *BusyTracker,
	resolver *IdentityResolver,
	lockManager lock.DistributedLockManager,
	recorder audit.Recorder,
	instance string,
) *AdmissionQueue {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &AdmissionQueue{
		pending:   pending,
		busy:      busy,
		resolver:  resolver,
		lock:      lockManager,
		recorder:  recorder,
		sanitizer: NewLabelSanitizer(),
		instance:  instance,
	}
}

// Submit admits a job or returns a *custom_errors.RejectionError. The slot
// lock covers the existence re-check, the busy check and the writes; it is
// never held across identity resolution.
func (q *AdmissionQueue) Submit(ctx context.Context, req SubmitRequest) (types.Accepted, error) {
	exists, err := q.pending.PendingExists(ctx)
	if err != nil {
		log.Printf("[admission] pending slot unreadable: %v", err)
		return types.Accepted{}, custom_errors.NewRejection(custom_errors.ReasonPersistenceFailure, err)
	}
	if exists {
		return types.Accepted{}, custom_errors.NewRejection(custom_errors.ReasonAlreadyQueued, nil)
	}

	jobID := strings.TrimSpace(req.JobID)
	if jobID == "" && strings.TrimSpace(req.UserID) != "" {
		resolved, ok := q.resolver.Resolve(ctx, req.UserID)
		if !ok {
			return types.Accepted{}, custom_errors.NewRejection(custom_errors.ReasonIdentityNotFound, nil)
		}
		jobID = resolved
	}

	label := q.sanitizer.Sanitize(req.Label)
	if jobID == "" || label == "" || strings.ContainsAny(jobID, constants.SlotSeparator+"\r\n") {
		return types.Accepted{}, custom_errors.NewRejection(custom_errors.ReasonMissingParameters, nil)
	}
	job := types.PendingJob{JobID: jobID, Label: label}

	if err := q.lock.Acquire(constants.PendingSlotLock); err != nil {
		log.Printf("[admission] slot lock: %v", err)
		return types.Accepted{}, custom_errors.NewRejection(custom_errors.ReasonPersistenceFailure, err)
	}
	defer func() {
		if err := q.lock.Release(constants.PendingSlotLock); err != nil {
			log.Printf("[admission] slot unlock: %v", err)
		}
	}()

	return q.admit(ctx, job)
}

func (q *AdmissionQueue) admit(ctx context.Context, job types.PendingJob) (types.Accepted, error) {
	exists, err := q.pending.PendingExists(ctx)
	if err != nil {
		log.Printf("[admission] pending slot unreadable: %v", err)
		return types.Accepted{}, custom_errors.NewRejection(custom_errors.ReasonPersistenceFailure, err)
	}
	if exists {
		return types.Accepted{}, custom_errors.NewRejection(custom_errors.ReasonAlreadyQueued, nil)
	}

	busy, err := q.busy.IsBusy(ctx)
	if err != nil {
		log.Printf("[admission] %v, treating actuator as busy", err)
	}
	if busy {
		return types.Accepted{}, custom_errors.NewRejection(custom_errors.ReasonActuatorBusy, nil)
	}

	if err := q.pending.PutPending(ctx, job); err != nil {
		if errors.Is(err, store.ErrSlotOccupied) {
			return types.Accepted{}, custom_errors.NewRejection(custom_errors.ReasonAlreadyQueued, nil)
		}
		log.Printf("[admission] job %s not stored: %v", job.JobID, err)
		return types.Accepted{}, custom_errors.NewRejection(custom_errors.ReasonPersistenceFailure, err)
	}

	accepted := types.Accepted{JobID: job.JobID, Label: job.Label}
	if err := q.busy.Set(ctx, job); err != nil {
		accepted.Degraded = true
		log.Printf("[admission] %s: job %s accepted without busy marker: %v", custom_errors.KindMarkerWriteDegraded, job.JobID, err)
	}

	if err := q.recorder.Record(ctx, audit.NewRecord(types.AuditAccepted, q.instance, job.JobID, job.Label, "")); err != nil {
		log.Printf("[admission] audit for job %s failed: %v", job.JobID, err)
	}
	log.Printf("[admission] accepted job %s for %q", job.JobID, job.Label)
	return accepted, nil
}
