package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/MrRookie-AIR/PushupsbyArduino/internal/audit"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/constants"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/lock"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/store"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/transport"
	"github.com/MrRookie-AIR/PushupsbyArduino/types"
	"github.com/MrRookie-AIR/PushupsbyArduino/types/config"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/semaphore"
)

const autoStartAction = "AUTO_START"

// deviceEvent is the JSON the board prints when a set is finished.
type deviceEvent struct {
	Action string          `json:"action"`
	UserID json.RawMessage `json:"user_id"`
	Count  int             `json:"count"`
}

// ActuatorWorker consumes the pending slot and drives the actuator. It is the
// authoritative owner of the busy marker while a job runs.
type ActuatorWorker struct {
	pending     store.PendingJobStore
	busy        *BusyTracker
	obligations store.ObligationStore
	transport   transport.Transport
	payments    PaymentNotifier
	recorder    audit.Recorder
	lock        lock.DistributedLockManager
	cfg         config.WorkerConfig
	parentID    int64
	instance    string
	sem         *semaphore.Weighted
	now         func() time.Time
}

func NewActuatorWorker(
	pending store.PendingJobStore,
	busy *BusyTracker,
	obligations store.ObligationStore,
	link transport.Transport,
	payments PaymentNotifier,
	recorder audit.Recorder,
	lockManager lock.DistributedLockManager,
	cfg config.WorkerConfig,
	parentID int64,
	instance string,
) *ActuatorWorker {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	if cfg.PaidCheckEvery < 1 {
		cfg.PaidCheckEvery = config.DefaultPaidCheckEvery
	}
	return &ActuatorWorker{
		pending:     pending,
		busy:        busy,
		obligations: obligations,
		transport:   link,
		payments:    payments,
		recorder:    recorder,
		lock:        lockManager,
		cfg:         cfg,
		parentID:    parentID,
		instance:    instance,
		sem:         semaphore.NewWeighted(1),
		now:         time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (w *ActuatorWorker) WithClock(now func() time.Time) *ActuatorWorker {
	w.now = now
	return w
}

// Start polls the pending slot until ctx is cancelled.
func (w *ActuatorWorker) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	schedule := fmt.Sprintf("@every %s", w.cfg.PollInterval)
	if _, err := c.AddFunc(schedule, func() { w.Tick(ctx) }); err != nil {
		return fmt.Errorf("schedule worker: %w", err)
	}

	log.Printf("[worker] %s polling every %s", w.instance, w.cfg.PollInterval)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

// Tick runs one poll unless an execution is already in progress.
func (w *ActuatorWorker) Tick(ctx context.Context) {
	if !w.sem.TryAcquire(1) {
		return
	}
	defer w.sem.Release(1)

	if err := w.RunOnce(ctx); err != nil {
		log.Printf("[worker] %v", err)
	}
}

// RunOnce takes the pending job, if any, and executes it to completion.
// The worker lock keeps a second worker process off the actuator until the
// job is settled.
func (w *ActuatorWorker) RunOnce(ctx context.Context) error {
	if err := w.lock.Acquire(constants.WorkerLock); err != nil {
		return fmt.Errorf("worker lock: %w", err)
	}
	defer func() {
		if err := w.lock.Release(constants.WorkerLock); err != nil {
			log.Printf("[worker] worker unlock: %v", err)
		}
	}()

	job, err := w.pending.TakePending(ctx)
	if err != nil {
		return fmt.Errorf("take pending job: %w", err)
	}
	if job == nil {
		return nil
	}
	log.Printf("[worker] picked up job %s for %q", job.JobID, job.Label)

	if err := w.busy.Set(ctx, *job); err != nil {
		log.Printf("[worker] job %s: %v", job.JobID, err)
	}

	owner, err := w.obligations.OwnerOf(ctx, job.JobID)
	if err != nil || owner == "" {
		w.clearBusy(ctx, "owner not found")
		if err != nil {
			return fmt.Errorf("owner of job %s: %w", job.JobID, err)
		}
		log.Printf("[worker] job %s has no owner, dropped", job.JobID)
		return nil
	}

	plan, err := w.obligations.PushupPlan(ctx, w.parentID, owner)
	if err != nil {
		log.Printf("[worker] plan for %s: %v, using defaults", owner, err)
	}
	if plan == nil {
		plan = &types.PushupPlan{
			Pushups:  fmt.Sprint(constants.DefaultPushups),
			RestTime: fmt.Sprint(constants.DefaultRestTime),
		}
	}

	return w.execute(ctx, *job, owner, *plan)
}

func (w *ActuatorWorker) execute(ctx context.Context, job types.PendingJob, owner string, plan types.PushupPlan) error {
	if err := w.transport.Open(ctx); err != nil {
		w.clearBusy(ctx, "transport unavailable")
		return fmt.Errorf("job %s: %w", job.JobID, err)
	}
	defer func() {
		if err := w.transport.Close(); err != nil {
			log.Printf("[worker] close transport: %v", err)
		}
	}()

	command := strings.Join([]string{owner, job.Label, plan.Pushups, plan.RestTime}, constants.SlotSeparator) + "\n"
	if err := w.transport.Send([]byte(command)); err != nil {
		w.clearBusy(ctx, "send failed")
		return fmt.Errorf("job %s: %w", job.JobID, err)
	}
	log.Printf("[worker] sent %q", strings.TrimSpace(command))

	started := w.now()
	for reads := 1; ; reads++ {
		if err := ctx.Err(); err != nil {
			w.clearBusy(ctx, "worker stopped")
			return err
		}
		if w.cfg.MaxExecution > 0 && w.now().Sub(started) > w.cfg.MaxExecution {
			log.Printf("[worker] job %s exceeded %s", job.JobID, w.cfg.MaxExecution)
			w.clearBusy(ctx, "execution timed out")
			return nil
		}

		line, err := w.transport.ReadLine(w.cfg.PollInterval)
		switch {
		case errors.Is(err, transport.ErrNoData):
		case err != nil:
			w.clearBusy(ctx, "transport failed")
			return fmt.Errorf("job %s: %w", job.JobID, err)
		default:
			if w.handleLine(job, line, started) {
				return w.complete(ctx, job, owner)
			}
		}

		if reads%w.cfg.PaidCheckEvery == 0 {
			paid, err := w.obligations.IsJobPaid(ctx, job.JobID)
			if err != nil {
				log.Printf("[worker] payment state of job %s: %v", job.JobID, err)
			} else if paid {
				log.Printf("[worker] job %s was paid manually", job.JobID)
				w.clearBusy(ctx, "paid manually")
				w.record(ctx, audit.NewRecord(types.AuditJobCompleted, w.instance, job.JobID, job.Label, "paid manually"))
				return nil
			}
		}
	}
}

// handleLine reports whether the line finishes the job.
func (w *ActuatorWorker) handleLine(job types.PendingJob, line string, started time.Time) bool {
	switch {
	case line == "":
		return false
	case strings.HasPrefix(line, "{"):
		var event deviceEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			log.Printf("[worker] unreadable device event %q: %v", line, err)
			return false
		}
		switch {
		case event.Action == "DONE":
			if elapsed := w.now().Sub(started); elapsed < w.cfg.MinDoneDelay {
				log.Printf("[worker] job %s: DONE after %s ignored", job.JobID, elapsed)
				return false
			}
			log.Printf("[worker] job %s done, count %d", job.JobID, event.Count)
			return true
		// The board prefixes the action with a marker glyph.
		case strings.HasSuffix(event.Action, autoStartAction):
			log.Printf("[worker] job %s: auto series started on the device, ignored", job.JobID)
		default:
			log.Printf("[worker] job %s: unknown device action %q", job.JobID, event.Action)
		}
	case strings.HasPrefix(line, "ERR"):
		log.Printf("[worker] device error: %s", line)
	default:
		log.Printf("[worker] device: %s", line)
	}
	return false
}

func (w *ActuatorWorker) complete(ctx context.Context, job types.PendingJob, owner string) error {
	defer w.clearBusy(ctx, "job done")

	violation, err := w.obligations.LatestUnpaidViolation(ctx, job.JobID)
	if err != nil {
		return fmt.Errorf("unpaid violation of job %s: %w", job.JobID, err)
	}
	message := "no unpaid violation"
	if violation != nil {
		if w.payments != nil {
			if err := w.payments.Notify(ctx, violation.ID, owner); err != nil {
				log.Printf("[worker] payment notify for violation %d: %v", violation.ID, err)
			}
		}
		updated, err := w.obligations.MarkViolationPaid(ctx, violation.ID, w.now())
		if err != nil {
			return err
		}
		message = fmt.Sprintf("violation %d paid", violation.ID)
		if !updated {
			message = fmt.Sprintf("violation %d already paid", violation.ID)
		}
	}
	w.record(ctx, audit.NewRecord(types.AuditJobCompleted, w.instance, job.JobID, job.Label, message))
	return nil
}

func (w *ActuatorWorker) clearBusy(ctx context.Context, reason string) {
	if err := w.busy.Clear(context.WithoutCancel(ctx), reason); err != nil {
		log.Printf("[worker] %v", err)
	}
}

func (w *ActuatorWorker) record(ctx context.Context, rec types.AuditRecord) {
	if err := w.recorder.Record(ctx, rec); err != nil {
		log.Printf("[worker] audit %s failed: %v", rec.Kind, err)
	}
}
