package worker

import (
	"context"
	"log"
	"time"

	"algoprep/internal/domain/model"
	"algoprep/internal/domain/repository"
	"algoprep/internal/judge"
	"algoprep/internal/platform/metrics"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// MaxAttempts bounds how often a job is requeued on lock contention before it fails.
const MaxAttempts = 20

// Queue is the consuming side of the run job list.
type Queue interface {
	Pop(ctx context.Context, timeout time.Duration) (string, error)
	Requeue(ctx context.Context, jobID string) error
}

// Locker guards execution so one job runs at a time across workers.
type Locker interface {
	Acquire(ctx context.Context, token string) (bool, error)
	Release(ctx context.Context, token string) (bool, error)
}

type ExecutionWorker struct {
	queue  Queue
	lock   Locker
	store  repository.RunStore
	runner judge.Runner

	popTimeout time.Duration
	// backoff is slept after a failed pop or a requeue.
	backoff time.Duration
	now     func() time.Time
}

func NewExecutionWorker(queue Queue, lock Locker, store repository.RunStore, runner judge.Runner) *ExecutionWorker {
	return &ExecutionWorker{
		queue:      queue,
		lock:       lock,
		store:      store,
		runner:     runner,
		popTimeout: 5 * time.Second,
		backoff:    time.Second,
		now:        time.Now,
	}
}

func (w *ExecutionWorker) Start(ctx context.Context) {
	log.Println("INFO: Execution worker started.")
	for {
		if ctx.Err() != nil {
			log.Println("INFO: Execution worker stopping...")
			return
		}
		jobID, err := w.queue.Pop(ctx, w.popTimeout)
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				// Pop timed out with nothing queued.
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			default:
				log.Printf("ERROR: Failed to pop run job: %v", err)
				w.sleep(ctx, 5*w.backoff)
			}
			continue
		}
		log.Printf("INFO: Worker picked up run job %s", jobID)
		w.ProcessJob(ctx, jobID)
	}
}

// ProcessJob runs one job under the execution lock, or requeues it when the lock is
// held elsewhere.
func (w *ExecutionWorker) ProcessJob(ctx context.Context, jobID string) {
	token := uuid.NewString()
	ok, err := w.lock.Acquire(ctx, token)
	if err != nil {
		log.Printf("ERROR: Failed to attempt lock acquisition for job %s: %v", jobID, err)
		w.retry(ctx, jobID)
		return
	}
	if !ok {
		log.Printf("INFO: Execution lock busy, re-queueing job %s", jobID)
		w.retry(ctx, jobID)
		return
	}
	defer func() {
		// The job context may be gone by now; release on a fresh one.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		released, err := w.lock.Release(releaseCtx, token)
		if err != nil {
			log.Printf("ERROR: Failed to release execution lock for job %s: %v", jobID, err)
		} else if !released {
			log.Printf("WARN: Execution lock for job %s expired before release", jobID)
		}
	}()

	w.execute(ctx, jobID)
}

func (w *ExecutionWorker) execute(ctx context.Context, jobID string) {
	job, err := w.store.Get(ctx, jobID)
	if err != nil {
		log.Printf("ERROR: Failed to load run job %s: %v", jobID, err)
		return
	}
	if job.Done() {
		log.Printf("WARN: Run job %s already %s, skipping", job.ID, job.Status)
		return
	}

	job.Status = model.RunStatusProcessing
	job.Attempts++
	job.UpdatedAt = w.now().UTC()
	if err := w.store.Save(ctx, job); err != nil {
		log.Printf("ERROR: Failed to mark run job %s processing: %v", job.ID, err)
	}

	outcome := w.runner.Run(ctx, judge.Submission{
		SourceCode: job.SourceCode,
		LanguageID: job.LanguageID,
		Stdin:      job.Stdin,
	})
	job.Outcome = &outcome
	job.Status = model.RunStatusCompleted
	job.UpdatedAt = w.now().UTC()
	if err := w.store.Save(ctx, job); err != nil {
		log.Printf("ERROR: Failed to store outcome of run job %s: %v", job.ID, err)
		return
	}
	metrics.RunJobs.WithLabelValues(job.Status).Inc()
	log.Printf("INFO: Run job %s completed with %s", job.ID, outcome.Kind)
}

// retry requeues a job that could not take the lock, failing it after MaxAttempts.
func (w *ExecutionWorker) retry(ctx context.Context, jobID string) {
	job, err := w.store.Get(ctx, jobID)
	if err != nil {
		log.Printf("ERROR: Dropping run job %s: %v", jobID, err)
		return
	}
	job.Attempts++
	job.UpdatedAt = w.now().UTC()
	if job.Attempts >= MaxAttempts {
		msg := "execution lock unavailable"
		job.Status = model.RunStatusFailed
		job.LastError = &msg
		if err := w.store.Save(ctx, job); err != nil {
			log.Printf("ERROR: Failed to mark run job %s failed: %v", jobID, err)
		}
		metrics.RunJobs.WithLabelValues(job.Status).Inc()
		log.Printf("WARN: Run job %s failed after %d attempts", jobID, job.Attempts)
		return
	}
	if err := w.store.Save(ctx, job); err != nil {
		log.Printf("ERROR: Failed to record attempt for run job %s: %v", jobID, err)
	}
	if err := w.queue.Requeue(ctx, jobID); err != nil {
		log.Printf("ERROR: Failed to re-queue run job %s: %v", jobID, err)
		return
	}
	metrics.RunJobRequeues.Inc()
	w.sleep(ctx, w.backoff)
}

func (w *ExecutionWorker) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
