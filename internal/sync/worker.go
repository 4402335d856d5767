package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	translationscmd "github.com/morelab/appcomposer/internal/commands/translations"
	"github.com/morelab/appcomposer/internal/logging"
	"github.com/morelab/appcomposer/internal/scheduler"
	"github.com/morelab/appcomposer/pkg/interfaces"
)

// Worker drains due replication jobs from the scheduler and dispatches them
// through the translation command handlers, so job payloads get the same
// validation and error categorisation as any other caller. Failures feed back
// through MarkFailed so the scheduler applies backoff and, eventually,
// dead-letters the job.
type Worker struct {
	scheduler interfaces.Scheduler
	pusher    *Pusher
	syncer    *Syncer
	pushCmd   *translationscmd.PushBundleHandler
	syncCmd   *translationscmd.FullSyncHandler
	logger    interfaces.Logger
	now       func() time.Time
	batchSize int
}

// WorkerOption configures the worker.
type WorkerOption func(*Worker)

// WithWorkerLogger overrides the default logger.
func WithWorkerLogger(logger interfaces.Logger) WorkerOption {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithWorkerClock overrides the time source, mostly for tests.
func WithWorkerClock(now func() time.Time) WorkerOption {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

// WithBatchSize caps how many due jobs a single Process call drains.
func WithBatchSize(size int) WorkerOption {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

// NewWorker creates a replication worker.
func NewWorker(sched interfaces.Scheduler, pusher *Pusher, syncer *Syncer, opts ...WorkerOption) *Worker {
	w := &Worker{
		scheduler: sched,
		pusher:    pusher,
		syncer:    syncer,
		logger:    logging.NoOp(),
		now:       time.Now,
		batchSize: 50,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.pushCmd = translationscmd.NewPushBundleHandler(w.push, w.logger)
	w.syncCmd = translationscmd.NewFullSyncHandler(w.fullSync, w.logger)
	return w
}

func (w *Worker) push(ctx context.Context, translationURL, language, target string) error {
	_, err := w.pusher.Push(ctx, translationURL, language, target)
	return err
}

func (w *Worker) fullSync(ctx context.Context) error {
	_, err := w.syncer.FullSync(ctx)
	return err
}

// Process drains one batch of due jobs.
func (w *Worker) Process(ctx context.Context) error {
	if w.scheduler == nil {
		return errors.New("sync: scheduler is nil")
	}
	jobs, err := w.scheduler.ListDue(ctx, w.now(), w.batchSize)
	if err != nil {
		return err
	}
	for _, job := range jobs {
		if job == nil {
			continue
		}
		if err := w.handleJob(ctx, job); err != nil {
			w.logger.Warn("replication job failed",
				"job_id", job.ID, "type", job.Type, "attempt", job.Attempt+1, "error", err)
			_ = w.scheduler.MarkFailed(ctx, job.ID, err)
			continue
		}
		_ = w.scheduler.MarkDone(ctx, job.ID)
	}
	return nil
}

func (w *Worker) handleJob(ctx context.Context, job *interfaces.Job) error {
	switch job.Type {
	case scheduler.JobTypeBundlePush:
		url, language, target := pushPayload(job.Payload)
		return w.pushCmd.Execute(ctx, translationscmd.PushBundleCommand{
			TranslationURL: url,
			Language:       language,
			Target:         target,
		})
	case scheduler.JobTypeFullSync:
		return w.syncCmd.Execute(ctx, translationscmd.FullSyncCommand{})
	default:
		return fmt.Errorf("sync: unknown job type %q", job.Type)
	}
}

// pushPayload extracts the push fields from a job payload. Blank fields pass
// through and are rejected by command validation.
func pushPayload(payload map[string]any) (url, language, target string) {
	url, _ = payload["translation_url"].(string)
	language, _ = payload["language"].(string)
	target, _ = payload["target"].(string)
	return url, language, target
}

// EnqueueFullSync schedules a full sync run. The fixed key collapses
// overlapping requests into one pending job.
func (w *Worker) EnqueueFullSync(ctx context.Context, runAt time.Time) error {
	_, err := w.scheduler.Enqueue(ctx, interfaces.JobSpec{
		Key:   scheduler.FullSyncJobKey,
		Type:  scheduler.JobTypeFullSync,
		RunAt: runAt,
	})
	return err
}

// Run processes due jobs every poll interval and schedules a full sync every
// sync period until the context is cancelled. The first full sync is
// enqueued immediately.
func (w *Worker) Run(ctx context.Context, poll, syncPeriod time.Duration) error {
	if poll <= 0 {
		poll = time.Second
	}
	if err := w.EnqueueFullSync(ctx, w.now()); err != nil {
		return err
	}

	pollTicker := time.NewTicker(poll)
	defer pollTicker.Stop()

	var syncTicker *time.Ticker
	var syncC <-chan time.Time
	if syncPeriod > 0 {
		syncTicker = time.NewTicker(syncPeriod)
		defer syncTicker.Stop()
		syncC = syncTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-pollTicker.C:
			if err := w.Process(ctx); err != nil {
				w.logger.Error("processing replication jobs", "error", err)
			}
		case <-syncC:
			if err := w.EnqueueFullSync(ctx, w.now()); err != nil {
				w.logger.Error("scheduling full sync", "error", err)
			}
		}
	}
}
