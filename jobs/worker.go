package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-job/queue"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-access-notifier/core"
)

// DefaultRetryDelay spaces out redeliveries of a failed sweep.
const DefaultRetryDelay = time.Minute

// Worker drains the job queue and executes retention sweeps. Failed sweeps
// are nacked for redelivery; unknown job ids are acked and dropped.
type Worker struct {
	dequeuer   queue.Dequeuer
	pruner     *RetentionPruner
	retryDelay time.Duration
	logger     core.Logger
}

type WorkerConfig struct {
	Dequeuer       queue.Dequeuer
	Pruner         *RetentionPruner
	RetryDelay     time.Duration
	Logger         core.Logger
	LoggerProvider core.LoggerProvider
}

func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Dequeuer == nil {
		return nil, jobsInternal("jobs: dequeuer is required", nil)
	}
	if cfg.Pruner == nil {
		return nil, jobsInternal("jobs: retention pruner is required", nil)
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	_, logger := glog.Resolve("jobs", cfg.LoggerProvider, cfg.Logger)
	return &Worker{
		dequeuer:   cfg.Dequeuer,
		pruner:     cfg.Pruner,
		retryDelay: retryDelay,
		logger:     glog.Ensure(logger),
	}, nil
}

// Run consumes deliveries until the context is cancelled or the queue is
// closed.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.dequeuer == nil {
		return jobsInternal("jobs: worker is not configured", nil)
	}
	for {
		delivery, err := w.dequeuer.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			if errors.Is(err, ErrQueueClosed) {
				return nil
			}
			return jobsOperationFailed(err, "jobs: dequeue failed", nil)
		}
		w.handle(ctx, delivery)
	}
}

func (w *Worker) handle(ctx context.Context, delivery queue.Delivery) {
	msg := delivery.Message()
	if msg == nil {
		_ = delivery.Ack(ctx)
		return
	}

	switch msg.JobID {
	case JobIDPruneEvents:
		if _, err := w.pruner.Run(ctx); err != nil {
			w.logger.Error("retention sweep failed",
				"job_id", msg.JobID,
				"error", err,
			)
			if nackErr := delivery.Nack(ctx, queue.NackOptions{
				Requeue: true,
				Delay:   w.retryDelay,
				Reason:  err.Error(),
			}); nackErr != nil {
				w.logger.Error("nack failed", "job_id", msg.JobID, "error", nackErr)
			}
			return
		}
		if err := delivery.Ack(ctx); err != nil {
			w.logger.Error("ack failed", "job_id", msg.JobID, "error", err)
		}
	default:
		w.logger.Error("unknown job id dropped", "job_id", msg.JobID)
		_ = delivery.Ack(ctx)
	}
}
