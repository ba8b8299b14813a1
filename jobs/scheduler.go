package jobs

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-access-notifier/core"
)

// Scheduler enqueues one retention sweep job per interval tick. Enqueue
// failures are logged and the next tick retries; the scheduler never stops on
// its own.
type Scheduler struct {
	enqueuer queue.Enqueuer
	interval time.Duration
	jobID    string
	logger   core.Logger
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type SchedulerConfig struct {
	Enqueuer       queue.Enqueuer
	Interval       time.Duration
	JobID          string
	Logger         core.Logger
	LoggerProvider core.LoggerProvider
}

func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.Enqueuer == nil {
		return nil, jobsInternal("jobs: enqueuer is required", nil)
	}
	if cfg.Interval <= 0 {
		return nil, jobsInternal("jobs: scheduler interval must be positive", nil)
	}
	jobID := strings.TrimSpace(cfg.JobID)
	if jobID == "" {
		jobID = JobIDPruneEvents
	}
	_, logger := glog.Resolve("jobs", cfg.LoggerProvider, cfg.Logger)
	return &Scheduler{
		enqueuer: cfg.Enqueuer,
		interval: cfg.Interval,
		jobID:    jobID,
		logger:   glog.Ensure(logger),
		now:      time.Now,
	}, nil
}

// Start begins the tick loop. It is a no-op when the scheduler is already
// running.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				s.enqueueSweep(runCtx)
			}
		}
	}()
}

// Stop halts the tick loop and waits for it to exit.
func (s *Scheduler) Stop() {
	if s == nil {
		return
	}
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) enqueueSweep(ctx context.Context) {
	msg := &job.ExecutionMessage{
		JobID:          s.jobID,
		IdempotencyKey: fmt.Sprintf("%s:%d", s.jobID, s.now().Unix()),
	}
	if err := s.enqueuer.Enqueue(ctx, msg); err != nil {
		s.logger.Error("retention sweep enqueue failed",
			"job_id", s.jobID,
			"error", err,
		)
		return
	}
	s.logger.Info("retention sweep enqueued", "job_id", s.jobID)
}
