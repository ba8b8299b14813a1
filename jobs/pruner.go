package jobs

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-access-notifier/core"
)

// JobIDPruneEvents identifies the retention sweep job on the queue.
const JobIDPruneEvents = "notifier.events.prune"

// EventPruner removes event-log rows older than the cutoff and reports how
// many rows were deleted.
type EventPruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionPruner executes one retention sweep per Run call. A zero max age
// disables pruning entirely.
type RetentionPruner struct {
	pruner  EventPruner
	maxAge  time.Duration
	logger  core.Logger
	metrics core.MetricsRecorder
	now     func() time.Time
}

type RetentionPrunerConfig struct {
	Pruner         EventPruner
	MaxAge         time.Duration
	Logger         core.Logger
	LoggerProvider core.LoggerProvider
	Metrics        core.MetricsRecorder
}

func NewRetentionPruner(cfg RetentionPrunerConfig) (*RetentionPruner, error) {
	if cfg.Pruner == nil {
		return nil, jobsInternal("jobs: event pruner is required", nil)
	}
	_, logger := glog.Resolve("jobs", cfg.LoggerProvider, cfg.Logger)
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = core.NopMetricsRecorder{}
	}
	return &RetentionPruner{
		pruner:  cfg.Pruner,
		maxAge:  cfg.MaxAge,
		logger:  glog.Ensure(logger),
		metrics: metrics,
		now:     time.Now,
	}, nil
}

// Run prunes rows older than now minus the max age. It returns the number of
// rows removed; zero with no error when retention is disabled.
func (p *RetentionPruner) Run(ctx context.Context) (int64, error) {
	if p == nil || p.pruner == nil {
		return 0, jobsInternal("jobs: retention pruner is not configured", nil)
	}
	if p.maxAge <= 0 {
		return 0, nil
	}

	cutoff := p.now().Add(-p.maxAge).UTC()
	pruned, err := p.pruner.Prune(ctx, cutoff)
	if err != nil {
		p.metrics.IncCounter(ctx, "notifier.retention.failed", 1, nil)
		return 0, jobsOperationFailed(err, "jobs: retention sweep failed", map[string]any{
			"cutoff": cutoff.Format(time.RFC3339),
		})
	}

	p.metrics.IncCounter(ctx, "notifier.retention.pruned", pruned, nil)
	p.logger.Info("retention sweep completed",
		"cutoff", cutoff.Format(time.RFC3339),
		"pruned", pruned,
	)
	return pruned, nil
}
