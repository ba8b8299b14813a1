package webhooks

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/goliatone/go-access-notifier/core"
)

// Pipeline orchestrates one inbound delivery in strict order: verify, parse,
// persist, classify, dispatch. Persistence and dispatch failures never change
// the acknowledgement; only authentication and validation failures do.
type Pipeline struct {
	verifier   Verifier
	classifier *Classifier
	events     core.EventStore
	dispatcher core.AlertDispatcher
	logger     core.Logger
	metrics    core.MetricsRecorder
	now        func() time.Time
	newID      func() string
}

type PipelineConfig struct {
	Verifier       Verifier
	Classifier     *Classifier
	Events         core.EventStore
	Dispatcher     core.AlertDispatcher
	Logger         core.Logger
	LoggerProvider core.LoggerProvider
	Metrics        core.MetricsRecorder
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	_, logger := glog.Resolve("webhooks", cfg.LoggerProvider, cfg.Logger)
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = core.NopMetricsRecorder{}
	}
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = NewClassifier(nil, 0)
	}
	return &Pipeline{
		verifier:   cfg.Verifier,
		classifier: classifier,
		events:     cfg.Events,
		dispatcher: cfg.Dispatcher,
		logger:     glog.Ensure(logger),
		metrics:    metrics,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Process handles one delivery and returns the acknowledgement the transport
// should render. A returned error always accompanies a non-accepted result.
func (p *Pipeline) Process(ctx context.Context, req core.InboundRequest) (core.InboundResult, error) {
	started := p.now()
	p.metrics.IncCounter(ctx, "notifier.webhook.received", 1, nil)

	if p.verifier != nil {
		if err := p.verifier.Verify(ctx, req); err != nil {
			p.metrics.IncCounter(ctx, "notifier.webhook.rejected", 1, map[string]string{
				"reason": "signature",
			})
			p.logger.Error("webhook signature rejected", "error", err)
			return core.InboundResult{
				Accepted:   false,
				StatusCode: http.StatusUnauthorized,
			}, err
		}
	}

	payload := map[string]any{}
	if err := json.Unmarshal(req.Body, &payload); err != nil {
		p.metrics.IncCounter(ctx, "notifier.webhook.rejected", 1, map[string]string{
			"reason": "payload",
		})
		return core.InboundResult{
				Accepted:   false,
				StatusCode: http.StatusBadRequest,
			}, webhookBadInput("event payload must be a JSON object", map[string]any{
				"parse_error": err.Error(),
			})
	}

	var event core.AccessEvent
	if err := json.Unmarshal(req.Body, &event); err != nil {
		p.metrics.IncCounter(ctx, "notifier.webhook.rejected", 1, map[string]string{
			"reason": "payload",
		})
		return core.InboundResult{
				Accepted:   false,
				StatusCode: http.StatusBadRequest,
			}, webhookBadInput("event payload could not be decoded", map[string]any{
				"parse_error": err.Error(),
			})
	}
	if strings.TrimSpace(event.Type) == "" {
		p.metrics.IncCounter(ctx, "notifier.webhook.rejected", 1, map[string]string{
			"reason": "type",
		})
		return core.InboundResult{
			Accepted:   false,
			StatusCode: http.StatusBadRequest,
		}, webhookBadInput("event type is required", nil)
	}

	eventID := p.newID()
	if p.events != nil {
		record := core.EventRecord{
			ID:        eventID,
			Kind:      core.EventKindAccess,
			Payload:   payload,
			CreatedAt: p.now().UTC(),
		}
		if err := p.events.Append(ctx, record); err != nil {
			p.metrics.IncCounter(ctx, "notifier.events.append_failed", 1, nil)
			p.logger.Error("event append failed",
				"event_id", eventID,
				"event_type", event.Type,
				"error", err,
			)
		}
	}

	alert, fired := p.classifier.Classify(event)
	if fired {
		alert.EventID = eventID
		p.metrics.IncCounter(ctx, "notifier.alerts.fired", 1, map[string]string{
			"severity": string(alert.Severity),
		})
		p.logger.Info("alert classified",
			"event_id", eventID,
			"event_type", event.Type,
			"severity", string(alert.Severity),
		)
		if p.dispatcher != nil {
			p.dispatcher.Dispatch(ctx, alert)
		}
	}

	p.metrics.ObserveHistogram(ctx, "notifier.webhook.duration", p.now().Sub(started).Seconds(), nil)
	return core.InboundResult{
		Accepted:   true,
		StatusCode: http.StatusOK,
		Metadata: map[string]any{
			"event_id":    eventID,
			"alert_fired": fired,
		},
	}, nil
}
