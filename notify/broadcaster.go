package notify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/goliatone/go-access-notifier/core"
)

// Broadcaster sends one personalized message per current recipient. Failure
// for one recipient never prevents attempts to the rest; only recipient
// directory failures propagate to the caller. The optional dispatch ledger
// keeps delivery at-most-once per (event, recipient) pair, and the optional
// event store mirrors each successful send into the event log.
type Broadcaster struct {
	recipients core.RecipientDirectory
	sender     core.NotificationSender
	ledger     core.DispatchLedger
	events     core.EventStore
	logger     core.Logger
	metrics    core.MetricsRecorder
	now        func() time.Time
	newID      func() string
}

type BroadcasterConfig struct {
	Recipients     core.RecipientDirectory
	Sender         core.NotificationSender
	Ledger         core.DispatchLedger
	Events         core.EventStore
	Logger         core.Logger
	LoggerProvider core.LoggerProvider
	Metrics        core.MetricsRecorder
}

func NewBroadcaster(cfg BroadcasterConfig) *Broadcaster {
	_, logger := glog.Resolve("notify", cfg.LoggerProvider, cfg.Logger)
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = core.NopMetricsRecorder{}
	}
	return &Broadcaster{
		recipients: cfg.Recipients,
		sender:     cfg.Sender,
		ledger:     cfg.Ledger,
		events:     cfg.Events,
		logger:     glog.Ensure(logger),
		metrics:    metrics,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// PersonalizeMessage renders the per-recipient SMS body.
func PersonalizeMessage(name string, message string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return message
	}
	return fmt.Sprintf("Hi %s,\n%s", name, message)
}

func (b *Broadcaster) Broadcast(ctx context.Context, alert core.Alert) error {
	if b == nil || b.sender == nil {
		return notifyInternal("notify: sender is required", nil)
	}
	if b.recipients == nil {
		return notifyInternal("notify: recipient directory is required", nil)
	}

	recipients, err := b.recipients.ListAll(ctx)
	if err != nil {
		return notifyOperationFailed(err, "notify: list recipients", map[string]any{
			"event_id": alert.EventID,
		})
	}
	if len(recipients) == 0 {
		b.logger.Info("no recipients configured, alert dropped",
			"event_id", alert.EventID,
			"severity", string(alert.Severity),
		)
		return nil
	}

	for _, recipient := range recipients {
		phone := strings.TrimSpace(recipient.Phone)
		if phone == "" {
			continue
		}
		recipientKey := strings.ToLower(phone)

		idempotencyKey := dispatchKey(alert.EventID, recipientKey)
		if b.ledger != nil {
			seen, err := b.ledger.Seen(ctx, idempotencyKey)
			if err != nil {
				b.logger.Error("dispatch ledger lookup failed, sending anyway",
					"event_id", alert.EventID,
					"recipient", recipientKey,
					"error", err,
				)
			} else if seen {
				continue
			}
		}

		body := PersonalizeMessage(recipient.Name, alert.Message)
		sendErr := b.sender.Send(ctx, phone, body)

		record := core.DispatchRecord{
			EventID:        alert.EventID,
			RecipientKey:   recipientKey,
			IdempotencyKey: idempotencyKey,
			Status:         "sent",
			Message:        body,
		}
		if sendErr != nil {
			record.Status = "failed"
			record.Error = sendErr.Error()
			b.metrics.IncCounter(ctx, "notifier.sms.failed", 1, nil)
			b.logger.Error("sms dispatch failed",
				"event_id", alert.EventID,
				"recipient", recipientKey,
				"error", sendErr,
			)
		} else {
			b.metrics.IncCounter(ctx, "notifier.sms.sent", 1, nil)
			b.appendSMSEvent(ctx, alert, recipient, body)
		}

		if b.ledger != nil {
			if err := b.ledger.Record(ctx, record); err != nil {
				b.logger.Error("dispatch ledger record failed",
					"event_id", alert.EventID,
					"recipient", recipientKey,
					"error", err,
				)
			}
		}
	}

	return nil
}

func (b *Broadcaster) appendSMSEvent(ctx context.Context, alert core.Alert, recipient core.Recipient, body string) {
	if b.events == nil {
		return
	}
	record := core.EventRecord{
		ID:   b.newID(),
		Kind: core.EventKindSMS,
		Payload: map[string]any{
			"event_id":  alert.EventID,
			"severity":  string(alert.Severity),
			"recipient": strings.TrimSpace(recipient.Name),
			"phone":     strings.TrimSpace(recipient.Phone),
			"body":      body,
		},
		CreatedAt: b.now().UTC(),
	}
	if err := b.events.Append(ctx, record); err != nil {
		b.logger.Error("sms event append failed",
			"event_id", alert.EventID,
			"error", err,
		)
	}
}

func dispatchKey(eventID string, recipientKey string) string {
	raw := strings.Join([]string{
		"notifier",
		strings.TrimSpace(eventID),
		strings.TrimSpace(recipientKey),
	}, "|")
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

var _ core.AlertBroadcaster = (*Broadcaster)(nil)
