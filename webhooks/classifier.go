package webhooks

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-access-notifier/core"
)

// Event types delivered by the access-control provider.
const (
	EventTypeUnlock       = "lock.unlock"
	EventTypeUnlockFailed = "lock.unlock_failed"
	EventTypeForceOpen    = "lock.force_open"
	EventTypeTampered     = "reader.tampered"
	EventTypeOpen         = "lock.open"
)

// DefaultCorrelationWindow is the maximum elapsed time between a successful
// unlock and a subsequent open for the open to be considered explained.
const DefaultCorrelationWindow = 5 * time.Second

// Classifier maps one access event to zero-or-one alerts, consulting the
// unlock tracker for the open/unlock correlation case. Unrecognized event
// types classify to no alert.
type Classifier struct {
	tracker *UnlockTracker
	window  time.Duration
	now     func() time.Time
}

func NewClassifier(tracker *UnlockTracker, window time.Duration) *Classifier {
	if tracker == nil {
		tracker = NewUnlockTracker()
	}
	if window <= 0 {
		window = DefaultCorrelationWindow
	}
	return &Classifier{
		tracker: tracker,
		window:  window,
		now:     time.Now,
	}
}

// Classify returns the alert for event, if any. Recording and consuming
// unlock records happens here as a side effect.
func (c *Classifier) Classify(event core.AccessEvent) (core.Alert, bool) {
	if c == nil {
		return core.Alert{}, false
	}

	switch strings.TrimSpace(event.Type) {
	case EventTypeUnlock:
		if event.Success != nil && *event.Success {
			c.tracker.RecordUnlock(event.ObjectID.String(), c.clock()())
		}
		return core.Alert{}, false

	case EventTypeUnlockFailed:
		return core.Alert{
			Severity: core.SeverityCritical,
			Message: fmt.Sprintf(
				"Access Denied: %s attempted to open %q at %s.",
				actorLabel(event),
				objectLabel(event, "Lock"),
				c.eventTime(event),
			),
		}, true

	case EventTypeForceOpen:
		return core.Alert{
			Severity: core.SeverityCritical,
			Message: fmt.Sprintf(
				"Forced Open detected on %q at %s.",
				objectLabel(event, "Lock"),
				c.eventTime(event),
			),
		}, true

	case EventTypeTampered:
		return core.Alert{
			Severity: core.SeverityCritical,
			Message: fmt.Sprintf(
				"Tamper Alert: %s at %s.",
				objectLabel(event, "Reader"),
				c.eventTime(event),
			),
		}, true

	case EventTypeOpen:
		at, ok := event.OccurredAt()
		if !ok {
			at = c.clock()()
		}
		if !c.tracker.CheckAndConsume(event.ObjectID.String(), at, c.window) {
			return core.Alert{}, false
		}
		return core.Alert{
			Severity: core.SeverityWarning,
			Message: fmt.Sprintf(
				"Door %q opened without badge at %s.",
				objectLabel(event, "Lock"),
				c.eventTime(event),
			),
		}, true
	}

	return core.Alert{}, false
}

func (c *Classifier) clock() func() time.Time {
	if c.now != nil {
		return c.now
	}
	return time.Now
}

func (c *Classifier) eventTime(event core.AccessEvent) string {
	if raw := strings.TrimSpace(event.CreatedAt); raw != "" {
		return raw
	}
	return c.clock()().UTC().Format(time.RFC3339)
}

// actorLabel prefers the human-readable name, falling back to "ID <actor_id>".
func actorLabel(event core.AccessEvent) string {
	if name := strings.TrimSpace(event.ActorName); name != "" {
		return name
	}
	if !event.ActorID.IsZero() {
		return "ID " + event.ActorID.String()
	}
	return "an unknown actor"
}

// objectLabel prefers the human-readable name, falling back to
// "<Kind> <object_id>" ("Lock 5678", "Reader 12").
func objectLabel(event core.AccessEvent, kind string) string {
	if name := strings.TrimSpace(event.ObjectName); name != "" {
		return name
	}
	if !event.ObjectID.IsZero() {
		return kind + " " + event.ObjectID.String()
	}
	return "an unknown " + strings.ToLower(kind)
}
