package core

import (
	"context"
	"net/http"

	glog "github.com/goliatone/go-logger/glog"
)

// EventStore appends entries to the event log. Appends are best-effort from
// the pipeline's perspective: callers log failures and continue.
type EventStore interface {
	Append(ctx context.Context, record EventRecord) error
}

// EventReader serves the dashboard's event-log view.
type EventReader interface {
	List(ctx context.Context, filter EventFilter) ([]EventRecord, error)
}

// RecipientDirectory yields the broadcast recipient list as a read-only
// snapshot at dispatch time.
type RecipientDirectory interface {
	ListAll(ctx context.Context) ([]Recipient, error)
}

type RecipientStore interface {
	RecipientDirectory
	Add(ctx context.Context, recipient Recipient) error
	DeleteByPhone(ctx context.Context, phone string) error
}

// NotificationSender delivers one message to one phone number.
type NotificationSender interface {
	Send(ctx context.Context, phone string, body string) error
}

// DispatchLedger backs at-most-once alerting per (event, recipient) pair.
type DispatchLedger interface {
	Seen(ctx context.Context, idempotencyKey string) (bool, error)
	Record(ctx context.Context, record DispatchRecord) error
}

// AlertBroadcaster fans an alert out to every current recipient.
type AlertBroadcaster interface {
	Broadcast(ctx context.Context, alert Alert) error
}

// AlertDispatcher hands an alert to a dispatch task whose lifetime is
// detached from the caller; errors are logged, never returned.
type AlertDispatcher interface {
	Dispatch(ctx context.Context, alert Alert)
}

// LockController invokes remote actions on the access-control provider.
type LockController interface {
	Unlock(ctx context.Context, lockID string) error
	Lock(ctx context.Context, lockID string) error
	Lockdown(ctx context.Context, lockID string) error
}

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
