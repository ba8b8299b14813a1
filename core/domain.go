package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Identifier is a lock/reader/actor id as delivered by the access-control
// provider. Providers send ids as JSON numbers or strings interchangeably;
// both decode to the canonical string form.
type Identifier string

func (id *Identifier) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if trimmed[0] == '"' {
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return fmt.Errorf("core: decode identifier: %w", err)
		}
		*id = Identifier(strings.TrimSpace(value))
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(trimmed, &number); err != nil {
		return fmt.Errorf("core: decode identifier: %w", err)
	}
	*id = Identifier(number.String())
	return nil
}

func (id Identifier) String() string {
	return string(id)
}

func (id Identifier) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

// AccessEvent is the inbound webhook payload as delivered by the provider.
// It is read-only to the pipeline; every field except Type is optional.
type AccessEvent struct {
	Type       string     `json:"type"`
	ObjectID   Identifier `json:"object_id"`
	ObjectName string     `json:"object_name"`
	ActorID    Identifier `json:"actor_id"`
	ActorName  string     `json:"actor_name"`
	CreatedAt  string     `json:"created_at"`
	Success    *bool      `json:"success"`
}

// OccurredAt parses the provider timestamp; ok is false when the field is
// absent or not RFC 3339.
func (e AccessEvent) OccurredAt() (time.Time, bool) {
	raw := strings.TrimSpace(e.CreatedAt)
	if raw == "" {
		return time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return at.UTC(), true
}

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is the classifier's decision to notify recipients. It is ephemeral:
// produced and consumed within one pipeline invocation, never persisted as
// its own entity.
type Alert struct {
	EventID  string
	Severity Severity
	Message  string
}

type Recipient struct {
	Name  string
	Phone string
}

const (
	EventKindAccess = "access"
	EventKindSMS    = "sms"
	EventKindAction = "action"
)

// EventRecord is one entry in the append-only event log.
type EventRecord struct {
	ID        string
	Kind      string
	Payload   map[string]any
	CreatedAt time.Time
}

type EventFilter struct {
	Search string
	Limit  int
}

// DispatchRecord marks one attempted notification to one recipient, keyed for
// at-most-once delivery per (event, recipient) pair.
type DispatchRecord struct {
	EventID        string
	RecipientKey   string
	IdempotencyKey string
	Status         string
	Error          string
	Message        string
}

// InboundRequest carries one webhook delivery: the exact raw bytes received
// on the wire plus the transport headers. The body must not be re-encoded
// before signature verification.
type InboundRequest struct {
	Headers  map[string]string
	Body     []byte
	Metadata map[string]any
}

type InboundResult struct {
	Accepted   bool
	StatusCode int
	Metadata   map[string]any
}
