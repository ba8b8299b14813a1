package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type accessEventRecord struct {
	bun.BaseModel `bun:"table:access_events,alias:ae"`

	ID        string         `bun:"id,pk"`
	Kind      string         `bun:"kind,notnull"`
	Payload   map[string]any `bun:"payload,type:jsonb,notnull"`
	CreatedAt time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type recipientRecord struct {
	bun.BaseModel `bun:"table:alert_recipients,alias:ar"`

	ID        string    `bun:"id,pk"`
	Name      string    `bun:"name,notnull"`
	Phone     string    `bun:"phone,notnull,unique"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type notificationDispatchRecord struct {
	bun.BaseModel `bun:"table:notification_dispatches,alias:nd"`

	ID           string    `bun:"id,pk"`
	EventID      string    `bun:"event_id,notnull"`
	RecipientKey string    `bun:"recipient_key,notnull"`
	Idempotency  string    `bun:"idempotency_key,notnull,unique"`
	Status       string    `bun:"status,notnull"`
	Error        string    `bun:"error"`
	Message      string    `bun:"message"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
