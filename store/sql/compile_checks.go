package sqlstore

import "github.com/goliatone/go-access-notifier/core"

var (
	_ core.EventStore     = (*AccessEventStore)(nil)
	_ core.EventReader    = (*AccessEventStore)(nil)
	_ core.RecipientStore = (*RecipientStore)(nil)
	_ core.DispatchLedger = (*NotificationDispatchStore)(nil)
)
