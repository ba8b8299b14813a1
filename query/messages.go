package query

import (
	"fmt"

	"github.com/goliatone/go-access-notifier/core"
)

const (
	TypeListEvents     = "notifier.query.events.list"
	TypeListRecipients = "notifier.query.recipients.list"
)

type ListEventsMessage struct {
	Filter core.EventFilter
}

func (ListEventsMessage) Type() string { return TypeListEvents }

func (m ListEventsMessage) Validate() error {
	if m.Filter.Limit < 0 {
		return fmt.Errorf("query: event limit must not be negative")
	}
	return nil
}

type ListRecipientsMessage struct{}

func (ListRecipientsMessage) Type() string { return TypeListRecipients }

func (ListRecipientsMessage) Validate() error { return nil }
