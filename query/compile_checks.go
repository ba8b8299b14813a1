package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-access-notifier/core"
)

var (
	_ gocmd.Querier[ListEventsMessage, []core.EventRecord]   = (*ListEventsQuery)(nil)
	_ gocmd.Querier[ListRecipientsMessage, []core.Recipient] = (*ListRecipientsQuery)(nil)
)
