package query

import (
	"context"

	"github.com/goliatone/go-access-notifier/core"
)

type ListEventsQuery struct {
	reader core.EventReader
}

func NewListEventsQuery(reader core.EventReader) *ListEventsQuery {
	return &ListEventsQuery{reader: reader}
}

func (q *ListEventsQuery) Query(ctx context.Context, msg ListEventsMessage) ([]core.EventRecord, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: event reader is required")
	}
	return q.reader.List(ctx, msg.Filter)
}

type ListRecipientsQuery struct {
	directory core.RecipientDirectory
}

func NewListRecipientsQuery(directory core.RecipientDirectory) *ListRecipientsQuery {
	return &ListRecipientsQuery{directory: directory}
}

func (q *ListRecipientsQuery) Query(ctx context.Context, _ ListRecipientsMessage) ([]core.Recipient, error) {
	if q == nil || q.directory == nil {
		return nil, queryDependencyError("query: recipient directory is required")
	}
	return q.directory.ListAll(ctx)
}
