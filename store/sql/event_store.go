package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-access-notifier/core"
)

const defaultEventListLimit = 100

// searchScanLimit bounds how many recent rows a substring search walks.
const searchScanLimit = 500

// AccessEventStore is the append-only event log. Search is a substring match
// over the serialized payload, applied to the most recent rows.
type AccessEventStore struct {
	db   *bun.DB
	repo repository.Repository[*accessEventRecord]
}

func NewAccessEventStore(db *bun.DB) (*AccessEventStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*accessEventRecord](db, accessEventHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid access event repository wiring: %w", err)
		}
	}
	return &AccessEventStore{db: db, repo: repo}, nil
}

func (s *AccessEventStore) Append(ctx context.Context, input core.EventRecord) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: access event store is not configured")
	}
	kind := strings.TrimSpace(input.Kind)
	if kind == "" {
		return fmt.Errorf("sqlstore: event kind is required")
	}
	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	record := &accessEventRecord{
		ID:        id,
		Kind:      kind,
		Payload:   copyAnyMap(input.Payload),
		CreatedAt: createdAt.UTC(),
	}
	_, err := s.repo.Create(ctx, record)
	return err
}

func (s *AccessEventStore) List(ctx context.Context, filter core.EventFilter) ([]core.EventRecord, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: access event store is not configured")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultEventListLimit
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	scan := limit
	if search != "" {
		scan = searchScanLimit
	}

	records, _, err := s.repo.List(ctx,
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(scan, 0),
	)
	if err != nil {
		return nil, err
	}

	out := make([]core.EventRecord, 0, limit)
	for _, record := range records {
		if record == nil {
			continue
		}
		if search != "" && !payloadMatches(record, search) {
			continue
		}
		out = append(out, core.EventRecord{
			ID:        record.ID,
			Kind:      record.Kind,
			Payload:   copyAnyMap(record.Payload),
			CreatedAt: record.CreatedAt.UTC(),
		})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Prune deletes event rows older than cutoff and reports how many went away.
func (s *AccessEventStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: access event store is not configured")
	}
	res, err := s.db.NewDelete().
		Model((*accessEventRecord)(nil)).
		Where("created_at < ?", cutoff.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlstore: pruned row count unavailable: %w", err)
	}
	return affected, nil
}

func payloadMatches(record *accessEventRecord, search string) bool {
	if strings.Contains(strings.ToLower(record.Kind), search) {
		return true
	}
	serialized, err := json.Marshal(record.Payload)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(serialized)), search)
}
