package sqlstore

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-access-notifier/core"
)

// RecipientStore keeps the SMS broadcast list. Phone numbers are unique;
// adding an existing number is a conflict.
type RecipientStore struct {
	db   *bun.DB
	repo repository.Repository[*recipientRecord]
}

func NewRecipientStore(db *bun.DB) (*RecipientStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*recipientRecord](db, recipientHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid recipient repository wiring: %w", err)
		}
	}
	return &RecipientStore{db: db, repo: repo}, nil
}

func (s *RecipientStore) ListAll(ctx context.Context) ([]core.Recipient, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: recipient store is not configured")
	}
	records, _, err := s.repo.List(ctx, repository.OrderBy("name ASC"))
	if err != nil {
		return nil, err
	}
	out := make([]core.Recipient, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		out = append(out, core.Recipient{
			Name:  record.Name,
			Phone: record.Phone,
		})
	}
	return out, nil
}

func (s *RecipientStore) Add(ctx context.Context, recipient core.Recipient) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: recipient store is not configured")
	}
	name := strings.TrimSpace(recipient.Name)
	phone := strings.TrimSpace(recipient.Phone)
	if name == "" {
		return fmt.Errorf("sqlstore: recipient name is required")
	}
	if phone == "" {
		return fmt.Errorf("sqlstore: recipient phone is required")
	}

	record := &recipientRecord{
		ID:    uuid.NewString(),
		Name:  name,
		Phone: phone,
	}
	_, err := s.repo.Create(ctx, record)
	if err != nil && isUniqueConstraintError(err) {
		return goerrors.Wrap(err, goerrors.CategoryConflict, "sqlstore: recipient phone already exists").
			WithCode(http.StatusConflict).
			WithTextCode(core.NotifierErrorConflict)
	}
	return err
}

func (s *RecipientStore) DeleteByPhone(ctx context.Context, phone string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: recipient store is not configured")
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return fmt.Errorf("sqlstore: recipient phone is required")
	}
	_, err := s.db.NewDelete().
		Model((*recipientRecord)(nil)).
		Where("phone = ?", phone).
		Exec(ctx)
	return err
}
