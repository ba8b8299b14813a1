package sqlstore

import (
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
)

// RepositoryFactory builds every bun-backed store off one shared database
// handle. Accepts either a persistence client or a raw *bun.DB.
type RepositoryFactory struct {
	db *bun.DB

	eventStore     *AccessEventStore
	recipientStore *RecipientStore
	dispatchStore  *NotificationDispatchStore
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) error {
	if f == nil {
		return fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.eventStore != nil && f.recipientStore != nil && f.dispatchStore != nil {
		return nil
	}
	return f.initStores()
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) EventStore() *AccessEventStore {
	if f == nil {
		return nil
	}
	return f.eventStore
}

func (f *RepositoryFactory) RecipientStore() *RecipientStore {
	if f == nil {
		return nil
	}
	return f.recipientStore
}

func (f *RepositoryFactory) DispatchStore() *NotificationDispatchStore {
	if f == nil {
		return nil
	}
	return f.dispatchStore
}

func (f *RepositoryFactory) initStores() error {
	eventStore, err := NewAccessEventStore(f.db)
	if err != nil {
		return err
	}
	f.eventStore = eventStore

	recipientStore, err := NewRecipientStore(f.db)
	if err != nil {
		return err
	}
	f.recipientStore = recipientStore

	dispatchStore, err := NewNotificationDispatchStore(f.db)
	if err != nil {
		return err
	}
	f.dispatchStore = dispatchStore

	return nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
