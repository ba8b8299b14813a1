package sqlstore_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	notifier "github.com/goliatone/go-access-notifier"
	"github.com/goliatone/go-access-notifier/core"
	"github.com/goliatone/go-access-notifier/migrations"
	sqlstore "github.com/goliatone/go-access-notifier/store/sql"
)

type testPersistenceConfig struct {
	driver string
	server string
}

func (c testPersistenceConfig) GetDebug() bool {
	return false
}

func (c testPersistenceConfig) GetDriver() string {
	return c.driver
}

func (c testPersistenceConfig) GetServer() string {
	return c.server
}

func (c testPersistenceConfig) GetPingTimeout() time.Duration {
	return time.Second
}

func (c testPersistenceConfig) GetOtelIdentifier() string {
	return "go-access-notifier-tests"
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:notifier-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := testPersistenceConfig{
		driver: "sqlite3",
		server: dsn,
	}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	ctx := context.Background()
	source, err := migrations.ForDriver(notifier.GetMigrationsFS(), "sqlite3")
	if err != nil {
		_ = client.Close()
		t.Fatalf("resolve migrations: %v", err)
	}
	client.RegisterSQLMigrations(source.FS)
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}

	return client, func() {
		_ = client.Close()
	}
}

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	var tableName string
	if err := client.DB().NewRaw(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		"access_events",
	).Scan(context.Background(), &tableName); err != nil {
		t.Fatalf("query sqlite master: %v", err)
	}
	if tableName != "access_events" {
		t.Fatalf("expected access_events table, got %q", tableName)
	}
}

func TestAccessEventStoreAppendAndList(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.EventStore()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []core.EventRecord{
		{Kind: core.EventKindAccess, Payload: map[string]any{"type": "lock.unlock", "object_name": "Front Door"}, CreatedAt: base},
		{Kind: core.EventKindSMS, Payload: map[string]any{"recipient": "Alice", "body": "Tamper Alert"}, CreatedAt: base.Add(time.Minute)},
		{Kind: core.EventKindAction, Payload: map[string]any{"action": "lockdown"}, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, record := range records {
		if err := store.Append(ctx, record); err != nil {
			t.Fatalf("append %s event: %v", record.Kind, err)
		}
	}

	listed, err := store.List(ctx, core.EventFilter{})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected three events, got %d", len(listed))
	}
	if listed[0].Kind != core.EventKindAction {
		t.Fatalf("expected newest-first ordering, got %q first", listed[0].Kind)
	}

	matched, err := store.List(ctx, core.EventFilter{Search: "tamper"})
	if err != nil {
		t.Fatalf("search events: %v", err)
	}
	if len(matched) != 1 || matched[0].Kind != core.EventKindSMS {
		t.Fatalf("expected the tamper sms event, got %+v", matched)
	}

	limited, err := store.List(ctx, core.EventFilter{Limit: 2})
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}

func TestAccessEventStorePrune(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.EventStore()

	old := time.Now().Add(-48 * time.Hour)
	fresh := time.Now()
	if err := store.Append(ctx, core.EventRecord{Kind: core.EventKindAccess, Payload: map[string]any{"type": "lock.open"}, CreatedAt: old}); err != nil {
		t.Fatalf("append old event: %v", err)
	}
	if err := store.Append(ctx, core.EventRecord{Kind: core.EventKindAccess, Payload: map[string]any{"type": "lock.open"}, CreatedAt: fresh}); err != nil {
		t.Fatalf("append fresh event: %v", err)
	}

	pruned, err := store.Prune(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("prune events: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("expected one pruned row, got %d", pruned)
	}

	remaining, err := store.List(ctx, core.EventFilter{})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected one surviving event, got %d", len(remaining))
	}
}

func TestRecipientStoreUniquePhones(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.RecipientStore()

	if err := store.Add(ctx, core.Recipient{Name: "Alice", Phone: "+15550001"}); err != nil {
		t.Fatalf("add recipient: %v", err)
	}
	if err := store.Add(ctx, core.Recipient{Name: "Duplicate", Phone: "+15550001"}); err == nil {
		t.Fatalf("expected duplicate phone to be rejected")
	}
	if err := store.Add(ctx, core.Recipient{Name: "Bob", Phone: "+15550002"}); err != nil {
		t.Fatalf("add second recipient: %v", err)
	}

	recipients, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("list recipients: %v", err)
	}
	if len(recipients) != 2 {
		t.Fatalf("expected two recipients, got %d", len(recipients))
	}

	if err := store.DeleteByPhone(ctx, "+15550001"); err != nil {
		t.Fatalf("delete recipient: %v", err)
	}
	recipients, err = store.ListAll(ctx)
	if err != nil {
		t.Fatalf("list recipients after delete: %v", err)
	}
	if len(recipients) != 1 || recipients[0].Phone != "+15550002" {
		t.Fatalf("expected only the second recipient, got %+v", recipients)
	}
}

func TestNotificationDispatchStoreIdempotency(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	ledger := factory.DispatchStore()

	record := core.DispatchRecord{
		EventID:        "evt-1",
		RecipientKey:   "+15550001",
		IdempotencyKey: "key-1",
		Status:         "sent",
		Message:        "Hi Alice,\nDoor opened.",
	}

	seen, err := ledger.Seen(ctx, record.IdempotencyKey)
	if err != nil {
		t.Fatalf("seen before record: %v", err)
	}
	if seen {
		t.Fatalf("expected key to be unseen before recording")
	}

	if err := ledger.Record(ctx, record); err != nil {
		t.Fatalf("record dispatch: %v", err)
	}
	if err := ledger.Record(ctx, record); err != nil {
		t.Fatalf("expected duplicate record to be tolerated: %v", err)
	}

	seen, err = ledger.Seen(ctx, record.IdempotencyKey)
	if err != nil {
		t.Fatalf("seen after record: %v", err)
	}
	if !seen {
		t.Fatalf("expected key to be seen after recording")
	}
}
