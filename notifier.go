package notifier

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	"github.com/goliatone/go-access-notifier/command"
	"github.com/goliatone/go-access-notifier/core"
	"github.com/goliatone/go-access-notifier/jobs"
	"github.com/goliatone/go-access-notifier/locks"
	"github.com/goliatone/go-access-notifier/migrations"
	"github.com/goliatone/go-access-notifier/notify"
	"github.com/goliatone/go-access-notifier/query"
	sqlstore "github.com/goliatone/go-access-notifier/store/sql"
	"github.com/goliatone/go-access-notifier/transport"
	"github.com/goliatone/go-access-notifier/webhooks"
)

type Config = core.Config

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// Commands groups the operator-facing write handlers.
type Commands struct {
	Lockdown        *command.LockdownCommand
	OpenDoor        *command.OpenDoorCommand
	UnlockDoor      *command.UnlockDoorCommand
	LockDoor        *command.LockDoorCommand
	AddRecipient    *command.AddRecipientCommand
	DeleteRecipient *command.DeleteRecipientCommand
}

// Queries groups the dashboard read handlers.
type Queries struct {
	ListEvents     *query.ListEventsQuery
	ListRecipients *query.ListRecipientsQuery
}

type Option func(*setupOptions)

type setupOptions struct {
	logger         core.Logger
	loggerProvider core.LoggerProvider
	metrics        core.MetricsRecorder
	metricsHandler http.Handler
	sender         core.NotificationSender
	controller     core.LockController
	client         *persistence.Client
	skipMigrations bool
}

func WithLogger(logger core.Logger) Option {
	return func(o *setupOptions) { o.logger = logger }
}

func WithLoggerProvider(provider core.LoggerProvider) Option {
	return func(o *setupOptions) { o.loggerProvider = provider }
}

func WithMetrics(metrics core.MetricsRecorder) Option {
	return func(o *setupOptions) { o.metrics = metrics }
}

// WithMetricsHandler mounts the given handler at GET /metrics.
func WithMetricsHandler(handler http.Handler) Option {
	return func(o *setupOptions) { o.metricsHandler = handler }
}

func WithNotificationSender(sender core.NotificationSender) Option {
	return func(o *setupOptions) { o.sender = sender }
}

func WithLockController(controller core.LockController) Option {
	return func(o *setupOptions) { o.controller = controller }
}

// WithPersistenceClient reuses an externally managed database client instead
// of opening one from the storage config.
func WithPersistenceClient(client *persistence.Client) Option {
	return func(o *setupOptions) { o.client = client }
}

// WithoutMigrations skips schema migration during setup; the caller owns the
// schema lifecycle.
func WithoutMigrations() Option {
	return func(o *setupOptions) { o.skipMigrations = true }
}

// App is the assembled notifier: storage, webhook pipeline, broadcaster, lock
// actions, retention jobs, and the HTTP server, wired from one Config.
type App struct {
	cfg core.Config

	client    *persistence.Client
	ownClient bool
	factory   *sqlstore.RepositoryFactory

	recipients core.RecipientStore
	pipeline   *webhooks.Pipeline
	dispatcher *notify.AsyncDispatcher
	actions    *locks.Actions

	commands Commands
	queries  Queries

	queue     *jobs.MemoryQueue
	scheduler *jobs.Scheduler
	worker    *jobs.Worker

	server *transport.Server
	logger core.Logger
}

// Setup resolves the configuration against defaults and assembles a ready
// App. The returned App owns the database client unless one was injected.
func Setup(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	options := setupOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&options)
	}

	resolved, err := (core.GoOptionsResolver{}).Resolve(core.DefaultConfig(), cfg, core.Config{})
	if err != nil {
		return nil, fmt.Errorf("notifier: config resolution failed: %w", err)
	}

	_, logger := glog.Resolve("notifier", options.loggerProvider, options.logger)
	logger = glog.Ensure(logger)

	app := &App{cfg: resolved, logger: logger}

	client := options.client
	if client == nil {
		client, err = openPersistenceClient(resolved.Storage)
		if err != nil {
			return nil, err
		}
		app.ownClient = true
	}
	app.client = client

	if !options.skipMigrations {
		if err := registerAndMigrate(ctx, client, resolved.Storage.Driver); err != nil {
			app.closeClient()
			return nil, err
		}
	}

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		app.closeClient()
		return nil, err
	}
	app.factory = factory

	cacheConfig := repositorycache.DefaultConfig()
	cacheService, err := repositorycache.NewCacheService(cacheConfig)
	if err != nil {
		app.closeClient()
		return nil, fmt.Errorf("notifier: cache service setup failed: %w", err)
	}
	recipients, err := sqlstore.NewCachedRecipientDirectory(factory.RecipientStore(), cacheService)
	if err != nil {
		app.closeClient()
		return nil, err
	}
	app.recipients = recipients

	sender := options.sender
	if sender == nil {
		twilio := notify.NewTwilioSender(
			resolved.Twilio.AccountSID,
			resolved.Twilio.AuthToken,
			resolved.Twilio.FromNumber,
		)
		if base := strings.TrimSpace(resolved.Twilio.BaseURL); base != "" {
			twilio.BaseURL = base
		}
		sender = twilio
	}

	broadcaster := notify.NewBroadcaster(notify.BroadcasterConfig{
		Recipients:     recipients,
		Sender:         sender,
		Ledger:         factory.DispatchStore(),
		Events:         factory.EventStore(),
		Logger:         logger,
		LoggerProvider: options.loggerProvider,
		Metrics:        options.metrics,
	})
	app.dispatcher = notify.NewAsyncDispatcher(broadcaster, resolved.DispatchTimeout(), logger)

	tracker := webhooks.NewUnlockTracker()
	app.pipeline = webhooks.NewPipeline(webhooks.PipelineConfig{
		Verifier: webhooks.HMACVerifier{
			Header: resolved.Webhook.SignatureHeader,
			Secret: resolved.Webhook.SignatureKey,
		},
		Classifier:     webhooks.NewClassifier(tracker, resolved.CorrelationWindow()),
		Events:         factory.EventStore(),
		Dispatcher:     app.dispatcher,
		Logger:         logger,
		LoggerProvider: options.loggerProvider,
		Metrics:        options.metrics,
	})

	controller := options.controller
	if controller == nil {
		controller = locks.NewClient(resolved.Provider.BaseURL, resolved.Provider.APIKey)
	}
	app.actions = locks.NewActions(locks.ActionsConfig{
		Controller:     controller,
		MainDoorIDs:    resolved.Provider.MainDoorIDs,
		Broadcaster:    broadcaster,
		Events:         factory.EventStore(),
		Logger:         logger,
		LoggerProvider: options.loggerProvider,
	})

	app.commands = Commands{
		Lockdown:        command.NewLockdownCommand(app.actions),
		OpenDoor:        command.NewOpenDoorCommand(app.actions),
		UnlockDoor:      command.NewUnlockDoorCommand(app.actions),
		LockDoor:        command.NewLockDoorCommand(app.actions),
		AddRecipient:    command.NewAddRecipientCommand(recipients),
		DeleteRecipient: command.NewDeleteRecipientCommand(recipients),
	}
	app.queries = Queries{
		ListEvents:     query.NewListEventsQuery(factory.EventStore()),
		ListRecipients: query.NewListRecipientsQuery(recipients),
	}

	if err := app.buildJobs(options); err != nil {
		app.closeClient()
		return nil, err
	}

	server, err := transport.NewServer(transport.ServerConfig{
		Addr:            resolved.Server.Addr,
		Webhook:         app.pipeline,
		Lockdown:        app.commands.Lockdown,
		OpenDoor:        app.commands.OpenDoor,
		UnlockDoor:      app.commands.UnlockDoor,
		LockDoor:        app.commands.LockDoor,
		AddRecipient:    app.commands.AddRecipient,
		DeleteRecipient: app.commands.DeleteRecipient,
		ListEvents:      app.queries.ListEvents,
		ListRecipients:  app.queries.ListRecipients,
		Metrics:         options.metricsHandler,
		Logger:          logger,
		LoggerProvider:  options.loggerProvider,
	})
	if err != nil {
		app.closeClient()
		return nil, err
	}
	app.server = server

	return app, nil
}

func (a *App) buildJobs(options setupOptions) error {
	pruner, err := jobs.NewRetentionPruner(jobs.RetentionPrunerConfig{
		Pruner:         a.factory.EventStore(),
		MaxAge:         a.cfg.RetentionMaxAge(),
		Logger:         a.logger,
		LoggerProvider: options.loggerProvider,
		Metrics:        options.metrics,
	})
	if err != nil {
		return err
	}

	a.queue = jobs.NewMemoryQueue(0)
	scheduler, err := jobs.NewScheduler(jobs.SchedulerConfig{
		Enqueuer:       a.queue,
		Interval:       a.cfg.RetentionSweepInterval(),
		Logger:         a.logger,
		LoggerProvider: options.loggerProvider,
	})
	if err != nil {
		return err
	}
	a.scheduler = scheduler

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		Dequeuer:       a.queue,
		Pruner:         pruner,
		Logger:         a.logger,
		LoggerProvider: options.loggerProvider,
	})
	if err != nil {
		return err
	}
	a.worker = worker
	return nil
}

// Run starts the retention jobs and serves HTTP until Shutdown or a listener
// failure.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.server == nil {
		return fmt.Errorf("notifier: app is not configured")
	}
	a.scheduler.Start(ctx)
	go func() {
		if err := a.worker.Run(ctx); err != nil {
			a.logger.Error("retention worker stopped", "error", err)
		}
	}()
	return a.server.Start()
}

// Shutdown stops the HTTP server and background work, waits for in-flight
// alert dispatches, and closes an owned database client.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var firstErr error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.queue != nil {
		a.queue.Close()
	}
	if a.dispatcher != nil {
		a.dispatcher.Wait()
	}
	if err := a.closeClient(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (a *App) Config() core.Config {
	if a == nil {
		return core.Config{}
	}
	return a.cfg
}

func (a *App) Commands() Commands {
	if a == nil {
		return Commands{}
	}
	return a.commands
}

func (a *App) Queries() Queries {
	if a == nil {
		return Queries{}
	}
	return a.queries
}

func (a *App) Pipeline() *webhooks.Pipeline {
	if a == nil {
		return nil
	}
	return a.pipeline
}

func (a *App) Actions() *locks.Actions {
	if a == nil {
		return nil
	}
	return a.actions
}

// Handler exposes the routed HTTP handler for embedding and tests.
func (a *App) Handler() http.Handler {
	if a == nil || a.server == nil {
		return http.NotFoundHandler()
	}
	return a.server.Handler()
}

func (a *App) closeClient() error {
	if a == nil || a.client == nil || !a.ownClient {
		return nil
	}
	return a.client.Close()
}

type storagePersistenceConfig struct {
	storage core.StorageConfig
}

func (c storagePersistenceConfig) GetDebug() bool {
	return c.storage.Debug
}

func (c storagePersistenceConfig) GetDriver() string {
	return c.storage.Driver
}

func (c storagePersistenceConfig) GetServer() string {
	return c.storage.DSN
}

func (c storagePersistenceConfig) GetPingTimeout() time.Duration {
	return 5 * time.Second
}

func (c storagePersistenceConfig) GetOtelIdentifier() string {
	return "go-access-notifier"
}

func openPersistenceClient(storage core.StorageConfig) (*persistence.Client, error) {
	driver := strings.TrimSpace(storage.Driver)
	var dialect schema.Dialect
	switch driver {
	case "sqlite3", "sqlite":
		driver = "sqlite3"
		dialect = sqlitedialect.New()
	case "postgres", "pg":
		driver = "postgres"
		dialect = pgdialect.New()
	default:
		return nil, fmt.Errorf("notifier: unsupported storage driver %q", storage.Driver)
	}

	sqlDB, err := sql.Open(driver, storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("notifier: open database failed: %w", err)
	}
	if driver == "sqlite3" {
		sqlDB.SetMaxOpenConns(1)
	}

	cfg := storagePersistenceConfig{storage: storage}
	client, err := persistence.New(cfg, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("notifier: persistence client setup failed: %w", err)
	}
	return client, nil
}

func registerAndMigrate(ctx context.Context, client *persistence.Client, driver string) error {
	source, err := migrations.ForDriver(GetMigrationsFS(), driver)
	if err != nil {
		return fmt.Errorf("notifier: %w", err)
	}

	client.RegisterSQLMigrations(source.FS)
	if err := client.Migrate(ctx); err != nil {
		return fmt.Errorf("notifier: migration failed: %w", err)
	}
	return nil
}
