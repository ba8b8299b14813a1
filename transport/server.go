package transport

import (
	"context"
	"net/http"
	"strings"
	"time"

	gocmd "github.com/goliatone/go-command"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-access-notifier/command"
	"github.com/goliatone/go-access-notifier/core"
	"github.com/goliatone/go-access-notifier/locks"
	"github.com/goliatone/go-access-notifier/query"
)

// WebhookProcessor handles one raw webhook delivery.
type WebhookProcessor interface {
	Process(ctx context.Context, req core.InboundRequest) (core.InboundResult, error)
}

type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux

	webhook WebhookProcessor

	lockdown        gocmd.Commander[command.LockdownMessage]
	openDoor        gocmd.Commander[command.OpenDoorMessage]
	unlockDoor      gocmd.Commander[command.UnlockDoorMessage]
	lockDoor        gocmd.Commander[command.LockDoorMessage]
	addRecipient    gocmd.Commander[command.AddRecipientMessage]
	deleteRecipient gocmd.Commander[command.DeleteRecipientMessage]
	listEvents      gocmd.Querier[query.ListEventsMessage, []core.EventRecord]
	listRecipients  gocmd.Querier[query.ListRecipientsMessage, []core.Recipient]

	metrics http.Handler
	logger  core.Logger
}

type ServerConfig struct {
	Addr    string
	Webhook WebhookProcessor

	Lockdown        gocmd.Commander[command.LockdownMessage]
	OpenDoor        gocmd.Commander[command.OpenDoorMessage]
	UnlockDoor      gocmd.Commander[command.UnlockDoorMessage]
	LockDoor        gocmd.Commander[command.LockDoorMessage]
	AddRecipient    gocmd.Commander[command.AddRecipientMessage]
	DeleteRecipient gocmd.Commander[command.DeleteRecipientMessage]
	ListEvents      gocmd.Querier[query.ListEventsMessage, []core.EventRecord]
	ListRecipients  gocmd.Querier[query.ListRecipientsMessage, []core.Recipient]

	Metrics        http.Handler
	Logger         core.Logger
	LoggerProvider core.LoggerProvider
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Webhook == nil {
		return nil, transportInternal("transport: webhook processor is required", nil)
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		addr = ":3000"
	}
	_, logger := glog.Resolve("transport", cfg.LoggerProvider, cfg.Logger)

	s := &Server{
		webhook:         cfg.Webhook,
		lockdown:        cfg.Lockdown,
		openDoor:        cfg.OpenDoor,
		unlockDoor:      cfg.UnlockDoor,
		lockDoor:        cfg.LockDoor,
		addRecipient:    cfg.AddRecipient,
		deleteRecipient: cfg.DeleteRecipient,
		listEvents:      cfg.ListEvents,
		listRecipients:  cfg.ListRecipients,
		metrics:         cfg.Metrics,
		logger:          glog.Ensure(logger),
	}
	s.mux = s.routes()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       time.Minute,
	}
	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/access/webhook", s.handleWebhook)
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("POST /recipients/add", s.handleAddRecipient)
	mux.HandleFunc("POST /recipients/delete", s.handleDeleteRecipient)
	mux.HandleFunc("POST /lockdown", s.handleLockdown)
	mux.HandleFunc("POST /locks/open", s.handleLockAction(locks.ActionOpen))
	mux.HandleFunc("POST /locks/unlock", s.handleLockAction(locks.ActionUnlock))
	mux.HandleFunc("POST /locks/lock", s.handleLockAction(locks.ActionLock))
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return mux
}

// Handler returns the routed handler, primarily for tests and embedding.
func (s *Server) Handler() http.Handler {
	if s == nil {
		return http.NotFoundHandler()
	}
	return s.mux
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	if s == nil || s.httpServer == nil {
		return transportInternal("transport: server is not configured", nil)
	}
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
