package locks

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/goliatone/go-access-notifier/core"
)

// Lock action names recorded in the event log.
const (
	ActionLockdown = "lockdown"
	ActionOpen     = "open"
	ActionUnlock   = "unlock"
	ActionLock     = "lock"
)

// Actions runs operator-initiated lock commands: single-lock open/unlock/lock
// and the all-main-doors lockdown. Every invocation is mirrored into the
// event log as an action record; the lockdown additionally broadcasts a
// confirmation SMS.
type Actions struct {
	controller  core.LockController
	mainDoorIDs []string
	broadcaster core.AlertBroadcaster
	events      core.EventStore
	logger      core.Logger
	now         func() time.Time
	newID       func() string
}

type ActionsConfig struct {
	Controller     core.LockController
	MainDoorIDs    []string
	Broadcaster    core.AlertBroadcaster
	Events         core.EventStore
	Logger         core.Logger
	LoggerProvider core.LoggerProvider
}

func NewActions(cfg ActionsConfig) *Actions {
	_, logger := glog.Resolve("locks", cfg.LoggerProvider, cfg.Logger)
	doors := make([]string, 0, len(cfg.MainDoorIDs))
	for _, id := range cfg.MainDoorIDs {
		if id = strings.TrimSpace(id); id != "" {
			doors = append(doors, id)
		}
	}
	return &Actions{
		controller:  cfg.Controller,
		mainDoorIDs: doors,
		broadcaster: cfg.Broadcaster,
		events:      cfg.Events,
		logger:      glog.Ensure(logger),
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// LockdownAll locks down every configured main door. Per-door failures do not
// stop the sweep; the first failure is returned after every door has been
// attempted. On success a confirmation SMS goes out to all recipients.
func (a *Actions) LockdownAll(ctx context.Context) error {
	if a == nil || a.controller == nil {
		return lockError("locks: lock controller is required", goerrors.CategoryInternal,
			http.StatusInternalServerError, core.NotifierErrorInternal, nil)
	}
	if len(a.mainDoorIDs) == 0 {
		return lockError("locks: no main doors configured", goerrors.CategoryInternal,
			http.StatusInternalServerError, core.NotifierErrorInternal, nil)
	}

	var firstErr error
	failed := 0
	for _, lockID := range a.mainDoorIDs {
		if err := a.controller.Lockdown(ctx, lockID); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			a.logger.Error("lockdown failed for door",
				"lock_id", lockID,
				"error", err,
			)
		}
	}

	at := a.now().UTC().Format(time.RFC3339)
	actionID := a.newID()
	a.appendActionEvent(ctx, actionID, ActionLockdown, "", map[string]any{
		"doors":  a.mainDoorIDs,
		"failed": failed,
	})

	if firstErr != nil {
		return lockWrapError(firstErr, goerrors.CategoryExternal,
			fmt.Sprintf("locks: lockdown failed for %d of %d doors", failed, len(a.mainDoorIDs)),
			http.StatusBadGateway, core.NotifierErrorOperationFailed, nil)
	}

	if a.broadcaster != nil {
		err := a.broadcaster.Broadcast(ctx, core.Alert{
			EventID:  actionID,
			Severity: core.SeverityInfo,
			Message:  fmt.Sprintf("All main doors lockdown activated at %s.", at),
		})
		if err != nil {
			a.logger.Error("lockdown confirmation broadcast failed", "error", err)
		}
	}
	return nil
}

func (a *Actions) OpenDoor(ctx context.Context, lockID string) error {
	return a.invoke(ctx, lockID, ActionOpen)
}

func (a *Actions) UnlockDoor(ctx context.Context, lockID string) error {
	return a.invoke(ctx, lockID, ActionUnlock)
}

func (a *Actions) LockDoor(ctx context.Context, lockID string) error {
	return a.invoke(ctx, lockID, ActionLock)
}

func (a *Actions) invoke(ctx context.Context, lockID string, action string) error {
	if a == nil || a.controller == nil {
		return lockError("locks: lock controller is required", goerrors.CategoryInternal,
			http.StatusInternalServerError, core.NotifierErrorInternal, nil)
	}
	lockID = strings.TrimSpace(lockID)
	if lockID == "" {
		return lockError("locks: lock id is required", goerrors.CategoryBadInput,
			http.StatusBadRequest, core.NotifierErrorBadInput, nil)
	}

	var err error
	switch action {
	case ActionOpen, ActionUnlock:
		err = a.controller.Unlock(ctx, lockID)
	case ActionLock:
		err = a.controller.Lock(ctx, lockID)
	default:
		return lockError("locks: unknown action "+action, goerrors.CategoryBadInput,
			http.StatusBadRequest, core.NotifierErrorBadInput, nil)
	}
	if err != nil {
		return err
	}

	a.appendActionEvent(ctx, a.newID(), action, lockID, nil)
	return nil
}

func (a *Actions) appendActionEvent(ctx context.Context, actionID string, action string, lockID string, extra map[string]any) {
	if a.events == nil {
		return
	}
	payload := map[string]any{"action": action}
	if lockID != "" {
		payload["lock_id"] = lockID
	}
	for key, value := range extra {
		payload[key] = value
	}
	record := core.EventRecord{
		ID:        actionID,
		Kind:      core.EventKindAction,
		Payload:   payload,
		CreatedAt: a.now().UTC(),
	}
	if err := a.events.Append(ctx, record); err != nil {
		a.logger.Error("action event append failed",
			"action", action,
			"error", err,
		)
	}
}
