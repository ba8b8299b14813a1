package locks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-access-notifier/core"
)

type stubController struct {
	calls []string
	fail  map[string]error
}

func (s *stubController) record(action string, lockID string) error {
	s.calls = append(s.calls, action+":"+lockID)
	if s.fail != nil {
		return s.fail[lockID]
	}
	return nil
}

func (s *stubController) Unlock(_ context.Context, lockID string) error {
	return s.record("unlock", lockID)
}

func (s *stubController) Lock(_ context.Context, lockID string) error {
	return s.record("lock", lockID)
}

func (s *stubController) Lockdown(_ context.Context, lockID string) error {
	return s.record("lockdown", lockID)
}

type stubBroadcaster struct {
	alerts []core.Alert
}

func (s *stubBroadcaster) Broadcast(_ context.Context, alert core.Alert) error {
	s.alerts = append(s.alerts, alert)
	return nil
}

type stubAppender struct {
	records []core.EventRecord
}

func (s *stubAppender) Append(_ context.Context, record core.EventRecord) error {
	s.records = append(s.records, record)
	return nil
}

func TestLockdownAllSweepsEveryDoorAndBroadcasts(t *testing.T) {
	controller := &stubController{}
	broadcaster := &stubBroadcaster{}
	events := &stubAppender{}
	actions := NewActions(ActionsConfig{
		Controller:  controller,
		MainDoorIDs: []string{"1", "2", "3"},
		Broadcaster: broadcaster,
		Events:      events,
	})

	if err := actions.LockdownAll(context.Background()); err != nil {
		t.Fatalf("lockdown failed: %v", err)
	}
	if len(controller.calls) != 3 {
		t.Fatalf("expected all three doors attempted, got %v", controller.calls)
	}
	if len(broadcaster.alerts) != 1 {
		t.Fatalf("expected one confirmation broadcast, got %d", len(broadcaster.alerts))
	}
	if !strings.HasPrefix(broadcaster.alerts[0].Message, "All main doors lockdown activated at ") {
		t.Fatalf("unexpected confirmation message %q", broadcaster.alerts[0].Message)
	}
	if len(events.records) != 1 || events.records[0].Kind != core.EventKindAction {
		t.Fatalf("expected one action event, got %+v", events.records)
	}
}

func TestLockdownAllContinuesPastDoorFailures(t *testing.T) {
	controller := &stubController{fail: map[string]error{"2": errors.New("offline")}}
	broadcaster := &stubBroadcaster{}
	actions := NewActions(ActionsConfig{
		Controller:  controller,
		MainDoorIDs: []string{"1", "2", "3"},
		Broadcaster: broadcaster,
	})

	if err := actions.LockdownAll(context.Background()); err == nil {
		t.Fatalf("expected a door failure to surface")
	}
	if len(controller.calls) != 3 {
		t.Fatalf("expected every door attempted despite failure, got %v", controller.calls)
	}
	if len(broadcaster.alerts) != 0 {
		t.Fatalf("expected no confirmation when the lockdown is incomplete")
	}
}

func TestLockdownAllRequiresConfiguredDoors(t *testing.T) {
	actions := NewActions(ActionsConfig{Controller: &stubController{}})
	if err := actions.LockdownAll(context.Background()); err == nil {
		t.Fatalf("expected missing door configuration to fail")
	}
}

func TestSingleDoorActionsAppendActionEvents(t *testing.T) {
	controller := &stubController{}
	events := &stubAppender{}
	actions := NewActions(ActionsConfig{
		Controller:  controller,
		MainDoorIDs: []string{"1"},
		Events:      events,
	})

	if err := actions.OpenDoor(context.Background(), "42"); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := actions.LockDoor(context.Background(), "42"); err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	if len(controller.calls) != 2 || controller.calls[0] != "unlock:42" || controller.calls[1] != "lock:42" {
		t.Fatalf("unexpected controller calls %v", controller.calls)
	}
	if len(events.records) != 2 {
		t.Fatalf("expected two action events, got %d", len(events.records))
	}
	if events.records[0].Payload["action"] != ActionOpen {
		t.Fatalf("expected open action payload, got %+v", events.records[0].Payload)
	}
}

func TestSingleDoorActionRequiresLockID(t *testing.T) {
	actions := NewActions(ActionsConfig{Controller: &stubController{}})
	if err := actions.UnlockDoor(context.Background(), ""); err == nil {
		t.Fatalf("expected missing lock id to fail")
	}
}
