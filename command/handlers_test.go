package command

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-access-notifier/core"
)

type stubActionService struct {
	calls []string
	err   error
}

func (s *stubActionService) LockdownAll(context.Context) error {
	s.calls = append(s.calls, "lockdown")
	return s.err
}

func (s *stubActionService) OpenDoor(_ context.Context, lockID string) error {
	s.calls = append(s.calls, "open:"+lockID)
	return s.err
}

func (s *stubActionService) UnlockDoor(_ context.Context, lockID string) error {
	s.calls = append(s.calls, "unlock:"+lockID)
	return s.err
}

func (s *stubActionService) LockDoor(_ context.Context, lockID string) error {
	s.calls = append(s.calls, "lock:"+lockID)
	return s.err
}

type stubRecipientStore struct {
	added   []core.Recipient
	deleted []string
	err     error
}

func (s *stubRecipientStore) ListAll(context.Context) ([]core.Recipient, error) {
	return nil, nil
}

func (s *stubRecipientStore) Add(_ context.Context, recipient core.Recipient) error {
	if s.err != nil {
		return s.err
	}
	s.added = append(s.added, recipient)
	return nil
}

func (s *stubRecipientStore) DeleteByPhone(_ context.Context, phone string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, phone)
	return nil
}

func TestLockdownCommandDelegates(t *testing.T) {
	service := &stubActionService{}
	cmd := NewLockdownCommand(service)

	if err := cmd.Execute(context.Background(), LockdownMessage{}); err != nil {
		t.Fatalf("lockdown command failed: %v", err)
	}
	if len(service.calls) != 1 || service.calls[0] != "lockdown" {
		t.Fatalf("unexpected calls %v", service.calls)
	}
}

func TestDoorCommandsDelegateWithLockID(t *testing.T) {
	service := &stubActionService{}

	if err := NewOpenDoorCommand(service).Execute(context.Background(), OpenDoorMessage{LockID: "42"}); err != nil {
		t.Fatalf("open command failed: %v", err)
	}
	if err := NewUnlockDoorCommand(service).Execute(context.Background(), UnlockDoorMessage{LockID: "42"}); err != nil {
		t.Fatalf("unlock command failed: %v", err)
	}
	if err := NewLockDoorCommand(service).Execute(context.Background(), LockDoorMessage{LockID: "42"}); err != nil {
		t.Fatalf("lock command failed: %v", err)
	}
	want := []string{"open:42", "unlock:42", "lock:42"}
	for i, call := range want {
		if service.calls[i] != call {
			t.Fatalf("expected call %q, got %q", call, service.calls[i])
		}
	}
}

func TestDoorMessageValidation(t *testing.T) {
	if err := (OpenDoorMessage{}).Validate(); err == nil {
		t.Fatalf("expected missing lock id to fail validation")
	}
	if err := (OpenDoorMessage{LockID: "42"}).Validate(); err != nil {
		t.Fatalf("expected valid message: %v", err)
	}
}

func TestAddRecipientCommandTrimsAndStores(t *testing.T) {
	store := &stubRecipientStore{}
	cmd := NewAddRecipientCommand(store)

	msg := AddRecipientMessage{Recipient: core.Recipient{Name: " Alice ", Phone: " +15550001 "}}
	if err := cmd.Execute(context.Background(), msg); err != nil {
		t.Fatalf("add recipient failed: %v", err)
	}
	if len(store.added) != 1 {
		t.Fatalf("expected one recipient added")
	}
	if store.added[0].Name != "Alice" || store.added[0].Phone != "+15550001" {
		t.Fatalf("expected trimmed recipient, got %+v", store.added[0])
	}
}

func TestAddRecipientCommandRejectsBlankFields(t *testing.T) {
	cmd := NewAddRecipientCommand(&stubRecipientStore{})

	err := cmd.Execute(context.Background(), AddRecipientMessage{Recipient: core.Recipient{Phone: "+15550001"}})
	if err == nil {
		t.Fatalf("expected missing name to fail")
	}
	err = cmd.Execute(context.Background(), AddRecipientMessage{Recipient: core.Recipient{Name: "Alice"}})
	if err == nil {
		t.Fatalf("expected missing phone to fail")
	}
}

func TestDeleteRecipientCommand(t *testing.T) {
	store := &stubRecipientStore{}
	cmd := NewDeleteRecipientCommand(store)

	if err := cmd.Execute(context.Background(), DeleteRecipientMessage{Phone: "+15550001"}); err != nil {
		t.Fatalf("delete recipient failed: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "+15550001" {
		t.Fatalf("unexpected deletions %v", store.deleted)
	}

	if err := cmd.Execute(context.Background(), DeleteRecipientMessage{}); err == nil {
		t.Fatalf("expected missing phone to fail")
	}
}

func TestCommandsRequireDependencies(t *testing.T) {
	if err := (&LockdownCommand{}).Execute(context.Background(), LockdownMessage{}); err == nil {
		t.Fatalf("expected missing service to fail")
	}
	if err := (&AddRecipientCommand{}).Execute(context.Background(), AddRecipientMessage{}); err == nil {
		t.Fatalf("expected missing store to fail")
	}
}

func TestCommandsPropagateServiceErrors(t *testing.T) {
	service := &stubActionService{err: errors.New("provider down")}
	if err := NewLockdownCommand(service).Execute(context.Background(), LockdownMessage{}); err == nil {
		t.Fatalf("expected service error to propagate")
	}
}
