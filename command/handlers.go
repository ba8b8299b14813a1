package command

import (
	"context"
	"strings"

	"github.com/goliatone/go-access-notifier/core"
)

// LockActionService runs operator-initiated lock actions.
type LockActionService interface {
	LockdownAll(ctx context.Context) error
	OpenDoor(ctx context.Context, lockID string) error
	UnlockDoor(ctx context.Context, lockID string) error
	LockDoor(ctx context.Context, lockID string) error
}

type LockdownCommand struct {
	service LockActionService
}

func NewLockdownCommand(service LockActionService) *LockdownCommand {
	return &LockdownCommand{service: service}
}

func (c *LockdownCommand) Execute(ctx context.Context, _ LockdownMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: lock action service is required")
	}
	return c.service.LockdownAll(ctx)
}

type OpenDoorCommand struct {
	service LockActionService
}

func NewOpenDoorCommand(service LockActionService) *OpenDoorCommand {
	return &OpenDoorCommand{service: service}
}

func (c *OpenDoorCommand) Execute(ctx context.Context, msg OpenDoorMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: lock action service is required")
	}
	return c.service.OpenDoor(ctx, msg.LockID)
}

type UnlockDoorCommand struct {
	service LockActionService
}

func NewUnlockDoorCommand(service LockActionService) *UnlockDoorCommand {
	return &UnlockDoorCommand{service: service}
}

func (c *UnlockDoorCommand) Execute(ctx context.Context, msg UnlockDoorMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: lock action service is required")
	}
	return c.service.UnlockDoor(ctx, msg.LockID)
}

type LockDoorCommand struct {
	service LockActionService
}

func NewLockDoorCommand(service LockActionService) *LockDoorCommand {
	return &LockDoorCommand{service: service}
}

func (c *LockDoorCommand) Execute(ctx context.Context, msg LockDoorMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: lock action service is required")
	}
	return c.service.LockDoor(ctx, msg.LockID)
}

type AddRecipientCommand struct {
	store core.RecipientStore
}

func NewAddRecipientCommand(store core.RecipientStore) *AddRecipientCommand {
	return &AddRecipientCommand{store: store}
}

func (c *AddRecipientCommand) Execute(ctx context.Context, msg AddRecipientMessage) error {
	if c == nil || c.store == nil {
		return commandDependencyError("command: recipient store is required")
	}
	if strings.TrimSpace(msg.Recipient.Name) == "" {
		return commandValidationError("name", "recipient name is required")
	}
	if strings.TrimSpace(msg.Recipient.Phone) == "" {
		return commandValidationError("phone", "recipient phone is required")
	}
	return c.store.Add(ctx, core.Recipient{
		Name:  strings.TrimSpace(msg.Recipient.Name),
		Phone: strings.TrimSpace(msg.Recipient.Phone),
	})
}

type DeleteRecipientCommand struct {
	store core.RecipientStore
}

func NewDeleteRecipientCommand(store core.RecipientStore) *DeleteRecipientCommand {
	return &DeleteRecipientCommand{store: store}
}

func (c *DeleteRecipientCommand) Execute(ctx context.Context, msg DeleteRecipientMessage) error {
	if c == nil || c.store == nil {
		return commandDependencyError("command: recipient store is required")
	}
	if strings.TrimSpace(msg.Phone) == "" {
		return commandValidationError("phone", "recipient phone is required")
	}
	return c.store.DeleteByPhone(ctx, strings.TrimSpace(msg.Phone))
}
