package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-access-notifier/core"
)

const (
	TypeLockdown        = "notifier.command.lockdown"
	TypeOpenDoor        = "notifier.command.door.open"
	TypeUnlockDoor      = "notifier.command.door.unlock"
	TypeLockDoor        = "notifier.command.door.lock"
	TypeAddRecipient    = "notifier.command.recipient.add"
	TypeDeleteRecipient = "notifier.command.recipient.delete"
)

type LockdownMessage struct {
	Reason string
}

func (LockdownMessage) Type() string { return TypeLockdown }

func (LockdownMessage) Validate() error { return nil }

type OpenDoorMessage struct {
	LockID string
}

func (OpenDoorMessage) Type() string { return TypeOpenDoor }

func (m OpenDoorMessage) Validate() error {
	return validateLockID(m.LockID)
}

type UnlockDoorMessage struct {
	LockID string
}

func (UnlockDoorMessage) Type() string { return TypeUnlockDoor }

func (m UnlockDoorMessage) Validate() error {
	return validateLockID(m.LockID)
}

type LockDoorMessage struct {
	LockID string
}

func (LockDoorMessage) Type() string { return TypeLockDoor }

func (m LockDoorMessage) Validate() error {
	return validateLockID(m.LockID)
}

type AddRecipientMessage struct {
	Recipient core.Recipient
}

func (AddRecipientMessage) Type() string { return TypeAddRecipient }

func (m AddRecipientMessage) Validate() error {
	if strings.TrimSpace(m.Recipient.Name) == "" {
		return fmt.Errorf("command: recipient name is required")
	}
	if strings.TrimSpace(m.Recipient.Phone) == "" {
		return fmt.Errorf("command: recipient phone is required")
	}
	return nil
}

type DeleteRecipientMessage struct {
	Phone string
}

func (DeleteRecipientMessage) Type() string { return TypeDeleteRecipient }

func (m DeleteRecipientMessage) Validate() error {
	if strings.TrimSpace(m.Phone) == "" {
		return fmt.Errorf("command: recipient phone is required")
	}
	return nil
}

func validateLockID(lockID string) error {
	if strings.TrimSpace(lockID) == "" {
		return fmt.Errorf("command: lock id is required")
	}
	return nil
}
