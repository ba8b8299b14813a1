package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[LockdownMessage]        = (*LockdownCommand)(nil)
	_ gocmd.Commander[OpenDoorMessage]        = (*OpenDoorCommand)(nil)
	_ gocmd.Commander[UnlockDoorMessage]      = (*UnlockDoorCommand)(nil)
	_ gocmd.Commander[LockDoorMessage]        = (*LockDoorCommand)(nil)
	_ gocmd.Commander[AddRecipientMessage]    = (*AddRecipientCommand)(nil)
	_ gocmd.Commander[DeleteRecipientMessage] = (*DeleteRecipientCommand)(nil)
)
