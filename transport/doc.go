// Package transport exposes the notifier over HTTP: the signed webhook
// intake, the operator dashboard with its event log, recipient management,
// and the lock-control actions.
package transport
