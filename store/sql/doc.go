// Package sqlstore implements the persistence contracts on bun: the
// append-only event log, the recipient directory, and the notification
// dispatch ledger. Works against sqlite and postgres.
package sqlstore
