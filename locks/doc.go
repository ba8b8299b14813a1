// Package locks is the REST client for remote lock actions on the
// access-control provider: unlock, lock, and lockdown by lock id.
package locks
