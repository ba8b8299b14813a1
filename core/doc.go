// Package core contains canonical notifier domain contracts, entities, and
// configuration. Lower-level adapters must depend on this package; core must
// not depend on storage-specific or transport-specific adapters.
package core
