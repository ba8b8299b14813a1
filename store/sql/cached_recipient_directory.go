package sqlstore

import (
	"context"
	"fmt"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-access-notifier/core"
)

// RecipientCacheKey is the single-entry cache key for the broadcast list.
const RecipientCacheKey = "go-access-notifier::recipients::v1::all"

// CachedRecipientDirectory is a read-through cache over the recipient store.
// The broadcast list is read on every alert but changes rarely; writes
// invalidate the cached snapshot.
type CachedRecipientDirectory struct {
	base  core.RecipientStore
	cache repositorycache.CacheService
}

func NewCachedRecipientDirectory(
	base core.RecipientStore,
	cacheService repositorycache.CacheService,
) (*CachedRecipientDirectory, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base recipient store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: recipient cache service is required")
	}
	return &CachedRecipientDirectory{base: base, cache: cacheService}, nil
}

func (d *CachedRecipientDirectory) ListAll(ctx context.Context) ([]core.Recipient, error) {
	if d == nil || d.base == nil || d.cache == nil {
		return nil, fmt.Errorf("sqlstore: cached recipient directory is not configured")
	}
	recipients, err := repositorycache.GetOrFetch(ctx, d.cache, RecipientCacheKey, func(ctx context.Context) ([]core.Recipient, error) {
		fetched, fetchErr := d.base.ListAll(ctx)
		if fetchErr != nil {
			return nil, fetchErr
		}
		return cloneRecipients(fetched), nil
	})
	if err != nil {
		return nil, err
	}
	return cloneRecipients(recipients), nil
}

func (d *CachedRecipientDirectory) Add(ctx context.Context, recipient core.Recipient) error {
	if d == nil || d.base == nil || d.cache == nil {
		return fmt.Errorf("sqlstore: cached recipient directory is not configured")
	}
	if err := d.base.Add(ctx, recipient); err != nil {
		return err
	}
	return d.cache.Delete(ctx, RecipientCacheKey)
}

func (d *CachedRecipientDirectory) DeleteByPhone(ctx context.Context, phone string) error {
	if d == nil || d.base == nil || d.cache == nil {
		return fmt.Errorf("sqlstore: cached recipient directory is not configured")
	}
	if err := d.base.DeleteByPhone(ctx, phone); err != nil {
		return err
	}
	return d.cache.Delete(ctx, RecipientCacheKey)
}

func cloneRecipients(in []core.Recipient) []core.Recipient {
	if len(in) == 0 {
		return []core.Recipient{}
	}
	out := make([]core.Recipient, len(in))
	copy(out, in)
	return out
}

var _ core.RecipientStore = (*CachedRecipientDirectory)(nil)
