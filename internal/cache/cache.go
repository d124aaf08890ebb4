// Package cache provides the time-bounded lookup caches and the short-lived
// phone->record mapping used by the capture flow. Entries distinguish a
// cached negative result from cache absence so keystroke-frequency requests
// do not re-query the backing store.
package cache

import (
	"context"
	"time"
)

// Result classifies a cache read.
type Result int

const (
	// Miss means the key is not cached; the caller should query the store.
	Miss Result = iota
	// HitEmpty means a previous query ran and found nothing.
	HitEmpty
	// HitValue means a previous query ran and found a value.
	HitValue
)

// Store is the minimal TTL key-value surface this service needs. Both lookup
// caches and the phone->record mapping run through it.
type Store interface {
	Get(ctx context.Context, key string) (string, Result, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CachedLookup resolves key through store, falling back to query on a miss
// and caching whatever query returns, including the empty result, for ttl.
// Cache failures are treated as misses and never surfaced; only query errors
// propagate. Returns the resolved value and whether it is non-empty.
func CachedLookup(ctx context.Context, store Store, key string, ttl time.Duration, query func(context.Context) (string, error)) (string, bool, error) {
	value, res, err := store.Get(ctx, key)
	if err == nil {
		switch res {
		case HitValue:
			return value, true, nil
		case HitEmpty:
			return "", false, nil
		}
	}

	value, err = query(ctx)
	if err != nil {
		return "", false, err
	}

	// Best effort: a failed write just means the next request queries again.
	_ = store.Set(ctx, key, value, ttl)

	return value, value != "", nil
}
